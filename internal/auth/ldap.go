package auth

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/go-ldap/ldap/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/config"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/db/models"
)

// LDAPProvider authenticates officers against the force directory and keeps a
// shadow user record locally. Directory users get the configured default role
// on first login; an administrator promotes them afterwards.
type LDAPProvider struct {
	cfg config.LDAP
	db  *gorm.DB
}

// NewLDAPProvider creates a new LDAP authentication provider.
func NewLDAPProvider(cfg config.LDAP, db *gorm.DB) *LDAPProvider {
	return &LDAPProvider{cfg: cfg, db: db}
}

// Authenticate verifies the credentials against the directory and returns the
// local shadow user, creating it on first login.
func (p *LDAPProvider) Authenticate(username, password string) (*models.User, error) {
	if !p.cfg.Enabled {
		return nil, ErrLDAPDisabled
	}

	conn, err := p.connect()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ldap server: %w", err)
	}
	defer conn.Close()

	if err = conn.Bind(p.cfg.BindDN, p.cfg.BindPassword); err != nil {
		return nil, fmt.Errorf("service account bind failed: %w", err)
	}

	filter := strings.ReplaceAll(p.cfg.UserFilter, "{username}", ldap.EscapeFilter(username))

	searchRequest := ldap.NewSearchRequest(
		p.cfg.BaseDN,
		ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 0, 0, false,
		filter,
		[]string{"dn", p.cfg.UsernameAttr, p.cfg.EmailAttr, p.cfg.FullNameAttr},
		nil,
	)

	result, err := conn.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("ldap search failed: %w", err)
	}

	switch len(result.Entries) {
	case 0:
		return nil, ErrUserNotFound
	case 1: // expected
	default:
		return nil, ErrMultipleUsersFound
	}

	entry := result.Entries[0]

	// bind as the found user to verify the password
	if err = conn.Bind(entry.DN, password); err != nil {
		return nil, ErrInvalidPassword
	}

	return p.syncUser(entry)
}

// connect dials the directory, optionally upgrading to TLS.
func (p *LDAPProvider) connect() (*ldap.Conn, error) {
	addr := net.JoinHostPort(p.cfg.Host, strconv.Itoa(p.cfg.Port))

	conn, err := ldap.DialURL("ldap://" + addr)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	if p.cfg.UseTLS {
		tlsConfig := &tls.Config{
			ServerName:         p.cfg.Host,
			InsecureSkipVerify: p.cfg.SkipVerify, //nolint:gosec // explicit opt-in for test setups
		}
		if err = conn.StartTLS(tlsConfig); err != nil {
			conn.Close()
			return nil, err //nolint:wrapcheck
		}
	}

	return conn, nil
}

// syncUser creates or refreshes the local shadow record for a directory user.
func (p *LDAPProvider) syncUser(entry *ldap.Entry) (*models.User, error) {
	var user models.User

	err := p.db.Preload("Role").
		Where("external_id = ? AND auth_source = ?", entry.DN, models.AuthSourceLDAP).
		First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		var role models.Role
		if err = p.db.Where("code = ?", p.cfg.DefaultRole).First(&role).Error; err != nil {
			return nil, fmt.Errorf("default ldap role %q not found: %w", p.cfg.DefaultRole, err)
		}

		user = models.User{
			Active:     true,
			Username:   entry.GetAttributeValue(p.cfg.UsernameAttr),
			Email:      entry.GetAttributeValue(p.cfg.EmailAttr),
			FullName:   entry.GetAttributeValue(p.cfg.FullNameAttr),
			RoleID:     role.ID,
			Role:       role,
			AuthSource: models.AuthSourceLDAP,
			ExternalID: entry.DN,
		}

		if err = p.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create directory user: %w", err)
		}

		log.Info().Str("username", user.Username).Msg("created shadow user for directory login")

		return &user, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query directory user: %w", err)
	}

	if !user.Active {
		return nil, ErrUserAccountDisabled
	}

	// refresh directory-owned attributes
	user.Email = entry.GetAttributeValue(p.cfg.EmailAttr)
	user.FullName = entry.GetAttributeValue(p.cfg.FullNameAttr)
	p.db.Save(&user)

	return &user, nil
}
