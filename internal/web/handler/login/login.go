// Package login implements the authentication endpoints.
package login

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/auth"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/config"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/db/models"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/scope"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/web/handler"
)

// Service holds the dependencies of the login handlers.
type Service struct {
	cfg      *config.Config
	db       *gorm.DB
	local    *auth.LocalProvider
	ldap     *auth.LDAPProvider
	resolver *scope.Resolver
	auth     *auth.Service
}

// Handler is the exported handler instance.
var Handler = Service{}

// Init wires the authentication routes. The rate limiter is applied by the
// caller so the login route shares the limiter storage with the rest of the
// application.
func (s *Service) Init(app fiber.Router, cfg *config.Config, db *gorm.DB, authService *auth.Service, limiter fiber.Handler) error {
	s.cfg = cfg
	s.db = db
	s.local = auth.NewLocalProvider(db)
	s.ldap = auth.NewLDAPProvider(cfg.Auth.LDAP, db)
	s.resolver = scope.NewResolver(db, scope.NewRegistry(db))
	s.auth = authService

	if limiter != nil {
		app.Post("/auth/login", limiter, s.Login)
	} else {
		app.Post("/auth/login", s.Login)
	}
	app.Get("/auth/me", auth.Middleware(cfg), s.Me)

	return nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	TOTPCode string `json:"totpCode"`
}

type loginResponse struct {
	Token string    `json:"token"`
	User  *userInfo `json:"user"`
}

type userInfo struct {
	ID          uint64           `json:"id"`
	Username    string           `json:"username"`
	FullName    string           `json:"fullName"`
	Role        string           `json:"role"`
	OfficerID   *string          `json:"officerId,omitempty"`
	Permissions []string         `json:"permissions,omitempty"`
	Scope       *scope.DataScope `json:"scope,omitempty"`
}

// Login authenticates a user with username and password and returns a signed
// bearer token. Directory-backed accounts are verified against LDAP, local
// accounts against their stored hash.
func (s *Service) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.BadRequest(c, "malformed request body")
	}
	if req.Username == "" || req.Password == "" {
		return handler.BadRequest(c, "username and password are required")
	}

	user, err := s.authenticate(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound),
			errors.Is(err, auth.ErrInvalidPassword):
			log.Info().Str("username", req.Username).Str("ip", c.IP()).Msg("failed login attempt")

			return handler.Error(c, fiber.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, auth.ErrUserAccountDisabled):
			return handler.Error(c, fiber.StatusForbidden, "account is disabled")
		case errors.Is(err, auth.ErrLDAPDisabled):
			return handler.Error(c, fiber.StatusForbidden, "directory authentication is not enabled")
		default:
			log.Error().Err(err).Str("username", req.Username).Msg("login failed")

			return handler.ServerError(c)
		}
	}

	if user.TOTPSecret != "" {
		if req.TOTPCode == "" {
			return handler.Error(c, fiber.StatusUnauthorized, "one-time code required")
		}
		if !auth.VerifyTOTP(req.TOTPCode, user.TOTPSecret) {
			log.Info().Str("username", req.Username).Msg("invalid one-time code")

			return handler.Error(c, fiber.StatusUnauthorized, "invalid one-time code")
		}
	}

	token, err := auth.IssueToken(&s.cfg.Auth, user)
	if err != nil {
		log.Error().Err(err).Msg("could not sign token")

		return handler.ServerError(c)
	}

	log.Info().Str("username", user.Username).Str("role", user.Role.Code).Msg("user logged in")

	return handler.Success(c, loginResponse{
		Token: token,
		User: &userInfo{
			ID:        user.ID,
			Username:  user.Username,
			FullName:  user.FullName,
			Role:      user.Role.Code,
			OfficerID: user.OfficerID,
		},
	})
}

func (s *Service) authenticate(username, password string) (*models.User, error) {
	var user models.User

	err := s.db.Preload("Role").Where("username = ?", username).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Unknown locally. When the directory is enabled, try it so
		// directory users get a shadow record on first login.
		if s.cfg.Auth.LDAP.Enabled {
			return s.ldap.Authenticate(username, password)
		}

		return nil, auth.ErrUserNotFound
	case err != nil:
		return nil, err
	}

	if user.AuthSource == models.AuthSourceLDAP {
		return s.ldap.Authenticate(username, password)
	}

	return s.local.Authenticate(username, password)
}

// Me returns the authenticated user's profile, effective permissions and
// resolved data scope.
func (s *Service) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromCtx(c)
	if !ok {
		return handler.Error(c, fiber.StatusUnauthorized, "authentication required")
	}

	var user models.User
	if err := s.db.Preload("Role").First(&user, principal.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return handler.Error(c, fiber.StatusUnauthorized, "account no longer exists")
		}
		log.Error().Err(err).Msg("could not load user")

		return handler.ServerError(c)
	}

	perms, err := s.auth.GetUserPermissions(user.ID)
	if err != nil {
		log.Error().Err(err).Msg("could not load permissions")

		return handler.ServerError(c)
	}

	sc, err := s.resolver.Resolve(scope.Principal{RoleCode: user.Role.Code, OfficerID: user.OfficerID})
	if err != nil {
		if errors.Is(err, scope.ErrOfficerProfileMissing) {
			return handler.Error(c, fiber.StatusForbidden, "officer profile not found for account")
		}
		log.Error().Err(err).Msg("could not resolve data scope")

		return handler.ServerError(c)
	}

	return handler.Success(c, userInfo{
		ID:          user.ID,
		Username:    user.Username,
		FullName:    user.FullName,
		Role:        user.Role.Code,
		OfficerID:   user.OfficerID,
		Permissions: perms,
		Scope:       sc,
	})
}
