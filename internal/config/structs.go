package config

import (
	"time"

	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Auth      Auth
	Title     string
	Webserver Webserver
}

// Webserver implement webserver settings.
type Webserver struct {
	CleanPath      bool   // use clean path middleware to allow multi slash requests
	DisableRecover bool   // disable recover middleware
	Domain         string // domain name for the webserver
	Port           int    // listening port for the webserver
	ShutDownTime   int    // wait time for shutdown
	URL            string // base url for the webserver
}

// Auth holds authentication settings.
type Auth struct {
	// JWTSecret signs the bearer tokens issued at login.
	JWTSecret string
	// TokenExpiry is the lifetime of an issued token.
	TokenExpiry time.Duration
	// LoginRateLimit is the number of login attempts allowed per window and IP.
	LoginRateLimit int
	// LoginRateWindow is the rate limit window.
	LoginRateWindow time.Duration
	// LDAP holds the optional force-directory settings for officer logins.
	LDAP LDAP
}

// LDAP holds LDAP/Active Directory settings for directory-backed logins.
type LDAP struct {
	Enabled      bool
	Host         string
	Port         int
	UseTLS       bool
	SkipVerify   bool
	BindDN       string
	BindPassword string
	BaseDN       string
	// UserFilter is the LDAP filter for finding users (e.g. "(uid={username})").
	// The {username} placeholder is replaced with the actual username.
	UserFilter    string
	UsernameAttr  string
	EmailAttr     string
	FullNameAttr  string
	DefaultRole   string // role code assigned to directory users on first login
}
