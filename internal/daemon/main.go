// Package daemon constructs the application: database, migrations, seed data
// and the web service.
package daemon

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/config"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/db/dsn"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/db/models"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/web"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start starts the Daemon's web service and blocks until shutdown.
func (d *Daemon) Start() error {
	addr := fmt.Sprintf(":%d", d.cfg.Webserver.Port)

	go d.webService.WaitShutdown()

	return d.webService.Start(addr)
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	var dbDriver gorm.Dialector

	switch cfg.DB.GormEngine {
	case "postgres":
		dbDriver = gormpostgres.Open(dsn.Create(cfg))
	case "sqlite":
		dbDriver = sqlite.Open(dsn.Create(cfg))
	default: // mysql
		dbDriver = gormmysql.Open(dsn.Create(cfg))
	}

	db, err := gorm.Open(dbDriver, &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	if err = db.AutoMigrate(
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.User{},
		&models.Designation{},
		&models.Range{},
		&models.District{},
		&models.SubDivision{},
		&models.PoliceStation{},
		&models.Beat{},
		&models.Officer{},
		&models.Citizen{},
		&models.Visit{},
		&models.SOSAlert{},
		&models.AuditLog{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	seed(cfg, db)

	return &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, db),
	}
}
