// Package audit records mutating API calls and serves the audit trail.
package audit

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/auth"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/config"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/db/models"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/web/handler"
)

// Service holds the dependencies of the audit handlers.
type Service struct {
	cfg  *config.Config
	db   *gorm.DB
	auth *auth.Service
}

// Handler is the exported handler instance.
var Handler = Service{}

// Init wires the audit trail routes.
func (s *Service) Init(app fiber.Router, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	s.cfg = cfg
	s.db = db
	s.auth = authService

	app.Get("/audit", auth.RequirePermission(authService, auth.PermAuditView), s.List)

	return nil
}

// Middleware records every mutating request after it completes. Reads are not
// audited. Failures to write the trail are logged, never surfaced to the
// caller.
func Middleware(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodGet || c.Method() == fiber.MethodHead {
			return c.Next()
		}

		err := c.Next()

		entry := models.AuditLog{
			Action:   c.Method(),
			Resource: c.Path(),
			Status:   c.Response().StatusCode(),
			IP:       c.IP(),
		}
		if principal, ok := auth.PrincipalFromCtx(c); ok {
			entry.UserID = principal.UserID
			entry.Username = principal.Username
		}

		if dbErr := db.Create(&entry).Error; dbErr != nil {
			log.Error().Err(dbErr).Msg("could not write audit entry")
		}

		return err
	}
}

// List returns audit entries, newest first, with optional filters.
func (s *Service) List(c *fiber.Ctx) error {
	page, pageSize := handler.PageParams(c)

	tx := s.db.Model(&models.AuditLog{})

	if v := c.Query("username"); v != "" {
		tx = tx.Where("username = ?", v)
	}
	if v := c.Query("action"); v != "" {
		tx = tx.Where("action = ?", v)
	}
	if v := c.Query("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			tx = tx.Where("created_at >= ?", t)
		}
	}
	if v := c.Query("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			tx = tx.Where("created_at < ?", t)
		}
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		log.Error().Err(err).Msg("could not count audit entries")

		return handler.ServerError(c)
	}

	var entries []models.AuditLog
	err := tx.Order("id desc").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&entries).Error
	if err != nil {
		log.Error().Err(err).Msg("could not list audit entries")

		return handler.ServerError(c)
	}

	return handler.List(c, entries, handler.ListMeta{Page: page, PageSize: pageSize, Total: total})
}
