// Package designation implements the officer rank master data endpoints.
package designation

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/auth"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/config"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/db/models"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/web/handler"
)

// Service holds the dependencies of the designation handlers.
type Service struct {
	cfg  *config.Config
	db   *gorm.DB
	auth *auth.Service
}

// Handler is the exported handler instance.
var Handler = Service{}

// Init wires the designation routes.
func (s *Service) Init(app fiber.Router, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	s.cfg = cfg
	s.db = db
	s.auth = authService

	read := auth.RequireAnyPermission(authService, auth.PermOfficerRead, auth.PermAdminMasters)
	manage := auth.RequirePermission(authService, auth.PermAdminMasters)

	app.Get("/designations", read, s.List)
	app.Post("/designations", manage, s.Create)
	app.Put("/designations/:id", manage, s.Update)
	app.Delete("/designations/:id", manage, s.Delete)

	return nil
}

// List returns all designations ordered from senior to junior.
func (s *Service) List(c *fiber.Ctx) error {
	var designations []models.Designation
	if err := s.db.Order("rank_order").Find(&designations).Error; err != nil {
		log.Error().Err(err).Msg("could not list designations")

		return handler.ServerError(c)
	}

	return handler.Success(c, designations)
}

type designationRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	RankOrder int    `json:"rankOrder"`
	Active    *bool  `json:"active"`
}

// Create adds a designation.
func (s *Service) Create(c *fiber.Ctx) error {
	var req designationRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.BadRequest(c, "malformed request body")
	}
	if err := handler.Validate(&req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	designation := models.Designation{Name: req.Name, RankOrder: req.RankOrder, Active: true}
	if req.Active != nil {
		designation.Active = *req.Active
	}

	if err := s.db.Create(&designation).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return handler.Conflict(c, "designation already exists")
		}
		log.Error().Err(err).Msg("could not create designation")

		return handler.ServerError(c)
	}

	return handler.Created(c, designation)
}

// Update edits a designation.
func (s *Service) Update(c *fiber.Ctx) error {
	var designation models.Designation
	err := s.db.Where("id = ?", c.Params("id")).First(&designation).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return handler.NotFound(c, "designation not found")
	case err != nil:
		log.Error().Err(err).Msg("could not load designation")

		return handler.ServerError(c)
	}

	var req designationRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.BadRequest(c, "malformed request body")
	}
	if err := handler.Validate(&req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	designation.Name = req.Name
	designation.RankOrder = req.RankOrder
	if req.Active != nil {
		designation.Active = *req.Active
	}

	if err := s.db.Save(&designation).Error; err != nil {
		log.Error().Err(err).Msg("could not update designation")

		return handler.ServerError(c)
	}

	return handler.Success(c, designation)
}

// Delete removes a designation that no officer references.
func (s *Service) Delete(c *fiber.Ctx) error {
	id := c.Params("id")

	var count int64
	if err := s.db.Model(&models.Officer{}).Where("designation_id = ?", id).Count(&count).Error; err != nil {
		log.Error().Err(err).Msg("could not check designation usage")

		return handler.ServerError(c)
	}
	if count > 0 {
		return handler.Conflict(c, "designation is still assigned to officers")
	}

	res := s.db.Where("id = ?", id).Delete(&models.Designation{})
	if res.Error != nil {
		log.Error().Err(res.Error).Msg("could not delete designation")

		return handler.ServerError(c)
	}
	if res.RowsAffected == 0 {
		return handler.NotFound(c, "designation not found")
	}

	return handler.Success(c, fiber.Map{"deleted": true})
}
