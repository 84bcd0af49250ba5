// Package visit implements the welfare visit endpoints.
package visit

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/auth"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/config"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/db/models"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/scope"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/web/handler"
)

// Service holds the dependencies of the visit handlers.
type Service struct {
	cfg  *config.Config
	db   *gorm.DB
	auth *auth.Service
}

// Handler is the exported handler instance.
var Handler = Service{}

// Init wires the visit routes.
func (s *Service) Init(app fiber.Router, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	s.cfg = cfg
	s.db = db
	s.auth = authService

	app.Get("/visits", auth.RequirePermission(authService, auth.PermVisitRead), s.List)
	app.Get("/visits/:id", auth.RequirePermission(authService, auth.PermVisitRead), s.Get)
	app.Post("/visits", auth.RequirePermission(authService, auth.PermVisitSchedule), s.Schedule)
	app.Put("/visits/:id/complete", auth.RequirePermission(authService, auth.PermVisitUpdate), s.Complete)
	app.Put("/visits/:id/cancel", auth.RequirePermission(authService, auth.PermVisitUpdate), s.Cancel)

	return nil
}

// List returns the visits visible under the caller's data scope.
func (s *Service) List(c *fiber.Ctx) error {
	page, pageSize := handler.PageParams(c)

	tx := s.db.Model(&models.Visit{})
	tx = scope.Apply(tx, scope.FromCtx(c), scope.HierarchyColumns)

	if v := c.Query("status"); v != "" {
		tx = tx.Where("status = ?", v)
	}
	if v := c.Query("citizenId"); v != "" {
		tx = tx.Where("citizen_id = ?", v)
	}
	if v := c.Query("officerId"); v != "" {
		tx = tx.Where("officer_id = ?", v)
	}
	if v := c.Query("beatId"); v != "" {
		tx = tx.Where("beat_id = ?", v)
	}
	if v := c.Query("policeStationId"); v != "" {
		tx = tx.Where("police_station_id = ?", v)
	}
	if v := c.Query("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			tx = tx.Where("scheduled_at >= ?", t)
		}
	}
	if v := c.Query("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			tx = tx.Where("scheduled_at < ?", t)
		}
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		log.Error().Err(err).Msg("could not count visits")

		return handler.ServerError(c)
	}

	var visits []models.Visit
	err := tx.Order("scheduled_at desc").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&visits).Error
	if err != nil {
		log.Error().Err(err).Msg("could not list visits")

		return handler.ServerError(c)
	}

	return handler.List(c, visits, handler.ListMeta{Page: page, PageSize: pageSize, Total: total})
}

// Get returns a single visit inside the caller's scope.
func (s *Service) Get(c *fiber.Ctx) error {
	tx := scope.Apply(s.db.Model(&models.Visit{}), scope.FromCtx(c), scope.HierarchyColumns)

	var visit models.Visit
	err := tx.Preload("Citizen").Preload("Officer").
		Where("visits.id = ?", c.Params("id")).First(&visit).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return handler.NotFound(c, "visit not found")
	case err != nil:
		log.Error().Err(err).Msg("could not load visit")

		return handler.ServerError(c)
	}

	return handler.Success(c, visit)
}

type scheduleRequest struct {
	CitizenID   string    `json:"citizenId" validate:"required"`
	OfficerID   string    `json:"officerId" validate:"required"`
	ScheduledAt time.Time `json:"scheduledAt" validate:"required"`
	Notes       string    `json:"notes" validate:"max=1000"`
}

// Schedule plans a welfare visit. The citizen must be inside the caller's
// scope; the visit inherits the citizen's jurisdiction placement so later
// listings and compliance reports filter it directly.
func (s *Service) Schedule(c *fiber.Ctx) error {
	var req scheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.BadRequest(c, "malformed request body")
	}
	if err := handler.Validate(&req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	tx := scope.Apply(s.db.Model(&models.Citizen{}), scope.FromCtx(c), scope.HierarchyColumns)

	var citizen models.Citizen
	err := tx.Where("citizens.id = ?", req.CitizenID).First(&citizen).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return handler.NotFound(c, "citizen not found")
	case err != nil:
		log.Error().Err(err).Msg("could not load citizen")

		return handler.ServerError(c)
	}

	var officer models.Officer
	err = s.db.Where("id = ?", req.OfficerID).First(&officer).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return handler.BadRequest(c, "officer does not exist")
	case err != nil:
		log.Error().Err(err).Msg("could not load officer")

		return handler.ServerError(c)
	}

	visit := models.Visit{
		CitizenID:       citizen.ID,
		OfficerID:       officer.ID,
		BeatID:          citizen.BeatID,
		PoliceStationID: citizen.PoliceStationID,
		SubDivisionID:   citizen.SubDivisionID,
		DistrictID:      citizen.DistrictID,
		RangeID:         citizen.RangeID,
		ScheduledAt:     req.ScheduledAt,
		Status:          models.VisitStatusScheduled,
		Notes:           req.Notes,
	}

	if err := s.db.Create(&visit).Error; err != nil {
		log.Error().Err(err).Msg("could not schedule visit")

		return handler.ServerError(c)
	}

	log.Info().Str("visit", visit.ID).Str("citizen", citizen.ID).Msg("visit scheduled")

	return handler.Created(c, visit)
}

type completeRequest struct {
	Notes string `json:"notes" validate:"max=1000"`
}

// Complete marks a scheduled visit as made and records the officer's notes.
func (s *Service) Complete(c *fiber.Ctx) error {
	visit, err := s.loadScoped(c)
	if err != nil {
		return s.loadError(c, err)
	}

	if visit.Status != models.VisitStatusScheduled {
		return handler.Conflict(c, "visit is not in the scheduled state")
	}

	var req completeRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.BadRequest(c, "malformed request body")
	}

	now := time.Now()
	visit.Status = models.VisitStatusCompleted
	visit.CompletedAt = &now
	if req.Notes != "" {
		visit.Notes = req.Notes
	}

	if err := s.db.Save(visit).Error; err != nil {
		log.Error().Err(err).Msg("could not complete visit")

		return handler.ServerError(c)
	}

	log.Info().Str("visit", visit.ID).Msg("visit completed")

	return handler.Success(c, visit)
}

// Cancel cancels a scheduled visit.
func (s *Service) Cancel(c *fiber.Ctx) error {
	visit, err := s.loadScoped(c)
	if err != nil {
		return s.loadError(c, err)
	}

	if visit.Status != models.VisitStatusScheduled {
		return handler.Conflict(c, "visit is not in the scheduled state")
	}

	visit.Status = models.VisitStatusCancelled

	if err := s.db.Save(visit).Error; err != nil {
		log.Error().Err(err).Msg("could not cancel visit")

		return handler.ServerError(c)
	}

	log.Info().Str("visit", visit.ID).Msg("visit cancelled")

	return handler.Success(c, visit)
}

// loadScoped fetches the visit named in the path, constrained to the caller's
// scope. Out-of-scope records read as not found.
func (s *Service) loadScoped(c *fiber.Ctx) (*models.Visit, error) {
	tx := scope.Apply(s.db.Model(&models.Visit{}), scope.FromCtx(c), scope.HierarchyColumns)

	var visit models.Visit
	if err := tx.Where("visits.id = ?", c.Params("id")).First(&visit).Error; err != nil {
		return nil, err
	}

	return &visit, nil
}

func (s *Service) loadError(c *fiber.Ctx, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return handler.NotFound(c, "visit not found")
	}
	log.Error().Err(err).Msg("could not load visit")

	return handler.ServerError(c)
}
