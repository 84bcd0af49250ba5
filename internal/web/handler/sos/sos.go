// Package sos implements the SOS alert endpoints.
package sos

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/auth"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/config"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/db/models"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/scope"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/uniuri"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/web/handler"
)

// codeLength is the length of the human-relayable alert code.
const codeLength = 8

// Service holds the dependencies of the SOS handlers.
type Service struct {
	cfg  *config.Config
	db   *gorm.DB
	auth *auth.Service
}

// Handler is the exported handler instance.
var Handler = Service{}

// Init wires the SOS routes.
func (s *Service) Init(app fiber.Router, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	s.cfg = cfg
	s.db = db
	s.auth = authService

	app.Get("/sos", auth.RequirePermission(authService, auth.PermSOSRead), s.List)
	app.Get("/sos/:id", auth.RequirePermission(authService, auth.PermSOSRead), s.Get)
	app.Post("/sos", auth.RequirePermission(authService, auth.PermSOSRaise), s.Raise)
	app.Put("/sos/:id/acknowledge", auth.RequirePermission(authService, auth.PermSOSUpdate), s.Acknowledge)
	app.Put("/sos/:id/resolve", auth.RequirePermission(authService, auth.PermSOSUpdate), s.Resolve)

	return nil
}

// List returns the alerts visible under the caller's data scope, newest first.
func (s *Service) List(c *fiber.Ctx) error {
	page, pageSize := handler.PageParams(c)

	tx := s.db.Model(&models.SOSAlert{})
	tx = scope.Apply(tx, scope.FromCtx(c), scope.HierarchyColumns)

	if v := c.Query("status"); v != "" {
		tx = tx.Where("status = ?", v)
	}
	if v := c.Query("citizenId"); v != "" {
		tx = tx.Where("citizen_id = ?", v)
	}
	if v := c.Query("policeStationId"); v != "" {
		tx = tx.Where("police_station_id = ?", v)
	}
	if v := c.Query("beatId"); v != "" {
		tx = tx.Where("beat_id = ?", v)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		log.Error().Err(err).Msg("could not count alerts")

		return handler.ServerError(c)
	}

	var alerts []models.SOSAlert
	err := tx.Order("raised_at desc").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&alerts).Error
	if err != nil {
		log.Error().Err(err).Msg("could not list alerts")

		return handler.ServerError(c)
	}

	return handler.List(c, alerts, handler.ListMeta{Page: page, PageSize: pageSize, Total: total})
}

// Get returns a single alert inside the caller's scope.
func (s *Service) Get(c *fiber.Ctx) error {
	tx := scope.Apply(s.db.Model(&models.SOSAlert{}), scope.FromCtx(c), scope.HierarchyColumns)

	var alert models.SOSAlert
	err := tx.Preload("Citizen").Where("sos_alerts.id = ?", c.Params("id")).First(&alert).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return handler.NotFound(c, "alert not found")
	case err != nil:
		log.Error().Err(err).Msg("could not load alert")

		return handler.ServerError(c)
	}

	return handler.Success(c, alert)
}

type raiseRequest struct {
	CitizenID string   `json:"citizenId" validate:"required"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Message   string   `json:"message" validate:"max=500"`
}

// Raise opens a new alert for a citizen. The alert inherits the citizen's
// jurisdiction placement and gets a short random code that can be read out
// over a phone line.
func (s *Service) Raise(c *fiber.Ctx) error {
	var req raiseRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.BadRequest(c, "malformed request body")
	}
	if err := handler.Validate(&req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	var citizen models.Citizen
	err := s.db.Where("id = ?", req.CitizenID).First(&citizen).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return handler.BadRequest(c, "citizen does not exist")
	case err != nil:
		log.Error().Err(err).Msg("could not load citizen")

		return handler.ServerError(c)
	}

	alert := models.SOSAlert{
		Code:            strings.ToUpper(uniuri.NewLen(codeLength)),
		CitizenID:       citizen.ID,
		BeatID:          citizen.BeatID,
		PoliceStationID: citizen.PoliceStationID,
		SubDivisionID:   citizen.SubDivisionID,
		DistrictID:      citizen.DistrictID,
		RangeID:         citizen.RangeID,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		Message:         req.Message,
		Status:          models.SOSStatusOpen,
		RaisedAt:        time.Now(),
	}

	if err := s.db.Create(&alert).Error; err != nil {
		log.Error().Err(err).Msg("could not raise alert")

		return handler.ServerError(c)
	}

	log.Warn().
		Str("alert", alert.ID).
		Str("code", alert.Code).
		Str("citizen", citizen.ID).
		Msg("sos alert raised")

	return handler.Created(c, alert)
}

// Acknowledge marks an open alert as being responded to.
func (s *Service) Acknowledge(c *fiber.Ctx) error {
	alert, err := s.loadScoped(c)
	if err != nil {
		return s.loadError(c, err)
	}

	if alert.Status != models.SOSStatusOpen {
		return handler.Conflict(c, "alert is not open")
	}

	now := time.Now()
	alert.Status = models.SOSStatusAcknowledged
	alert.AcknowledgedAt = &now

	if err := s.db.Save(alert).Error; err != nil {
		log.Error().Err(err).Msg("could not acknowledge alert")

		return handler.ServerError(c)
	}

	log.Info().Str("alert", alert.ID).Msg("sos alert acknowledged")

	return handler.Success(c, alert)
}

type resolveRequest struct {
	Message string `json:"message" validate:"max=500"`
}

// Resolve closes an alert and records the resolving user.
func (s *Service) Resolve(c *fiber.Ctx) error {
	alert, err := s.loadScoped(c)
	if err != nil {
		return s.loadError(c, err)
	}

	if alert.Status == models.SOSStatusResolved {
		return handler.Conflict(c, "alert is already resolved")
	}

	var req resolveRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.BadRequest(c, "malformed request body")
	}

	now := time.Now()
	alert.Status = models.SOSStatusResolved
	alert.ResolvedAt = &now
	if req.Message != "" {
		alert.Message = req.Message
	}
	if principal, ok := auth.PrincipalFromCtx(c); ok {
		alert.ResolvedByID = &principal.UserID
	}

	if err := s.db.Save(alert).Error; err != nil {
		log.Error().Err(err).Msg("could not resolve alert")

		return handler.ServerError(c)
	}

	log.Info().Str("alert", alert.ID).Msg("sos alert resolved")

	return handler.Success(c, alert)
}

// loadScoped fetches the alert named in the path, constrained to the caller's
// scope. Out-of-scope records read as not found.
func (s *Service) loadScoped(c *fiber.Ctx) (*models.SOSAlert, error) {
	tx := scope.Apply(s.db.Model(&models.SOSAlert{}), scope.FromCtx(c), scope.HierarchyColumns)

	var alert models.SOSAlert
	if err := tx.Where("sos_alerts.id = ?", c.Params("id")).First(&alert).Error; err != nil {
		return nil, err
	}

	return &alert, nil
}

func (s *Service) loadError(c *fiber.Ctx, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return handler.NotFound(c, "alert not found")
	}
	log.Error().Err(err).Msg("could not load alert")

	return handler.ServerError(c)
}
