// Package beat implements the beat endpoints. Listings are narrowed to the
// caller's jurisdiction; management is gated behind the masters permission.
package beat

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

// Service holds the dependencies of the beat handlers.
type Service struct {
	cfg  *config.Config
	db   *gorm.DB
	auth *auth.Service
}

// Handler is the exported handler instance.
var Handler = Service{}

// Init wires the beat routes.
func (s *Service) Init(app fiber.Router, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	s.cfg = cfg
	s.db = db
	s.auth = authService

	app.Get("/beats", auth.RequireAnyPermission(authService, auth.PermOfficerRead, auth.PermAdminMasters), s.List)
	app.Get("/beats/:id", auth.RequireAnyPermission(authService, auth.PermOfficerRead, auth.PermAdminMasters), s.Get)
	app.Post("/beats", auth.RequirePermission(authService, auth.PermAdminMasters), s.Create)
	app.Put("/beats/:id", auth.RequirePermission(authService, auth.PermAdminMasters), s.Update)
	app.Delete("/beats/:id", auth.RequirePermission(authService, auth.PermAdminMasters), s.Delete)

	return nil
}

// List returns the beats visible under the caller's data scope, optionally
// narrowed further by hierarchy and search query parameters. Caller filters
// can only narrow the scoped set, never widen it.
func (s *Service) List(c *fiber.Ctx) error {
	page, pageSize := handler.PageParams(c)

	tx := s.db.Model(&models.Beat{})
	tx = scope.Apply(tx, scope.FromCtx(c), scope.BeatColumns)

	if v := c.Query("policeStationId"); v != "" {
		tx = tx.Where("police_station_id = ?", v)
	}
	if v := c.Query("subDivisionId"); v != "" {
		tx = tx.Where("sub_division_id = ?", v)
	}
	if v := c.Query("districtId"); v != "" {
		tx = tx.Where("district_id = ?", v)
	}
	if v := c.Query("rangeId"); v != "" {
		tx = tx.Where("range_id = ?", v)
	}
	if v := c.Query("search"); v != "" {
		pattern := "%" + v + "%"
		tx = tx.Where("name LIKE ? OR code LIKE ?", pattern, pattern)
	}
	if v := c.Query("active"); v != "" {
		tx = tx.Where("active = ?", v == "true")
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		log.Error().Err(err).Msg("could not count beats")

		return handler.ServerError(c)
	}

	var beats []models.Beat
	err := tx.Order("code").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&beats).Error
	if err != nil {
		log.Error().Err(err).Msg("could not list beats")

		return handler.ServerError(c)
	}

	return handler.List(c, beats, handler.ListMeta{Page: page, PageSize: pageSize, Total: total})
}

// Get returns a single beat, provided it falls inside the caller's scope.
func (s *Service) Get(c *fiber.Ctx) error {
	tx := scope.Apply(s.db.Model(&models.Beat{}), scope.FromCtx(c), scope.BeatColumns)

	var beat models.Beat
	err := tx.Preload("PoliceStation").Where("beats.id = ?", c.Params("id")).First(&beat).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return handler.NotFound(c, "beat not found")
	case err != nil:
		log.Error().Err(err).Msg("could not load beat")

		return handler.ServerError(c)
	}

	return handler.Success(c, beat)
}

type beatRequest struct {
	Code            string `json:"code" validate:"required,max=30"`
	Name            string `json:"name" validate:"required,max=150"`
	BeatNumber      string `json:"beatNumber" validate:"max=30"`
	PoliceStationID string `json:"policeStationId" validate:"required"`
	Description     string `json:"description" validate:"max=255"`
	Active          *bool  `json:"active"`
}

// Create registers a new beat under a police station. The ancestor ids are
// denormalized from the station so scoped listings need no joins.
func (s *Service) Create(c *fiber.Ctx) error {
	var req beatRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.BadRequest(c, "malformed request body")
	}
	if err := handler.Validate(&req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	station, err := s.loadStation(req.PoliceStationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return handler.BadRequest(c, "police station does not exist")
		}
		log.Error().Err(err).Msg("could not load police station")

		return handler.ServerError(c)
	}

	beat := models.Beat{
		Code:            req.Code,
		Name:            req.Name,
		BeatNumber:      req.BeatNumber,
		PoliceStationID: station.ID,
		SubDivisionID:   station.SubDivisionID,
		DistrictID:      station.SubDivision.DistrictID,
		RangeID:         station.SubDivision.District.RangeID,
		Description:     req.Description,
		Active:          true,
	}
	if req.Active != nil {
		beat.Active = *req.Active
	}

	if err := s.db.Create(&beat).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return handler.Conflict(c, "beat code already exists")
		}
		log.Error().Err(err).Msg("could not create beat")

		return handler.ServerError(c)
	}

	log.Info().Str("beat", beat.Code).Msg("beat created")

	return handler.Created(c, beat)
}

// Update edits a beat. Re-parenting under a different station refreshes the
// denormalized ancestor ids.
func (s *Service) Update(c *fiber.Ctx) error {
	var beat models.Beat
	err := s.db.Where("id = ?", c.Params("id")).First(&beat).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return handler.NotFound(c, "beat not found")
	case err != nil:
		log.Error().Err(err).Msg("could not load beat")

		return handler.ServerError(c)
	}

	var req beatRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.BadRequest(c, "malformed request body")
	}
	if err := handler.Validate(&req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	beat.Code = req.Code
	beat.Name = req.Name
	beat.BeatNumber = req.BeatNumber
	beat.Description = req.Description
	if req.Active != nil {
		beat.Active = *req.Active
	}

	if req.PoliceStationID != beat.PoliceStationID {
		station, err := s.loadStation(req.PoliceStationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return handler.BadRequest(c, "police station does not exist")
			}
			log.Error().Err(err).Msg("could not load police station")

			return handler.ServerError(c)
		}

		beat.PoliceStationID = station.ID
		beat.SubDivisionID = station.SubDivisionID
		beat.DistrictID = station.SubDivision.DistrictID
		beat.RangeID = station.SubDivision.District.RangeID
	}

	if err := s.db.Save(&beat).Error; err != nil {
		log.Error().Err(err).Msg("could not update beat")

		return handler.ServerError(c)
	}

	return handler.Success(c, beat)
}

// Delete removes a beat. Beats still covering officers or citizens cannot be
// removed.
func (s *Service) Delete(c *fiber.Ctx) error {
	id := c.Params("id")

	var count int64
	if err := s.db.Model(&models.Citizen{}).Where("beat_id = ?", id).Count(&count).Error; err != nil {
		log.Error().Err(err).Msg("could not check beat usage")

		return handler.ServerError(c)
	}
	if count > 0 {
		return handler.Conflict(c, "beat still has citizens assigned")
	}

	if err := s.db.Model(&models.Officer{}).Where("beat_id = ?", id).Count(&count).Error; err != nil {
		log.Error().Err(err).Msg("could not check beat usage")

		return handler.ServerError(c)
	}
	if count > 0 {
		return handler.Conflict(c, "beat still has officers assigned")
	}

	res := s.db.Where("id = ?", id).Delete(&models.Beat{})
	if res.Error != nil {
		log.Error().Err(res.Error).Msg("could not delete beat")

		return handler.ServerError(c)
	}
	if res.RowsAffected == 0 {
		return handler.NotFound(c, "beat not found")
	}

	log.Info().Str("beat", id).Msg("beat deleted")

	return handler.Success(c, fiber.Map{"deleted": true})
}

func (s *Service) loadStation(id string) (*models.PoliceStation, error) {
	var station models.PoliceStation

	err := s.db.Preload("SubDivision.District").Where("id = ?", id).First(&station).Error
	if err != nil {
		return nil, err
	}

	return &station, nil
}
