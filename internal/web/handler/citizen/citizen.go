// Package citizen implements the senior citizen registration endpoints.
package citizen

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

// Service holds the dependencies of the citizen handlers.
type Service struct {
	cfg  *config.Config
	db   *gorm.DB
	auth *auth.Service
}

// Handler is the exported handler instance.
var Handler = Service{}

// Init wires the citizen routes.
func (s *Service) Init(app fiber.Router, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	s.cfg = cfg
	s.db = db
	s.auth = authService

	app.Get("/citizens", auth.RequirePermission(authService, auth.PermCitizenRead), s.List)
	app.Get("/citizens/:id", auth.RequirePermission(authService, auth.PermCitizenRead), s.Get)
	app.Post("/citizens", auth.RequirePermission(authService, auth.PermCitizenCreate), s.Create)
	app.Put("/citizens/:id", auth.RequirePermission(authService, auth.PermCitizenUpdate), s.Update)
	app.Put("/citizens/:id/officer", auth.RequirePermission(authService, auth.PermCitizenUpdate), s.AssignOfficer)
	app.Put("/citizens/:id/verify", auth.RequirePermission(authService, auth.PermCitizenUpdate), s.Verify)
	app.Delete("/citizens/:id", auth.RequirePermission(authService, auth.PermCitizenDelete), s.Delete)

	return nil
}

// List returns the citizens visible under the caller's data scope.
func (s *Service) List(c *fiber.Ctx) error {
	page, pageSize := handler.PageParams(c)

	tx := s.db.Model(&models.Citizen{})
	tx = scope.Apply(tx, scope.FromCtx(c), scope.HierarchyColumns)

	if v := c.Query("beatId"); v != "" {
		tx = tx.Where("beat_id = ?", v)
	}
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
	if v := c.Query("status"); v != "" {
		tx = tx.Where("status = ?", v)
	}
	if v := c.Query("livesAlone"); v != "" {
		tx = tx.Where("lives_alone = ?", v == "true")
	}
	if v := c.Query("search"); v != "" {
		pattern := "%" + v + "%"
		tx = tx.Where("name LIKE ? OR phone LIKE ?", pattern, pattern)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		log.Error().Err(err).Msg("could not count citizens")

		return handler.ServerError(c)
	}

	var citizens []models.Citizen
	err := tx.Order("name").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&citizens).Error
	if err != nil {
		log.Error().Err(err).Msg("could not list citizens")

		return handler.ServerError(c)
	}

	return handler.List(c, citizens, handler.ListMeta{Page: page, PageSize: pageSize, Total: total})
}

// Get returns a single citizen inside the caller's scope.
func (s *Service) Get(c *fiber.Ctx) error {
	tx := scope.Apply(s.db.Model(&models.Citizen{}), scope.FromCtx(c), scope.HierarchyColumns)

	var citizen models.Citizen
	err := tx.Preload("AssignedOfficer").Where("citizens.id = ?", c.Params("id")).First(&citizen).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return handler.NotFound(c, "citizen not found")
	case err != nil:
		log.Error().Err(err).Msg("could not load citizen")

		return handler.ServerError(c)
	}

	return handler.Success(c, citizen)
}

type citizenRequest struct {
	Name             string     `json:"name" validate:"required,max=150"`
	Phone            string     `json:"phone" validate:"required,max=20"`
	DateOfBirth      *time.Time `json:"dateOfBirth"`
	Gender           string     `json:"gender" validate:"max=20"`
	Address          string     `json:"address" validate:"max=255"`
	LivesAlone       bool       `json:"livesAlone"`
	EmergencyContact string     `json:"emergencyContact" validate:"max=20"`
	BeatID           *string    `json:"beatId"`
}

// Create registers a senior citizen. When a beat is given, the full
// jurisdiction placement is denormalized from it. New registrations start in
// the pending state until verified in the field.
func (s *Service) Create(c *fiber.Ctx) error {
	var req citizenRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.BadRequest(c, "malformed request body")
	}
	if err := handler.Validate(&req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	citizen := models.Citizen{
		Name:             req.Name,
		Phone:            req.Phone,
		DateOfBirth:      req.DateOfBirth,
		Gender:           req.Gender,
		Address:          req.Address,
		LivesAlone:       req.LivesAlone,
		EmergencyContact: req.EmergencyContact,
		Status:           models.CitizenStatusPending,
	}

	if req.BeatID != nil {
		if err := s.placeInBeat(&citizen, *req.BeatID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return handler.BadRequest(c, "beat does not exist")
			}
			log.Error().Err(err).Msg("could not load beat")

			return handler.ServerError(c)
		}
	}

	if err := s.db.Create(&citizen).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return handler.Conflict(c, "phone number already registered")
		}
		log.Error().Err(err).Msg("could not create citizen")

		return handler.ServerError(c)
	}

	log.Info().Str("citizen", citizen.ID).Msg("citizen registered")

	return handler.Created(c, citizen)
}

// Update edits a citizen record. The record must be inside the caller's scope.
// Moving to a different beat refreshes the denormalized placement.
func (s *Service) Update(c *fiber.Ctx) error {
	citizen, err := s.loadScoped(c)
	if err != nil {
		return s.loadError(c, err)
	}

	var req citizenRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.BadRequest(c, "malformed request body")
	}
	if err := handler.Validate(&req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	citizen.Name = req.Name
	citizen.Phone = req.Phone
	citizen.DateOfBirth = req.DateOfBirth
	citizen.Gender = req.Gender
	citizen.Address = req.Address
	citizen.LivesAlone = req.LivesAlone
	citizen.EmergencyContact = req.EmergencyContact

	switch {
	case req.BeatID == nil:
		citizen.BeatID = nil
		citizen.PoliceStationID = nil
		citizen.SubDivisionID = nil
		citizen.DistrictID = nil
		citizen.RangeID = nil
	case citizen.BeatID == nil || *citizen.BeatID != *req.BeatID:
		if err := s.placeInBeat(citizen, *req.BeatID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return handler.BadRequest(c, "beat does not exist")
			}
			log.Error().Err(err).Msg("could not load beat")

			return handler.ServerError(c)
		}
	}

	if err := s.db.Save(citizen).Error; err != nil {
		log.Error().Err(err).Msg("could not update citizen")

		return handler.ServerError(c)
	}

	return handler.Success(c, citizen)
}

type assignOfficerRequest struct {
	// OfficerID is the officer to assign, or null to unassign.
	OfficerID *string `json:"officerId"`
}

// AssignOfficer sets or clears the beat officer responsible for the citizen.
func (s *Service) AssignOfficer(c *fiber.Ctx) error {
	citizen, err := s.loadScoped(c)
	if err != nil {
		return s.loadError(c, err)
	}

	var req assignOfficerRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.BadRequest(c, "malformed request body")
	}

	if req.OfficerID != nil {
		var officer models.Officer
		err := s.db.Where("id = ?", *req.OfficerID).First(&officer).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return handler.BadRequest(c, "officer does not exist")
		case err != nil:
			log.Error().Err(err).Msg("could not load officer")

			return handler.ServerError(c)
		}
	}

	citizen.AssignedOfficerID = req.OfficerID

	if err := s.db.Save(citizen).Error; err != nil {
		log.Error().Err(err).Msg("could not assign officer")

		return handler.ServerError(c)
	}

	return handler.Success(c, citizen)
}

// Verify marks a pending citizen as verified after a field check.
func (s *Service) Verify(c *fiber.Ctx) error {
	citizen, err := s.loadScoped(c)
	if err != nil {
		return s.loadError(c, err)
	}

	if citizen.Status == models.CitizenStatusVerified {
		return handler.Success(c, citizen)
	}

	citizen.Status = models.CitizenStatusVerified

	if err := s.db.Save(citizen).Error; err != nil {
		log.Error().Err(err).Msg("could not verify citizen")

		return handler.ServerError(c)
	}

	log.Info().Str("citizen", citizen.ID).Msg("citizen verified")

	return handler.Success(c, citizen)
}

// Delete soft-deletes a citizen record inside the caller's scope.
func (s *Service) Delete(c *fiber.Ctx) error {
	citizen, err := s.loadScoped(c)
	if err != nil {
		return s.loadError(c, err)
	}

	if err := s.db.Delete(citizen).Error; err != nil {
		log.Error().Err(err).Msg("could not delete citizen")

		return handler.ServerError(c)
	}

	log.Info().Str("citizen", citizen.ID).Msg("citizen deleted")

	return handler.Success(c, fiber.Map{"deleted": true})
}

// loadScoped fetches the citizen named in the path, constrained to the
// caller's scope. Out-of-scope records read as not found.
func (s *Service) loadScoped(c *fiber.Ctx) (*models.Citizen, error) {
	tx := scope.Apply(s.db.Model(&models.Citizen{}), scope.FromCtx(c), scope.HierarchyColumns)

	var citizen models.Citizen
	if err := tx.Where("citizens.id = ?", c.Params("id")).First(&citizen).Error; err != nil {
		return nil, err
	}

	return &citizen, nil
}

func (s *Service) loadError(c *fiber.Ctx, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return handler.NotFound(c, "citizen not found")
	}
	log.Error().Err(err).Msg("could not load citizen")

	return handler.ServerError(c)
}

// placeInBeat denormalizes the citizen's jurisdiction placement from a beat.
func (s *Service) placeInBeat(citizen *models.Citizen, beatID string) error {
	var beat models.Beat
	if err := s.db.Where("id = ?", beatID).First(&beat).Error; err != nil {
		return err
	}

	citizen.BeatID = &beat.ID
	citizen.PoliceStationID = &beat.PoliceStationID
	citizen.SubDivisionID = &beat.SubDivisionID
	citizen.DistrictID = &beat.DistrictID
	citizen.RangeID = &beat.RangeID

	return nil
}
