// Package officer implements the officer profile endpoints.
package officer

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

// Service holds the dependencies of the officer handlers.
type Service struct {
	cfg  *config.Config
	db   *gorm.DB
	auth *auth.Service
}

// Handler is the exported handler instance.
var Handler = Service{}

// Init wires the officer routes.
func (s *Service) Init(app fiber.Router, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	s.cfg = cfg
	s.db = db
	s.auth = authService

	app.Get("/officers", auth.RequirePermission(authService, auth.PermOfficerRead), s.List)
	app.Get("/officers/:id", auth.RequirePermission(authService, auth.PermOfficerRead), s.Get)
	app.Post("/officers", auth.RequirePermission(authService, auth.PermOfficerCreate), s.Create)
	app.Put("/officers/:id", auth.RequirePermission(authService, auth.PermOfficerUpdate), s.Update)
	app.Post("/officers/:id/assign-beat", auth.RequirePermission(authService, auth.PermOfficerUpdate), s.AssignBeat)
	app.Delete("/officers/:id", auth.RequirePermission(authService, auth.PermOfficerDelete), s.Delete)

	return nil
}

// List returns the officers visible under the caller's data scope.
func (s *Service) List(c *fiber.Ctx) error {
	page, pageSize := handler.PageParams(c)

	tx := s.db.Model(&models.Officer{}).Preload("Designation")
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
	if v := c.Query("search"); v != "" {
		pattern := "%" + v + "%"
		tx = tx.Where("name LIKE ? OR badge_number LIKE ?", pattern, pattern)
	}
	if v := c.Query("active"); v != "" {
		tx = tx.Where("active = ?", v == "true")
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		log.Error().Err(err).Msg("could not count officers")

		return handler.ServerError(c)
	}

	var officers []models.Officer
	err := tx.Order("badge_number").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&officers).Error
	if err != nil {
		log.Error().Err(err).Msg("could not list officers")

		return handler.ServerError(c)
	}

	return handler.List(c, officers, handler.ListMeta{Page: page, PageSize: pageSize, Total: total})
}

// Get returns a single officer inside the caller's scope.
func (s *Service) Get(c *fiber.Ctx) error {
	tx := scope.Apply(s.db.Model(&models.Officer{}), scope.FromCtx(c), scope.HierarchyColumns)

	var officer models.Officer
	err := tx.Preload("Designation").Where("officers.id = ?", c.Params("id")).First(&officer).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return handler.NotFound(c, "officer not found")
	case err != nil:
		log.Error().Err(err).Msg("could not load officer")

		return handler.ServerError(c)
	}

	return handler.Success(c, officer)
}

type officerRequest struct {
	BadgeNumber     string  `json:"badgeNumber" validate:"required,max=30"`
	Name            string  `json:"name" validate:"required,max=150"`
	Phone           string  `json:"phone" validate:"max=20"`
	DesignationID   uint    `json:"designationId"`
	RangeID         *string `json:"rangeId"`
	DistrictID      *string `json:"districtId"`
	SubDivisionID   *string `json:"subDivisionId"`
	PoliceStationID *string `json:"policeStationId"`
	BeatID          *string `json:"beatId"`
	Active          *bool   `json:"active"`
}

// Create registers an officer profile with its jurisdictional posting.
func (s *Service) Create(c *fiber.Ctx) error {
	var req officerRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.BadRequest(c, "malformed request body")
	}
	if err := handler.Validate(&req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	officer := models.Officer{
		BadgeNumber:     req.BadgeNumber,
		Name:            req.Name,
		Phone:           req.Phone,
		DesignationID:   req.DesignationID,
		RangeID:         req.RangeID,
		DistrictID:      req.DistrictID,
		SubDivisionID:   req.SubDivisionID,
		PoliceStationID: req.PoliceStationID,
		BeatID:          req.BeatID,
		Active:          true,
	}
	if req.Active != nil {
		officer.Active = *req.Active
	}

	if err := s.db.Create(&officer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return handler.Conflict(c, "badge number already exists")
		}
		log.Error().Err(err).Msg("could not create officer")

		return handler.ServerError(c)
	}

	log.Info().Str("badge", officer.BadgeNumber).Msg("officer created")

	return handler.Created(c, officer)
}

// Update edits an officer profile and posting.
func (s *Service) Update(c *fiber.Ctx) error {
	var officer models.Officer
	err := s.db.Where("id = ?", c.Params("id")).First(&officer).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return handler.NotFound(c, "officer not found")
	case err != nil:
		log.Error().Err(err).Msg("could not load officer")

		return handler.ServerError(c)
	}

	var req officerRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.BadRequest(c, "malformed request body")
	}
	if err := handler.Validate(&req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	officer.BadgeNumber = req.BadgeNumber
	officer.Name = req.Name
	officer.Phone = req.Phone
	officer.DesignationID = req.DesignationID
	officer.RangeID = req.RangeID
	officer.DistrictID = req.DistrictID
	officer.SubDivisionID = req.SubDivisionID
	officer.PoliceStationID = req.PoliceStationID
	officer.BeatID = req.BeatID
	if req.Active != nil {
		officer.Active = *req.Active
	}

	if err := s.db.Save(&officer).Error; err != nil {
		log.Error().Err(err).Msg("could not update officer")

		return handler.ServerError(c)
	}

	return handler.Success(c, officer)
}

type assignBeatRequest struct {
	// BeatID is the beat to assign, or null to unassign.
	BeatID *string `json:"beatId"`
}

// AssignBeat sets or clears an officer's beat. Assigning a beat also refreshes
// the officer's station, sub-division, district and range from the beat so a
// transferred officer's scope follows the new posting.
func (s *Service) AssignBeat(c *fiber.Ctx) error {
	var officer models.Officer
	err := s.db.Where("id = ?", c.Params("id")).First(&officer).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return handler.NotFound(c, "officer not found")
	case err != nil:
		log.Error().Err(err).Msg("could not load officer")

		return handler.ServerError(c)
	}

	var req assignBeatRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.BadRequest(c, "malformed request body")
	}

	if req.BeatID == nil {
		officer.BeatID = nil
	} else {
		var beat models.Beat
		err := s.db.Where("id = ?", *req.BeatID).First(&beat).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return handler.BadRequest(c, "beat does not exist")
		case err != nil:
			log.Error().Err(err).Msg("could not load beat")

			return handler.ServerError(c)
		}

		officer.BeatID = &beat.ID
		officer.PoliceStationID = &beat.PoliceStationID
		officer.SubDivisionID = &beat.SubDivisionID
		officer.DistrictID = &beat.DistrictID
		officer.RangeID = &beat.RangeID
	}

	if err := s.db.Save(&officer).Error; err != nil {
		log.Error().Err(err).Msg("could not assign beat")

		return handler.ServerError(c)
	}

	log.Info().Str("badge", officer.BadgeNumber).Msg("officer beat assignment changed")

	return handler.Success(c, officer)
}

// Delete soft-deletes an officer profile. Linked user accounts keep working
// until deactivated, but resolve to an empty jurisdiction.
func (s *Service) Delete(c *fiber.Ctx) error {
	var officer models.Officer
	err := s.db.Where("id = ?", c.Params("id")).First(&officer).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return handler.NotFound(c, "officer not found")
	case err != nil:
		log.Error().Err(err).Msg("could not load officer")

		return handler.ServerError(c)
	}

	if err := s.db.Delete(&officer).Error; err != nil {
		log.Error().Err(err).Msg("could not delete officer")

		return handler.ServerError(c)
	}

	log.Info().Str("badge", officer.BadgeNumber).Msg("officer deleted")

	return handler.Success(c, fiber.Map{"deleted": true})
}
