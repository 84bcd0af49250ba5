// Package geo implements the geographic hierarchy master data endpoints.
// The hierarchy tables themselves are administrative master data: listings
// are permission-gated but not jurisdiction-scoped.
package geo

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

// Service holds the dependencies of the geo handlers.
type Service struct {
	cfg  *config.Config
	db   *gorm.DB
	auth *auth.Service
}

// Handler is the exported handler instance.
var Handler = Service{}

// Init wires the hierarchy master data routes.
func (s *Service) Init(app fiber.Router, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	s.cfg = cfg
	s.db = db
	s.auth = authService

	read := auth.RequireAnyPermission(authService, auth.PermOfficerRead, auth.PermAdminMasters)
	manage := auth.RequirePermission(authService, auth.PermAdminMasters)

	app.Get("/ranges", read, s.ListRanges)
	app.Post("/ranges", manage, s.CreateRange)
	app.Put("/ranges/:id", manage, s.UpdateRange)

	app.Get("/districts", read, s.ListDistricts)
	app.Post("/districts", manage, s.CreateDistrict)
	app.Put("/districts/:id", manage, s.UpdateDistrict)

	app.Get("/subdivisions", read, s.ListSubDivisions)
	app.Post("/subdivisions", manage, s.CreateSubDivision)
	app.Put("/subdivisions/:id", manage, s.UpdateSubDivision)

	app.Get("/policestations", read, s.ListPoliceStations)
	app.Post("/policestations", manage, s.CreatePoliceStation)
	app.Put("/policestations/:id", manage, s.UpdatePoliceStation)

	return nil
}

type rangeRequest struct {
	Code   string `json:"code" validate:"required,max=30"`
	Name   string `json:"name" validate:"required,max=150"`
	Active *bool  `json:"active"`
}

// ListRanges returns all ranges.
func (s *Service) ListRanges(c *fiber.Ctx) error {
	var ranges []models.Range
	if err := s.db.Order("code").Find(&ranges).Error; err != nil {
		log.Error().Err(err).Msg("could not list ranges")

		return handler.ServerError(c)
	}

	return handler.Success(c, ranges)
}

// CreateRange adds a range to the hierarchy.
func (s *Service) CreateRange(c *fiber.Ctx) error {
	var req rangeRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.BadRequest(c, "malformed request body")
	}
	if err := handler.Validate(&req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	rng := models.Range{Code: req.Code, Name: req.Name, Active: true}
	if req.Active != nil {
		rng.Active = *req.Active
	}

	if err := s.db.Create(&rng).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return handler.Conflict(c, "range code already exists")
		}
		log.Error().Err(err).Msg("could not create range")

		return handler.ServerError(c)
	}

	return handler.Created(c, rng)
}

// UpdateRange edits a range.
func (s *Service) UpdateRange(c *fiber.Ctx) error {
	var rng models.Range
	err := s.db.Where("id = ?", c.Params("id")).First(&rng).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return handler.NotFound(c, "range not found")
	case err != nil:
		log.Error().Err(err).Msg("could not load range")

		return handler.ServerError(c)
	}

	var req rangeRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.BadRequest(c, "malformed request body")
	}
	if err := handler.Validate(&req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	rng.Code = req.Code
	rng.Name = req.Name
	if req.Active != nil {
		rng.Active = *req.Active
	}

	if err := s.db.Save(&rng).Error; err != nil {
		log.Error().Err(err).Msg("could not update range")

		return handler.ServerError(c)
	}

	return handler.Success(c, rng)
}

type districtRequest struct {
	Code    string `json:"code" validate:"required,max=30"`
	Name    string `json:"name" validate:"required,max=150"`
	RangeID string `json:"rangeId" validate:"required"`
	Active  *bool  `json:"active"`
}

// ListDistricts returns districts, optionally filtered by parent range.
func (s *Service) ListDistricts(c *fiber.Ctx) error {
	tx := s.db.Order("code")
	if v := c.Query("rangeId"); v != "" {
		tx = tx.Where("range_id = ?", v)
	}

	var districts []models.District
	if err := tx.Find(&districts).Error; err != nil {
		log.Error().Err(err).Msg("could not list districts")

		return handler.ServerError(c)
	}

	return handler.Success(c, districts)
}

// CreateDistrict adds a district under a range.
func (s *Service) CreateDistrict(c *fiber.Ctx) error {
	var req districtRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.BadRequest(c, "malformed request body")
	}
	if err := handler.Validate(&req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	if err := s.mustExist(&models.Range{}, req.RangeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return handler.BadRequest(c, "range does not exist")
		}
		log.Error().Err(err).Msg("could not check range")

		return handler.ServerError(c)
	}

	district := models.District{Code: req.Code, Name: req.Name, RangeID: req.RangeID, Active: true}
	if req.Active != nil {
		district.Active = *req.Active
	}

	if err := s.db.Create(&district).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return handler.Conflict(c, "district code already exists")
		}
		log.Error().Err(err).Msg("could not create district")

		return handler.ServerError(c)
	}

	return handler.Created(c, district)
}

// UpdateDistrict edits a district.
func (s *Service) UpdateDistrict(c *fiber.Ctx) error {
	var district models.District
	err := s.db.Where("id = ?", c.Params("id")).First(&district).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return handler.NotFound(c, "district not found")
	case err != nil:
		log.Error().Err(err).Msg("could not load district")

		return handler.ServerError(c)
	}

	var req districtRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.BadRequest(c, "malformed request body")
	}
	if err := handler.Validate(&req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	district.Code = req.Code
	district.Name = req.Name
	district.RangeID = req.RangeID
	if req.Active != nil {
		district.Active = *req.Active
	}

	if err := s.db.Save(&district).Error; err != nil {
		log.Error().Err(err).Msg("could not update district")

		return handler.ServerError(c)
	}

	return handler.Success(c, district)
}

type subDivisionRequest struct {
	Code       string `json:"code" validate:"required,max=30"`
	Name       string `json:"name" validate:"required,max=150"`
	DistrictID string `json:"districtId" validate:"required"`
	Active     *bool  `json:"active"`
}

// ListSubDivisions returns sub-divisions, optionally filtered by district.
func (s *Service) ListSubDivisions(c *fiber.Ctx) error {
	tx := s.db.Order("code")
	if v := c.Query("districtId"); v != "" {
		tx = tx.Where("district_id = ?", v)
	}

	var subDivisions []models.SubDivision
	if err := tx.Find(&subDivisions).Error; err != nil {
		log.Error().Err(err).Msg("could not list sub-divisions")

		return handler.ServerError(c)
	}

	return handler.Success(c, subDivisions)
}

// CreateSubDivision adds a sub-division under a district.
func (s *Service) CreateSubDivision(c *fiber.Ctx) error {
	var req subDivisionRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.BadRequest(c, "malformed request body")
	}
	if err := handler.Validate(&req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	if err := s.mustExist(&models.District{}, req.DistrictID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return handler.BadRequest(c, "district does not exist")
		}
		log.Error().Err(err).Msg("could not check district")

		return handler.ServerError(c)
	}

	subDivision := models.SubDivision{Code: req.Code, Name: req.Name, DistrictID: req.DistrictID, Active: true}
	if req.Active != nil {
		subDivision.Active = *req.Active
	}

	if err := s.db.Create(&subDivision).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return handler.Conflict(c, "sub-division code already exists")
		}
		log.Error().Err(err).Msg("could not create sub-division")

		return handler.ServerError(c)
	}

	return handler.Created(c, subDivision)
}

// UpdateSubDivision edits a sub-division.
func (s *Service) UpdateSubDivision(c *fiber.Ctx) error {
	var subDivision models.SubDivision
	err := s.db.Where("id = ?", c.Params("id")).First(&subDivision).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return handler.NotFound(c, "sub-division not found")
	case err != nil:
		log.Error().Err(err).Msg("could not load sub-division")

		return handler.ServerError(c)
	}

	var req subDivisionRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.BadRequest(c, "malformed request body")
	}
	if err := handler.Validate(&req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	subDivision.Code = req.Code
	subDivision.Name = req.Name
	subDivision.DistrictID = req.DistrictID
	if req.Active != nil {
		subDivision.Active = *req.Active
	}

	if err := s.db.Save(&subDivision).Error; err != nil {
		log.Error().Err(err).Msg("could not update sub-division")

		return handler.ServerError(c)
	}

	return handler.Success(c, subDivision)
}

type policeStationRequest struct {
	Code          string `json:"code" validate:"required,max=30"`
	Name          string `json:"name" validate:"required,max=150"`
	SubDivisionID string `json:"subDivisionId" validate:"required"`
	Address       string `json:"address" validate:"max=255"`
	Phone         string `json:"phone" validate:"max=20"`
	Active        *bool  `json:"active"`
}

// ListPoliceStations returns police stations, optionally filtered by
// sub-division.
func (s *Service) ListPoliceStations(c *fiber.Ctx) error {
	tx := s.db.Order("code")
	if v := c.Query("subDivisionId"); v != "" {
		tx = tx.Where("sub_division_id = ?", v)
	}

	var stations []models.PoliceStation
	if err := tx.Find(&stations).Error; err != nil {
		log.Error().Err(err).Msg("could not list police stations")

		return handler.ServerError(c)
	}

	return handler.Success(c, stations)
}

// CreatePoliceStation adds a police station under a sub-division.
func (s *Service) CreatePoliceStation(c *fiber.Ctx) error {
	var req policeStationRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.BadRequest(c, "malformed request body")
	}
	if err := handler.Validate(&req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	if err := s.mustExist(&models.SubDivision{}, req.SubDivisionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return handler.BadRequest(c, "sub-division does not exist")
		}
		log.Error().Err(err).Msg("could not check sub-division")

		return handler.ServerError(c)
	}

	station := models.PoliceStation{
		Code:          req.Code,
		Name:          req.Name,
		SubDivisionID: req.SubDivisionID,
		Address:       req.Address,
		Phone:         req.Phone,
		Active:        true,
	}
	if req.Active != nil {
		station.Active = *req.Active
	}

	if err := s.db.Create(&station).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return handler.Conflict(c, "police station code already exists")
		}
		log.Error().Err(err).Msg("could not create police station")

		return handler.ServerError(c)
	}

	return handler.Created(c, station)
}

// UpdatePoliceStation edits a police station.
func (s *Service) UpdatePoliceStation(c *fiber.Ctx) error {
	var station models.PoliceStation
	err := s.db.Where("id = ?", c.Params("id")).First(&station).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return handler.NotFound(c, "police station not found")
	case err != nil:
		log.Error().Err(err).Msg("could not load police station")

		return handler.ServerError(c)
	}

	var req policeStationRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.BadRequest(c, "malformed request body")
	}
	if err := handler.Validate(&req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	station.Code = req.Code
	station.Name = req.Name
	station.SubDivisionID = req.SubDivisionID
	station.Address = req.Address
	station.Phone = req.Phone
	if req.Active != nil {
		station.Active = *req.Active
	}

	if err := s.db.Save(&station).Error; err != nil {
		log.Error().Err(err).Msg("could not update police station")

		return handler.ServerError(c)
	}

	return handler.Success(c, station)
}

func (s *Service) mustExist(model any, id string) error {
	var n int64
	if err := s.db.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
