// Package role implements the role and permission administration endpoints.
package role

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

// Service holds the dependencies of the role handlers.
type Service struct {
	cfg  *config.Config
	db   *gorm.DB
	auth *auth.Service
}

// Handler is the exported handler instance.
var Handler = Service{}

// Init wires the role administration routes.
func (s *Service) Init(app fiber.Router, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	s.cfg = cfg
	s.db = db
	s.auth = authService

	manage := auth.RequirePermission(authService, auth.PermAdminRoles)

	app.Get("/roles", manage, s.List)
	app.Get("/roles/:id", manage, s.Get)
	app.Post("/roles", manage, s.Create)
	app.Put("/roles/:id", manage, s.Update)
	app.Put("/roles/:id/permissions", manage, s.SetPermissions)
	app.Delete("/roles/:id", manage, s.Delete)

	app.Get("/permissions", manage, s.ListPermissions)

	return nil
}

type roleResponse struct {
	models.Role
	Permissions []string `json:"permissions"`
}

// List returns all roles.
func (s *Service) List(c *fiber.Ctx) error {
	var roles []models.Role
	if err := s.db.Order("code").Find(&roles).Error; err != nil {
		log.Error().Err(err).Msg("could not list roles")

		return handler.ServerError(c)
	}

	return handler.Success(c, roles)
}

// Get returns a role with its granted permissions.
func (s *Service) Get(c *fiber.Ctx) error {
	var role models.Role
	err := s.db.Where("id = ?", c.Params("id")).First(&role).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return handler.NotFound(c, "role not found")
	case err != nil:
		log.Error().Err(err).Msg("could not load role")

		return handler.ServerError(c)
	}

	perms, err := s.rolePermissions(role.ID)
	if err != nil {
		log.Error().Err(err).Msg("could not load role permissions")

		return handler.ServerError(c)
	}

	return handler.Success(c, roleResponse{Role: role, Permissions: perms})
}

type roleRequest struct {
	Code              string `json:"code" validate:"required,max=50"`
	Name              string `json:"name" validate:"required,max=100"`
	Description       string `json:"description" validate:"max=255"`
	JurisdictionLevel string `json:"jurisdictionLevel" validate:"required,max=30"`
}

// Create adds a role. The jurisdiction level must parse to a known level;
// configured aliases are accepted and stored as given.
func (s *Service) Create(c *fiber.Ctx) error {
	var req roleRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.BadRequest(c, "malformed request body")
	}
	if err := handler.Validate(&req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	if _, ok := scope.ParseLevel(req.JurisdictionLevel); !ok {
		return handler.BadRequest(c, "unknown jurisdiction level")
	}

	role := models.Role{
		Code:              req.Code,
		Name:              req.Name,
		Description:       req.Description,
		JurisdictionLevel: req.JurisdictionLevel,
	}

	if err := s.db.Create(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return handler.Conflict(c, "role code already exists")
		}
		log.Error().Err(err).Msg("could not create role")

		return handler.ServerError(c)
	}

	log.Info().Str("role", role.Code).Msg("role created")

	return handler.Created(c, role)
}

// Update edits a role. System roles keep their code.
func (s *Service) Update(c *fiber.Ctx) error {
	var role models.Role
	err := s.db.Where("id = ?", c.Params("id")).First(&role).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return handler.NotFound(c, "role not found")
	case err != nil:
		log.Error().Err(err).Msg("could not load role")

		return handler.ServerError(c)
	}

	var req roleRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.BadRequest(c, "malformed request body")
	}
	if err := handler.Validate(&req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	if _, ok := scope.ParseLevel(req.JurisdictionLevel); !ok {
		return handler.BadRequest(c, "unknown jurisdiction level")
	}

	if role.IsSystem && role.Code != req.Code {
		return handler.Conflict(c, "system role codes cannot be changed")
	}

	role.Code = req.Code
	role.Name = req.Name
	role.Description = req.Description
	role.JurisdictionLevel = req.JurisdictionLevel

	if err := s.db.Save(&role).Error; err != nil {
		log.Error().Err(err).Msg("could not update role")

		return handler.ServerError(c)
	}

	return handler.Success(c, role)
}

type setPermissionsRequest struct {
	// Permissions is the full set of permission names the role should hold.
	Permissions []string `json:"permissions" validate:"required"`
}

// SetPermissions replaces a role's permission grants with the given set.
func (s *Service) SetPermissions(c *fiber.Ctx) error {
	var role models.Role
	err := s.db.Where("id = ?", c.Params("id")).First(&role).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return handler.NotFound(c, "role not found")
	case err != nil:
		log.Error().Err(err).Msg("could not load role")

		return handler.ServerError(c)
	}

	var req setPermissionsRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.BadRequest(c, "malformed request body")
	}

	var perms []models.Permission
	if len(req.Permissions) > 0 {
		if err := s.db.Where("name IN ?", req.Permissions).Find(&perms).Error; err != nil {
			log.Error().Err(err).Msg("could not load permissions")

			return handler.ServerError(c)
		}
		if len(perms) != len(req.Permissions) {
			return handler.BadRequest(c, "unknown permission in set")
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", role.ID).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}

		for _, perm := range perms {
			rp := models.RolePermission{RoleID: role.ID, PermissionID: perm.ID}
			if err := tx.Create(&rp).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("could not set role permissions")

		return handler.ServerError(c)
	}

	log.Info().Str("role", role.Code).Int("permissions", len(perms)).Msg("role permissions changed")

	return handler.Success(c, roleResponse{Role: role, Permissions: req.Permissions})
}

// Delete removes a non-system role that no user holds.
func (s *Service) Delete(c *fiber.Ctx) error {
	var role models.Role
	err := s.db.Where("id = ?", c.Params("id")).First(&role).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return handler.NotFound(c, "role not found")
	case err != nil:
		log.Error().Err(err).Msg("could not load role")

		return handler.ServerError(c)
	}

	if role.IsSystem {
		return handler.Conflict(c, "system roles cannot be deleted")
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("role_id = ?", role.ID).Count(&count).Error; err != nil {
		log.Error().Err(err).Msg("could not check role usage")

		return handler.ServerError(c)
	}
	if count > 0 {
		return handler.Conflict(c, "role is still assigned to users")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", role.ID).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}

		return tx.Delete(&role).Error
	})
	if err != nil {
		log.Error().Err(err).Msg("could not delete role")

		return handler.ServerError(c)
	}

	log.Info().Str("role", role.Code).Msg("role deleted")

	return handler.Success(c, fiber.Map{"deleted": true})
}

// ListPermissions returns the permission catalogue.
func (s *Service) ListPermissions(c *fiber.Ctx) error {
	var perms []models.Permission
	if err := s.db.Order("name").Find(&perms).Error; err != nil {
		log.Error().Err(err).Msg("could not list permissions")

		return handler.ServerError(c)
	}

	return handler.Success(c, perms)
}

func (s *Service) rolePermissions(roleID uint) ([]string, error) {
	var names []string

	err := s.db.Model(&models.Permission{}).
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", roleID).
		Order("permissions.name").
		Pluck("permissions.name", &names).Error
	if err != nil {
		return nil, err
	}

	return names, nil
}
