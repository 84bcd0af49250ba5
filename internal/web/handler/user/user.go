// Package user implements the user account administration endpoints.
package user

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/auth"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/config"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/db/models"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/uniuri"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/web/handler"
)

// tempPasswordLength is the length of generated reset passwords.
const tempPasswordLength = 16

// Service holds the dependencies of the user handlers.
type Service struct {
	cfg   *config.Config
	db    *gorm.DB
	auth  *auth.Service
	local *auth.LocalProvider
}

// Handler is the exported handler instance.
var Handler = Service{}

// Init wires the user administration routes.
func (s *Service) Init(app fiber.Router, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	s.cfg = cfg
	s.db = db
	s.auth = authService
	s.local = auth.NewLocalProvider(db)

	manage := auth.RequirePermission(authService, auth.PermAdminUsers)

	app.Get("/users", manage, s.List)
	app.Get("/users/:id", manage, s.Get)
	app.Post("/users", manage, s.Create)
	app.Put("/users/:id", manage, s.Update)
	app.Post("/users/:id/reset-password", manage, s.ResetPassword)
	app.Post("/users/:id/totp", manage, s.EnrollTOTP)
	app.Delete("/users/:id", manage, s.Delete)

	return nil
}

type userResponse struct {
	ID         uint64            `json:"id"`
	Active     bool              `json:"active"`
	Username   string            `json:"username"`
	Email      string            `json:"email"`
	FullName   string            `json:"fullName"`
	RoleID     uint              `json:"roleId"`
	Role       string            `json:"role,omitempty"`
	OfficerID  *string           `json:"officerId,omitempty"`
	AuthSource models.AuthSource `json:"authSource"`
	TOTP       bool              `json:"totpEnrolled"`
}

func toResponse(u *models.User) userResponse {
	return userResponse{
		ID:         u.ID,
		Active:     u.Active,
		Username:   u.Username,
		Email:      u.Email,
		FullName:   u.FullName,
		RoleID:     u.RoleID,
		Role:       u.Role.Code,
		OfficerID:  u.OfficerID,
		AuthSource: u.AuthSource,
		TOTP:       u.TOTPSecret != "",
	}
}

// List returns user accounts with optional search and pagination.
func (s *Service) List(c *fiber.Ctx) error {
	page, pageSize := handler.PageParams(c)

	tx := s.db.Model(&models.User{})

	if v := c.Query("search"); v != "" {
		pattern := "%" + v + "%"
		tx = tx.Where("username LIKE ? OR full_name LIKE ? OR email LIKE ?", pattern, pattern, pattern)
	}
	if v := c.Query("roleId"); v != "" {
		tx = tx.Where("role_id = ?", v)
	}
	if v := c.Query("active"); v != "" {
		tx = tx.Where("active = ?", v == "true")
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		log.Error().Err(err).Msg("could not count users")

		return handler.ServerError(c)
	}

	var users []models.User
	err := tx.Preload("Role").Order("username").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&users).Error
	if err != nil {
		log.Error().Err(err).Msg("could not list users")

		return handler.ServerError(c)
	}

	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, toResponse(&users[i]))
	}

	return handler.List(c, out, handler.ListMeta{Page: page, PageSize: pageSize, Total: total})
}

// Get returns a single user account.
func (s *Service) Get(c *fiber.Ctx) error {
	var user models.User
	err := s.db.Preload("Role").Where("id = ?", c.Params("id")).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return handler.NotFound(c, "user not found")
	case err != nil:
		log.Error().Err(err).Msg("could not load user")

		return handler.ServerError(c)
	}

	return handler.Success(c, toResponse(&user))
}

type createUserRequest struct {
	Username  string  `json:"username" validate:"required,max=100"`
	Email     string  `json:"email" validate:"omitempty,email,max=255"`
	Password  string  `json:"password" validate:"required,min=8"`
	FullName  string  `json:"fullName" validate:"max=150"`
	RoleID    uint    `json:"roleId" validate:"required"`
	OfficerID *string `json:"officerId"`
}

// Create adds a local user account. Officer-linked accounts must reference an
// existing officer profile, otherwise the account would resolve to an empty
// jurisdiction.
func (s *Service) Create(c *fiber.Ctx) error {
	var req createUserRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.BadRequest(c, "malformed request body")
	}
	if err := handler.Validate(&req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	var role models.Role
	err := s.db.Where("id = ?", req.RoleID).First(&role).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return handler.BadRequest(c, "role does not exist")
	case err != nil:
		log.Error().Err(err).Msg("could not load role")

		return handler.ServerError(c)
	}

	if req.OfficerID != nil {
		var count int64
		if err := s.db.Model(&models.Officer{}).Where("id = ?", *req.OfficerID).Count(&count).Error; err != nil {
			log.Error().Err(err).Msg("could not check officer")

			return handler.ServerError(c)
		}
		if count == 0 {
			return handler.BadRequest(c, "officer does not exist")
		}
	}

	user, err := s.local.CreateUser(req.Username, req.Email, req.Password, req.FullName, req.RoleID, req.OfficerID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNameExists) {
			return handler.Conflict(c, "username already exists")
		}
		log.Error().Err(err).Msg("could not create user")

		return handler.ServerError(c)
	}

	user.Role = role

	log.Info().Str("username", user.Username).Str("role", role.Code).Msg("user created")

	return handler.Created(c, toResponse(user))
}

type updateUserRequest struct {
	Email     string  `json:"email" validate:"omitempty,email,max=255"`
	FullName  string  `json:"fullName" validate:"max=150"`
	RoleID    uint    `json:"roleId" validate:"required"`
	OfficerID *string `json:"officerId"`
	Active    *bool   `json:"active"`
}

// Update edits a user account's profile, role, officer link and active flag.
func (s *Service) Update(c *fiber.Ctx) error {
	var user models.User
	err := s.db.Where("id = ?", c.Params("id")).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return handler.NotFound(c, "user not found")
	case err != nil:
		log.Error().Err(err).Msg("could not load user")

		return handler.ServerError(c)
	}

	var req updateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.BadRequest(c, "malformed request body")
	}
	if err := handler.Validate(&req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	var role models.Role
	err = s.db.Where("id = ?", req.RoleID).First(&role).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return handler.BadRequest(c, "role does not exist")
	case err != nil:
		log.Error().Err(err).Msg("could not load role")

		return handler.ServerError(c)
	}

	if req.OfficerID != nil {
		var count int64
		if err := s.db.Model(&models.Officer{}).Where("id = ?", *req.OfficerID).Count(&count).Error; err != nil {
			log.Error().Err(err).Msg("could not check officer")

			return handler.ServerError(c)
		}
		if count == 0 {
			return handler.BadRequest(c, "officer does not exist")
		}
	}

	user.Email = req.Email
	user.FullName = req.FullName
	user.RoleID = req.RoleID
	user.OfficerID = req.OfficerID
	if req.Active != nil {
		user.Active = *req.Active
	}

	if err := s.db.Save(&user).Error; err != nil {
		log.Error().Err(err).Msg("could not update user")

		return handler.ServerError(c)
	}

	user.Role = role

	return handler.Success(c, toResponse(&user))
}

// ResetPassword generates a temporary password for a local account and
// returns it once in the response. Directory accounts have no local password.
func (s *Service) ResetPassword(c *fiber.Ctx) error {
	var user models.User
	err := s.db.Where("id = ?", c.Params("id")).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return handler.NotFound(c, "user not found")
	case err != nil:
		log.Error().Err(err).Msg("could not load user")

		return handler.ServerError(c)
	}

	if user.AuthSource != models.AuthSourceLocal {
		return handler.Conflict(c, "directory accounts have no local password")
	}

	tempPassword := uniuri.NewLen(tempPasswordLength)
	user.Password = models.HashPassword(tempPassword)

	if err := s.db.Save(&user).Error; err != nil {
		log.Error().Err(err).Msg("could not reset password")

		return handler.ServerError(c)
	}

	log.Info().Str("username", user.Username).Msg("password reset")

	return handler.Success(c, fiber.Map{"password": tempPassword})
}

// EnrollTOTP generates and stores a TOTP secret for the user and returns the
// provisioning URL for an authenticator app.
func (s *Service) EnrollTOTP(c *fiber.Ctx) error {
	var user models.User
	err := s.db.Where("id = ?", c.Params("id")).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return handler.NotFound(c, "user not found")
	case err != nil:
		log.Error().Err(err).Msg("could not load user")

		return handler.ServerError(c)
	}

	secret, url, err := auth.GenerateTOTPSecret(user.Username)
	if err != nil {
		log.Error().Err(err).Msg("could not generate totp secret")

		return handler.ServerError(c)
	}

	user.TOTPSecret = secret

	if err := s.db.Save(&user).Error; err != nil {
		log.Error().Err(err).Msg("could not store totp secret")

		return handler.ServerError(c)
	}

	log.Info().Str("username", user.Username).Msg("totp enrolled")

	return handler.Success(c, fiber.Map{"secret": secret, "url": url})
}

// Delete soft-deletes a user account.
func (s *Service) Delete(c *fiber.Ctx) error {
	var user models.User
	err := s.db.Where("id = ?", c.Params("id")).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return handler.NotFound(c, "user not found")
	case err != nil:
		log.Error().Err(err).Msg("could not load user")

		return handler.ServerError(c)
	}

	if err := s.db.Delete(&user).Error; err != nil {
		log.Error().Err(err).Msg("could not delete user")

		return handler.ServerError(c)
	}

	log.Info().Str("username", user.Username).Msg("user deleted")

	return handler.Success(c, fiber.Map{"deleted": true})
}
