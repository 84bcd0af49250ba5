package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/config"
)

// PrincipalKey is the fiber locals key the authenticated principal is stored under.
const PrincipalKey = "principal"

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID    uint64
	Username  string
	RoleCode  string
	OfficerID *string
}

// Middleware validates the bearer token and attaches the Principal to the
// request context. Requests without a valid token are rejected.
func Middleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(header, bearerPrefix) {
			return unauthorized(c)
		}

		claims, err := ParseToken(&cfg.Auth, strings.TrimPrefix(header, bearerPrefix))
		if err != nil {
			return unauthorized(c)
		}

		c.Locals(PrincipalKey, &Principal{
			UserID:    claims.UserID(),
			Username:  claims.Username,
			RoleCode:  claims.Role,
			OfficerID: claims.OfficerID,
		})

		return c.Next()
	}
}

// PrincipalFromCtx returns the authenticated principal attached to the request.
func PrincipalFromCtx(c *fiber.Ctx) (*Principal, bool) {
	p, ok := c.Locals(PrincipalKey).(*Principal)
	return p, ok
}

// RequirePermission creates Fiber middleware that requires a specific permission.
func RequirePermission(authService *Service, permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromCtx(c)
		if !ok {
			return unauthorized(c)
		}

		hasPermission, err := authService.HasPermission(principal.UserID, permission)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", principal.UserID).Str("permission", permission).
				Msg("Failed to check permission")

			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Internal Server Error",
			})
		}

		if !hasPermission {
			log.Warn().Uint64("user_id", principal.UserID).Str("permission", permission).
				Msg("User lacks required permission")

			return forbidden(c)
		}

		return c.Next()
	}
}

// RequireAnyPermission creates Fiber middleware that requires at least one of the given permissions.
func RequireAnyPermission(authService *Service, permissions ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromCtx(c)
		if !ok {
			return unauthorized(c)
		}

		hasPermission, err := authService.HasAnyPermission(principal.UserID, permissions)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", principal.UserID).Strs("permissions", permissions).
				Msg("Failed to check permissions")

			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Internal Server Error",
			})
		}

		if !hasPermission {
			log.Warn().Uint64("user_id", principal.UserID).Strs("permissions", permissions).
				Msg("User lacks required permissions")

			return forbidden(c)
		}

		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"error":   "Unauthorized",
	})
}

func forbidden(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"success": false,
		"error":   "Forbidden: You don't have permission to access this resource",
	})
}
