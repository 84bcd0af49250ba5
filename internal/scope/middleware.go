package scope

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// LocalsKey is the fiber locals key the resolved DataScope is stored under.
const LocalsKey = "dataScope"

// PrincipalFunc extracts the authenticated principal from the request.
// The second return is false when no principal is attached.
type PrincipalFunc func(c *fiber.Ctx) (Principal, bool)

// Middleware resolves the request principal's DataScope and attaches it to the
// request context. It must run after authentication and before any scoped
// handler. Requests without a principal or role pass through unscoped; a
// dangling officer profile reference rejects the request.
func Middleware(resolver *Resolver, principalOf PrincipalFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := principalOf(c)
		if !ok {
			return c.Next()
		}

		sc, err := resolver.Resolve(p)
		if err != nil {
			if errors.Is(err, ErrOfficerProfileMissing) {
				log.Warn().Str("role", p.RoleCode).Msg("principal references missing officer profile")

				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"success": false,
					"error":   "Officer profile not found",
				})
			}

			log.Error().Err(err).Str("role", p.RoleCode).Msg("failed to resolve data scope")

			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Internal Server Error",
			})
		}

		if sc != nil {
			c.Locals(LocalsKey, sc)
		}

		return c.Next()
	}
}

// FromCtx returns the DataScope attached to the request, or nil when the
// request runs unscoped.
func FromCtx(c *fiber.Ctx) *DataScope {
	sc, _ := c.Locals(LocalsKey).(*DataScope)
	return sc
}
