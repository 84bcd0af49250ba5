// Package health implements the liveness endpoint.
package health

import (
	"sync/atomic"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// URI is the liveness endpoint path. It sits outside the API prefix and is
// skipped by the access log.
const URI = "/healthz"

// Service holds the dependencies of the health handler.
type Service struct {
	db    *gorm.DB
	alive *atomic.Bool
}

// Handler is the exported handler instance.
var Handler = Service{}

// Init wires the liveness route. The alive flag is owned by the web service
// and flipped during shutdown so load balancers drain before the listener
// closes.
func (s *Service) Init(app fiber.Router, db *gorm.DB, alive *atomic.Bool) error {
	s.db = db
	s.alive = alive

	app.Get(URI, s.Check)

	return nil
}

// Check reports liveness and database reachability.
func (s *Service) Check(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"alive": false,
		})
	}

	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"alive":    true,
			"database": false,
		})
	}

	return c.JSON(fiber.Map{
		"alive":    true,
		"database": true,
	})
}
