// Package web wires the fiber application: middleware chain, handler
// registration and lifecycle.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/auth"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/config"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/db/dsn"
	fiberlogger "github.com/ChetanBhuma/KutumbBackend-sub003/internal/logger/adapter/fiber"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/scope"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/web/handler"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/web/handler/audit"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/web/handler/beat"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/web/handler/citizen"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/web/handler/designation"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/web/handler/export"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/web/handler/geo"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/web/handler/health"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/web/handler/login"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/web/handler/officer"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/web/handler/report"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/web/handler/role"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/web/handler/sos"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/web/handler/user"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/web/handler/visit"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
	authService  *auth.Service
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for graceful shutdown of the web service.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: fail the liveness check first so
	// the LB drains this instance before the listener closes.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// loginLimiter builds the rate limiter for the login endpoint. On mysql and
// postgres the hit counters live in the database so all instances share them;
// on sqlite they stay in process memory.
func loginLimiter(cfg *config.Config) fiber.Handler {
	limiterConfig := limiter.Config{
		Max:        cfg.Auth.LoginRateLimit,
		Expiration: cfg.Auth.LoginRateWindow,
		LimitReached: func(c *fiber.Ctx) error {
			return handler.Error(c, fiber.StatusTooManyRequests, "too many login attempts")
		},
	}

	switch cfg.DB.GormEngine {
	case "postgres":
		limiterConfig.Storage = sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         "rate_limits",
		})
	case "sqlite":
		// in-memory storage
	default: // mysql
		limiterConfig.Storage = sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         "rate_limits",
		})
	}

	return limiter.New(limiterConfig)
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, db *gorm.DB) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
		},
	)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New())
	}

	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: health.URI,
	}))

	authService := auth.NewService(db)
	resolver := scope.NewResolver(db, scope.NewRegistry(db))

	service := &Service{
		cfg:         cfg,
		App:         app,
		db:          db,
		authService: authService,
	}
	service.alive.Store(true)

	if err := health.Handler.Init(app, db, &service.alive); err != nil {
		log.Fatal().Err(err).Msg("could not init health handler")
	}

	api := app.Group(handler.RootPath)

	// login is the only unauthenticated API route, rate limited per IP
	if err := login.Handler.Init(api, cfg, db, authService, loginLimiter(cfg)); err != nil {
		log.Fatal().Err(err).Msg("could not init login handler")
	}

	// every other route: bearer auth, then data scope resolution, then audit
	api.Use(auth.Middleware(cfg))
	api.Use(scope.Middleware(resolver, func(c *fiber.Ctx) (scope.Principal, bool) {
		p, ok := auth.PrincipalFromCtx(c)
		if !ok {
			return scope.Principal{}, false
		}

		return scope.Principal{RoleCode: p.RoleCode, OfficerID: p.OfficerID}, true
	}))
	api.Use(audit.Middleware(db))

	type initer interface {
		Init(app fiber.Router, cfg *config.Config, db *gorm.DB, authService *auth.Service) error
	}

	handlers := []initer{
		&beat.Handler,
		&officer.Handler,
		&citizen.Handler,
		&visit.Handler,
		&sos.Handler,
		&geo.Handler,
		&designation.Handler,
		&role.Handler,
		&user.Handler,
		&report.Handler,
		&export.Handler,
		&audit.Handler,
	}
	for _, h := range handlers {
		if err := h.Init(api, cfg, db, authService); err != nil {
			log.Fatal().Err(err).Msg("could not init handler")
		}
	}

	return service
}
