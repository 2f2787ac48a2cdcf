// Package httpserver is the HTTP/JSON surface of the platform: the
// verification callback, registration, session login, the manual migration
// endpoint, and the operator email test.
package httpserver

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	recoverware "github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/peakform/backend/internal/accounts"
	"github.com/peakform/backend/internal/config"
	"github.com/peakform/backend/internal/mailer"
	"github.com/peakform/backend/internal/token"
)

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type Server struct {
	Debug bool

	app            *fiber.App
	cfg            *config.Config
	repo           accounts.RepositoryManager
	tokens         *token.Service
	mail           mailer.Mailer
	logger         Logger
	limiterStorage fiber.Storage
	activate       *accounts.ActivatePendingUserHandler
	register       *accounts.RegisterPendingUserHandler
}

type Option func(*Server)

// WithLimiterStorage plugs a shared storage (Redis) into the rate limiter.
func WithLimiterStorage(storage fiber.Storage) Option {
	return func(s *Server) {
		s.limiterStorage = storage
	}
}

func WithLogger(logger Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func New(cfg *config.Config, repo accounts.RepositoryManager, tokens *token.Service, mail mailer.Mailer, opts ...Option) *Server {
	if cfg == nil {
		panic("Missing config in http server...")
	}
	if repo == nil {
		panic("Missing RepositoryManager in http server...")
	}
	if tokens == nil {
		panic("Missing token service in http server...")
	}
	if mail == nil {
		panic("Missing mailer in http server...")
	}

	s := &Server{
		Debug:    cfg.Debug,
		cfg:      cfg,
		repo:     repo,
		tokens:   tokens,
		mail:     mail,
		logger:   defLogger{},
		activate: accounts.NewActivatePendingUserHandler(repo),
		register: accounts.NewRegisterPendingUserHandler(repo),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "peakform",
		DisableStartupMessage: !s.Debug,
	})

	s.app.Use(recoverware.New())
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	limiterCfg := limiter.Config{
		Max:        cfg.Server.RateLimit,
		Expiration: time.Minute,
	}
	if s.limiterStorage != nil {
		limiterCfg.Storage = s.limiterStorage
	}
	s.app.Use(limiter.New(limiterCfg))

	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/auth/callback", s.AuthCallback)
	s.app.Post("/auth/signup", s.SignupPost)
	s.app.Post("/auth/login", s.LoginPost)

	s.app.Post("/api/users/migrate", s.MigratePendingUser)
	s.app.Post("/api/email/test", s.SendTestEmail)
	s.app.Put("/api/coach-profile", s.UpsertCoachProfile)
}

// App exposes the underlying fiber app, used by tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

type defLogger struct{}

func (d defLogger) Debug(msg string, args ...any) {}
func (d defLogger) Info(msg string, args ...any)  {}
func (d defLogger) Warn(msg string, args ...any)  {}
func (d defLogger) Error(msg string, args ...any) {}

func trimOrDefault(s, def string) string {
	if v := strings.TrimSpace(s); v != "" {
		return v
	}
	return def
}
