// Package server contains the HTTP handlers and middleware of the visit request API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "kunjungan/docs" // swagger docs
	"kunjungan/internal/branding"
	"kunjungan/internal/cache"
	"kunjungan/internal/config"
	"kunjungan/internal/database"
	"kunjungan/internal/featureflags"
	"kunjungan/internal/middleware"
	"kunjungan/internal/models"
	"kunjungan/internal/notifications"
	"kunjungan/internal/repository"
	"kunjungan/internal/service"
	"kunjungan/internal/storage"
	"kunjungan/internal/validation"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	userRepo       repository.UserRepository
	visitRepo      repository.VisitRepository
	store          *storage.LocalStore
	dispatcher     *notifications.Dispatcher
	featureFlags   *featureflags.Manager
	visitService   *service.VisitService
	reportService  *service.ReportService
	authService    *service.AuthService
	userService    *service.UserService
	now            func() time.Time
}

// Option customizes a Server built by NewServerWithDeps.
type Option func(*options)

type options struct {
	mailer notifications.Mailer
	now    func() time.Time
}

// WithMailer replaces the mailer derived from configuration.
func WithMailer(m notifications.Mailer) Option {
	return func(o *options) { o.mailer = m }
}

// WithClock replaces the wall clock used for validation and reports.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Redis is optional; a nil client disables caching and revocation.
	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, opts ...Option) (*Server, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	profile, err := branding.Load(cfg.OfficeProfilePath)
	if err != nil {
		return nil, err
	}
	store, err := storage.NewLocalStore(cfg.UploadPath)
	if err != nil {
		return nil, fmt.Errorf("upload directory: %w", err)
	}
	mailer := o.mailer
	if mailer == nil {
		if mailer, err = notifications.NewMailer(cfg); err != nil {
			return nil, fmt.Errorf("email transport: %w", err)
		}
	}

	loc := cfg.Location()
	flags := featureflags.NewManager(cfg.FeatureFlags)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("kunjungan-api"),
		userRepo:       repository.NewUserRepository(db),
		visitRepo:      repository.NewVisitRepository(db),
		store:          store,
		dispatcher:     notifications.NewDispatcher(profile, mailer, cfg.EmailSendTimeout()),
		featureFlags:   flags,
		now:            o.now,
	}

	server.visitService = service.NewVisitService(service.VisitServiceDeps{
		Repo:         server.visitRepo,
		Store:        store,
		Notifier:     server.dispatcher,
		Validator:    validation.NewIntakeValidator(loc, o.now),
		Flags:        flags,
		Redis:        redisClient,
		MaxFileBytes: cfg.MaxFileSizeBytes(),
	})
	server.reportService = service.NewReportService(service.ReportServiceDeps{
		Repo:     server.visitRepo,
		Redis:    redisClient,
		Profile:  profile,
		Location: loc,
		Flags:    flags,
		Now:      o.now,
	})
	server.authService = service.NewAuthService(server.userRepo, redisClient, cfg.JWTSecret, cfg.JWTTTL())
	server.userService = service.NewUserService(server.userRepo)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	app.Use(middleware.TracingMiddleware("/health", "/metrics"))

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers. Uploaded letters are fetched cross-origin by the admin panel.
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Disposition",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Success: false,
				Message: "Terlalu banyak permintaan, silakan coba lagi nanti.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", s.AuthRequired(), s.AdminRequired(), monitor.New(monitor.Config{
		Title: "Kunjungan API Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Uploaded cover letters
	app.Get("/uploads/:filename", s.GetUpload)

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/login", middleware.Limit{
		Name: "login", Max: 10, Window: 5 * time.Minute,
	}.Handler(s.redis), s.Login)
	auth.Get("/profile", s.AuthRequired(), s.AdminRequired(), s.GetProfile)
	auth.Post("/logout", s.AuthRequired(), s.Logout)

	// Visit requests, plus the path used by the existing web client
	submitLimit := middleware.Limit{Name: "submit_visit", Max: 5, Window: 10 * time.Minute}
	for _, prefix := range []string{"/visits", "/kunjungan"} {
		visits := api.Group(prefix)
		visits.Post("/", submitLimit.Handler(s.redis), s.SubmitVisit)

		admin := visits.Group("", s.AuthRequired(), s.AdminRequired())
		admin.Get("/", s.ListVisits)
		// Define specific /:id/:resource routes BEFORE generic /:id route
		admin.Put("/:id/status", s.UpdateVisitStatus)
		admin.Get("/:id", s.GetVisit)
		admin.Delete("/:id", s.DeleteVisit)
	}

	// Reports
	reports := api.Group("/reports", s.AuthRequired(), s.AdminRequired())
	reports.Get("/available-periods", s.GetAvailablePeriods)
	reports.Get("/pdf", s.DownloadRekap)

	rekap := api.Group("/rekap", s.AuthRequired(), s.AdminRequired())
	rekap.Get("/available-months", s.GetAvailablePeriods)
	rekap.Get("/pdf", s.DownloadRekap)

	// Admin routes
	admin := api.Group("/admin", s.AuthRequired(), s.AdminRequired())
	admin.Get("/feature-flags", s.GetFeatureFlags)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if s.db == nil {
		dbStatus = "unhealthy"
	} else if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis only backs caching, rate limits and revocation.
	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"message": "Kunjungan API",
		"version": "1.0.0",
		"status":  overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that role is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		if role != models.RoleAdmin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := ""
		if authHeader := c.Get("Authorization"); authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		// Download links opened in a new tab cannot set headers.
		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		claims, err := s.authService.ParseToken(c.UserContext(), tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}

		c.Locals("userID", claims.UserID)
		c.Locals("role", claims.Role)
		c.Locals("claims", claims)
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, claims.UserID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// errorHandler renders uncaught handler errors and recovered panics in the
// standard envelope.
func errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if models.ErrorCode(err) == "" && !errors.As(err, &fiberErr) {
		err = models.NewInternalError(err)
	}
	status := models.StatusForError(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "Unhandled request error",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}
	return models.RespondWithError(c, status, err)
}

// NewApp builds the Fiber app with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Kunjungan API",
		BodyLimit:    int(s.config.MaxFileSizeBytes()) + 1024*1024,
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start starts the server
func (s *Server) Start() error {
	s.app = s.NewApp()
	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("Error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	// Let in-flight emails finish before the process exits.
	if s.dispatcher != nil {
		if err := s.dispatcher.Wait(ctx); err != nil {
			middleware.Logger.Warn("Pending notifications abandoned", slog.String("error", err.Error()))
		}
	}

	if s.db != nil {
		if err := database.Close(s.db); err != nil {
			middleware.Logger.Error("Error closing database", slog.String("error", err.Error()))
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			middleware.Logger.Error("Error closing redis", slog.String("error", err.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
