package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/go-redis/redis/v8"

	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/cache"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/config"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/database"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/logging"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/loyalty"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/repository"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/routes"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/telemetry"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/tenant"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()
	ctx := context.Background()

	if cfg.JWTSecret == "" && cfg.JWTJWKSURL == "" {
		slog.Error("JWT_SECRET or JWT_JWKS_URL environment variable is required")
		os.Exit(1)
	}

	policy, err := loyalty.NewPolicy(cfg.GoldThreshold, cfg.PlatinumThreshold, cfg.RedeemCapPercent)
	if err != nil {
		slog.Error("invalid loyalty policy", "error", err)
		os.Exit(1)
	}
	conflictScope, err := loyalty.ParseConflictScope(cfg.AppointmentConflictScope)
	if err != nil {
		slog.Error("invalid appointment conflict scope", "error", err)
		os.Exit(1)
	}

	// Tracing
	shutdownTracing, err := telemetry.Setup(ctx, "clinic-loyalty", cfg.OTLPEndpoint)
	if err != nil {
		slog.Error("tracing setup failed", "error", err)
		os.Exit(1)
	}

	// Store
	var (
		store        repository.Store
		pgLogHandler *logging.PGHandler
		cleanupDone  = make(chan struct{})
	)
	switch cfg.StoreDriver {
	case "memory":
		slog.Warn("using in-memory store, data is lost on restart")
		store = repository.NewMemoryStore()
	case "postgres":
		if cfg.DBPassword == "" {
			slog.Error("DB_PASSWORD environment variable is required")
			os.Exit(1)
		}
		if err := database.Connect(cfg); err != nil {
			slog.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		if err := database.Migrate(); err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}

		// PostgreSQL log handler (ERROR+ async batch)
		pgLogHandler = logging.NewPGHandler(database.DB)
		slog.SetDefault(slog.New(logging.NewMultiHandler(logging.NewStdoutHandler(), pgLogHandler)))
		logging.StartCleanup(database.DB, cfg.LogRetention, cleanupDone)

		store = repository.NewGormStore(database.DB)
	default:
		slog.Error("unknown STORE_DRIVER", "driver", cfg.StoreDriver)
		os.Exit(1)
	}

	// Redis snapshot cache and ledger stream (optional)
	opts := loyalty.Options{
		Policy:        policy,
		ConflictScope: conflictScope,
		Location:      cfg.Location(),
	}
	var (
		redisClient *redis.Client
		cacheHealth handlers.Pinger
	)
	if cfg.RedisAddr != "" {
		redisClient = cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		kv := cache.NewRedisKV(redisClient)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := kv.Ping(pingCtx)
		cancel()
		if err != nil {
			slog.Warn("redis unreachable, snapshot cache will retry per request", "addr", cfg.RedisAddr, "error", err)
		}
		opts.Cache = cache.NewSnapshotCache(kv, cfg.SnapshotCacheTTL)
		opts.Publisher = cache.NewLedgerPublisher(redisClient, cfg.LedgerStreamLen)
		cacheHealth = kv
	}

	engine := loyalty.NewEngine(store, opts)

	// Clinic registry
	registry := tenant.NewRegistry()
	if err := registry.Reload(ctx, store); err != nil {
		slog.Error("failed to load clinic registry", "error", err)
		os.Exit(1)
	}
	slog.Info("clinic registry loaded", "clinics", registry.Len())

	// Daily checklist reset
	resetDone := make(chan struct{})
	engine.StartDailyReset(cfg.DailyResetInterval, resetDone)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.Env,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, store, registry, routes.Handlers{
		Health:      handlers.NewHealthHandler(store, cacheHealth, registry),
		Ledger:      handlers.NewLedgerHandler(engine),
		CarePlan:    handlers.NewCarePlanHandler(engine, store),
		Appointment: handlers.NewAppointmentHandler(engine),
		Family:      handlers.NewFamilyHandler(engine),
		Clinic:      handlers.NewClinicHandler(engine, registry),
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "store", cfg.StoreDriver, "conflict_scope", string(conflictScope))
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(resetDone)
	close(cleanupDone)
	if pgLogHandler != nil {
		pgLogHandler.Stop()
	}
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("tracer shutdown error", "error", err)
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}

	// Close database connections
	if database.DB != nil {
		if sqlDB, err := database.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				slog.Error("database close error", "error", err)
			}
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"message": message,
		"error":   "API_ERR",
	})
}
