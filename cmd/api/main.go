// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/a32fred/Qr-Code-Generation/internal/account"
	"github.com/a32fred/Qr-Code-Generation/internal/admin"
	"github.com/a32fred/Qr-Code-Generation/internal/artifact"
	"github.com/a32fred/Qr-Code-Generation/internal/billing"
	"github.com/a32fred/Qr-Code-Generation/internal/config"
	"github.com/a32fred/Qr-Code-Generation/internal/core"
	"github.com/a32fred/Qr-Code-Generation/internal/health"
	"github.com/a32fred/Qr-Code-Generation/internal/issuance"
	"github.com/a32fred/Qr-Code-Generation/internal/middleware"
	"github.com/a32fred/Qr-Code-Generation/internal/quota"
	"github.com/a32fred/Qr-Code-Generation/internal/render"
	"github.com/a32fred/Qr-Code-Generation/internal/server"
)

const (
	drainDelay       = 5 * time.Second
	metricsNamespace = "qr_api"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"base_url", cfg.App.BaseURL,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	metrics := core.NewMetrics(metricsNamespace)

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		logger.Info("database schema applied")
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	accountSvc := account.NewService(
		account.NewRepository(db.DB),
		cfg.Database.QueryTimeout,
		metrics,
	)
	accountHandler := account.NewHandler(accountSvc)

	counter := quota.NewCounter(redis.Client, cfg.Quota, cfg.Redis.OpTimeout)
	quotaHandler := quota.NewHandler(quota.NewService(counter), accountSvc)

	artifactSvc := artifact.NewService(
		artifact.NewRepository(db.DB),
		cfg.Database.QueryTimeout,
		metrics,
	)
	artifactHandler := artifact.NewHandler(artifactSvc)

	issuanceSvc := issuance.NewService(issuance.Deps{
		Accounts:  accountSvc,
		Usage:     counter,
		Renderer:  render.New(cfg.Render, metrics),
		Artifacts: artifactSvc,
		Logger:    logger,
		Metrics:   metrics,
	}, issuance.Config{
		BaseURL:    cfg.App.BaseURL,
		UpgradeURL: cfg.Quota.UpgradeURL,
	})
	issuanceHandler := issuance.NewHandler(issuanceSvc)

	billingHandler := billing.NewHandler(logger)

	healthHandler := health.NewHandler(cfg.App.Version,
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
	)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		Accounts:   accountSvc,
		Artifacts:  artifactSvc,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	fallbackHit := metrics.RateLimitFallbackHits.Inc

	router.Use(middleware.RequestID)
	router.Use(middleware.Tracing)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recoverer(logger))
	router.Use(middleware.MaxBodyBytes(cfg.Server.MaxBodyBytes))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerWindow(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
				cfg.RateLimit.Window,
			),
			FailOpen:   true,
			OnFallback: fallbackHit,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	keyLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit: middleware.PerWindow(
			cfg.RateLimit.KeyRequests,
			cfg.RateLimit.KeyBurst,
			cfg.RateLimit.Window,
		),
		KeyFunc:    middleware.KeyByAPIKey,
		FailOpen:   true,
		OnFallback: fallbackHit,
	})

	healthHandler.RegisterRoutes(router)
	router.Get("/", server.IndexHandler(cfg.App))
	router.Handle("/metrics", metrics.Handler())
	artifactHandler.RegisterRoutes(router)

	router.Route("/api", func(r chi.Router) {
		accountHandler.RegisterRoutes(r)
		billingHandler.RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAPIKey)
			r.Use(keyLimiter.Handler)

			quotaHandler.RegisterRoutes(r)
			issuanceHandler.RegisterRoutes(r)
		})
	})

	adminHandler.RegisterRoutes(router, middleware.RequireAdminToken(cfg.Admin.Token))

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
