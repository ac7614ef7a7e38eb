// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/soundridge/identity-gateway/internal/account"
	"github.com/soundridge/identity-gateway/internal/admin"
	"github.com/soundridge/identity-gateway/internal/config"
	"github.com/soundridge/identity-gateway/internal/core"
	"github.com/soundridge/identity-gateway/internal/deeplink"
	"github.com/soundridge/identity-gateway/internal/guard"
	"github.com/soundridge/identity-gateway/internal/health"
	"github.com/soundridge/identity-gateway/internal/middleware"
	"github.com/soundridge/identity-gateway/internal/provider"
	"github.com/soundridge/identity-gateway/internal/resolver"
	"github.com/soundridge/identity-gateway/internal/server"
	"github.com/soundridge/identity-gateway/internal/session"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
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

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	providerClient := provider.NewClient(cfg.Provider)
	verifier, err := provider.NewVerifier(cfg.Provider)
	if err != nil {
		return err
	}
	logger.Info("provider token verifier initialized",
		"issuer", cfg.Provider.JWTIssuer,
		"algorithm", "ES256",
	)

	mirror := provider.NewSessionMirror(
		redis.Client,
		cfg.Provider.SessionMirrorTTL,
	)

	accountRepo := account.NewRepository(db.DB)
	accountSvc := account.NewService(accountRepo)
	accountHandler := account.NewHandler(accountSvc)

	res := resolver.New(accountRepo, accountRepo, accountRepo, logger)

	store := session.NewStore(providerClient, mirror, res, logger)
	sessionHandler := session.NewHandler(store)

	if err := store.Restore(ctx); err != nil {
		logger.Warn("session restore failed, starting signed out",
			"error", err,
		)
	}

	markers := deeplink.NewRedisMarkers(
		redis.Client,
		cfg.DeepLink.MarkerTTL,
		logger,
	)
	deepLinks := deeplink.NewHandler(deeplink.HandlerConfig{
		DeepLink: cfg.DeepLink,
		Routes:   cfg.Routes,
		Sessions: store,
		Markers:  markers,
		Logger:   logger,
	})
	deepLinkHTTP := deeplink.NewHTTPHandler(deepLinks)

	healthHandler := health.NewHandler(db, redis, providerClient)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:      db.Stats,
		RedisStats:   redis.PoolStats,
		DBPing:       db.Ping,
		RedisPing:    redis.Ping,
		ProviderPing: providerClient.Ping,
		DeepLinkLog:  deepLinks.Log(),
	})

	guards := guard.New(cfg.Routes)
	chain := guard.NewChain(guards, store, func(r *http.Request) guard.Platform {
		return guard.Platform(middleware.GetPlatform(r.Context()))
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.DetectPlatform)
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.App.Environment == "production"))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	authenticator := middleware.Authenticator(verifier)
	adminOnly := middleware.RequireAdmin

	tieredLimit := middleware.TieredRateLimiter(
		redis.Client,
		middleware.DefaultTiers,
		func(*http.Request) string {
			return highestTier(store.Snapshot())
		},
	)

	router.Route("/v1", func(r chi.Router) {
		sessionHandler.RegisterRoutes(r)
		deepLinkHTTP.RegisterRoutes(r)

		accountHandler.RegisterRoutes(r, authenticator)
		accountHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
		adminHandler.RegisterRoutes(r, authenticator, adminOnly)

		r.Route("/dashboard", func(r chi.Router) {
			r.Use(chain.RequireAuth)
			r.Use(tieredLimit)

			r.Get("/", dashboardHandler("artist"))
			r.With(chain.RequireTier(account.TierLabel)).
				Get("/label", dashboardHandler("label"))
			r.With(chain.RequireTier(account.TierAgency)).
				Get("/agency", dashboardHandler("agency"))
			r.With(chain.RequireKYC(account.KYCTierVerified)).
				Post("/payouts", payoutsHandler)
		})

		r.With(
			chain.RequirePlatform(guard.PlatformMobile),
			chain.RequireAuth,
		).Get("/mobile/home", dashboardHandler("mobile_home"))
	})

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

func dashboardHandler(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		core.OK(w, map[string]string{"dashboard": name})
	}
}

func payoutsHandler(w http.ResponseWriter, r *http.Request) {
	core.OK(w, map[string]string{"status": "payout_initiated"})
}

func highestTier(snap session.Snapshot) string {
	switch {
	case snap.HasTier(account.TierAgency):
		return account.TierAgency
	case snap.HasTier(account.TierLabel):
		return account.TierLabel
	default:
		return account.TierArtist
	}
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

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
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
