// Package main is the entrypoint for the link-in-bio API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"
	_ "time/tzdata"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/webboss/bio/internal/analytics"
	"github.com/webboss/bio/internal/auth"
	"github.com/webboss/bio/internal/cache"
	"github.com/webboss/bio/internal/config"
	"github.com/webboss/bio/internal/geoip"
	"github.com/webboss/bio/internal/handler"
	"github.com/webboss/bio/internal/metrics"
	"github.com/webboss/bio/internal/middleware"
	"github.com/webboss/bio/internal/repository"
	"github.com/webboss/bio/internal/server"
	"github.com/webboss/bio/internal/service"
)

const trackRateLimitScope = "track"

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	if cfg.MigrateOnStart {
		if err := repository.Migrate(cfg.DatabaseURL, logger); err != nil {
			logger.Error("failed to run migrations", slog.String("error", sanitizeError(err, cfg.DatabaseURL)))
			os.Exit(1)
		}
	}

	repo, err := repository.New(ctx, cfg.DatabaseURL, repository.Options{})
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	geo, err := geoip.Open(cfg.GeoIPDBPath, logger)
	if err != nil {
		logger.Error("failed to open geoip database", "error", err, "path", cfg.GeoIPDBPath)
		os.Exit(1)
	}

	loc, _ := cfg.Location() // checked by config.Validate

	metricsRecorder := metrics.NewInMemory()
	owners := service.NewOwners(repo, cacheClient, logger)
	profileService := service.NewProfileService(service.ProfileServiceConfig{
		Owners:   owners,
		Profiles: repo,
		Links:    repo,
		Products: repo,
		Cache:    cacheClient,
		PageTTL:  cfg.PublicPageCacheTTL,
		BaseURL:  cfg.PublicBaseURL,
		Metrics:  metricsRecorder,
		Logger:   logger,
	})
	linkService := service.NewLinkService(owners, repo, metricsRecorder, logger)
	productService := service.NewProductService(owners, repo, metricsRecorder, logger)
	recorder := service.NewEventRecorder(service.EventRecorderConfig{
		Events:      repo,
		Metrics:     metricsRecorder,
		Logger:      logger,
		Timeout:     cfg.RecordTimeout,
		MaxInFlight: cfg.RecordMaxInFlight,
	})
	analyticsService := service.NewAnalyticsService(service.AnalyticsServiceConfig{
		Owners:   owners,
		Events:   repo,
		Links:    repo,
		Location: loc,
		Metrics:  metricsRecorder,
		Logger:   logger,
	})

	verifier := auth.NewVerifier(cfg.AuthJWTSecret, cfg.AuthJWTIssuer)

	r := setupRouter(routerDeps{
		cfg:       cfg,
		logger:    logger,
		metrics:   metricsRecorder,
		limiter:   cacheClient,
		verifier:  verifier,
		health:    handler.NewHealthHandler(repo, cacheClient),
		public:    handler.NewPublicHandler(profileService, recorder, analytics.NewEnricher(geo), cfg.PublicPageCacheTTL, logger),
		profiles:  handler.NewProfileHandler(profileService, logger),
		links:     handler.NewLinkHandler(linkService, logger),
		products:  handler.NewProductHandler(productService, logger),
		analytics: handler.NewAnalyticsHandler(analyticsService, logger),
		metricsH:  handler.NewMetricsHandler(metricsRecorder),
	})

	srv := server.New(r, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// Shutdown runs in reverse: recorder drains first, stores close last.
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error { return cacheClient.Close() })
	srv.OnShutdown("geoip", func(context.Context) error { return geo.Close() })

	if cfg.ReconcileInterval > 0 {
		reconciler := service.NewReconciler(repo, cfg.ReconcileInterval, metricsRecorder, logger)
		go func() {
			if err := reconciler.Run(ctx); err != nil {
				logger.Error("reconciler stopped", "error", err)
			}
		}()
		srv.OnShutdown("reconciler", reconciler.Shutdown)
	}
	srv.OnShutdown("event_recorder", recorder.Shutdown)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"public_base_url", cfg.PublicBaseURL,
		"env", cfg.AppEnv,
		"geoip", geo.Enabled(),
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routerDeps struct {
	cfg      *config.Config
	logger   *slog.Logger
	metrics  metrics.Recorder
	limiter  middleware.IPLimiter
	verifier middleware.SessionVerifier

	health    *handler.HealthHandler
	public    *handler.PublicHandler
	profiles  *handler.ProfileHandler
	links     *handler.LinkHandler
	products  *handler.ProductHandler
	analytics *handler.AnalyticsHandler
	metricsH  *handler.MetricsHandler
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(d routerDeps) *chi.Mux {
	h := handler.New()
	r := chi.NewRouter()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = d.cfg.GetCORSAllowedOrigins()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.logger))
	r.Use(middleware.Recoverer(d.logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: d.cfg.IsDevelopment()}))
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.MaxBodySize(d.cfg.MaxRequestBodySize))

	r.Get("/healthz", d.health.Healthz)
	r.Get("/readyz", d.health.Readyz)
	r.Get("/metrics", d.metricsH.Metrics)

	trackLimit := middleware.RateLimitIP(middleware.RateLimitConfig{
		Logger:  d.logger,
		Limiter: d.limiter,
		Metrics: d.metrics,
		Enabled: d.cfg.RateLimitTrackEnabled,
		Scope:   trackRateLimitScope,
		RPS:     d.cfg.RateLimitTrackRPS,
		Burst:   d.cfg.RateLimitTrackBurst,
	})

	r.Route("/p/{username}", func(r chi.Router) {
		r.Get("/", d.public.Page)
		r.With(trackLimit).Post("/views", d.public.TrackView)
		r.With(trackLimit).Post("/clicks", d.public.TrackClick)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(middleware.AuthConfig{Logger: d.logger, Verifier: d.verifier}))

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", d.profiles.Get)
			r.Post("/", d.profiles.Create)
			r.Patch("/", d.profiles.Update)
			r.Delete("/", d.profiles.Delete)
			r.Get("/qr", d.profiles.QRCode)
		})

		r.Route("/links", func(r chi.Router) {
			r.Get("/", d.links.List)
			r.Post("/", d.links.Create)
			r.Put("/order", d.links.Reorder)
			r.Patch("/{id}", d.links.Update)
			r.Delete("/{id}", d.links.Delete)
			r.Get("/{id}/clicks", d.links.Clicks)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", d.products.List)
			r.Post("/", d.products.Create)
			r.Put("/order", d.products.Reorder)
			r.Patch("/{id}", d.products.Update)
			r.Delete("/{id}", d.products.Delete)
		})

		r.Get("/analytics", d.analytics.Report)
	})

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
