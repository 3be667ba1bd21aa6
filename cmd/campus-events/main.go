// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/campus-events/internal/cache"
	"github.com/olegiv/campus-events/internal/catalog"
	"github.com/olegiv/campus-events/internal/config"
	"github.com/olegiv/campus-events/internal/handler"
	"github.com/olegiv/campus-events/internal/handler/api"
	"github.com/olegiv/campus-events/internal/logging"
	"github.com/olegiv/campus-events/internal/middleware"
	"github.com/olegiv/campus-events/internal/recommend"
	"github.com/olegiv/campus-events/internal/scheduler"
	"github.com/olegiv/campus-events/internal/version"
	"github.com/olegiv/campus-events/internal/webhook"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// Maintenance settings
const (
	deliveryRetention  = 7 * 24 * time.Hour
	maxTrackedClients  = 10000
	sessionLifetime    = 30 * 24 * time.Hour
	shutdownTimeout    = 30 * time.Second
	cacheCleanupPeriod = time.Minute
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "campus-events - college events marketplace\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUS_SERVER_PORT     Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUS_ENV             Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUS_SEED            Load the demo catalog (default: true)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUS_AI_PROVIDER     gemini|openai|ollama (default: gemini)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUS_AI_API_KEY      Recommendation provider key (falls back to API_KEY)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUS_REDIS_URL       Redis URL for shared session state (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUS_WEBHOOK_URLS    Comma-separated catalog change webhook URLs (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	info := version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}
	if *showVersion {
		_, _ = fmt.Println(info.String())
		os.Exit(0)
	}

	if err := run(info); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(info version.Info) error {
	// Load .env if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// WARN and ERROR records are also kept in the admin activity log.
	activity := logging.NewActivityLog(cfg.ActivityLogSize)
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	logger := slog.New(logging.NewActivityHandler(textHandler, activity))
	slog.SetDefault(logger)

	if cfg.WebhooksEnabled() && cfg.WebhookSecret == "" {
		slog.Warn("webhook secret not set, deliveries will be unsigned", "category", logging.CategoryConfig)
	}

	// Cache for per-session recommendation state
	sessionCache, fallback, err := cache.New(cache.Config{
		RedisURL:         cfg.RedisURL,
		Prefix:           cfg.CachePrefix,
		DefaultTTL:       cfg.CacheTTLDuration(),
		MaxSize:          cfg.CacheMaxSize,
		CleanupInterval:  cacheCleanupPeriod,
		FallbackToMemory: true,
	}, logger)
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() {
		if err := sessionCache.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()
	switch {
	case cfg.UseRedisCache() && !fallback:
		slog.Info("cache initialized", "backend", "redis")
	case fallback:
		slog.Warn("cache initialized", "backend", "memory", "note", "Redis unavailable, using fallback")
	default:
		slog.Info("cache initialized", "backend", "memory")
	}

	// Catalog
	data := catalog.Data{}
	if cfg.Seed {
		data = catalog.Seed()
	}
	store := catalog.New(data)
	slog.Info("catalog loaded", "events", store.Len(), "colleges", len(store.Colleges()))

	// Recommendations. A missing credential leaves the feature disabled:
	// every request then resolves to an empty set.
	provider, err := recommend.NewProvider(recommend.ProviderConfig{
		ID:      cfg.AIProvider,
		APIKey:  cfg.AICredential(),
		BaseURL: cfg.AIBaseURL,
		Timeout: cfg.AITimeout,
	})
	switch {
	case errors.Is(err, recommend.ErrMissingCredential):
		slog.Error("recommendation API key not set, recommendations disabled",
			"category", logging.CategoryRecommend, "provider", cfg.AIProvider)
		provider = nil
	case err != nil:
		return fmt.Errorf("initializing recommendation provider: %w", err)
	default:
		slog.Info("recommendation provider initialized", "provider", provider.ID(), "model", cfg.AIModelName())
	}
	gateway := recommend.NewGateway(provider, recommend.GatewayConfig{
		Model:            cfg.AIModelName(),
		FilterUnknownIDs: cfg.AIFilterUnknownIDs,
	}, logger)
	recs := recommend.NewService(gateway, recommend.NewTracker(sessionCache, cfg.CacheTTLDuration()), store, logger)

	// Webhooks for catalog changes
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	endpoints := make([]webhook.Endpoint, 0, len(cfg.WebhookURLs))
	for _, u := range cfg.WebhookURLs {
		endpoints = append(endpoints, webhook.Endpoint{URL: u, Secret: cfg.WebhookSecret})
	}
	dispatcherCfg := webhook.DefaultConfig()
	dispatcherCfg.Workers = cfg.WebhookWorkers
	dispatcherCfg.Client = webhook.NewClient(cfg.WebhookAllowPrivate)
	dispatcher := webhook.NewDispatcher(endpoints, logger, dispatcherCfg)
	dispatcher.Start(ctx)

	var sink webhook.Sink = dispatcher
	var debouncer *webhook.Debouncer
	if cfg.WebhookDebounce > 0 {
		debouncer = webhook.NewDebouncer(dispatcher, webhook.DebounceConfig{
			Interval: cfg.WebhookDebounce,
			MaxWait:  5 * cfg.WebhookDebounce,
		}, logger)
		sink = debouncer
	}
	if cfg.WebhooksEnabled() {
		store.Subscribe(webhook.Observer(ctx, sink, logger))
		slog.Info("webhooks enabled", "endpoints", len(endpoints), "debounce", cfg.WebhookDebounce)
	}

	// Rate limiter for recommendation triggers
	recommendLimiter := middleware.NewClientRateLimiter(cfg.RecommendRPS, cfg.RecommendBurst, logger)
	slog.Info("recommendation rate limiter initialized", "rate", cfg.RecommendRPS, "burst", cfg.RecommendBurst)

	// Scheduled maintenance
	sched := scheduler.New(logger)
	jobs := []scheduler.Job{
		{
			Name:        "webhooks:retry",
			Description: "Retry failed webhook deliveries that are due",
			Schedule:    "@every 1m",
			Manual:      true,
			Run: func(ctx context.Context) error {
				if n := dispatcher.RetryDue(ctx); n > 0 {
					slog.Info("requeued webhook deliveries", "count", n)
				}
				return nil
			},
		},
		{
			Name:        "webhooks:prune",
			Description: "Drop finished webhook deliveries older than a week",
			Schedule:    "@hourly",
			Manual:      true,
			Run: func(context.Context) error {
				if n := dispatcher.Prune(deliveryRetention); n > 0 {
					slog.Info("pruned webhook deliveries", "count", n)
				}
				return nil
			},
		},
		{
			Name:        "ratelimit:trim",
			Description: "Forget rate limiter state when too many clients are tracked",
			Schedule:    "@every 10m",
			Manual:      true,
			Run: func(context.Context) error {
				if recommendLimiter.Trim(maxTrackedClients) {
					slog.Info("rate limiter state cleared")
				}
				return nil
			},
		},
	}
	for _, job := range jobs {
		if err := sched.Add(job); err != nil {
			return fmt.Errorf("registering job %s: %w", job.Name, err)
		}
	}
	sched.Start()

	// Router
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.StripSlashes)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))

	// The recommendation trigger is mounted outside this timeout.
	requestTimeout := chimw.Timeout(60 * time.Second)

	healthHandler := handler.NewHealthHandler(sessionCache, gateway.Enabled(), info)
	r.Group(func(r chi.Router) {
		r.Use(requestTimeout)
		r.Get("/health", healthHandler.Health)
		r.Get("/health/live", healthHandler.Liveness)
		r.Get("/health/ready", healthHandler.Readiness)
	})

	apiHandler := api.NewHandler(api.Deps{
		Catalog:          store,
		Recommendations:  recs,
		Activity:         activity,
		Jobs:             sched.Registry(),
		Webhooks:         dispatcher,
		DefaultInterests: cfg.DefaultInterests,
		Logger:           logger,
	})
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(middleware.SessionConfig{
			Lifetime: sessionLifetime,
			Secure:   !cfg.IsDevelopment(),
		}))
		apiHandler.Routes(r, api.RouteOptions{
			RecommendLimiter: recommendLimiter.Middleware(),
			Timeout:          requestTimeout,
		})
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      90 * time.Second, // lifted per request by ?wait=true
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", info.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	var shutdownErr error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		shutdownErr = fmt.Errorf("server shutdown: %w", err)
	}

	if err := recs.Shutdown(shutdownCtx); err != nil {
		slog.Warn("recommendation requests cancelled at shutdown", "error", err)
	}
	if debouncer != nil {
		debouncer.Stop()
	}
	dispatcher.Stop()
	sched.Stop()

	if shutdownErr != nil {
		return shutdownErr
	}
	slog.Info("server stopped")
	return nil
}
