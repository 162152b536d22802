package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "github.com/ghuser/upkeep/docs/swagger"
	"github.com/ghuser/upkeep/pkg/app"
	"github.com/ghuser/upkeep/pkg/cache"
	"github.com/ghuser/upkeep/pkg/completion"
	"github.com/ghuser/upkeep/pkg/config"
	"github.com/ghuser/upkeep/pkg/database"
	"github.com/ghuser/upkeep/pkg/events"
	"github.com/ghuser/upkeep/pkg/httpx"
	"github.com/ghuser/upkeep/pkg/logger"
	"github.com/ghuser/upkeep/pkg/telemetry"
	lookupApi "github.com/ghuser/upkeep/services/lookup/application/api"
	recordsApi "github.com/ghuser/upkeep/services/records/application/api"
	recordsSvcs "github.com/ghuser/upkeep/services/records/application/services"
)

// sweepInterval controls how often non-completed tasks are re-checked for
// calendar overdue promotion.
const sweepInterval = time.Hour

// @title					Upkeep API
// @version				1.0
// @description			Maintenance tracking API for vehicles and home equipment.
// @termsOfService			http://swagger.io/terms/
// @contact.name			API Support
// @contact.email			support@upkeep.example
// @license.name			MIT
// @license.url			https://opensource.org/licenses/MIT
// @host					localhost:8080
// @BasePath				/api
// @schemes				http https
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	// Telemetry: OTel tracing + metrics
	ctx := context.Background()
	otelShutdown, metricsHandler, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(ctx) //nolint:errcheck

	// Crash reporting: Sentry (optional, log and continue on failure)
	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic // intentional: startup failure, deferred flushes are best-effort
	}
	defer pool.Close()
	log.Info("database pool connected")

	eventBus, err := events.NewEventBusWithForwarder(cfg, log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	if err := eventBus.StartForwarder(ctx); err != nil {
		log.Error("failed to start event forwarder", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic // intentional: startup failure
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	var completionClient *completion.Client
	if cfg.CompletionURL != "" {
		completionClient = completion.NewClient(cfg.CompletionURL, cfg.CompletionMaxRetries)
		log.Info("completion client configured", "url", cfg.CompletionURL)
	} else {
		log.Warn("no completion URL configured, schedule generation disabled")
	}

	appConfig := &app.Application{
		Db:         pool,
		Logger:     log,
		EventBus:   eventBus,
		Redis:      redisClient,
		Completion: completionClient,
	}

	r := httpx.NewRouter(
		httpx.ServerConfig{
			ServiceName:        cfg.ServiceName,
			IsDevelopment:      cfg.Environment == config.EnvDevelopment,
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		},
		logger.Middleware(log),
		logger.Recovery(log),
		telemetry.SentryMiddleware(),
		otelhttp.NewMiddleware(cfg.ServiceName),
	)

	r.Get("/health", httpx.HealthHandler(httpx.HealthChecks{
		Database: pool,
		Redis:    redisClient,
		EventBus: eventBus,
	}))
	r.Get("/metrics", metricsHandler.ServeHTTP)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	r.Get("/hi", httpx.HiHandler())

	var records *recordsSvcs.Services
	r.Route("/api", func(r chi.Router) {
		records = registerRoutes(r, appConfig)
	})

	// Hydrate the in-memory store before accepting traffic. A load failure
	// logs and starts empty rather than refusing to boot.
	records.Store.Load(ctx)

	sweepCtx, cancelSweep := context.WithCancel(ctx)
	defer cancelSweep()
	go runOverdueSweeper(sweepCtx, appConfig, records)

	srv := httpx.NewServer(cfg.HTTPAddr, r)

	go func() {
		log.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// registerRoutes mounts all service routes under /api.
// Add each new service's route function here.
func registerRoutes(r chi.Router, a *app.Application) *recordsSvcs.Services {
	records := recordsApi.RecordRoutes(r, a)
	lookupApi.LookupRoutes(r, a)
	return records
}

// runOverdueSweeper periodically promotes tasks whose calendar due date has
// passed to overdue. Usage-threshold promotion happens synchronously on
// counter updates; only the date axis needs a clock.
func runOverdueSweeper(ctx context.Context, a *app.Application, records *recordsSvcs.Services) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.Logger.Info("overdue sweeper shutting down")
			return
		case <-ticker.C:
			n, err := records.Store.MarkDateOverdue(ctx, time.Now().UTC())
			if err != nil {
				a.Logger.WarnContext(ctx, "overdue sweep failed", "error", err)
				continue
			}
			if n > 0 {
				a.Logger.InfoContext(ctx, "overdue sweep promoted tasks", "count", n)
			}
		}
	}
}
