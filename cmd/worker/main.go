package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/ghuser/upkeep/pkg/app"
	"github.com/ghuser/upkeep/pkg/cache"
	"github.com/ghuser/upkeep/pkg/config"
	"github.com/ghuser/upkeep/pkg/database"
	"github.com/ghuser/upkeep/pkg/events"
	"github.com/ghuser/upkeep/pkg/logger"
	"github.com/ghuser/upkeep/pkg/telemetry"
	recordEvents "github.com/ghuser/upkeep/services/records/domain/events"
)

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

	ctx := context.Background()

	otelShutdown, _, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(ctx) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer pool.Close()
	log.Info("database pool connected")

	eventBus, err := events.NewEventBus(cfg, log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	appConfig := &app.Application{
		Db:       pool,
		Logger:   log,
		EventBus: eventBus,
		Redis:    redisClient,
	}

	if err := registerSubscribers(ctx, appConfig); err != nil {
		log.Error("failed to register subscribers", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")

	// EventBus.Close() (via defer) waits up to 30s for in-flight handlers.
	log.Info("worker stopped")
}

// registerSubscribers wires all domain event handlers.
// Add new topics here as more services publish events.
func registerSubscribers(ctx context.Context, a *app.Application) error {
	topics := []string{recordEvents.TopicItemCreated, recordEvents.TopicTaskCompleted}

	handlers := map[string]func(context.Context, *message.Message) error{
		recordEvents.TopicItemCreated:   handleItemCreated(a),
		recordEvents.TopicTaskCompleted: handleTaskCompleted(a),
	}

	for topic, handler := range handlers {
		errCh, err := a.EventBus.Subscribe(ctx, topic, handler)
		if err != nil {
			return err
		}

		// Drain subscriber errors in background so the channel never blocks.
		go func(topic string, errCh <-chan error) {
			for err := range errCh {
				a.Logger.ErrorContext(ctx, "subscriber error", "topic", topic, "error", err)
			}
		}(topic, errCh)
	}

	a.Logger.Info("event subscribers registered", "topics", topics)
	return nil
}

// handleItemCreated returns a handler for records.item.created events.
// Handlers must be idempotent: EventBus retries up to 3x on failure.
// Warms the Redis summary cache so the first summary read is served from cache.
func handleItemCreated(a *app.Application) func(context.Context, *message.Message) error {
	summaries := cache.NewItemSummaryCache(a.Redis)
	return func(ctx context.Context, msg *message.Message) error {
		var evt recordEvents.ItemCreatedEvent
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return err
		}

		if err := summaries.Set(ctx, &cache.CachedItemSummary{
			ID:               evt.ItemID,
			Kind:             evt.Kind,
			Make:             evt.Make,
			Model:            evt.Model,
			Year:             evt.Year,
			PendingTaskCount: evt.PendingTaskCount,
			LastUpdated:      evt.OccurredAt,
		}); err != nil {
			// Cache warming is best-effort; log but do not fail the handler.
			a.Logger.WarnContext(ctx, "cache warm failed for item.created",
				"item_id", evt.ItemID, "error", err)
		} else {
			a.Logger.InfoContext(ctx, "summary cache warmed", "item_id", evt.ItemID)
		}

		return nil
	}
}

// handleTaskCompleted returns a handler for records.task.completed events.
// The cached summary's pending count is stale after a completion, so the entry
// is dropped and rebuilt lazily on the next summary read.
func handleTaskCompleted(a *app.Application) func(context.Context, *message.Message) error {
	summaries := cache.NewItemSummaryCache(a.Redis)
	return func(ctx context.Context, msg *message.Message) error {
		var evt recordEvents.TaskCompletedEvent
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return err
		}

		if err := summaries.Delete(ctx, evt.ItemID); err != nil {
			a.Logger.WarnContext(ctx, "summary cache invalidation failed",
				"item_id", evt.ItemID, "error", err)
		}

		return nil
	}
}
