package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// ItemSummaryCacheTTL is the time-to-live for cached item summaries.
	ItemSummaryCacheTTL = 24 * time.Hour

	itemSummaryKeyPrefix = "item"
)

// CachedItemSummary is the denormalized read model stored in Redis.
// Fields are stored as a Redis hash. Additional fields can be added here for
// read optimization without touching the domain model.
type CachedItemSummary struct {
	ID               string    `json:"id"`
	Kind             string    `json:"kind"`
	Make             string    `json:"make"`
	Model            string    `json:"model"`
	Year             int       `json:"year"`
	PendingTaskCount int       `json:"pending_task_count"`
	LastUpdated      time.Time `json:"last_updated"`
}

// ItemSummaryCache provides structured read/write operations for item summary
// cache entries. Key format: "item:{itemID}"
type ItemSummaryCache struct {
	client *RedisClient
}

// NewItemSummaryCache creates a new ItemSummaryCache backed by the given RedisClient.
func NewItemSummaryCache(r *RedisClient) *ItemSummaryCache {
	return &ItemSummaryCache{client: r}
}

// Get retrieves a cached summary by item ID.
// Returns redis.Nil error when the key does not exist or has expired.
func (c *ItemSummaryCache) Get(ctx context.Context, itemID string) (*CachedItemSummary, error) {
	vals, err := c.client.Client().HGetAll(ctx, c.key(itemID)).Result()
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if len(vals) == 0 {
		return nil, redis.Nil // key not found
	}

	year, err := strconv.Atoi(vals["year"])
	if err != nil {
		return nil, fmt.Errorf("cache parse year: %w", err)
	}
	pending, err := strconv.Atoi(vals["pending_task_count"])
	if err != nil {
		return nil, fmt.Errorf("cache parse pending_task_count: %w", err)
	}
	var lastUpdated time.Time
	if v := vals["last_updated"]; v != "" {
		lastUpdated, err = time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil, fmt.Errorf("cache parse last_updated: %w", err)
		}
	}

	return &CachedItemSummary{
		ID:               vals["id"],
		Kind:             vals["kind"],
		Make:             vals["make"],
		Model:            vals["model"],
		Year:             year,
		PendingTaskCount: pending,
		LastUpdated:      lastUpdated,
	}, nil
}

// Set writes a cached summary as a Redis hash with a 24-hour TTL.
// Uses a pipeline to set all fields and the TTL atomically.
func (c *ItemSummaryCache) Set(ctx context.Context, summary *CachedItemSummary) error {
	key := c.key(summary.ID)
	lastUpdated := ""
	if !summary.LastUpdated.IsZero() {
		lastUpdated = summary.LastUpdated.UTC().Format(time.RFC3339Nano)
	}
	pipe := c.client.Client().Pipeline()
	pipe.HSet(ctx, key,
		"id", summary.ID,
		"kind", summary.Kind,
		"make", summary.Make,
		"model", summary.Model,
		"year", strconv.Itoa(summary.Year),
		"pending_task_count", strconv.Itoa(summary.PendingTaskCount),
		"last_updated", lastUpdated,
	)
	pipe.Expire(ctx, key, ItemSummaryCacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Delete removes a cached summary.
func (c *ItemSummaryCache) Delete(ctx context.Context, itemID string) error {
	if err := c.client.Client().Del(ctx, c.key(itemID)).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// key builds the Redis key: "item:{itemID}"
func (c *ItemSummaryCache) key(itemID string) string {
	return fmt.Sprintf("%s:%s", itemSummaryKeyPrefix, itemID)
}
