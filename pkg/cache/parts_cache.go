package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	// PartsCacheTTL keeps parts-search results ephemeral: long enough to
	// absorb repeated taps on the search button, short enough that pricing
	// never goes stale.
	PartsCacheTTL = 30 * time.Minute

	partsCacheKeyPrefix = "parts"
)

// CachedPart mirrors the part shape returned by the lookup service.
type CachedPart struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Tier       string  `json:"tier"`
	Price      float64 `json:"price"`
	PartNumber string  `json:"partNumber"`
	Source     string  `json:"source"`
	URL        string  `json:"url,omitempty"`
}

// PartsCache stores parts-search result lists as JSON values keyed by the
// normalized search parameters. Key format: "parts:{make}:{model}:{year}:{query}".
type PartsCache struct {
	client *RedisClient
}

// NewPartsCache creates a PartsCache backed by the given RedisClient.
func NewPartsCache(r *RedisClient) *PartsCache {
	return &PartsCache{client: r}
}

// Get retrieves a cached result list. Returns redis.Nil when the key does not
// exist or has expired.
func (c *PartsCache) Get(ctx context.Context, make, model string, year int, query string) ([]CachedPart, error) {
	data, err := c.client.Client().Get(ctx, c.key(make, model, year, query)).Bytes()
	if err != nil {
		return nil, err
	}
	var parts []CachedPart
	if err := json.Unmarshal(data, &parts); err != nil {
		return nil, fmt.Errorf("cache decode parts: %w", err)
	}
	return parts, nil
}

// Set stores a result list with the standard TTL.
func (c *PartsCache) Set(ctx context.Context, make, model string, year int, query string, parts []CachedPart) error {
	data, err := json.Marshal(parts)
	if err != nil {
		return fmt.Errorf("cache encode parts: %w", err)
	}
	if err := c.client.Client().Set(ctx, c.key(make, model, year, query), data, PartsCacheTTL).Err(); err != nil {
		return fmt.Errorf("cache set parts: %w", err)
	}
	return nil
}

func (c *PartsCache) key(make, model string, year int, query string) string {
	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	return fmt.Sprintf("%s:%s:%s:%d:%s", partsCacheKeyPrefix, norm(make), norm(model), year, norm(query))
}
