package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/ghuser/upkeep/pkg/cache"
	"github.com/ghuser/upkeep/pkg/completion"
	"github.com/ghuser/upkeep/pkg/logger"
	"github.com/ghuser/upkeep/services/records/domain/models"
)

// Result sources reported to callers so the UI can label mock data.
const (
	SourceCompletion = "completion"
	SourceCache      = "cache"
	SourceFallback   = "fallback"
)

const partsSystemPrompt = "You are an automotive parts expert. Always respond with valid JSON only, no additional text or formatting."

// Completer abstracts the completion client for testing.
type Completer interface {
	Complete(ctx context.Context, msgs []completion.Message) (string, error)
}

// PartsService searches replacement parts through the text-completion service
// and degrades to deterministic mock results on any failure. Search never
// returns an error: the caller always gets a usable list.
type PartsService struct {
	client Completer
	cache  *cache.PartsCache // nil disables caching
	log    logger.Logger
}

// NewPartsService returns a PartsService. client may be nil, in which case
// every search serves mock results.
func NewPartsService(client Completer, partsCache *cache.PartsCache, log logger.Logger) *PartsService {
	return &PartsService{client: client, cache: partsCache, log: log}
}

// Search looks up parts for the given vehicle and part type query. The second
// return value reports where the results came from: SourceCompletion,
// SourceCache, or SourceFallback.
func (s *PartsService) Search(ctx context.Context, vehicleMake, model string, year int, partType string) ([]models.Part, string) {
	if parts, ok := s.fromCache(ctx, vehicleMake, model, year, partType); ok {
		return parts, SourceCache
	}

	parts, err := s.fromCompletion(ctx, vehicleMake, model, year, partType)
	if err != nil {
		s.log.WarnContext(ctx, "parts search falling back to mock results",
			"make", vehicleMake, "model", model, "year", year, "query", partType, "error", err)
		return GenerateMockParts(vehicleMake, model, year, partType), SourceFallback
	}

	s.store(ctx, vehicleMake, model, year, partType, parts)
	return parts, SourceCompletion
}

func (s *PartsService) fromCompletion(ctx context.Context, vehicleMake, model string, year int, partType string) ([]models.Part, error) {
	if s.client == nil {
		return nil, fmt.Errorf("no completion client configured")
	}

	raw, err := s.client.Complete(ctx, []completion.Message{
		{Role: completion.RoleSystem, Content: partsSystemPrompt},
		{Role: completion.RoleUser, Content: buildPartsPrompt(vehicleMake, model, year, partType)},
	})
	if err != nil {
		return nil, err
	}

	var entries []map[string]any
	if err := json.Unmarshal([]byte(completion.StripFences(raw)), &entries); err != nil {
		return nil, fmt.Errorf("completion payload is not a JSON array of objects: %w", err)
	}

	// Entries are mapped leniently: the producer is best-effort, so missing
	// or mistyped fields get defaults instead of failing the search.
	parts := make([]models.Part, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, models.Part{
			ID:         uuid.NewString(),
			Name:       stringOr(e["name"], fmt.Sprintf("%s for %d %s %s", partType, year, vehicleMake, model)),
			Tier:       tierOr(e["tier"], models.TierMid),
			Price:      priceOr(e["price"], 25.99),
			PartNumber: stringOr(e["partNumber"], "PART-"+uuid.NewString()[:8]),
			Source:     stringOr(e["source"], "AutoZone"),
			URL:        retailerURL(stringOr(e["source"], "AutoZone")),
		})
	}
	return parts, nil
}

func (s *PartsService) fromCache(ctx context.Context, vehicleMake, model string, year int, partType string) ([]models.Part, bool) {
	if s.cache == nil {
		return nil, false
	}
	cached, err := s.cache.Get(ctx, vehicleMake, model, year, partType)
	if err != nil {
		return nil, false
	}
	parts := make([]models.Part, 0, len(cached))
	for _, c := range cached {
		parts = append(parts, models.Part{
			ID:         c.ID,
			Name:       c.Name,
			Tier:       models.PartTier(c.Tier),
			Price:      c.Price,
			PartNumber: c.PartNumber,
			Source:     c.Source,
			URL:        c.URL,
		})
	}
	return parts, true
}

func (s *PartsService) store(ctx context.Context, vehicleMake, model string, year int, partType string, parts []models.Part) {
	if s.cache == nil {
		return
	}
	cached := make([]cache.CachedPart, 0, len(parts))
	for _, p := range parts {
		cached = append(cached, cache.CachedPart{
			ID:         p.ID,
			Name:       p.Name,
			Tier:       string(p.Tier),
			Price:      p.Price,
			PartNumber: p.PartNumber,
			Source:     p.Source,
			URL:        p.URL,
		})
	}
	if err := s.cache.Set(ctx, vehicleMake, model, year, partType, cached); err != nil {
		s.log.WarnContext(ctx, "failed to cache parts results", "error", err)
	}
}

func buildPartsPrompt(vehicleMake, model string, year int, partType string) string {
	return fmt.Sprintf(`You are an automotive parts expert. Search for %q parts for a %d %s %s.

Provide parts from these sources: AutoZone, O'Reilly Auto Parts, RockAuto, Advance Auto Parts, Walmart.

For each source, provide 3 tiers of parts (economy/low, OEM quality/mid, premium/high) with realistic:
- Part names
- Part numbers (realistic format for each retailer)
- Prices (economy: lowest, OEM: mid-range, premium: highest)

Return ONLY a JSON array with this exact structure:
[
  {
    "name": "Valvoline MaxLife 5W-30 Motor Oil",
    "tier": "mid",
    "price": 24.99,
    "partNumber": "VV150-6PK",
    "source": "AutoZone"
  },
  {
    "name": "Mobil 1 Extended Performance 5W-30",
    "tier": "high",
    "price": 34.99,
    "partNumber": "MOB1-EP-5W30",
    "source": "AutoZone"
  }
]

Include realistic part numbers, competitive pricing, and appropriate tier classifications. Provide 3-5 parts per source (15-25 total parts).`,
		partType, year, vehicleMake, model)
}

func stringOr(v any, fallback string) string {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func tierOr(v any, fallback models.PartTier) models.PartTier {
	s, _ := v.(string)
	switch t := models.PartTier(s); t {
	case models.TierLow, models.TierMid, models.TierHigh:
		return t
	default:
		return fallback
	}
}

func priceOr(v any, fallback float64) float64 {
	switch x := v.(type) {
	case float64:
		if x >= 0 {
			return x
		}
	case string:
		if n, err := strconv.ParseFloat(x, 64); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}

// retailerURL builds the catalog link for a retailer name, lowercased with
// whitespace stripped: "O'Reilly Auto Parts" -> ".../o'reillyautoparts".
func retailerURL(source string) string {
	slug := strings.ToLower(strings.Join(strings.Fields(source), ""))
	return "https://example.com/" + slug
}
