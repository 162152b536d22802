package services

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"

	"github.com/ghuser/upkeep/services/records/domain/models"
)

var mockRetailers = []string{
	"AutoZone",
	"O'Reilly Auto Parts",
	"RockAuto",
	"Advance Auto Parts",
	"Walmart",
}

var mockTiers = []models.PartTier{models.TierLow, models.TierMid, models.TierHigh}

// GenerateMockParts builds a deterministic-shape fallback result set: one part
// per retailer and tier, fifteen in total. Prices and part number suffixes
// carry a little noise so repeated searches look organic.
func GenerateMockParts(vehicleMake, model string, year int, partType string) []models.Part {
	parts := make([]models.Part, 0, len(mockRetailers)*len(mockTiers))
	for _, source := range mockRetailers {
		for _, tier := range mockTiers {
			parts = append(parts, models.Part{
				ID:         uuid.NewString(),
				Name:       fmt.Sprintf("%s %s for %d %s %s", tierLabel(tier), partType, year, vehicleMake, model),
				Tier:       tier,
				Price:      mockPrice(partType, tier),
				PartNumber: mockPartNumber(vehicleMake, model, year, source, tier),
				Source:     source,
				URL:        retailerURL(source),
			})
		}
	}
	return parts
}

func tierLabel(tier models.PartTier) string {
	switch tier {
	case models.TierLow:
		return "Economy"
	case models.TierHigh:
		return "Premium"
	default:
		return "OEM Quality"
	}
}

// mockPartNumber format: {make[:2]}{model[:2]}{yy}-{source[:2]}{tierCode}{nnn}
func mockPartNumber(vehicleMake, model string, year int, source string, tier models.PartTier) string {
	code := func(s string) string {
		s = strings.ToUpper(s)
		if len(s) > 2 {
			s = s[:2]
		}
		return s
	}
	yearCode := fmt.Sprintf("%d", year)
	if len(yearCode) > 2 {
		yearCode = yearCode[len(yearCode)-2:]
	}
	tierCode := "M"
	switch tier {
	case models.TierLow:
		tierCode = "L"
	case models.TierHigh:
		tierCode = "H"
	}
	return fmt.Sprintf("%s%s%s-%s%s%03d", code(vehicleMake), code(model), yearCode, code(source), tierCode, rand.IntN(1000))
}

// mockPrice derives a base price from keywords in the part type, scales it by
// tier, and jitters it by up to 10% either way.
func mockPrice(partType string, tier models.PartTier) float64 {
	q := strings.ToLower(partType)
	base := 25.0
	switch {
	case strings.Contains(q, "oil"):
		base = 8
	case strings.Contains(q, "filter"):
		base = 15
	case strings.Contains(q, "brake"):
		base = 35
	case strings.Contains(q, "spark"):
		base = 10
	}
	multiplier := 1.8
	switch tier {
	case models.TierLow:
		multiplier = 1
	case models.TierHigh:
		multiplier = 3
	}
	jitter := 0.9 + rand.Float64()*0.2
	cents := int(base*multiplier*jitter*100 + 0.5)
	return float64(cents) / 100
}
