package models

// PartTier classifies a part as economy, OEM-quality, or premium.
type PartTier string

const (
	TierLow  PartTier = "low"
	TierMid  PartTier = "mid"
	TierHigh PartTier = "high"
)

// Part is a recommended replacement part sourced from a retailer.
type Part struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Tier       PartTier `json:"tier"`
	Price      float64  `json:"price"`
	PartNumber string   `json:"partNumber"`
	Source     string   `json:"source"`
	URL        string   `json:"url,omitempty"`
}
