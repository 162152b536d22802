package services

import (
	"context"
	"strings"
	"time"

	"github.com/ghuser/upkeep/services/records/domain/models"
)

// RecallSearchParams echoes the search input back alongside the results.
type RecallSearchParams struct {
	Make  string `json:"make"`
	Model string `json:"model"`
	Year  int    `json:"year"`
}

// RecallSearchResult is the envelope returned by a recall search.
type RecallSearchResult struct {
	Recalls      []models.Recall    `json:"recalls"`
	TotalCount   int                `json:"total_count"`
	SearchParams RecallSearchParams `json:"search_params"`
}

// RecallService answers recall searches from a built-in dataset. A real
// regulator integration would slot in behind the same Search signature; the
// artificial delay approximates its latency so callers handle it properly.
type RecallService struct {
	recalls []models.Recall
	delay   time.Duration
}

// NewRecallService returns a RecallService over the built-in recall dataset.
func NewRecallService() *RecallService {
	return &RecallService{recalls: mockRecalls, delay: time.Second}
}

// Search filters recalls by make and model (case-insensitive) and exact year.
// A vehicle with no recalls yields an empty list, not an error. Honors
// context cancellation during the simulated upstream latency.
func (s *RecallService) Search(ctx context.Context, vehicleMake, model string, year int) (RecallSearchResult, error) {
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return RecallSearchResult{}, ctx.Err()
		case <-time.After(s.delay):
		}
	}

	matched := make([]models.Recall, 0)
	for _, r := range s.recalls {
		if strings.EqualFold(r.Make, vehicleMake) && strings.EqualFold(r.Model, model) && r.Year == year {
			matched = append(matched, r)
		}
	}
	return RecallSearchResult{
		Recalls:      matched,
		TotalCount:   len(matched),
		SearchParams: RecallSearchParams{Make: vehicleMake, Model: model, Year: year},
	}, nil
}

// SeverityColor maps a severity grade to its display color.
func SeverityColor(severity models.RecallSeverity) string {
	switch severity {
	case models.SeverityCritical:
		return "#DC2626" // red-600
	case models.SeverityHigh:
		return "#EA580C" // orange-600
	case models.SeverityMedium:
		return "#D97706" // amber-600
	case models.SeverityLow:
		return "#65A30D" // lime-600
	default:
		return "#6B7280" // gray-500
	}
}

// SeverityLabel maps a severity grade to its display label.
func SeverityLabel(severity models.RecallSeverity) string {
	switch severity {
	case models.SeverityCritical:
		return "Critical"
	case models.SeverityHigh:
		return "High"
	case models.SeverityMedium:
		return "Medium"
	case models.SeverityLow:
		return "Low"
	default:
		return "Unknown"
	}
}

var mockRecalls = []models.Recall{
	{
		ID:                 "1",
		ExternalID:         "NHTSA-2023-001",
		Make:               "Toyota",
		Model:              "Camry",
		Year:               2022,
		Title:              "Airbag Inflator Defect",
		Description:        "The airbag inflator may rupture during deployment, potentially causing injury to vehicle occupants.",
		Severity:           models.SeverityCritical,
		DateIssued:         "2023-03-15",
		AffectedComponents: []string{"Airbag System", "Driver Airbag", "Passenger Airbag"},
		Remedy:             "Dealers will replace the airbag inflator free of charge.",
		Contact:            "Toyota Customer Service: 1-800-331-4331",
		URL:                "https://www.nhtsa.gov/recalls",
		AffectedCount:      125000,
	},
	{
		ID:                 "2",
		ExternalID:         "NHTSA-2023-002",
		Make:               "Honda",
		Model:              "Civic",
		Year:               2021,
		Title:              "Brake System Malfunction",
		Description:        "The brake pedal may become hard to press, potentially increasing stopping distance.",
		Severity:           models.SeverityHigh,
		DateIssued:         "2023-02-20",
		AffectedComponents: []string{"Brake System", "Brake Booster"},
		Remedy:             "Dealers will inspect and replace the brake booster if necessary.",
		Contact:            "Honda Customer Service: 1-888-946-6329",
		URL:                "https://www.nhtsa.gov/recalls",
		AffectedCount:      85000,
	},
	{
		ID:                 "3",
		ExternalID:         "NHTSA-2023-003",
		Make:               "Ford",
		Model:              "F-150",
		Year:               2020,
		Title:              "Transmission Fluid Leak",
		Description:        "Transmission fluid may leak, potentially causing transmission failure.",
		Severity:           models.SeverityMedium,
		DateIssued:         "2023-01-10",
		AffectedComponents: []string{"Transmission", "Transmission Seals"},
		Remedy:             "Dealers will replace transmission seals and refill transmission fluid.",
		Contact:            "Ford Customer Service: 1-800-392-3673",
		URL:                "https://www.nhtsa.gov/recalls",
		AffectedCount:      45000,
	},
	{
		ID:                 "4",
		ExternalID:         "NHTSA-2023-004",
		Make:               "Chevrolet",
		Model:              "Malibu",
		Year:               2019,
		Title:              "Engine Stalling Issue",
		Description:        "Engine may stall unexpectedly while driving, increasing risk of crash.",
		Severity:           models.SeverityHigh,
		DateIssued:         "2023-04-05",
		AffectedComponents: []string{"Engine", "Fuel System", "ECU"},
		Remedy:             "Dealers will update engine software and replace fuel pump if necessary.",
		Contact:            "Chevrolet Customer Service: 1-800-222-1020",
		URL:                "https://www.nhtsa.gov/recalls",
		AffectedCount:      67000,
	},
	{
		ID:                 "5",
		ExternalID:         "NHTSA-2023-005",
		Make:               "Nissan",
		Model:              "Altima",
		Year:               2021,
		Title:              "Seat Belt Pretensioner Defect",
		Description:        "Seat belt pretensioner may not activate properly in a crash.",
		Severity:           models.SeverityMedium,
		DateIssued:         "2023-05-12",
		AffectedComponents: []string{"Seat Belt System", "Pretensioner"},
		Remedy:             "Dealers will replace the seat belt pretensioner assembly.",
		Contact:            "Nissan Customer Service: 1-800-647-7261",
		URL:                "https://www.nhtsa.gov/recalls",
		AffectedCount:      32000,
	},
}
