package models

import "strings"

// RecallSeverity grades the safety impact of a recall.
type RecallSeverity string

const (
	SeverityLow      RecallSeverity = "low"
	SeverityMedium   RecallSeverity = "medium"
	SeverityHigh     RecallSeverity = "high"
	SeverityCritical RecallSeverity = "critical"
)

// Recall is a manufacturer recall notice. Field names follow the regulator
// feed the records were originally shaped after, hence the snake_case.
type Recall struct {
	ID                 string         `json:"id"`
	ExternalID         string         `json:"external_id,omitempty"`
	Make               string         `json:"make"`
	Model              string         `json:"model"`
	Year               int            `json:"year"`
	Title              string         `json:"title"`
	Description        string         `json:"description"`
	Severity           RecallSeverity `json:"severity"`
	DateIssued         string         `json:"date_issued"`
	AffectedComponents []string       `json:"affected_components"`
	Remedy             string         `json:"remedy_description,omitempty"`
	Contact            string         `json:"manufacturer_contact,omitempty"`
	URL                string         `json:"url,omitempty"`
	AffectedCount      int            `json:"affected_vehicles_count,omitempty"`
}

// Matches reports whether the recall applies to the given item: make and
// model compared case-insensitively, year compared exactly.
func (r Recall) Matches(item Item) bool {
	return strings.EqualFold(r.Make, item.Make) &&
		strings.EqualFold(r.Model, item.Model) &&
		r.Year == item.Year
}
