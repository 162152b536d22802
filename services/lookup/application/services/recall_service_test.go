package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ghuser/upkeep/services/records/domain/models"
)

func newTestRecallService() *RecallService {
	svc := NewRecallService()
	svc.delay = 0
	return svc
}

func TestRecallSearch_Filtering(t *testing.T) {
	svc := newTestRecallService()
	ctx := context.Background()

	t.Run("case-insensitive make and model", func(t *testing.T) {
		result, err := svc.Search(ctx, "toyota", "CAMRY", 2022)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if result.TotalCount != 1 || len(result.Recalls) != 1 {
			t.Fatalf("result = %+v, want exactly one match", result)
		}
		r := result.Recalls[0]
		if r.Title != "Airbag Inflator Defect" || r.Severity != models.SeverityCritical {
			t.Errorf("recall = %+v", r)
		}
		if result.SearchParams.Make != "toyota" || result.SearchParams.Year != 2022 {
			t.Errorf("search params not echoed: %+v", result.SearchParams)
		}
	})

	t.Run("year must match exactly", func(t *testing.T) {
		result, err := svc.Search(ctx, "Toyota", "Camry", 2023)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if result.TotalCount != 0 {
			t.Fatalf("result = %+v, want no matches for wrong year", result)
		}
		if result.Recalls == nil {
			t.Error("recalls should be an empty list, not nil")
		}
	})

	t.Run("unknown vehicle yields empty result", func(t *testing.T) {
		result, err := svc.Search(ctx, "DeLorean", "DMC-12", 1981)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if result.TotalCount != 0 {
			t.Fatalf("result = %+v", result)
		}
	})
}

func TestRecallSearch_ContextCancellation(t *testing.T) {
	svc := NewRecallService()
	svc.delay = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Search(ctx, "Toyota", "Camry", 2022)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestSeverityColor(t *testing.T) {
	tests := []struct {
		severity models.RecallSeverity
		want     string
	}{
		{models.SeverityCritical, "#DC2626"},
		{models.SeverityHigh, "#EA580C"},
		{models.SeverityMedium, "#D97706"},
		{models.SeverityLow, "#65A30D"},
		{models.RecallSeverity("bogus"), "#6B7280"},
	}
	for _, tt := range tests {
		if got := SeverityColor(tt.severity); got != tt.want {
			t.Errorf("SeverityColor(%q) = %q, want %q", tt.severity, got, tt.want)
		}
	}
}

func TestSeverityLabel(t *testing.T) {
	tests := []struct {
		severity models.RecallSeverity
		want     string
	}{
		{models.SeverityCritical, "Critical"},
		{models.SeverityHigh, "High"},
		{models.SeverityMedium, "Medium"},
		{models.SeverityLow, "Low"},
		{models.RecallSeverity(""), "Unknown"},
	}
	for _, tt := range tests {
		if got := SeverityLabel(tt.severity); got != tt.want {
			t.Errorf("SeverityLabel(%q) = %q, want %q", tt.severity, got, tt.want)
		}
	}
}
