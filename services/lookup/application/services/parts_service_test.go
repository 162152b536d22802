package services

import (
	"context"
	"errors"
	"testing"

	"github.com/ghuser/upkeep/pkg/completion"
	"github.com/ghuser/upkeep/pkg/config"
	"github.com/ghuser/upkeep/pkg/logger"
	"github.com/ghuser/upkeep/services/records/domain/models"
)

type fakeCompleter struct {
	response string
	err      error
}

func (f *fakeCompleter) Complete(_ context.Context, _ []completion.Message) (string, error) {
	return f.response, f.err
}

func testLogger() logger.Logger {
	return logger.New(&config.Config{LogLevel: "error"})
}

func TestPartsSearch_CompletionResults(t *testing.T) {
	fake := &fakeCompleter{response: "```json\n[{\"name\":\"Valvoline MaxLife 5W-30\",\"tier\":\"mid\",\"price\":24.99,\"partNumber\":\"VV150-6PK\",\"source\":\"AutoZone\"}]\n```"}
	svc := NewPartsService(fake, nil, testLogger())

	parts, source := svc.Search(context.Background(), "Toyota", "Camry", 2022, "oil")
	if source != SourceCompletion {
		t.Fatalf("source = %q, want completion", source)
	}
	if len(parts) != 1 {
		t.Fatalf("got %d parts, want 1", len(parts))
	}
	p := parts[0]
	if p.ID == "" {
		t.Error("expected generated part ID")
	}
	if p.Name != "Valvoline MaxLife 5W-30" || p.Tier != models.TierMid || p.Price != 24.99 {
		t.Errorf("part = %+v", p)
	}
	if p.URL != "https://example.com/autozone" {
		t.Errorf("url = %q, want retailer slug link", p.URL)
	}
}

func TestPartsSearch_LenientEntryDefaults(t *testing.T) {
	fake := &fakeCompleter{response: `[{"tier":"platinum","price":"19.99"},{"price":-3}]`}
	svc := NewPartsService(fake, nil, testLogger())

	parts, source := svc.Search(context.Background(), "Toyota", "Camry", 2022, "oil filter")
	if source != SourceCompletion {
		t.Fatalf("source = %q, want completion despite sloppy entries", source)
	}
	if len(parts) != 2 {
		t.Fatalf("got %d parts, want 2", len(parts))
	}
	if parts[0].Name != "oil filter for 2022 Toyota Camry" {
		t.Errorf("defaulted name = %q", parts[0].Name)
	}
	if parts[0].Tier != models.TierMid {
		t.Errorf("unknown tier coerced to %q, want mid", parts[0].Tier)
	}
	if parts[0].Price != 19.99 {
		t.Errorf("quoted price = %v, want 19.99", parts[0].Price)
	}
	if parts[1].Price != 25.99 {
		t.Errorf("negative price defaulted to %v, want 25.99", parts[1].Price)
	}
	if parts[1].Source != "AutoZone" {
		t.Errorf("defaulted source = %q", parts[1].Source)
	}
}

func TestPartsSearch_FallbackPaths(t *testing.T) {
	tests := []struct {
		name string
		c    Completer
	}{
		{"transport error", &fakeCompleter{err: errors.New("boom")}},
		{"non-JSON payload", &fakeCompleter{response: "sorry, I cannot help"}},
		{"non-array payload", &fakeCompleter{response: `{"name":"one part"}`}},
		{"nil client", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewPartsService(tt.c, nil, testLogger())
			parts, source := svc.Search(context.Background(), "Toyota", "Camry", 2022, "brake pads")
			if source != SourceFallback {
				t.Fatalf("source = %q, want fallback", source)
			}
			if len(parts) != 15 {
				t.Fatalf("got %d mock parts, want 15 (5 retailers x 3 tiers)", len(parts))
			}
		})
	}
}
