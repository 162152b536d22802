package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ghuser/upkeep/pkg/completion"
	"github.com/ghuser/upkeep/pkg/config"
	"github.com/ghuser/upkeep/pkg/logger"
	"github.com/ghuser/upkeep/services/records/domain/models"
)

type fakeCompleter struct {
	response string
	err      error
	gotMsgs  []completion.Message
}

func (f *fakeCompleter) Complete(_ context.Context, msgs []completion.Message) (string, error) {
	f.gotMsgs = msgs
	return f.response, f.err
}

func testGenerator(c Completer) *Generator {
	g := NewGenerator(c, logger.New(&config.Config{LogLevel: "error"}))
	g.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	return g
}

func vehicleItem() models.Item {
	return models.Item{
		ID:      "item-1",
		Kind:    models.KindVehicle,
		Make:    "Toyota",
		Model:   "Camry",
		Year:    2022,
		Mileage: 10000,
	}
}

func TestGenerate_FencedPayload(t *testing.T) {
	fake := &fakeCompleter{response: "```json\n[{\"title\":\"Oil Change\",\"description\":\"Replace oil\",\"intervalMonths\":6,\"intervalMiles\":5000}]\n```"}
	g := testGenerator(fake)

	tasks, err := g.Generate(context.Background(), vehicleItem())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("got %d tasks, want 1", len(tasks))
	}

	task := tasks[0]
	if task.ID == "" {
		t.Error("expected generated task ID")
	}
	if task.ItemID != "item-1" || task.ItemLabel != "2022 Toyota Camry" {
		t.Errorf("item linkage = %q/%q", task.ItemID, task.ItemLabel)
	}
	if task.Status != models.StatusUpcoming {
		t.Errorf("status = %q, fresh tasks must be upcoming", task.Status)
	}
	if task.NextDueMileage != 15000 {
		t.Errorf("nextDueMileage = %d, want anchored at 10000+5000", task.NextDueMileage)
	}
	wantDue := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	if !task.NextDueDate.Equal(wantDue) {
		t.Errorf("nextDueDate = %v, want %v", task.NextDueDate, wantDue)
	}

	if len(fake.gotMsgs) != 2 || fake.gotMsgs[0].Role != completion.RoleSystem {
		t.Fatalf("messages = %+v, want system + user pair", fake.gotMsgs)
	}
}

func TestGenerate_DropsForeignAxisInterval(t *testing.T) {
	payload := `[{"title":"Filter Replacement","intervalMonths":3,"intervalMiles":5000,"intervalHours":50}]`

	t.Run("vehicle keeps miles", func(t *testing.T) {
		g := testGenerator(&fakeCompleter{response: payload})
		tasks, err := g.Generate(context.Background(), vehicleItem())
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if tasks[0].IntervalMiles != 5000 || tasks[0].IntervalHours != 0 {
			t.Errorf("vehicle intervals = miles %d hours %d, want hours dropped",
				tasks[0].IntervalMiles, tasks[0].IntervalHours)
		}
	})

	t.Run("home keeps hours", func(t *testing.T) {
		g := testGenerator(&fakeCompleter{response: payload})
		item := models.Item{ID: "mower", Kind: models.KindHome, Make: "Honda", Model: "HRX217", Year: 2023, HoursUsed: 20, Category: "lawn"}
		tasks, err := g.Generate(context.Background(), item)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if tasks[0].IntervalHours != 50 || tasks[0].IntervalMiles != 0 {
			t.Errorf("home intervals = miles %d hours %d, want miles dropped",
				tasks[0].IntervalMiles, tasks[0].IntervalHours)
		}
		if tasks[0].NextDueHours != 70 {
			t.Errorf("nextDueHours = %d, want 20+50", tasks[0].NextDueHours)
		}
	})
}

func TestGenerate_Failures(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
	}{
		{"transport error", "", errors.New("boom")},
		{"not JSON", "here is your schedule!", nil},
		{"not an array", `{"title":"Oil Change"}`, nil},
		{"entry not an object", `[42]`, nil},
		{"missing title", `[{"description":"no title"}]`, nil},
		{"empty title", `[{"title":""}]`, nil},
		{"non-numeric interval", `[{"title":"Oil Change","intervalMiles":"soon"}]`, nil},
		{"negative interval", `[{"title":"Oil Change","intervalMiles":-5}]`, nil},
		{"one bad entry fails the batch", `[{"title":"Good","intervalMonths":6},{"title":"Bad","intervalMonths":{}}]`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testGenerator(&fakeCompleter{response: tt.response, err: tt.err})
			tasks, err := g.Generate(context.Background(), vehicleItem())
			if !errors.Is(err, ErrGenerationFailed) {
				t.Fatalf("err = %v, want ErrGenerationFailed", err)
			}
			if tasks != nil {
				t.Fatalf("tasks = %+v, want none on failure", tasks)
			}
		})
	}
}

func TestGenerate_CoercesNumericStrings(t *testing.T) {
	g := testGenerator(&fakeCompleter{response: `[{"title":"Oil Change","intervalMonths":"6","intervalMiles":"5000"}]`})

	tasks, err := g.Generate(context.Background(), vehicleItem())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if tasks[0].IntervalMonths != 6 || tasks[0].IntervalMiles != 5000 {
		t.Errorf("intervals = %d/%d, want quoted numbers coerced", tasks[0].IntervalMonths, tasks[0].IntervalMiles)
	}
}

func TestBuildMessages_KindSelectsPrompt(t *testing.T) {
	vehicleMsgs := buildMessages(vehicleItem())
	if vehicleMsgs[0].Content != vehicleSystemPrompt {
		t.Errorf("vehicle system prompt = %q", vehicleMsgs[0].Content)
	}

	home := models.Item{Kind: models.KindHome, Make: "Carrier", Model: "Infinity", Year: 2021, Category: "hvac"}
	homeMsgs := buildMessages(home)
	if homeMsgs[0].Content != homeSystemPrompt {
		t.Errorf("home system prompt = %q", homeMsgs[0].Content)
	}
}
