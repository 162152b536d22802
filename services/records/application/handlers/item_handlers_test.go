package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/upkeep/pkg/completion"
	"github.com/ghuser/upkeep/pkg/config"
	"github.com/ghuser/upkeep/pkg/logger"
	appsvcs "github.com/ghuser/upkeep/services/records/application/services"
	"github.com/ghuser/upkeep/services/records/domain/models"
	"github.com/ghuser/upkeep/services/records/infrastructure/persistence/memory"
	"github.com/ghuser/upkeep/services/schedule"
)

type fakeCompleter struct {
	response string
	err      error
}

func (f *fakeCompleter) Complete(_ context.Context, _ []completion.Message) (string, error) {
	return f.response, f.err
}

func newTestServices(t *testing.T, c schedule.Completer) *appsvcs.Services {
	t.Helper()
	log := logger.New(&config.Config{LogLevel: "error"})
	svcs := &appsvcs.Services{
		Store: appsvcs.NewStoreService(memory.NewSnapshotRepository(), log),
	}
	if c != nil {
		svcs.Schedule = schedule.NewGenerator(c, log)
	}
	return svcs
}

func testRouter(svcs *appsvcs.Services) chi.Router {
	r := chi.NewRouter()
	r.Post("/items", NewPostItemHandler(svcs).Execute)
	r.Get("/items", NewListItemsHandler(svcs).Execute)
	r.Get("/items/{id}", NewGetItemHandler(svcs).Execute)
	r.Delete("/items/{id}", NewDeleteItemHandler(svcs).Execute)
	r.Put("/items/{id}/usage", NewPutUsageHandler(svcs).Execute)
	r.Get("/items/{id}/summary", NewGetItemSummaryHandler(svcs).Execute)
	return r
}

func doJSON(t *testing.T, r chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPostItem_WithGeneratedSchedule(t *testing.T) {
	fake := &fakeCompleter{response: `[{"title":"Oil Change","description":"Replace oil","intervalMonths":6,"intervalMiles":5000}]`}
	svcs := newTestServices(t, fake)
	r := testRouter(svcs)

	w := doJSON(t, r, http.MethodPost, "/items", CreateItemRequest{
		Make: "Toyota", Model: "Camry", Year: 2022, Mileage: 10000, GenerateSchedule: true,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp CreateItemResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.ScheduleGenerated || resp.Warning != "" {
		t.Errorf("scheduleGenerated = %v, warning = %q", resp.ScheduleGenerated, resp.Warning)
	}
	if len(resp.Tasks) != 1 || resp.Tasks[0].Title != "Oil Change" {
		t.Fatalf("tasks = %+v", resp.Tasks)
	}
	if resp.Item.PendingTaskCount != 1 {
		t.Errorf("pending count = %d, want 1", resp.Item.PendingTaskCount)
	}
	if resp.Item.Kind != models.KindVehicle {
		t.Errorf("kind = %q, want vehicle default", resp.Item.Kind)
	}
}

func TestPostItem_GenerationFailureStillCreatesItem(t *testing.T) {
	fake := &fakeCompleter{err: errors.New("upstream down")}
	svcs := newTestServices(t, fake)
	r := testRouter(svcs)

	w := doJSON(t, r, http.MethodPost, "/items", CreateItemRequest{
		Make: "Toyota", Model: "Camry", Year: 2022, GenerateSchedule: true,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, item must be created despite generation failure", w.Code)
	}

	var resp CreateItemResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ScheduleGenerated || resp.Warning == "" {
		t.Errorf("scheduleGenerated = %v, warning = %q, want failure surfaced", resp.ScheduleGenerated, resp.Warning)
	}
	if len(resp.Tasks) != 0 {
		t.Errorf("tasks = %+v, want none", resp.Tasks)
	}

	if items := svcs.Store.Items(context.Background()); len(items) != 1 {
		t.Fatalf("stored items = %d, want 1", len(items))
	}
}

func TestPostItem_NoGeneratorConfigured(t *testing.T) {
	svcs := newTestServices(t, nil)
	r := testRouter(svcs)

	w := doJSON(t, r, http.MethodPost, "/items", CreateItemRequest{
		Make: "Toyota", Model: "Camry", Year: 2022, GenerateSchedule: true,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
	var resp CreateItemResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.ScheduleGenerated || resp.Warning == "" {
		t.Errorf("scheduleGenerated = %v, warning = %q", resp.ScheduleGenerated, resp.Warning)
	}
}

func TestPostItem_ValidationFailure(t *testing.T) {
	svcs := newTestServices(t, nil)
	r := testRouter(svcs)

	w := doJSON(t, r, http.MethodPost, "/items", CreateItemRequest{Model: "Camry", Year: 2022})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422 for missing make", w.Code)
	}
}

func TestGetItem_NotFound(t *testing.T) {
	svcs := newTestServices(t, nil)
	r := testRouter(svcs)

	w := doJSON(t, r, http.MethodGet, "/items/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestPutUsage_PromotesOverdue(t *testing.T) {
	svcs := newTestServices(t, nil)
	r := testRouter(svcs)
	ctx := context.Background()

	item, err := svcs.Store.AddItemWithTasks(ctx,
		models.Item{ID: "item-1", Kind: models.KindVehicle, Make: "Toyota", Model: "Camry", Year: 2022, Mileage: 10000},
		[]models.MaintenanceTask{{Title: "Oil Change", Status: models.StatusUpcoming, NextDueMileage: 15000}})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := doJSON(t, r, http.MethodPut, "/items/"+item.ID+"/usage", UpdateUsageRequest{Value: 16000})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var got models.Item
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.Mileage != 16000 {
		t.Errorf("mileage = %d, want 16000", got.Mileage)
	}

	tasks, _ := svcs.Store.TasksForItem(ctx, item.ID)
	if tasks[0].Status != models.StatusOverdue {
		t.Errorf("task status = %q, want overdue", tasks[0].Status)
	}
}

func TestDeleteItem(t *testing.T) {
	svcs := newTestServices(t, nil)
	r := testRouter(svcs)

	item, _ := svcs.Store.AddItem(context.Background(),
		models.Item{Make: "Honda", Model: "Civic", Year: 2021})

	w := doJSON(t, r, http.MethodDelete, "/items/"+item.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}

	w = doJSON(t, r, http.MethodDelete, "/items/"+item.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", w.Code)
	}
}

func TestGetItemSummary_StoreFallbackWithoutCache(t *testing.T) {
	svcs := newTestServices(t, nil)
	r := testRouter(svcs)

	item, _ := svcs.Store.AddItemWithTasks(context.Background(),
		models.Item{Make: "Toyota", Model: "Camry", Year: 2022},
		[]models.MaintenanceTask{{Title: "Oil Change"}})

	w := doJSON(t, r, http.MethodGet, "/items/"+item.ID+"/summary", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp ItemSummaryResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Source != "store" {
		t.Errorf("source = %q, want store when no cache is wired", resp.Source)
	}
	if resp.PendingTasks != 1 || resp.Make != "Toyota" {
		t.Errorf("summary = %+v", resp)
	}
}
