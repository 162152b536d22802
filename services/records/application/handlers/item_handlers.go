package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/upkeep/pkg/cache"
	"github.com/ghuser/upkeep/pkg/errhttp"
	"github.com/ghuser/upkeep/pkg/httpx"
	pkgvalidator "github.com/ghuser/upkeep/pkg/validator"
	appsvcs "github.com/ghuser/upkeep/services/records/application/services"
	"github.com/ghuser/upkeep/services/records/domain/models"
)

// CreateItemRequest is the request body for POST /items.
type CreateItemRequest struct {
	ItemKind  string `json:"itemKind"  validate:"omitempty,oneof=vehicle home" example:"vehicle"`
	Make      string `json:"make"      validate:"required,min=1,max=100" example:"Toyota"`
	Model     string `json:"model"     validate:"required,min=1,max=100" example:"Camry"`
	Year      int    `json:"year"      validate:"required,min=1900,max=2100" example:"2022"`
	Mileage   int    `json:"mileage"   validate:"gte=0" example:"10000"`
	HoursUsed int    `json:"hoursUsed" validate:"gte=0" example:"0"`
	Category  string `json:"category"  validate:"omitempty,oneof=hvac lawn appliance plumbing electrical pool generator security other" example:"hvac"`
	Image     string `json:"image"     validate:"omitempty,url"`
	// GenerateSchedule requests an initial maintenance schedule from the
	// completion service. The item is created even when generation fails.
	GenerateSchedule bool `json:"generateSchedule" example:"true"`
} // @name CreateItemRequest

// CreateItemResponse is returned on successful item creation.
type CreateItemResponse struct {
	Item              models.Item              `json:"item"`
	Tasks             []models.MaintenanceTask `json:"tasks"`
	ScheduleGenerated bool                     `json:"scheduleGenerated"`
	Warning           string                   `json:"warning,omitempty" example:"schedule generation failed"`
} // @name CreateItemResponse

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"make is required"`
} // @name ErrorResponse

// PostItemHandler handles POST /items requests.
type PostItemHandler struct {
	svc *appsvcs.Services
}

// NewPostItemHandler returns a PostItemHandler backed by the given services.
func NewPostItemHandler(svc *appsvcs.Services) *PostItemHandler {
	return &PostItemHandler{svc: svc}
}

// Execute registers a new item, optionally generating its initial schedule.
//
//	@Summary		Create item
//	@Description	Registers a vehicle or home-equipment item, optionally generating an initial maintenance schedule
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateItemRequest	true	"Item creation request"
//	@Success		201		{object}	CreateItemResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/items [post]
func (h *PostItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[CreateItemRequest](w, r)
	if !ok {
		return
	}

	kind := models.ItemKind(req.ItemKind)
	if kind == "" {
		kind = models.KindVehicle
	}
	usage := req.Mileage
	if kind == models.KindHome {
		usage = req.HoursUsed
	}
	item := models.NewItem(kind, req.Make, req.Model, req.Year, usage, req.Category)
	item.Image = req.Image

	var tasks []models.MaintenanceTask
	warning := ""
	if req.GenerateSchedule {
		if h.svc.Schedule == nil {
			warning = "schedule generation unavailable"
		} else {
			generated, err := h.svc.Schedule.Generate(r.Context(), item)
			if err != nil {
				warning = "schedule generation failed"
			} else {
				tasks = generated
			}
		}
	}

	saved, err := h.svc.Store.AddItemWithTasks(r.Context(), item, tasks)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, CreateItemResponse{
		Item:              saved,
		Tasks:             tasks,
		ScheduleGenerated: req.GenerateSchedule && warning == "",
		Warning:           warning,
	})
}

// ItemListResponse wraps the item collection.
type ItemListResponse struct {
	Items []models.Item `json:"items"`
} // @name ItemListResponse

// ListItemsHandler handles GET /items requests.
type ListItemsHandler struct {
	svc *appsvcs.Services
}

// NewListItemsHandler returns a ListItemsHandler backed by the given services.
func NewListItemsHandler(svc *appsvcs.Services) *ListItemsHandler {
	return &ListItemsHandler{svc: svc}
}

// Execute lists all items.
//
//	@Summary	List items
//	@Tags		items
//	@Produce	json
//	@Success	200	{object}	ItemListResponse
//	@Router		/items [get]
func (h *ListItemsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, ItemListResponse{Items: h.svc.Store.Items(r.Context())})
}

// GetItemHandler handles GET /items/{id} requests.
type GetItemHandler struct {
	svc *appsvcs.Services
}

// NewGetItemHandler returns a GetItemHandler backed by the given services.
func NewGetItemHandler(svc *appsvcs.Services) *GetItemHandler {
	return &GetItemHandler{svc: svc}
}

// Execute fetches one item by ID.
//
//	@Summary	Get item
//	@Tags		items
//	@Produce	json
//	@Param		id	path		string	true	"Item ID"
//	@Success	200	{object}	models.Item
//	@Failure	404	{object}	ErrorResponse
//	@Router		/items/{id} [get]
func (h *GetItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.Store.ItemByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

// UpdateItemRequest is the request body for PUT /items/{id}. All mutable
// fields are replaced; pending task count and last-updated are recomputed.
type UpdateItemRequest struct {
	ItemKind  string `json:"itemKind"  validate:"omitempty,oneof=vehicle home" example:"vehicle"`
	Make      string `json:"make"      validate:"required,min=1,max=100" example:"Toyota"`
	Model     string `json:"model"     validate:"required,min=1,max=100" example:"Camry"`
	Year      int    `json:"year"      validate:"required,min=1900,max=2100" example:"2022"`
	Mileage   int    `json:"mileage"   validate:"gte=0" example:"12000"`
	HoursUsed int    `json:"hoursUsed" validate:"gte=0" example:"0"`
	Category  string `json:"category"  validate:"omitempty,oneof=hvac lawn appliance plumbing electrical pool generator security other"`
	Image     string `json:"image"     validate:"omitempty,url"`
} // @name UpdateItemRequest

// PutItemHandler handles PUT /items/{id} requests.
type PutItemHandler struct {
	svc *appsvcs.Services
}

// NewPutItemHandler returns a PutItemHandler backed by the given services.
func NewPutItemHandler(svc *appsvcs.Services) *PutItemHandler {
	return &PutItemHandler{svc: svc}
}

// Execute replaces an item's mutable fields.
//
//	@Summary	Update item
//	@Tags		items
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Item ID"
//	@Param		request	body		UpdateItemRequest	true	"Item update request"
//	@Success	200		{object}	models.Item
//	@Failure	404		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/items/{id} [put]
func (h *PutItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[UpdateItemRequest](w, r)
	if !ok {
		return
	}

	kind := models.ItemKind(req.ItemKind)
	if kind == "" {
		kind = models.KindVehicle
	}
	item := models.Item{
		ID:        chi.URLParam(r, "id"),
		Kind:      kind,
		Make:      req.Make,
		Model:     req.Model,
		Year:      req.Year,
		Mileage:   req.Mileage,
		HoursUsed: req.HoursUsed,
		Category:  req.Category,
		Image:     req.Image,
	}

	updated, err := h.svc.Store.UpdateItem(r.Context(), item)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

// DeleteItemHandler handles DELETE /items/{id} requests.
type DeleteItemHandler struct {
	svc *appsvcs.Services
}

// NewDeleteItemHandler returns a DeleteItemHandler backed by the given services.
func NewDeleteItemHandler(svc *appsvcs.Services) *DeleteItemHandler {
	return &DeleteItemHandler{svc: svc}
}

// Execute deletes an item and all of its tasks.
//
//	@Summary	Delete item
//	@Tags		items
//	@Param		id	path	string	true	"Item ID"
//	@Success	204
//	@Failure	404	{object}	ErrorResponse
//	@Router		/items/{id} [delete]
func (h *DeleteItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Store.DeleteItem(r.Context(), id); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	if h.svc.Summaries != nil {
		_ = h.svc.Summaries.Delete(r.Context(), id)
	}
	httpx.NoContent(w)
}

// UpdateUsageRequest is the request body for PUT /items/{id}/usage.
type UpdateUsageRequest struct {
	Value int `json:"value" validate:"gte=0" example:"15000"`
} // @name UpdateUsageRequest

// PutUsageHandler handles PUT /items/{id}/usage requests.
type PutUsageHandler struct {
	svc *appsvcs.Services
}

// NewPutUsageHandler returns a PutUsageHandler backed by the given services.
func NewPutUsageHandler(svc *appsvcs.Services) *PutUsageHandler {
	return &PutUsageHandler{svc: svc}
}

// Execute updates an item's usage counter (mileage or hours, by kind) and
// promotes tasks whose usage threshold is now crossed to overdue.
//
//	@Summary	Update usage counter
//	@Tags		items
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Item ID"
//	@Param		request	body		UpdateUsageRequest	true	"New counter value"
//	@Success	200		{object}	models.Item
//	@Failure	404		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/items/{id}/usage [put]
func (h *PutUsageHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[UpdateUsageRequest](w, r)
	if !ok {
		return
	}

	item, err := h.svc.Store.UpdateUsageCounter(r.Context(), chi.URLParam(r, "id"), req.Value)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

// ItemSummaryResponse is the denormalized read model for GET /items/{id}/summary.
type ItemSummaryResponse struct {
	ID           string    `json:"id"`
	Kind         string    `json:"itemKind"`
	Make         string    `json:"make"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	PendingTasks int       `json:"pendingTasks"`
	LastUpdated  time.Time `json:"lastUpdated,omitzero"`
	Source       string    `json:"source" example:"cache"`
} // @name ItemSummaryResponse

// GetItemSummaryHandler handles GET /items/{id}/summary requests.
type GetItemSummaryHandler struct {
	svc *appsvcs.Services
}

// NewGetItemSummaryHandler returns a GetItemSummaryHandler backed by the given services.
func NewGetItemSummaryHandler(svc *appsvcs.Services) *GetItemSummaryHandler {
	return &GetItemSummaryHandler{svc: svc}
}

// Execute serves the cached item summary, falling back to the store on a miss
// and warming the cache for the next read.
//
//	@Summary	Get item summary
//	@Tags		items
//	@Produce	json
//	@Param		id	path		string	true	"Item ID"
//	@Success	200	{object}	ItemSummaryResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/items/{id}/summary [get]
func (h *GetItemSummaryHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if h.svc.Summaries != nil {
		cached, err := h.svc.Summaries.Get(r.Context(), id)
		if err == nil {
			httpx.JSON(w, http.StatusOK, ItemSummaryResponse{
				ID:           cached.ID,
				Kind:         cached.Kind,
				Make:         cached.Make,
				Model:        cached.Model,
				Year:         cached.Year,
				PendingTasks: cached.PendingTaskCount,
				LastUpdated:  cached.LastUpdated,
				Source:       "cache",
			})
			return
		}
		// Cache miss or a degraded cache both fall through to the store.
	}

	item, err := h.svc.Store.ItemByID(r.Context(), id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	if h.svc.Summaries != nil {
		_ = h.svc.Summaries.Set(r.Context(), &cache.CachedItemSummary{
			ID:               item.ID,
			Kind:             string(item.Kind),
			Make:             item.Make,
			Model:            item.Model,
			Year:             item.Year,
			PendingTaskCount: item.PendingTaskCount,
			LastUpdated:      item.LastUpdated,
		})
	}

	httpx.JSON(w, http.StatusOK, ItemSummaryResponse{
		ID:           item.ID,
		Kind:         string(item.Kind),
		Make:         item.Make,
		Model:        item.Model,
		Year:         item.Year,
		PendingTasks: item.PendingTaskCount,
		LastUpdated:  item.LastUpdated,
		Source:       "store",
	})
}
