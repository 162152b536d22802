package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/upkeep/pkg/errhttp"
	"github.com/ghuser/upkeep/pkg/httpx"
	pkgvalidator "github.com/ghuser/upkeep/pkg/validator"
	appsvcs "github.com/ghuser/upkeep/services/records/application/services"
	"github.com/ghuser/upkeep/services/records/domain/models"
)

// CreateTaskRequest is the request body for POST /tasks. Due markers are
// computed server-side from the intervals and the owning item's usage counter.
type CreateTaskRequest struct {
	ItemID         string `json:"itemId"         validate:"required" example:"123e4567-e89b-12d3-a456-426614174000"`
	Title          string `json:"title"          validate:"required,min=1,max=200" example:"Oil Change"`
	Description    string `json:"description"    validate:"max=2000" example:"Replace engine oil and filter"`
	IntervalMonths int    `json:"intervalMonths" validate:"gte=0" example:"6"`
	IntervalMiles  int    `json:"intervalMiles"  validate:"gte=0" example:"5000"`
	IntervalHours  int    `json:"intervalHours"  validate:"gte=0" example:"0"`
} // @name CreateTaskRequest

// PostTaskHandler handles POST /tasks requests.
type PostTaskHandler struct {
	svc *appsvcs.Services
}

// NewPostTaskHandler returns a PostTaskHandler backed by the given services.
func NewPostTaskHandler(svc *appsvcs.Services) *PostTaskHandler {
	return &PostTaskHandler{svc: svc}
}

// Execute creates a maintenance task for an existing item.
//
//	@Summary		Create task
//	@Description	Creates a maintenance task; next-due markers are derived from the intervals
//	@Tags			tasks
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateTaskRequest	true	"Task creation request"
//	@Success		201		{object}	models.MaintenanceTask
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/tasks [post]
func (h *PostTaskHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[CreateTaskRequest](w, r)
	if !ok {
		return
	}

	item, err := h.svc.Store.ItemByID(r.Context(), req.ItemID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	task := models.MaintenanceTask{
		ID:             models.NewTaskID(),
		ItemID:         item.ID,
		ItemLabel:      item.Label(),
		Title:          req.Title,
		Description:    req.Description,
		IntervalMonths: req.IntervalMonths,
		Status:         models.StatusUpcoming,
	}
	if item.Kind == models.KindHome {
		task.IntervalHours = req.IntervalHours
	} else {
		task.IntervalMiles = req.IntervalMiles
	}
	task.NextDueDate, task.NextDueMileage, task.NextDueHours = task.NextDue(time.Now().UTC(), item.UsageValue())

	saved, err := h.svc.Store.AddTask(r.Context(), task)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, saved)
}

// TaskListResponse wraps the task collection.
type TaskListResponse struct {
	Tasks []models.MaintenanceTask `json:"tasks"`
} // @name TaskListResponse

// ListTasksHandler handles GET /tasks requests.
type ListTasksHandler struct {
	svc *appsvcs.Services
}

// NewListTasksHandler returns a ListTasksHandler backed by the given services.
func NewListTasksHandler(svc *appsvcs.Services) *ListTasksHandler {
	return &ListTasksHandler{svc: svc}
}

// Execute lists tasks, optionally filtered by status.
//
//	@Summary	List tasks
//	@Tags		tasks
//	@Produce	json
//	@Param		status	query		string	false	"Filter by status"	Enums(scheduled, upcoming, overdue, completed)
//	@Success	200		{object}	TaskListResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/tasks [get]
func (h *ListTasksHandler) Execute(w http.ResponseWriter, r *http.Request) {
	status := models.TaskStatus(r.URL.Query().Get("status"))
	switch status {
	case "", models.StatusScheduled, models.StatusUpcoming, models.StatusOverdue, models.StatusCompleted:
	default:
		httpx.JSONError(w, http.StatusUnprocessableEntity, "unknown status filter")
		return
	}
	httpx.JSON(w, http.StatusOK, TaskListResponse{Tasks: h.svc.Store.Tasks(r.Context(), status)})
}

// GetItemTasksHandler handles GET /items/{id}/tasks requests.
type GetItemTasksHandler struct {
	svc *appsvcs.Services
}

// NewGetItemTasksHandler returns a GetItemTasksHandler backed by the given services.
func NewGetItemTasksHandler(svc *appsvcs.Services) *GetItemTasksHandler {
	return &GetItemTasksHandler{svc: svc}
}

// Execute lists one item's tasks in due-date order.
//
//	@Summary	List item tasks
//	@Tags		tasks
//	@Produce	json
//	@Param		id	path		string	true	"Item ID"
//	@Success	200	{object}	TaskListResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/items/{id}/tasks [get]
func (h *GetItemTasksHandler) Execute(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.svc.Store.TasksForItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, TaskListResponse{Tasks: tasks})
}

// UpdateTaskRequest is the request body for PUT /tasks/{id}.
type UpdateTaskRequest struct {
	ItemID         string    `json:"itemId"         validate:"required"`
	Title          string    `json:"title"          validate:"required,min=1,max=200"`
	Description    string    `json:"description"    validate:"max=2000"`
	IntervalMonths int       `json:"intervalMonths" validate:"gte=0"`
	IntervalMiles  int       `json:"intervalMiles"  validate:"gte=0"`
	IntervalHours  int       `json:"intervalHours"  validate:"gte=0"`
	Status         string    `json:"status"         validate:"required,oneof=scheduled upcoming overdue completed"`
	NextDueDate    time.Time `json:"nextDueDate"`
	NextDueMileage int       `json:"nextDueMileage" validate:"gte=0"`
	NextDueHours   int       `json:"nextDueHours"   validate:"gte=0"`
} // @name UpdateTaskRequest

// PutTaskHandler handles PUT /tasks/{id} requests.
type PutTaskHandler struct {
	svc *appsvcs.Services
}

// NewPutTaskHandler returns a PutTaskHandler backed by the given services.
func NewPutTaskHandler(svc *appsvcs.Services) *PutTaskHandler {
	return &PutTaskHandler{svc: svc}
}

// Execute replaces a task's mutable fields.
//
//	@Summary	Update task
//	@Tags		tasks
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Task ID"
//	@Param		request	body		UpdateTaskRequest	true	"Task update request"
//	@Success	200		{object}	models.MaintenanceTask
//	@Failure	404		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/tasks/{id} [put]
func (h *PutTaskHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[UpdateTaskRequest](w, r)
	if !ok {
		return
	}

	task := models.MaintenanceTask{
		ID:             chi.URLParam(r, "id"),
		ItemID:         req.ItemID,
		Title:          req.Title,
		Description:    req.Description,
		IntervalMonths: req.IntervalMonths,
		IntervalMiles:  req.IntervalMiles,
		IntervalHours:  req.IntervalHours,
		Status:         models.TaskStatus(req.Status),
		NextDueDate:    req.NextDueDate,
		NextDueMileage: req.NextDueMileage,
		NextDueHours:   req.NextDueHours,
	}

	updated, err := h.svc.Store.UpdateTask(r.Context(), task)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

// DeleteTaskHandler handles DELETE /tasks/{id} requests.
type DeleteTaskHandler struct {
	svc *appsvcs.Services
}

// NewDeleteTaskHandler returns a DeleteTaskHandler backed by the given services.
func NewDeleteTaskHandler(svc *appsvcs.Services) *DeleteTaskHandler {
	return &DeleteTaskHandler{svc: svc}
}

// Execute deletes a task.
//
//	@Summary	Delete task
//	@Tags		tasks
//	@Param		id	path	string	true	"Task ID"
//	@Success	204
//	@Failure	404	{object}	ErrorResponse
//	@Router		/tasks/{id} [delete]
func (h *DeleteTaskHandler) Execute(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Store.DeleteTask(r.Context(), chi.URLParam(r, "id")); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.NoContent(w)
}

// CompleteTaskRequest is the request body for POST /tasks/{id}/complete.
type CompleteTaskRequest struct {
	UsageValue int `json:"usageValue" validate:"gte=0" example:"15000"`
} // @name CompleteTaskRequest

// CompleteTaskResponse returns the completed record and its scheduled successor.
type CompleteTaskResponse struct {
	Completed models.MaintenanceTask `json:"completed"`
	Next      models.MaintenanceTask `json:"next"`
} // @name CompleteTaskResponse

// CompleteTaskHandler handles POST /tasks/{id}/complete requests.
type CompleteTaskHandler struct {
	svc *appsvcs.Services
}

// NewCompleteTaskHandler returns a CompleteTaskHandler backed by the given services.
func NewCompleteTaskHandler(svc *appsvcs.Services) *CompleteTaskHandler {
	return &CompleteTaskHandler{svc: svc}
}

// Execute completes a task at the given usage counter value and schedules the
// next occurrence.
//
//	@Summary		Complete task
//	@Description	Marks the task completed and creates the next occurrence with a fresh ID
//	@Tags			tasks
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Task ID"
//	@Param			request	body		CompleteTaskRequest	true	"Completion details"
//	@Success		200		{object}	CompleteTaskResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/tasks/{id}/complete [post]
func (h *CompleteTaskHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[CompleteTaskRequest](w, r)
	if !ok {
		return
	}

	completed, next, err := h.svc.Store.CompleteTask(r.Context(), chi.URLParam(r, "id"), req.UsageValue)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, CompleteTaskResponse{Completed: completed, Next: next})
}
