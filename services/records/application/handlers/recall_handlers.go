package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/upkeep/pkg/errhttp"
	"github.com/ghuser/upkeep/pkg/httpx"
	pkgvalidator "github.com/ghuser/upkeep/pkg/validator"
	appsvcs "github.com/ghuser/upkeep/services/records/application/services"
	"github.com/ghuser/upkeep/services/records/domain/models"
)

// RecallListResponse wraps a recall collection.
type RecallListResponse struct {
	Recalls []models.Recall `json:"recalls"`
} // @name RecallListResponse

// GetItemRecallsHandler handles GET /items/{id}/recalls requests.
type GetItemRecallsHandler struct {
	svc *appsvcs.Services
}

// NewGetItemRecallsHandler returns a GetItemRecallsHandler backed by the given services.
func NewGetItemRecallsHandler(svc *appsvcs.Services) *GetItemRecallsHandler {
	return &GetItemRecallsHandler{svc: svc}
}

// Execute lists stored recalls matching one item.
//
//	@Summary	List item recalls
//	@Tags		recalls
//	@Produce	json
//	@Param		id	path		string	true	"Item ID"
//	@Success	200	{object}	RecallListResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/items/{id}/recalls [get]
func (h *GetItemRecallsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	recalls, err := h.svc.Store.RecallsForItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, RecallListResponse{Recalls: recalls})
}

// SaveRecallsRequest is the request body for POST /recalls, typically the
// result set of a recall search the client wants pinned to the store.
type SaveRecallsRequest struct {
	Recalls []models.Recall `json:"recalls" validate:"required,min=1"`
} // @name SaveRecallsRequest

// PostRecallsHandler handles POST /recalls requests.
type PostRecallsHandler struct {
	svc *appsvcs.Services
}

// NewPostRecallsHandler returns a PostRecallsHandler backed by the given services.
func NewPostRecallsHandler(svc *appsvcs.Services) *PostRecallsHandler {
	return &PostRecallsHandler{svc: svc}
}

// Execute stores recall notices.
//
//	@Summary	Save recalls
//	@Tags		recalls
//	@Accept		json
//	@Produce	json
//	@Param		request	body		SaveRecallsRequest	true	"Recalls to store"
//	@Success	201		{object}	RecallListResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/recalls [post]
func (h *PostRecallsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[SaveRecallsRequest](w, r)
	if !ok {
		return
	}

	if err := h.svc.Store.AddRecalls(r.Context(), req.Recalls); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, RecallListResponse{Recalls: req.Recalls})
}

// DeleteRecallsHandler handles DELETE /recalls requests.
type DeleteRecallsHandler struct {
	svc *appsvcs.Services
}

// NewDeleteRecallsHandler returns a DeleteRecallsHandler backed by the given services.
func NewDeleteRecallsHandler(svc *appsvcs.Services) *DeleteRecallsHandler {
	return &DeleteRecallsHandler{svc: svc}
}

// Execute clears all stored recalls.
//
//	@Summary	Clear recalls
//	@Tags		recalls
//	@Success	204
//	@Router		/recalls [delete]
func (h *DeleteRecallsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Store.ClearRecalls(r.Context()); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.NoContent(w)
}
