package handlers

import (
	"net/http"

	"github.com/ghuser/upkeep/pkg/errhttp"
	"github.com/ghuser/upkeep/pkg/httpx"
	pkgvalidator "github.com/ghuser/upkeep/pkg/validator"
	appsvcs "github.com/ghuser/upkeep/services/lookup/application/services"
)

// SearchRecallsRequest is the request body for POST /recalls/search.
type SearchRecallsRequest struct {
	Make  string `json:"make"  validate:"required,min=1,max=100" example:"Toyota"`
	Model string `json:"model" validate:"required,min=1,max=100" example:"Camry"`
	Year  int    `json:"year"  validate:"required,min=1900,max=2100" example:"2022"`
} // @name SearchRecallsRequest

// SearchRecallsHandler handles POST /recalls/search requests.
type SearchRecallsHandler struct {
	svc *appsvcs.Services
}

// NewSearchRecallsHandler returns a SearchRecallsHandler backed by the given services.
func NewSearchRecallsHandler(svc *appsvcs.Services) *SearchRecallsHandler {
	return &SearchRecallsHandler{svc: svc}
}

// Execute searches safety recalls for a vehicle.
//
//	@Summary		Search recalls
//	@Description	Searches safety recalls matching make, model, and year
//	@Tags			lookup
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SearchRecallsRequest	true	"Recall search request"
//	@Success		200		{object}	services.RecallSearchResult
//	@Failure		400		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/recalls/search [post]
func (h *SearchRecallsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[SearchRecallsRequest](w, r)
	if !ok {
		return
	}

	result, err := h.svc.Recalls.Search(r.Context(), req.Make, req.Model, req.Year)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}
