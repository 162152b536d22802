package handlers

import (
	"net/http"

	"github.com/ghuser/upkeep/pkg/httpx"
	pkgvalidator "github.com/ghuser/upkeep/pkg/validator"
	appsvcs "github.com/ghuser/upkeep/services/lookup/application/services"
	"github.com/ghuser/upkeep/services/records/domain/models"
)

// SearchPartsRequest is the request body for POST /parts/search.
type SearchPartsRequest struct {
	Make  string `json:"make"  validate:"required,min=1,max=100" example:"Toyota"`
	Model string `json:"model" validate:"required,min=1,max=100" example:"Camry"`
	Year  int    `json:"year"  validate:"required,min=1900,max=2100" example:"2022"`
	Query string `json:"query" validate:"required,min=2,max=200" example:"oil filter"`
} // @name SearchPartsRequest

// SearchPartsResponse is returned on a successful parts search. Source is
// "completion", "cache", or "fallback" so clients can label mock results.
type SearchPartsResponse struct {
	Parts  []models.Part `json:"parts"`
	Source string        `json:"source" example:"completion"`
} // @name SearchPartsResponse

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"make is required"`
} // @name LookupErrorResponse

// SearchPartsHandler handles POST /parts/search requests.
type SearchPartsHandler struct {
	svc *appsvcs.Services
}

// NewSearchPartsHandler returns a SearchPartsHandler backed by the given services.
func NewSearchPartsHandler(svc *appsvcs.Services) *SearchPartsHandler {
	return &SearchPartsHandler{svc: svc}
}

// Execute searches replacement parts for a vehicle.
//
//	@Summary		Search parts
//	@Description	Searches replacement parts by vehicle and part type, with mock fallback
//	@Tags			lookup
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SearchPartsRequest	true	"Parts search request"
//	@Success		200		{object}	SearchPartsResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/parts/search [post]
func (h *SearchPartsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[SearchPartsRequest](w, r)
	if !ok {
		return
	}

	parts, source := h.svc.Parts.Search(r.Context(), req.Make, req.Model, req.Year, req.Query)
	httpx.JSON(w, http.StatusOK, SearchPartsResponse{Parts: parts, Source: source})
}
