package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/upkeep/pkg/app"
	"github.com/ghuser/upkeep/services/lookup/application/handlers"
	appsvcs "github.com/ghuser/upkeep/services/lookup/application/services"
)

// LookupRoutes registers parts and recall search endpoints on the provided chi router.
func LookupRoutes(r chi.Router, a *app.Application) {
	svcs := appsvcs.New(a)
	r.Group(func(r chi.Router) {
		r.Post("/parts/search", handlers.NewSearchPartsHandler(svcs).Execute)
		r.Post("/recalls/search", handlers.NewSearchRecallsHandler(svcs).Execute)
	})
}
