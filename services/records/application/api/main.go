package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/upkeep/pkg/app"
	"github.com/ghuser/upkeep/services/records/application/handlers"
	appsvcs "github.com/ghuser/upkeep/services/records/application/services"
)

// RecordRoutes registers item, task, and recall endpoints on the provided chi
// router and returns the service container so the caller can run startup work
// (initial load, due-date sweeps) against the same store instance.
func RecordRoutes(r chi.Router, a *app.Application) *appsvcs.Services {
	svcs := appsvcs.New(a)
	r.Group(func(r chi.Router) {
		r.Route("/items", func(r chi.Router) {
			r.Post("/", handlers.NewPostItemHandler(svcs).Execute)
			r.Get("/", handlers.NewListItemsHandler(svcs).Execute)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", handlers.NewGetItemHandler(svcs).Execute)
				r.Put("/", handlers.NewPutItemHandler(svcs).Execute)
				r.Delete("/", handlers.NewDeleteItemHandler(svcs).Execute)
				r.Put("/usage", handlers.NewPutUsageHandler(svcs).Execute)
				r.Get("/summary", handlers.NewGetItemSummaryHandler(svcs).Execute)
				r.Get("/tasks", handlers.NewGetItemTasksHandler(svcs).Execute)
				r.Get("/recalls", handlers.NewGetItemRecallsHandler(svcs).Execute)
			})
		})
		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", handlers.NewPostTaskHandler(svcs).Execute)
			r.Get("/", handlers.NewListTasksHandler(svcs).Execute)
			r.Route("/{id}", func(r chi.Router) {
				r.Put("/", handlers.NewPutTaskHandler(svcs).Execute)
				r.Delete("/", handlers.NewDeleteTaskHandler(svcs).Execute)
				r.Post("/complete", handlers.NewCompleteTaskHandler(svcs).Execute)
			})
		})
		r.Route("/recalls", func(r chi.Router) {
			r.Post("/", handlers.NewPostRecallsHandler(svcs).Execute)
			r.Delete("/", handlers.NewDeleteRecallsHandler(svcs).Execute)
		})
	})
	return svcs
}
