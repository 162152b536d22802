package services

import (
	"github.com/ghuser/upkeep/pkg/app"
	"github.com/ghuser/upkeep/pkg/cache"
	"github.com/ghuser/upkeep/services/records/infrastructure/persistence/postgres"
	"github.com/ghuser/upkeep/services/schedule"
)

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Store     *StoreService
	Schedule  *schedule.Generator     // nil when no completion client is configured
	Summaries *cache.ItemSummaryCache // nil when Redis is unavailable
}

// New wires the record store with infrastructure from the Application container.
func New(a *app.Application) *Services {
	repo := postgres.NewSnapshotRepository(a.Db, a.EventBus)
	svcs := &Services{
		Store: NewStoreService(repo, a.Logger),
	}
	if a.Completion != nil {
		svcs.Schedule = schedule.NewGenerator(a.Completion, a.Logger)
	}
	if a.Redis != nil {
		svcs.Summaries = cache.NewItemSummaryCache(a.Redis)
	}
	return svcs
}
