package services

import (
	"github.com/ghuser/upkeep/pkg/app"
	"github.com/ghuser/upkeep/pkg/cache"
)

// Services is the application-layer service container for this bounded context.
type Services struct {
	Parts   *PartsService
	Recalls *RecallService
}

// New wires the lookup services with infrastructure from the Application
// container. Redis is optional; without it parts results are simply not cached.
func New(a *app.Application) *Services {
	var partsCache *cache.PartsCache
	if a.Redis != nil {
		partsCache = cache.NewPartsCache(a.Redis)
	}

	// a.Completion may be nil; keep the interface nil too so PartsService
	// serves mock results instead of calling through a nil client.
	var completer Completer
	if a.Completion != nil {
		completer = a.Completion
	}

	return &Services{
		Parts:   NewPartsService(completer, partsCache, a.Logger),
		Recalls: NewRecallService(),
	}
}
