// Package memory provides an in-process SnapshotRepository holding the same
// string-keyed JSON blobs the Postgres implementation writes. It backs unit
// tests and local development without a database.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ghuser/upkeep/services/records/domain/models"
	"github.com/ghuser/upkeep/services/records/domain/repositories"
)

// SnapshotRepository stores blobs in a mutex-guarded map. Published events
// are retained in order for inspection by tests.
type SnapshotRepository struct {
	mu     sync.Mutex
	blobs  map[string][]byte
	events []repositories.Event

	// FailSaves, when set, makes Save return this error. Used to exercise
	// write-back failure paths.
	FailSaves error
}

// NewSnapshotRepository returns an empty in-memory repository.
func NewSnapshotRepository() *SnapshotRepository {
	return &SnapshotRepository{blobs: map[string][]byte{}}
}

// SeedBlob stores a raw JSON blob under key, bypassing encoding. Lets tests
// inject legacy-format data.
func (r *SnapshotRepository) SeedBlob(key string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blobs[key] = data
}

// Events returns a copy of all events recorded by Save calls so far.
func (r *SnapshotRepository) Events() []repositories.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]repositories.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Load decodes whatever blobs are present; missing keys yield empty slices.
func (r *SnapshotRepository) Load(_ context.Context) (repositories.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := repositories.Snapshot{
		Items:   []models.Item{},
		Tasks:   []models.MaintenanceTask{},
		Recalls: []models.Recall{},
	}
	var err error
	if data, ok := r.blobs[repositories.KeyItems]; ok {
		if snap.Items, err = repositories.DecodeItems(data); err != nil {
			return repositories.Snapshot{}, err
		}
	}
	if data, ok := r.blobs[repositories.KeyTasks]; ok {
		if snap.Tasks, err = repositories.DecodeTasks(data); err != nil {
			return repositories.Snapshot{}, err
		}
	}
	if data, ok := r.blobs[repositories.KeyRecalls]; ok {
		if snap.Recalls, err = repositories.DecodeRecalls(data); err != nil {
			return repositories.Snapshot{}, err
		}
	}
	return snap, nil
}

// Save encodes and stores all three blobs, then records the events.
func (r *SnapshotRepository) Save(_ context.Context, snap repositories.Snapshot, evts []repositories.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailSaves != nil {
		return r.FailSaves
	}

	for key, v := range map[string]any{
		repositories.KeyItems:   snap.Items,
		repositories.KeyTasks:   snap.Tasks,
		repositories.KeyRecalls: snap.Recalls,
	} {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal %s blob: %w", key, err)
		}
		r.blobs[key] = data
	}
	r.events = append(r.events, evts...)
	return nil
}
