package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ghuser/upkeep/services/records/domain/models"
)

// Blob keys under which the three collections are persisted. The store writes
// each collection as one JSON array blob; there are no incremental writes.
const (
	KeyItems   = "items"
	KeyTasks   = "maintenanceTasks"
	KeyRecalls = "recalls"
)

// Snapshot is the full persisted state of the record store.
type Snapshot struct {
	Items   []models.Item
	Tasks   []models.MaintenanceTask
	Recalls []models.Recall
}

// Event is an outbox entry persisted together with a snapshot write so
// consumers observe events only for state that was durably stored.
type Event struct {
	Topic    string
	Payload  []byte
	Metadata map[string]string
}

// SnapshotRepository persists the record store state. The domain layer owns
// this interface; infrastructure implements it.
type SnapshotRepository interface {
	// Load reads all three collections. Missing blobs yield empty slices,
	// not errors.
	Load(ctx context.Context) (Snapshot, error)

	// Save writes the full snapshot and publishes the given events within
	// the same durability boundary.
	Save(ctx context.Context, snap Snapshot, events []Event) error
}

// DecodeItems unmarshals an items blob, migrating legacy records that predate
// the itemKind field by defaulting them to vehicle.
func DecodeItems(data []byte) ([]models.Item, error) {
	var items []models.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode items blob: %w", err)
	}
	for i := range items {
		if items[i].Kind == "" {
			items[i].Kind = models.KindVehicle
		}
	}
	return items, nil
}

// DecodeTasks unmarshals a tasks blob.
func DecodeTasks(data []byte) ([]models.MaintenanceTask, error) {
	var tasks []models.MaintenanceTask
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("decode tasks blob: %w", err)
	}
	return tasks, nil
}

// DecodeRecalls unmarshals a recalls blob.
func DecodeRecalls(data []byte) ([]models.Recall, error) {
	var recalls []models.Recall
	if err := json.Unmarshal(data, &recalls); err != nil {
		return nil, fmt.Errorf("decode recalls blob: %w", err)
	}
	return recalls, nil
}
