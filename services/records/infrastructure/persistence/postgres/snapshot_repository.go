package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/ghuser/upkeep/pkg/database"
	"github.com/ghuser/upkeep/pkg/events"
	"github.com/ghuser/upkeep/services/records/domain/models"
	"github.com/ghuser/upkeep/services/records/domain/repositories"
)

// SnapshotRepository implements repositories.SnapshotRepository against
// PostgreSQL. Each collection is stored as a single JSON blob row in
// store_blobs; writes replace the whole blob. Domain events are published
// through a transaction-bound publisher so an event is only visible if the
// snapshot write committed (outbox pattern).
type SnapshotRepository struct {
	db  *database.Database
	bus *events.EventBus
}

// NewSnapshotRepository returns a SnapshotRepository backed by the given pool
// and event bus. A nil bus disables event publishing.
func NewSnapshotRepository(db *database.Database, bus *events.EventBus) *SnapshotRepository {
	return &SnapshotRepository{db: db, bus: bus}
}

// Load reads the three collection blobs. Missing rows yield empty slices.
func (r *SnapshotRepository) Load(ctx context.Context) (repositories.Snapshot, error) {
	rows, err := r.db.DB().QueryContext(ctx,
		`SELECT key, value FROM store_blobs WHERE key IN ($1, $2, $3)`,
		repositories.KeyItems, repositories.KeyTasks, repositories.KeyRecalls,
	)
	if err != nil {
		return repositories.Snapshot{}, fmt.Errorf("query store blobs: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	blobs := map[string][]byte{}
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return repositories.Snapshot{}, fmt.Errorf("scan store blob: %w", err)
		}
		blobs[key] = value
	}
	if err := rows.Err(); err != nil {
		return repositories.Snapshot{}, fmt.Errorf("iterate store blobs: %w", err)
	}

	snap := repositories.Snapshot{
		Items:   []models.Item{},
		Tasks:   []models.MaintenanceTask{},
		Recalls: []models.Recall{},
	}
	if data, ok := blobs[repositories.KeyItems]; ok {
		if snap.Items, err = repositories.DecodeItems(data); err != nil {
			return repositories.Snapshot{}, err
		}
	}
	if data, ok := blobs[repositories.KeyTasks]; ok {
		if snap.Tasks, err = repositories.DecodeTasks(data); err != nil {
			return repositories.Snapshot{}, err
		}
	}
	if data, ok := blobs[repositories.KeyRecalls]; ok {
		if snap.Recalls, err = repositories.DecodeRecalls(data); err != nil {
			return repositories.Snapshot{}, err
		}
	}
	return snap, nil
}

// Save upserts all three blobs and publishes events in one transaction.
func (r *SnapshotRepository) Save(ctx context.Context, snap repositories.Snapshot, evts []repositories.Event) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := upsertBlob(ctx, tx, repositories.KeyItems, snap.Items); err != nil {
			return err
		}
		if err := upsertBlob(ctx, tx, repositories.KeyTasks, snap.Tasks); err != nil {
			return err
		}
		if err := upsertBlob(ctx, tx, repositories.KeyRecalls, snap.Recalls); err != nil {
			return err
		}
		if r.bus != nil && len(evts) > 0 {
			if err := r.publish(tx, evts); err != nil {
				return fmt.Errorf("publish store events: %w", err)
			}
		}
		return nil
	})
}

func upsertBlob(ctx context.Context, tx *sql.Tx, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s blob: %w", key, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO store_blobs (key, value, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, data,
	); err != nil {
		return fmt.Errorf("upsert %s blob: %w", key, err)
	}
	return nil
}

func (r *SnapshotRepository) publish(tx *sql.Tx, evts []repositories.Event) error {
	pub, err := r.bus.NewTxPublisher(tx)
	if err != nil {
		return fmt.Errorf("create publisher: %w", err)
	}
	for _, evt := range evts {
		msg := message.NewMessage(watermill.NewUUID(), evt.Payload)
		for k, v := range evt.Metadata {
			msg.Metadata.Set(k, v)
		}
		if err := pub.Publish(evt.Topic, msg); err != nil {
			return fmt.Errorf("publish to %s: %w", evt.Topic, err)
		}
	}
	return nil
}
