package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/upkeep/pkg/logger"
	recdomain "github.com/ghuser/upkeep/services/records/domain"
	domainevents "github.com/ghuser/upkeep/services/records/domain/events"
	"github.com/ghuser/upkeep/services/records/domain/models"
	"github.com/ghuser/upkeep/services/records/domain/repositories"
)

// StoreService is the single authoritative holder of items, maintenance tasks,
// and recalls. Every mutation is applied to the in-memory collections and then
// written back as a full snapshot before returning; write-back errors
// propagate to the caller so the UI can warn about unsaved state.
//
// All mutations are serialized through one lock (single-flight), so
// read-after-write is always consistent within a session. The original app
// left concurrent mutations racy with last-write-wins snapshots; serializing
// here closes that race.
type StoreService struct {
	mu      sync.RWMutex
	items   []models.Item
	tasks   []models.MaintenanceTask
	recalls []models.Recall

	repo repositories.SnapshotRepository
	log  logger.Logger
	now  func() time.Time
}

// NewStoreService returns an empty store backed by the given repository.
// Call Load before serving traffic.
func NewStoreService(repo repositories.SnapshotRepository, log logger.Logger) *StoreService {
	return &StoreService{
		items:   []models.Item{},
		tasks:   []models.MaintenanceTask{},
		recalls: []models.Recall{},
		repo:    repo,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Load populates the collections from the repository. Persistence failures
// leave the store empty but usable; the error is logged, not returned, so a
// corrupt or unreachable backing store never blocks startup.
func (s *StoreService) Load(ctx context.Context) {
	snap, err := s.repo.Load(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "store load failed, starting empty", "error", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = snap.Items
	s.tasks = snap.Tasks
	s.recalls = snap.Recalls
}

// --- Items ---

// AddItem appends a new item. Returns ErrDuplicateID when the ID is taken.
func (s *StoreService) AddItem(ctx context.Context, item models.Item) (models.Item, error) {
	return s.AddItemWithTasks(ctx, item, nil)
}

// AddItemWithTasks appends an item together with its initial task list as one
// combined write: a reader never observes the item without its tasks or vice
// versa. The item's pending count is derived from the supplied tasks.
func (s *StoreService) AddItemWithTasks(ctx context.Context, item models.Item, tasks []models.MaintenanceTask) (models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if s.itemIndex(item.ID) >= 0 {
		return models.Item{}, fmt.Errorf("%w: item %s", recdomain.ErrDuplicateID, item.ID)
	}
	if item.Kind == "" {
		item.Kind = models.KindVehicle
	}
	if item.LastUpdated.IsZero() {
		item.LastUpdated = s.now()
	}

	pending := 0
	for i := range tasks {
		if tasks[i].ID == "" {
			tasks[i].ID = models.NewTaskID()
		}
		if s.taskIndex(tasks[i].ID) >= 0 {
			return models.Item{}, fmt.Errorf("%w: task %s", recdomain.ErrDuplicateID, tasks[i].ID)
		}
		tasks[i].ItemID = item.ID
		if tasks[i].ItemLabel == "" {
			tasks[i].ItemLabel = item.Label()
		}
		if tasks[i].Status == "" {
			tasks[i].Status = models.StatusUpcoming
		}
		if tasks[i].Status != models.StatusCompleted {
			pending++
		}
	}
	item.PendingTaskCount = pending

	s.items = append(s.items, item)
	s.tasks = append(s.tasks, tasks...)

	evt, err := s.itemCreatedEvent(item, len(tasks))
	if err != nil {
		return models.Item{}, err
	}
	if err := s.persist(ctx, evt); err != nil {
		return models.Item{}, err
	}
	return item, nil
}

// Items returns a copy of all items.
func (s *StoreService) Items(_ context.Context) []models.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Item, len(s.items))
	copy(out, s.items)
	return out
}

// ItemByID returns the item or ErrItemNotFound.
func (s *StoreService) ItemByID(_ context.Context, id string) (models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.itemIndex(id); i >= 0 {
		return s.items[i], nil
	}
	return models.Item{}, fmt.Errorf("%w: %s", recdomain.ErrItemNotFound, id)
}

// UpdateItem replaces the stored item by ID. The pending count is recomputed
// rather than trusted from the caller. Returns ErrItemNotFound for unknown
// IDs instead of the original's silent miss.
func (s *StoreService) UpdateItem(ctx context.Context, item models.Item) (models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.itemIndex(item.ID)
	if i < 0 {
		return models.Item{}, fmt.Errorf("%w: %s", recdomain.ErrItemNotFound, item.ID)
	}
	item.PendingTaskCount = s.pendingCount(item.ID)
	item.LastUpdated = s.now()
	s.items[i] = item

	if err := s.persist(ctx); err != nil {
		return models.Item{}, err
	}
	return item, nil
}

// DeleteItem removes the item and cascades deletion of all of its tasks so no
// orphans remain.
func (s *StoreService) DeleteItem(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.itemIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", recdomain.ErrItemNotFound, id)
	}
	s.items = append(s.items[:i], s.items[i+1:]...)

	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if t.ItemID != id {
			kept = append(kept, t)
		}
	}
	s.tasks = kept

	return s.persist(ctx)
}

// UpdateUsageCounter sets the kind-matching usage counter (mileage for
// vehicles, hours for home items) and re-evaluates every task of the item:
// a task whose due threshold on that axis is at or below the new value becomes
// overdue. A task already overdue on another axis is never downgraded.
//
// Monotonicity is deliberately not enforced; odometer corrections are the
// caller's concern.
func (s *StoreService) UpdateUsageCounter(ctx context.Context, itemID string, value int) (models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if value < 0 {
		return models.Item{}, fmt.Errorf("%w: usage value must be >= 0", recdomain.ErrInvalidRecord)
	}
	i := s.itemIndex(itemID)
	if i < 0 {
		return models.Item{}, fmt.Errorf("%w: %s", recdomain.ErrItemNotFound, itemID)
	}

	item := &s.items[i]
	item.SetUsageValue(value)
	item.LastUpdated = s.now()

	for j := range s.tasks {
		t := &s.tasks[j]
		if t.ItemID != itemID || t.Status == models.StatusCompleted {
			continue
		}
		if threshold, ok := t.DueThreshold(item.Kind); ok && value >= threshold {
			t.Status = models.StatusOverdue
		}
	}

	if err := s.persist(ctx); err != nil {
		return models.Item{}, err
	}
	return *item, nil
}

// --- Tasks ---

// AddTask appends one task; see AddTasks.
func (s *StoreService) AddTask(ctx context.Context, task models.MaintenanceTask) (models.MaintenanceTask, error) {
	added, err := s.AddTasks(ctx, []models.MaintenanceTask{task})
	if err != nil {
		return models.MaintenanceTask{}, err
	}
	return added[0], nil
}

// AddTasks appends tasks and recomputes the owning items' pending counts.
// Every task must reference an existing item; orphan tasks are rejected.
func (s *StoreService) AddTasks(ctx context.Context, tasks []models.MaintenanceTask) ([]models.MaintenanceTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range tasks {
		if tasks[i].ID == "" {
			tasks[i].ID = models.NewTaskID()
		}
		if s.taskIndex(tasks[i].ID) >= 0 {
			return nil, fmt.Errorf("%w: task %s", recdomain.ErrDuplicateID, tasks[i].ID)
		}
		oi := s.itemIndex(tasks[i].ItemID)
		if oi < 0 {
			return nil, fmt.Errorf("%w: %s", recdomain.ErrItemNotFound, tasks[i].ItemID)
		}
		if tasks[i].ItemLabel == "" {
			tasks[i].ItemLabel = s.items[oi].Label()
		}
		if tasks[i].Status == "" {
			tasks[i].Status = models.StatusUpcoming
		}
	}

	s.tasks = append(s.tasks, tasks...)
	for _, t := range tasks {
		s.refreshPendingCount(t.ItemID)
	}

	if err := s.persist(ctx); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Tasks returns tasks, optionally filtered by status. Non-completed tasks are
// ordered by next due date ascending; completed tasks sort last, most recent
// completion first.
func (s *StoreService) Tasks(_ context.Context, status models.TaskStatus) []models.MaintenanceTask {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.MaintenanceTask, 0, len(s.tasks))
	for _, t := range s.tasks {
		if status == "" || t.Status == status {
			out = append(out, t)
		}
	}
	sortTasks(out)
	return out
}

// TasksForItem returns the item's tasks in due-date order, or ErrItemNotFound.
func (s *StoreService) TasksForItem(_ context.Context, itemID string) ([]models.MaintenanceTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.itemIndex(itemID) < 0 {
		return nil, fmt.Errorf("%w: %s", recdomain.ErrItemNotFound, itemID)
	}
	out := make([]models.MaintenanceTask, 0, 8)
	for _, t := range s.tasks {
		if t.ItemID == itemID {
			out = append(out, t)
		}
	}
	sortTasks(out)
	return out, nil
}

// UpdateTask replaces the stored task by ID and refreshes the owning item's
// pending count. Display and completion-history fields the caller leaves empty
// (itemLabel, lastCompleted*) are carried over from the stored record rather
// than erased. Returns ErrTaskNotFound for unknown IDs, ErrItemNotFound when
// the task is moved to a nonexistent item, and ErrInvalidRecord for a
// completed status without a completion date.
func (s *StoreService) UpdateTask(ctx context.Context, task models.MaintenanceTask) (models.MaintenanceTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndex(task.ID)
	if i < 0 {
		return models.MaintenanceTask{}, fmt.Errorf("%w: %s", recdomain.ErrTaskNotFound, task.ID)
	}
	oi := s.itemIndex(task.ItemID)
	if oi < 0 {
		return models.MaintenanceTask{}, fmt.Errorf("%w: %s", recdomain.ErrItemNotFound, task.ItemID)
	}

	prev := s.tasks[i]
	if task.ItemLabel == "" {
		if task.ItemID == prev.ItemID {
			task.ItemLabel = prev.ItemLabel
		} else {
			task.ItemLabel = s.items[oi].Label()
		}
	}
	if task.LastCompletedDate.IsZero() {
		task.LastCompletedDate = prev.LastCompletedDate
	}
	if task.LastCompletedMileage == 0 {
		task.LastCompletedMileage = prev.LastCompletedMileage
	}
	if task.LastCompletedHours == 0 {
		task.LastCompletedHours = prev.LastCompletedHours
	}
	if task.Status == models.StatusCompleted && task.LastCompletedDate.IsZero() {
		return models.MaintenanceTask{}, fmt.Errorf("%w: completed task requires a completion date", recdomain.ErrInvalidRecord)
	}

	s.tasks[i] = task
	s.refreshPendingCount(task.ItemID)
	if prev.ItemID != task.ItemID {
		s.refreshPendingCount(prev.ItemID)
	}

	if err := s.persist(ctx); err != nil {
		return models.MaintenanceTask{}, err
	}
	return task, nil
}

// DeleteTask removes the task and refreshes the owning item's pending count
// when the item still exists. Returns ErrTaskNotFound for unknown IDs.
func (s *StoreService) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", recdomain.ErrTaskNotFound, id)
	}
	itemID := s.tasks[i].ItemID
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	s.refreshPendingCount(itemID)

	return s.persist(ctx)
}

// CompleteTask marks the task completed at the given usage counter value and
// schedules the next occurrence:
//
//   - the original task keeps its ID, becomes completed, records the
//     completion markers, and its nextDue* fields advance to what the next
//     occurrence computes to (kept for historical display);
//   - a brand-new task with a fresh ID carries the same title, description,
//     and intervals, status upcoming, with the same computed nextDue* values;
//   - the owning item's usage counter moves to usageValue and its pending
//     count is recomputed.
//
// The two tasks share lineage only through their matching title and intervals;
// there is no parent pointer.
func (s *StoreService) CompleteTask(ctx context.Context, taskID string, usageValue int) (completed, next models.MaintenanceTask, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ti := s.taskIndex(taskID)
	if ti < 0 {
		return completed, next, fmt.Errorf("%w: %s", recdomain.ErrTaskNotFound, taskID)
	}
	ii := s.itemIndex(s.tasks[ti].ItemID)
	if ii < 0 {
		return completed, next, fmt.Errorf("%w: %s", recdomain.ErrItemNotFound, s.tasks[ti].ItemID)
	}

	now := s.now()
	item := &s.items[ii]
	task := s.tasks[ti]

	dueDate, dueMileage, dueHours := task.NextDue(now, usageValue)

	task.LastCompletedDate = now
	if item.Kind == models.KindHome {
		task.LastCompletedHours = usageValue
	} else {
		task.LastCompletedMileage = usageValue
	}
	task.NextDueDate = dueDate
	task.NextDueMileage = dueMileage
	task.NextDueHours = dueHours

	next = task
	next.ID = models.NewTaskID()
	next.Status = models.StatusUpcoming

	task.Status = models.StatusCompleted
	s.tasks[ti] = task
	s.tasks = append(s.tasks, next)

	item.SetUsageValue(usageValue)
	item.LastUpdated = now
	s.refreshPendingCount(item.ID)

	evt, err := s.taskCompletedEvent(task, next, usageValue, now)
	if err != nil {
		return completed, next, err
	}
	if err := s.persist(ctx, evt); err != nil {
		return completed, next, err
	}
	return task, next, nil
}

// MarkDateOverdue upgrades every non-completed task whose next due date is at
// or before now. It never downgrades, and it persists only when something
// changed. Returns the number of tasks that flipped.
func (s *StoreService) MarkDateOverdue(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for i := range s.tasks {
		t := &s.tasks[i]
		if t.Status == models.StatusCompleted || t.Status == models.StatusOverdue {
			continue
		}
		if !t.NextDueDate.After(now) {
			t.Status = models.StatusOverdue
			changed++
		}
	}
	if changed == 0 {
		return 0, nil
	}
	return changed, s.persist(ctx)
}

// --- Recalls ---

// AddRecalls appends recall records, assigning IDs where missing.
func (s *StoreService) AddRecalls(ctx context.Context, recalls []models.Recall) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range recalls {
		if recalls[i].ID == "" {
			recalls[i].ID = uuid.NewString()
		}
	}
	s.recalls = append(s.recalls, recalls...)
	return s.persist(ctx)
}

// ClearRecalls removes every stored recall.
func (s *StoreService) ClearRecalls(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recalls = []models.Recall{}
	return s.persist(ctx)
}

// RecallsForItem returns stored recalls matching the item's make and model
// (case-insensitive) and exact year. Pure filter; nothing is persisted.
func (s *StoreService) RecallsForItem(_ context.Context, itemID string) ([]models.Recall, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.itemIndex(itemID)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", recdomain.ErrItemNotFound, itemID)
	}
	item := s.items[i]

	out := []models.Recall{}
	for _, r := range s.recalls {
		if r.Matches(item) {
			out = append(out, r)
		}
	}
	return out, nil
}

// --- internals ---

func (s *StoreService) itemIndex(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *StoreService) taskIndex(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *StoreService) pendingCount(itemID string) int {
	n := 0
	for _, t := range s.tasks {
		if t.ItemID == itemID && t.Status != models.StatusCompleted {
			n++
		}
	}
	return n
}

func (s *StoreService) refreshPendingCount(itemID string) {
	if i := s.itemIndex(itemID); i >= 0 {
		s.items[i].PendingTaskCount = s.pendingCount(itemID)
	}
}

// persist writes the full snapshot plus outbox events. Callers hold the lock.
func (s *StoreService) persist(ctx context.Context, evts ...repositories.Event) error {
	snap := repositories.Snapshot{
		Items:   append([]models.Item(nil), s.items...),
		Tasks:   append([]models.MaintenanceTask(nil), s.tasks...),
		Recalls: append([]models.Recall(nil), s.recalls...),
	}
	if err := s.repo.Save(ctx, snap, evts); err != nil {
		return fmt.Errorf("persist store: %w", err)
	}
	return nil
}

func (s *StoreService) itemCreatedEvent(item models.Item, taskCount int) (repositories.Event, error) {
	evt := domainevents.ItemCreatedEvent{
		EventID:          uuid.New(),
		Version:          1,
		ItemID:           item.ID,
		Kind:             string(item.Kind),
		Make:             item.Make,
		Model:            item.Model,
		Year:             item.Year,
		TaskCount:        taskCount,
		PendingTaskCount: item.PendingTaskCount,
		OccurredAt:       item.LastUpdated,
	}
	return marshalEvent(domainevents.TopicItemCreated, evt.EventID, evt)
}

func (s *StoreService) taskCompletedEvent(completed, next models.MaintenanceTask, usage int, now time.Time) (repositories.Event, error) {
	evt := domainevents.TaskCompletedEvent{
		EventID:    uuid.New(),
		Version:    1,
		TaskID:     completed.ID,
		NextTaskID: next.ID,
		ItemID:     completed.ItemID,
		Title:      completed.Title,
		UsageValue: usage,
		OccurredAt: now,
	}
	return marshalEvent(domainevents.TopicTaskCompleted, evt.EventID, evt)
}

func marshalEvent(topic string, eventID uuid.UUID, v any) (repositories.Event, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return repositories.Event{}, fmt.Errorf("marshal %s event: %w", topic, err)
	}
	return repositories.Event{
		Topic:   topic,
		Payload: payload,
		Metadata: map[string]string{
			"event_id":      eventID.String(),
			"event_version": "1",
		},
	}, nil
}

func sortTasks(tasks []models.MaintenanceTask) {
	sort.SliceStable(tasks, func(a, b int) bool {
		ta, tb := tasks[a], tasks[b]
		aDone := ta.Status == models.StatusCompleted
		bDone := tb.Status == models.StatusCompleted
		if aDone != bDone {
			return !aDone // non-completed first
		}
		if aDone {
			return ta.LastCompletedDate.After(tb.LastCompletedDate)
		}
		return ta.NextDueDate.Before(tb.NextDueDate)
	})
}
