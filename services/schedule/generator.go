// Package schedule turns a newly registered item into an initial set of
// maintenance tasks with one call to the external text-completion service.
// Parsing is defensive and all-or-nothing: the producer is untrusted and
// schema-less, so any structural violation fails the whole batch.
package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ghuser/upkeep/pkg/completion"
	"github.com/ghuser/upkeep/pkg/logger"
	"github.com/ghuser/upkeep/services/records/domain/models"
)

// ErrGenerationFailed wraps every failure of the generation pipeline, from
// transport errors to non-JSON or non-array payloads. Callers
// save the item anyway and surface a warning; use errors.Is to detect it.
var ErrGenerationFailed = errors.New("schedule generation failed")

// Completer abstracts the completion client for testing.
type Completer interface {
	Complete(ctx context.Context, msgs []completion.Message) (string, error)
}

// Generator produces maintenance task lists for items.
type Generator struct {
	client Completer
	log    logger.Logger
	now    func() time.Time
}

// NewGenerator returns a Generator calling the given completion client.
func NewGenerator(client Completer, log logger.Logger) *Generator {
	return &Generator{
		client: client,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Generate asks the completion service for a maintenance schedule and
// materializes the drafts into full tasks anchored to the item's current
// usage counter. Freshly generated tasks are always upcoming, never overdue,
// regardless of what the intervals compute to.
func (g *Generator) Generate(ctx context.Context, item models.Item) ([]models.MaintenanceTask, error) {
	raw, err := g.client.Complete(ctx, buildMessages(item))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	drafts, err := parseDrafts(completion.StripFences(raw))
	if err != nil {
		g.log.WarnContext(ctx, "unusable completion payload", "item_id", item.ID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	now := g.now()
	tasks := make([]models.MaintenanceTask, 0, len(drafts))
	for _, d := range drafts {
		task := models.MaintenanceTask{
			ID:             models.NewTaskID(),
			ItemID:         item.ID,
			ItemLabel:      item.Label(),
			Title:          d.title,
			Description:    d.description,
			IntervalMonths: d.intervalMonths,
			Status:         models.StatusUpcoming,
		}
		// The interval on the axis foreign to the item's kind is dropped:
		// vehicles schedule by miles, home equipment by hours.
		if item.Kind == models.KindHome {
			task.IntervalHours = d.intervalHours
		} else {
			task.IntervalMiles = d.intervalMiles
		}
		task.NextDueDate, task.NextDueMileage, task.NextDueHours = task.NextDue(now, item.UsageValue())
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// draft is the loosely-typed intermediate representation of one generated task.
type draft struct {
	title          string
	description    string
	intervalMonths int
	intervalMiles  int
	intervalHours  int
}

// parseDrafts validates the completion payload field by field. The first
// structural violation fails the batch.
func parseDrafts(payload string) ([]draft, error) {
	var raw any
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("payload is not valid JSON: %w", err)
	}
	arr, ok := raw.([]any)
	if !ok {
		return nil, errors.New("payload is not a JSON array")
	}

	drafts := make([]draft, 0, len(arr))
	for i, entry := range arr {
		obj, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("entry %d is not an object", i)
		}
		title, err := stringField(obj, "title")
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if title == "" {
			return nil, fmt.Errorf("entry %d: title is empty", i)
		}
		description, err := stringField(obj, "description")
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}

		d := draft{title: title, description: description}
		if d.intervalMonths, err = intervalField(obj, "intervalMonths"); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if d.intervalMiles, err = intervalField(obj, "intervalMiles"); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if d.intervalHours, err = intervalField(obj, "intervalHours"); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		drafts = append(drafts, d)
	}
	return drafts, nil
}

func stringField(obj map[string]any, key string) (string, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s is not a string", key)
	}
	return s, nil
}

// intervalField coerces an optional numeric field. Models occasionally quote
// numbers, so numeric strings are accepted; anything else fails.
func intervalField(obj map[string]any, key string) (int, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return 0, nil
	}
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case string:
		parsed, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, fmt.Errorf("%s is not numeric: %q", key, x)
		}
		n = parsed
	default:
		return 0, fmt.Errorf("%s is not numeric", key)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s is negative", key)
	}
	return int(n), nil
}
