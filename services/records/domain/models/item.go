package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ItemKind distinguishes road vehicles from home equipment. The two kinds
// track different usage counters: mileage for vehicles, hours for home items.
type ItemKind string

const (
	KindVehicle ItemKind = "vehicle"
	KindHome    ItemKind = "home"
)

// Item is a tracked vehicle or home-equipment unit.
//
// PendingTaskCount is a cached derived field: it always equals the number of
// non-completed tasks referencing this item and is recomputed by the store on
// every task mutation. Consumers must never compute it themselves.
type Item struct {
	ID        string   `json:"id"`
	Kind      ItemKind `json:"itemKind,omitempty"`
	Make      string   `json:"make"`
	Model     string   `json:"model"`
	Year      int      `json:"year"`
	Mileage   int      `json:"mileage,omitempty"`
	HoursUsed int      `json:"hoursUsed,omitempty"`
	// Category applies to home items only: hvac, lawn, appliance, plumbing,
	// electrical, pool, generator, security, other.
	Category         string    `json:"category,omitempty"`
	Image            string    `json:"image,omitempty"`
	PendingTaskCount int       `json:"pendingTasks"`
	LastUpdated      time.Time `json:"lastUpdated,omitzero"`
}

// NewItem constructs an Item with a generated ID and current timestamp.
func NewItem(kind ItemKind, make_, model string, year, usage int, category string) Item {
	it := Item{
		ID:          uuid.NewString(),
		Kind:        kind,
		Make:        make_,
		Model:       model,
		Year:        year,
		Category:    category,
		LastUpdated: time.Now().UTC(),
	}
	it.SetUsageValue(usage)
	return it
}

// Label returns the denormalized display string cached on tasks,
// e.g. "2022 Toyota Camry".
func (i Item) Label() string {
	return fmt.Sprintf("%d %s %s", i.Year, i.Make, i.Model)
}

// UsageValue returns the counter relevant to the item's kind.
func (i Item) UsageValue() int {
	if i.Kind == KindHome {
		return i.HoursUsed
	}
	return i.Mileage
}

// SetUsageValue writes the counter relevant to the item's kind.
func (i *Item) SetUsageValue(v int) {
	if i.Kind == KindHome {
		i.HoursUsed = v
		return
	}
	i.Mileage = v
}
