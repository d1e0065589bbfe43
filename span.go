package spanz

import (
	"context"
	"time"
)

// bundleKeyType is a private type for context keys to avoid collisions.
type bundleKeyType string

const (
	bundleKey bundleKeyType = "spanz"
)

// Measurement is the time elapsed between two consecutive marks, or between
// tracer creation and the first mark.
type Measurement struct {
	Label    string        `json:"label"`
	Duration time.Duration `json:"duration"`
}

// GroupedMeasurement folds measurements with similar durations into one row.
// AvgTime is TotalTime divided by Count.
type GroupedMeasurement struct {
	Name      string        `json:"name"`
	Count     int           `json:"count"`
	TotalTime time.Duration `json:"total_time"`
	AvgTime   time.Duration `json:"avg_time"`
	MinTime   time.Duration `json:"min_time"`
	MaxTime   time.Duration `json:"max_time"`
}

// ItemKind discriminates the variants of Item.
type ItemKind int

const (
	KindSingle ItemKind = iota
	KindGroup
)

// Item is one rendered row: either a single measurement or a group.
// The zero value is an empty single item.
type Item struct {
	single Measurement
	group  GroupedMeasurement
	kind   ItemKind
}

// SingleItem wraps a measurement.
func SingleItem(m Measurement) Item {
	return Item{kind: KindSingle, single: m}
}

// GroupItem wraps a group.
func GroupItem(g GroupedMeasurement) Item {
	return Item{kind: KindGroup, group: g}
}

// Kind reports which variant the item holds.
func (i Item) Kind() ItemKind {
	return i.kind
}

// Single returns the measurement when the item is a single.
func (i Item) Single() (Measurement, bool) {
	return i.single, i.kind == KindSingle
}

// Group returns the group when the item is a group.
func (i Item) Group() (GroupedMeasurement, bool) {
	return i.group, i.kind == KindGroup
}

// Label is the displayed name of the item.
func (i Item) Label() string {
	if i.kind == KindGroup {
		return i.group.Name
	}
	return i.single.Label
}

// Duration is the displayed duration: the average for groups.
func (i Item) Duration() time.Duration {
	if i.kind == KindGroup {
		return i.group.AvgTime
	}
	return i.single.Duration
}

// Count is the number of measurements the item stands for.
func (i Item) Count() int {
	if i.kind == KindGroup {
		return i.group.Count
	}
	return 1
}

// ContextWithTracer stores the tracer in the context so deeper call sites
// can mark spans without threading the tracer through every signature.
func ContextWithTracer(ctx context.Context, t *Tracer) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, bundleKey, t)
}

// FromContext extracts the tracer from a context.
// Returns nil if no tracer is present.
func FromContext(ctx context.Context) *Tracer {
	if ctx == nil {
		return nil
	}

	if t, ok := ctx.Value(bundleKey).(*Tracer); ok {
		return t
	}

	return nil
}

// Mark records a span on the tracer carried by ctx.
// No-op when the context carries no tracer.
func Mark(ctx context.Context, label string) {
	if t := FromContext(ctx); t != nil {
		t.Mark(label)
	}
}
