package spanz

import "time"

// DefaultMinDuration is the total trace duration below which End prints
// nothing unless another print condition is configured.
const DefaultMinDuration = 100 * time.Millisecond

// PrintCondition decides at End whether the trace is rendered.
type PrintCondition func(t *Tracer) bool

// MinTotalDuration renders when the trace has run for at least d.
// The total is read when the condition is evaluated.
func MinTotalDuration(d time.Duration) PrintCondition {
	d = clampDuration(d)
	return func(t *Tracer) bool {
		return t.TotalDuration() >= d
	}
}

// MinSpanDuration renders when any recorded span took at least d.
func MinSpanDuration(d time.Duration) PrintCondition {
	d = clampDuration(d)
	return func(t *Tracer) bool {
		for _, m := range t.Measurements() {
			if m.Duration >= d {
				return true
			}
		}
		return false
	}
}

// Always renders every trace.
func Always() PrintCondition {
	return func(*Tracer) bool {
		return true
	}
}
