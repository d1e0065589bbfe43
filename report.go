package spanz

import "time"

// Report is a snapshot of a trace: the raw spans, the filtered rows and the
// total at the moment it was taken. Treat it as read-only; handlers share it.
//
//nolint:govet // Field order mirrors the rendered layout
type Report struct {
	TraceID      string
	Name         string
	Start        time.Time
	Total        time.Duration
	Measurements []Measurement
	Items        []Item
	Filters      FilterConfig
	Caller       *CallerInfo
}

// Slowest returns the longest raw measurement. The first one wins ties.
func (r Report) Slowest() (Measurement, bool) {
	if len(r.Measurements) == 0 {
		return Measurement{}, false
	}
	slowest := r.Measurements[0]
	for _, m := range r.Measurements[1:] {
		if m.Duration > slowest.Duration {
			slowest = m
		}
	}
	return slowest, true
}

// Percent returns d as a percentage of the total. Zero when the total is zero.
func (r Report) Percent(d time.Duration) float64 {
	if r.Total <= 0 {
		return 0
	}
	return float64(d) / float64(r.Total) * 100
}
