package spanz

import (
	"fmt"
	"strings"
	"time"
)

// FilterConfig controls which measurements are rendered.
// A stage is active purely from its flag; a zero threshold still counts as
// active in Summary.
type FilterConfig struct {
	SlowThreshold      time.Duration `json:"slow_threshold,omitempty"`
	UltraFastThreshold time.Duration `json:"ultra_fast_threshold,omitempty"`
	SimilarThreshold   time.Duration `json:"similar_threshold,omitempty"`
	ShowSlowOnly       bool          `json:"show_slow_only"`
	HideUltraFast      bool          `json:"hide_ultra_fast"`
	GroupSimilar       bool          `json:"group_similar"`
}

// Active reports whether any stage is enabled.
func (c FilterConfig) Active() bool {
	return c.ShowSlowOnly || c.HideUltraFast || c.GroupSimilar
}

// Summary lists the active stages, e.g. "slow>10ms, hide<1ms, group±5ms".
func (c FilterConfig) Summary() string {
	var active []string
	if c.ShowSlowOnly {
		active = append(active, fmt.Sprintf("slow>%v", c.SlowThreshold))
	}
	if c.HideUltraFast {
		active = append(active, fmt.Sprintf("hide<%v", c.UltraFastThreshold))
	}
	if c.GroupSimilar {
		active = append(active, fmt.Sprintf("group±%v", c.SimilarThreshold))
	}
	return strings.Join(active, ", ")
}

// clamped returns a copy with negative thresholds raised to zero.
func (c FilterConfig) clamped() FilterConfig {
	c.SlowThreshold = clampDuration(c.SlowThreshold)
	c.UltraFastThreshold = clampDuration(c.UltraFastThreshold)
	c.SimilarThreshold = clampDuration(c.SimilarThreshold)
	return c
}

func clampDuration(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

// Apply runs the three stages in order and returns the rows to render.
// Input order is preserved; groups appear at the position of their seed.
func (c FilterConfig) Apply(measurements []Measurement) []Item {
	if len(measurements) == 0 {
		return []Item{}
	}

	// Step 1: slow only.
	filtered := measurements
	if c.ShowSlowOnly {
		filtered = keepAtLeast(filtered, c.SlowThreshold)
	}

	// Step 2: hide ultra fast.
	if c.HideUltraFast {
		filtered = keepAtLeast(filtered, c.UltraFastThreshold)
	}

	// Step 3: group similar.
	if c.GroupSimilar && len(filtered) > 0 {
		return groupSimilar(filtered, c.SimilarThreshold)
	}

	items := make([]Item, 0, len(filtered))
	for _, m := range filtered {
		items = append(items, SingleItem(m))
	}
	return items
}

func keepAtLeast(measurements []Measurement, threshold time.Duration) []Measurement {
	kept := make([]Measurement, 0, len(measurements))
	for _, m := range measurements {
		if m.Duration >= threshold {
			kept = append(kept, m)
		}
	}
	return kept
}

// groupSimilar folds every later ungrouped measurement whose duration is
// within threshold of the seed into the seed's group.
func groupSimilar(measurements []Measurement, threshold time.Duration) []Item {
	items := make([]Item, 0, len(measurements))
	grouped := make([]bool, len(measurements))

	for i, seed := range measurements {
		if grouped[i] {
			continue
		}
		grouped[i] = true

		group := GroupedMeasurement{
			Name:      seed.Label,
			Count:     1,
			TotalTime: seed.Duration,
			MinTime:   seed.Duration,
			MaxTime:   seed.Duration,
		}

		for j := i + 1; j < len(measurements); j++ {
			if grouped[j] {
				continue
			}
			m := measurements[j]
			if absDuration(seed.Duration-m.Duration) > threshold {
				continue
			}
			grouped[j] = true
			group.Count++
			group.TotalTime += m.Duration
			if m.Duration < group.MinTime {
				group.MinTime = m.Duration
			}
			if m.Duration > group.MaxTime {
				group.MaxTime = m.Duration
			}
		}

		// A seed that absorbed nothing renders as a plain measurement.
		if group.Count == 1 {
			items = append(items, SingleItem(seed))
			continue
		}

		group.AvgTime = group.TotalTime / time.Duration(group.Count)
		absorbed := group.Count - 1
		if absorbed <= 2 {
			group.Name = fmt.Sprintf("%s + %d similar", seed.Label, absorbed)
		} else {
			group.Name = fmt.Sprintf("%s + %d others", seed.Label, absorbed)
		}
		items = append(items, GroupItem(group))
	}

	return items
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
