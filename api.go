// Package spanz provides lightweight, in-process span timing for manual
// instrumentation of a code path.
//
// spanz records the wall-clock time between consecutive marks and renders a
// report once the trace ends. There is no backend, no sampling and no span
// hierarchy: a trace is a flat, ordered list of measurements.
//
// Core Components:.
//   - Tracer: Records marks and decides whether to render at End.
//   - Measurement: Label plus the time elapsed since the previous mark.
//   - FilterConfig: Slow-only, hide-ultra-fast and group-similar stages.
//   - Report: Immutable snapshot handed to formatters and end handlers.
//   - Collector: Buffers finished reports for batch export.
//
// Basic Usage:.
//
//	tracer := spanz.New("checkout",
//		spanz.WithOutputStyle(spanz.StyleTable),
//		spanz.WithMinTotalDuration(50*time.Millisecond),
//	)
//
//	loadCart()
//	tracer.Mark("load cart")
//
//	charge()
//	tracer.Mark("charge card")
//
//	tracer.End()
//
// Smart Filtering:.
//
// Filters only affect what is rendered. Stages run in order: show-slow-only,
// hide-ultra-fast, group-similar. Grouping compares each candidate against
// the duration of the group's first member (the seed), never a running
// average.
//
// Thread Safety:.
//
// A Tracer is meant to be driven by one goroutine from New through End.
// Concurrent Mark/End/setter calls on the same Tracer are the caller's
// responsibility. Handler registration and the Collector are safe for
// concurrent use.
//
// Reserved Label:.
//
// End appends a measurement labeled "End" covering the tail of the trace.
// Measurements never returns entries with that label, including ones the
// caller marked explicitly.
//
// End does not seal the trace. Mark after End keeps recording, and the next
// End appends another tail span and renders the extended trace.
package spanz

import (
	"fmt"
	"strings"
)

// EndLabel is the label End appends for the tail of a trace.
const EndLabel = "End"

// Style selects the formatter used when a trace is rendered.
type Style int

const (
	StyleDefault Style = iota
	StyleColorful
	StyleMinimal
	StyleDetailed
	StyleTable
	StyleJSON
)

var styleNames = map[Style]string{
	StyleDefault:  "default",
	StyleColorful: "colorful",
	StyleMinimal:  "minimal",
	StyleDetailed: "detailed",
	StyleTable:    "table",
	StyleJSON:     "json",
}

// String returns the lowercase style name.
func (s Style) String() string {
	if name, ok := styleNames[s]; ok {
		return name
	}
	return fmt.Sprintf("style(%d)", int(s))
}

// ParseStyle resolves a style name, case-insensitively.
func ParseStyle(name string) (Style, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" {
		return StyleDefault, nil
	}
	for style, n := range styleNames {
		if n == want {
			return style, nil
		}
	}
	return StyleDefault, fmt.Errorf("unknown output style %q", name)
}
