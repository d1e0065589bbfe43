package spanz

import (
	"encoding/json"
	"fmt"
)

//nolint:govet // Field order matches the emitted JSON
type jsonReport struct {
	TraceID       string      `json:"trace_id"`
	TracerName    string      `json:"tracer_name"`
	TotalDuration string      `json:"total_duration"`
	TotalNS       int64       `json:"total_ns"`
	CallerInfo    *jsonCaller `json:"caller_info,omitempty"`
	Filters       string      `json:"filters,omitempty"`
	SpanCount     int         `json:"span_count"`
	Spans         []jsonSpan  `json:"spans"`
}

type jsonCaller struct {
	File     string `json:"file"`
	FullPath string `json:"full_path"`
	Line     int    `json:"line"`
}

//nolint:govet // Field order matches the emitted JSON
type jsonSpan struct {
	Name       string  `json:"name"`
	Duration   string  `json:"duration"`
	NS         int64   `json:"ns"`
	Percent    float64 `json:"percent"`
	ColorClass string  `json:"color_class"`
	Count      int     `json:"count,omitempty"`
	MinNS      int64   `json:"min_ns,omitempty"`
	MaxNS      int64   `json:"max_ns,omitempty"`
	TotalNS    int64   `json:"total_ns,omitempty"`
}

// formatJSON emits one indented JSON object. Spans are the filtered rows;
// span_count is the number of raw measurements.
func formatJSON(r Report, _ palette) string {
	out := jsonReport{
		TraceID:       r.TraceID,
		TracerName:    r.Name,
		TotalDuration: r.Total.String(),
		TotalNS:       r.Total.Nanoseconds(),
		Filters:       r.Filters.Summary(),
		SpanCount:     len(r.Measurements),
		Spans:         make([]jsonSpan, 0, len(r.Items)),
	}

	if r.Caller != nil && r.Caller.File != "" {
		out.CallerInfo = &jsonCaller{
			File:     r.Caller.String(),
			FullPath: r.Caller.File,
			Line:     r.Caller.Line,
		}
	}

	for _, item := range r.Items {
		d := item.Duration()
		span := jsonSpan{
			Name:       item.Label(),
			Duration:   d.String(),
			NS:         d.Nanoseconds(),
			Percent:    r.Percent(d),
			ColorClass: SpeedClass(d),
		}
		if g, ok := item.Group(); ok {
			span.Count = g.Count
			span.MinNS = g.MinTime.Nanoseconds()
			span.MaxNS = g.MaxTime.Nanoseconds()
			span.TotalNS = g.TotalTime.Nanoseconds()
		}
		out.Spans = append(out.Spans, span)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Sprintf("{\"error\": %q}\n", err.Error())
	}
	return string(data) + "\n"
}
