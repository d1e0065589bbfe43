// Package otelspan replays finished spanz traces as OpenTelemetry spans.
//
// Each report becomes one root span covering the whole trace with one child
// per measurement, laid end to end in mark order. Timestamps come from the
// report, so the export can happen any time after End.
//
//	exporter := otelspan.New(otel.GetTracerProvider())
//	tracer.OnEnd(exporter.Handler())
package otelspan

import (
	"context"

	"github.com/zoobzio/spanz"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ScopeName is the instrumentation scope used for exported spans.
const ScopeName = "github.com/zoobzio/spanz"

// Attribute keys set on exported spans.
const (
	AttrTraceID   = attribute.Key("spanz.trace_id")
	AttrSpanCount = attribute.Key("spanz.span_count")
	AttrFilters   = attribute.Key("spanz.filters")
	AttrIndex     = attribute.Key("spanz.index")
	AttrPercent   = attribute.Key("spanz.percent")
	AttrClass     = attribute.Key("spanz.class")
	AttrSlowest   = attribute.Key("spanz.slowest")
	AttrFilePath  = attribute.Key("code.filepath")
	AttrLineNo    = attribute.Key("code.lineno")
)

// Exporter converts reports into spans on an OpenTelemetry tracer.
type Exporter struct {
	tracer     trace.Tracer
	includeEnd bool
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithEndSpan also exports the tail between the last mark and End as a child
// span named spanz.EndLabel.
func WithEndSpan() Option {
	return func(e *Exporter) {
		e.includeEnd = true
	}
}

// New creates an exporter using a tracer from tp.
func New(tp trace.TracerProvider, opts ...Option) *Exporter {
	e := &Exporter{tracer: tp.Tracer(ScopeName)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export writes the report as a span tree and returns the root span context.
func (e *Exporter) Export(ctx context.Context, r spanz.Report) trace.SpanContext {
	rootAttrs := []attribute.KeyValue{
		AttrTraceID.String(r.TraceID),
		AttrSpanCount.Int(len(r.Measurements)),
	}
	if r.Filters.Active() {
		rootAttrs = append(rootAttrs, AttrFilters.String(r.Filters.Summary()))
	}
	if r.Caller != nil && r.Caller.File != "" {
		rootAttrs = append(rootAttrs, AttrFilePath.String(r.Caller.File), AttrLineNo.Int(r.Caller.Line))
	}

	ctx, root := e.tracer.Start(ctx, r.Name,
		trace.WithTimestamp(r.Start),
		trace.WithAttributes(rootAttrs...),
	)

	slowest, hasSlowest := r.Slowest()
	cursor := r.Start
	for i, m := range r.Measurements {
		attrs := []attribute.KeyValue{
			AttrIndex.Int(i),
			AttrPercent.Float64(r.Percent(m.Duration)),
			AttrClass.String(spanz.SpeedClass(m.Duration)),
		}
		if hasSlowest && m == slowest {
			attrs = append(attrs, AttrSlowest.Bool(true))
			hasSlowest = false
		}

		_, child := e.tracer.Start(ctx, m.Label,
			trace.WithTimestamp(cursor),
			trace.WithAttributes(attrs...),
		)
		cursor = cursor.Add(m.Duration)
		child.End(trace.WithTimestamp(cursor))
	}

	end := r.Start.Add(r.Total)
	if e.includeEnd && end.After(cursor) {
		_, tail := e.tracer.Start(ctx, spanz.EndLabel,
			trace.WithTimestamp(cursor),
			trace.WithAttributes(AttrIndex.Int(len(r.Measurements))),
		)
		tail.End(trace.WithTimestamp(end))
	}

	root.End(trace.WithTimestamp(end))
	return root.SpanContext()
}

// Handler returns an end handler exporting every report with a background
// context. Register it with Tracer.OnEnd or Tracer.OnEndAsync.
func (e *Exporter) Handler() spanz.ReportHandler {
	return func(r spanz.Report) {
		e.Export(context.Background(), r)
	}
}
