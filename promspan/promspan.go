// Package promspan records finished spanz traces as Prometheus metrics.
//
// An Observer is a prometheus.Collector. Register it once and attach its
// handler to every tracer whose reports should be counted:
//
//	observer := promspan.NewObserver(promspan.Config{Namespace: "shop"})
//	prometheus.MustRegister(observer)
//	tracer.OnEnd(observer.Handler())
package promspan

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/zoobzio/spanz"
)

// DefaultBuckets are histogram buckets in seconds spanning 100µs to 10s.
var DefaultBuckets = []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// Config configures an Observer. Zero values select the defaults.
type Config struct {
	ConstLabels prometheus.Labels
	Namespace   string
	Subsystem   string
	Buckets     []float64
	// PerSpan labels span observations with the span label. Disable it when
	// labels are unbounded, such as labels built from request IDs.
	PerSpan bool
}

// Observer aggregates report durations into histograms.
type Observer struct {
	traces  *prometheus.CounterVec
	totals  *prometheus.HistogramVec
	spans   *prometheus.HistogramVec
	perSpan bool
}

// NewObserver creates an unregistered observer.
func NewObserver(cfg Config) *Observer {
	if cfg.Subsystem == "" {
		cfg.Subsystem = "spanz"
	}
	if len(cfg.Buckets) == 0 {
		cfg.Buckets = DefaultBuckets
	}

	spanLabels := []string{"tracer"}
	if cfg.PerSpan {
		spanLabels = append(spanLabels, "span")
	}

	return &Observer{
		perSpan: cfg.PerSpan,
		traces: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "traces_total",
			Help:        "Number of finished traces.",
			ConstLabels: cfg.ConstLabels,
		}, []string{"tracer"}),
		totals: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "trace_duration_seconds",
			Help:        "Total duration of finished traces.",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}, []string{"tracer"}),
		spans: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "span_duration_seconds",
			Help:        "Duration of individual spans between marks.",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}, spanLabels),
	}
}

// Observe records one finished report. Raw measurements are observed, not
// the filtered rows.
func (o *Observer) Observe(r spanz.Report) {
	o.traces.WithLabelValues(r.Name).Inc()
	o.totals.WithLabelValues(r.Name).Observe(r.Total.Seconds())

	for _, m := range r.Measurements {
		if o.perSpan {
			o.spans.WithLabelValues(r.Name, m.Label).Observe(m.Duration.Seconds())
			continue
		}
		o.spans.WithLabelValues(r.Name).Observe(m.Duration.Seconds())
	}
}

// Handler returns an end handler calling Observe.
func (o *Observer) Handler() spanz.ReportHandler {
	return o.Observe
}

// Describe implements prometheus.Collector.
func (o *Observer) Describe(ch chan<- *prometheus.Desc) {
	o.traces.Describe(ch)
	o.totals.Describe(ch)
	o.spans.Describe(ch)
}

// Collect implements prometheus.Collector.
func (o *Observer) Collect(ch chan<- prometheus.Metric) {
	o.traces.Collect(ch)
	o.totals.Collect(ch)
	o.spans.Collect(ch)
}
