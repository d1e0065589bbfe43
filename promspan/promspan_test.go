package promspan

import (
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"
	"github.com/zoobzio/spanz"
)

func report(name string, durations ...time.Duration) spanz.Report {
	r := spanz.Report{Name: name}
	for i, d := range durations {
		r.Measurements = append(r.Measurements, spanz.Measurement{Label: []string{"read", "write", "flush"}[i%3], Duration: d})
		r.Total += d
	}
	return r
}

func gather(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	t.Fatalf("metric %s not gathered", name)
	return nil
}

func TestObserve(t *testing.T) {
	observer := NewObserver(Config{Namespace: "test"})
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(observer))

	observer.Observe(report("checkout", 10*time.Millisecond, 30*time.Millisecond))
	observer.Observe(report("checkout", 5*time.Millisecond))
	observer.Observe(report("login", time.Millisecond))

	assert.Equal(t, 2.0, testutil.ToFloat64(observer.traces.WithLabelValues("checkout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(observer.traces.WithLabelValues("login")))

	totals := gather(t, reg, "test_spanz_trace_duration_seconds")
	require.Len(t, totals.GetMetric(), 2)

	spans := gather(t, reg, "test_spanz_span_duration_seconds")
	var count uint64
	var sum float64
	for _, m := range spans.GetMetric() {
		count += m.GetHistogram().GetSampleCount()
		sum += m.GetHistogram().GetSampleSum()
	}
	assert.Equal(t, uint64(4), count)
	assert.InDelta(t, 0.046, sum, 1e-9)
}

func TestObservePerSpan(t *testing.T) {
	observer := NewObserver(Config{PerSpan: true, Buckets: []float64{.01, .1}})
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(observer))

	observer.Observe(report("job", 2*time.Millisecond, 50*time.Millisecond, 200*time.Millisecond))

	spans := gather(t, reg, "spanz_span_duration_seconds")
	require.Len(t, spans.GetMetric(), 3)
	for _, m := range spans.GetMetric() {
		labels := map[string]string{}
		for _, lp := range m.GetLabel() {
			labels[lp.GetName()] = lp.GetValue()
		}
		assert.Equal(t, "job", labels["tracer"])
		assert.Contains(t, []string{"read", "write", "flush"}, labels["span"])
		assert.Len(t, m.GetHistogram().GetBucket(), 2)
	}
}

func TestObserverConstLabels(t *testing.T) {
	observer := NewObserver(Config{ConstLabels: prometheus.Labels{"service": "api"}})
	observer.Observe(report("req", time.Millisecond))

	assert.Equal(t, 3, testutil.CollectAndCount(observer))
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(observer))
	family := gather(t, reg, "spanz_traces_total")
	assert.Equal(t, "service", family.GetMetric()[0].GetLabel()[0].GetName())
}

func TestHandlerFromTracer(t *testing.T) {
	observer := NewObserver(Config{})
	clock := clockz.NewFakeClock()
	tracer := spanz.New("handled",
		spanz.WithClock(clock),
		spanz.WithSilent(true),
		spanz.WithLogger(logr.Discard()),
	)
	tracer.OnEnd(observer.Handler())

	clock.Advance(20 * time.Millisecond)
	tracer.Mark("work")
	tracer.End()
	tracer.End()

	assert.Equal(t, 2.0, testutil.ToFloat64(observer.traces.WithLabelValues("handled")))
}
