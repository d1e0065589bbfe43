package integration

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/zoobzio/clockz"
	"github.com/zoobzio/spanz"
)

// MockCollector wraps a real collector with test utilities.
// Provides synchronous collection and verification helpers.
//
//nolint:govet // Field alignment optimized for test helper readability
type MockCollector struct {
	exported []spanz.Report
	*spanz.Collector
	t  *testing.T
	mu sync.Mutex
}

// NewMockCollector creates a collector for testing.
func NewMockCollector(t *testing.T, name string, bufferSize int) *MockCollector {
	collector := spanz.NewCollector(name, bufferSize)
	collector.SetSyncMode(true)
	t.Cleanup(collector.Close)
	return &MockCollector{
		Collector: collector,
		t:         t,
		exported:  make([]spanz.Report, 0),
	}
}

// Export returns collected reports and clears the buffer.
func (m *MockCollector) Export() []spanz.Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	reports := m.Collector.Export()
	m.exported = append(m.exported, reports...)
	return reports
}

// GetAll returns every report exported so far without clearing history.
func (m *MockCollector) GetAll() []spanz.Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	if current := m.Collector.Export(); len(current) > 0 {
		m.exported = append(m.exported, current...)
	}

	all := make([]spanz.Report, len(m.exported))
	copy(all, m.exported)
	return all
}

// WaitForReports waits for the expected number of reports with timeout.
func (m *MockCollector) WaitForReports(expected int, timeout time.Duration) []spanz.Report {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	var reports []spanz.Report
	for time.Now().Before(deadline) {
		reports = append(reports, m.Export()...)
		if len(reports) >= expected {
			return reports[:expected]
		}
		<-ticker.C
	}

	m.t.Errorf("Timeout waiting for reports: expected %d, got %d", expected, len(reports))
	return reports
}

// AssertReportCount verifies the exact number of buffered reports.
func (m *MockCollector) AssertReportCount(expected int) {
	m.t.Helper()
	reports := m.Export()
	if len(reports) != expected {
		m.t.Errorf("Expected %d reports, got %d", expected, len(reports))
	}
}

// AssertReportNamed returns the first report with the given tracer name.
func (m *MockCollector) AssertReportNamed(name string) *spanz.Report {
	m.t.Helper()
	reports := m.GetAll()
	for i := range reports {
		if reports[i].Name == name {
			return &reports[i]
		}
	}
	m.t.Errorf("Report named '%s' not found", name)
	return nil
}

// AssertLabels checks the raw measurement labels of a report, in order.
func AssertLabels(t *testing.T, r spanz.Report, want ...string) {
	t.Helper()
	if len(r.Measurements) != len(want) {
		t.Errorf("Expected %d measurements, got %d", len(want), len(r.Measurements))
		return
	}
	for i, m := range r.Measurements {
		if m.Label != want[i] {
			t.Errorf("Measurement %d: expected label %q, got %q", i, want[i], m.Label)
		}
	}
}

// TracerFixture bundles a tracer on a fake clock with its output buffer.
type TracerFixture struct {
	Tracer *spanz.Tracer
	Clock  *clockz.FakeClock
	Output *bytes.Buffer
}

// NewTracerFixture builds a tracer writing uncolored output to a buffer.
// Extra options are merged after the fixture defaults.
func NewTracerFixture(t *testing.T, name string, opts ...spanz.Options) *TracerFixture {
	t.Helper()
	clock := clockz.NewFakeClock()
	out := &bytes.Buffer{}
	base := []spanz.Options{
		spanz.WithClock(clock),
		spanz.WithOutput(out),
		spanz.WithColor(false),
		spanz.WithLogger(logr.Discard()),
	}
	tracer := spanz.New(name, append(base, opts...)...)
	t.Cleanup(tracer.Close)
	return &TracerFixture{Tracer: tracer, Clock: clock, Output: out}
}

// Step advances the clock by d and marks label.
func (f *TracerFixture) Step(label string, d time.Duration) {
	f.Clock.Advance(d)
	f.Tracer.Mark(label)
}

// Steps runs label/duration pairs in order.
func (f *TracerFixture) Steps(steps ...Step) {
	for _, s := range steps {
		f.Step(s.Label, s.Duration)
	}
}

// Step is one simulated unit of work.
type Step struct {
	Label    string
	Duration time.Duration
}
