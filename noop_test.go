package spanz

import (
	"io"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/zoobzio/clockz"
)

// countingClock counts Now calls on top of a fake clock.
type countingClock struct {
	clockz.Clock
	nows int
}

func (c *countingClock) Now() time.Time {
	c.nows++
	return c.Clock.Now()
}

func BenchmarkNoOpTracer(b *testing.B) {
	tracer := New("noop", WithEnabled(false), WithOutput(io.Discard), WithLogger(logr.Discard()))

	b.Run("mark", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			tracer.Mark("step")
		}
	})

	b.Run("mark-end", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			tracer.Mark("step")
			tracer.End()
		}
	})
}

func TestNoOpBehavior(t *testing.T) {
	clock := &countingClock{Clock: clockz.NewFakeClock()}
	tracer := New("noop",
		WithEnabled(false),
		WithClock(clock),
		WithOutput(io.Discard),
		WithLogger(logr.Discard()),
	)
	created := clock.nows

	for i := 0; i < 10; i++ {
		tracer.Mark("step")
	}
	tracer.End()

	if clock.nows != created {
		t.Errorf("disabled tracer read the clock %d times", clock.nows-created)
	}
	if n := len(tracer.AllMeasurements()); n != 0 {
		t.Errorf("expected no measurements, got %d", n)
	}
}

func TestNoOpAllocations(t *testing.T) {
	tracer := New("noop", WithEnabled(false), WithOutput(io.Discard), WithLogger(logr.Discard()))

	allocs := testing.AllocsPerRun(100, func() {
		tracer.Mark("step")
		tracer.End()
	})

	if allocs != 0 {
		t.Errorf("expected 0 allocations for disabled tracer, got %.1f", allocs)
	}
}

func TestSilentTracerSkipsFormatting(t *testing.T) {
	w := &failingWriter{}
	tracer := New("silent",
		WithSilent(true),
		WithCustomCondition(Always()),
		WithOutput(w),
		WithLogger(logr.Discard()),
	)

	tracer.Mark("step")
	tracer.End()

	if w.calls != 0 {
		t.Errorf("silent tracer wrote %d times", w.calls)
	}
}
