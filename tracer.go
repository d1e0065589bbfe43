package spanz

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/xid"
	"github.com/zoobzio/clockz"
	"k8s.io/klog/v2/textlogger"
)

// ReportHandler is called with the report of every enabled End.
type ReportHandler func(report Report)

type handlerEntry struct {
	handler ReportHandler
	id      uint64
	async   bool
}

// Tracer records sequential spans and renders them at End.
// Mark, End and the setters are meant for a single goroutine; handler
// registration is safe for concurrent use.
//
//nolint:govet // Field order optimized for functionality over memory
type Tracer struct {
	handlers       []handlerEntry
	panicHook      func(handlerID uint64, r interface{})
	workers        *workerPool
	clock          clockz.Clock
	out            io.Writer
	log            logr.Logger
	printCondition PrintCondition
	caller         *CallerInfo
	opts           Options
	name           string
	traceID        string
	measurements   []Measurement
	start          time.Time
	lastMark       time.Time
	filters        FilterConfig
	style          Style
	handlersLock   sync.RWMutex
	nextID         atomic.Uint64
	droppedReports atomic.Uint64
	enabled        bool
	silent         bool
	color          bool
}

// New creates a tracer and starts its clock.
// Options are merged left to right; see Options for precedence.
func New(name string, opts ...Options) *Tracer {
	o := Merge(opts...)

	t := &Tracer{
		name:           name,
		traceID:        xid.New().String(),
		opts:           o,
		clock:          clockz.RealClock,
		enabled:        true,
		style:          StyleDefault,
		printCondition: o.condition(),
		filters:        o.filters(),
		caller:         o.Caller,
		handlers:       make([]handlerEntry, 0),
	}

	if o.Clock != nil {
		t.clock = o.Clock
	}
	if o.Enabled != nil {
		t.enabled = *o.Enabled
	}
	if o.Silent != nil {
		t.silent = *o.Silent
	}
	if o.Style != nil {
		t.style = *o.Style
	}

	if o.Logger != nil {
		t.log = *o.Logger
	} else {
		t.log = textlogger.NewLogger(textlogger.NewConfig())
	}
	t.log = t.log.WithValues("tracer", name)

	if o.Output != nil {
		t.out = o.Output
		t.color = isTerminal(o.Output)
	} else {
		t.out = colorable.NewColorableStdout()
		t.color = isTerminal(os.Stdout)
	}
	if o.Color != nil {
		t.color = *o.Color
	}

	t.start = t.clock.Now()
	t.lastMark = t.start

	return t
}

// WithClock returns a new tracer built from the same construction options
// but driven by clock. Enables clock injection for deterministic testing.
func (t *Tracer) WithClock(clock clockz.Clock) *Tracer {
	return New(t.name, t.opts, WithClock(clock))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Mark records the time since the previous mark under label.
// No-op while disabled; the clock is not read.
func (t *Tracer) Mark(label string) {
	if !t.enabled {
		return
	}

	now := t.clock.Now()
	t.measurements = append(t.measurements, Measurement{
		Label:    label,
		Duration: now.Sub(t.lastMark),
	})
	t.lastMark = now
}

// End records the tail span and, unless silent or the print condition says
// otherwise, renders the trace to the output. Handlers run afterwards with
// the same snapshot, whether or not it was rendered.
// Calling End again appends another End span and renders again.
func (t *Tracer) End() {
	if !t.enabled {
		return
	}

	t.Mark(EndLabel)

	report := t.Report()
	t.emit(report)
	t.executeHandlers(report)
}

// emit writes report to the output when the tracer is not silent and the
// print condition holds. The condition is evaluated before any handler runs.
func (t *Tracer) emit(report Report) {
	if t.silent {
		t.log.V(1).Info("Trace not rendered", "reason", "silent")
		return
	}

	if !t.shouldPrint() {
		t.log.V(1).Info("Trace not rendered", "reason", "print condition", "total", report.Total)
		return
	}

	output := Render(t.style, report, t.color)
	if _, err := io.WriteString(t.out, output); err != nil {
		t.log.Error(err, "Failed to write trace", "style", t.style.String())
	}
}

// shouldPrint evaluates the print condition. A panicking condition counts
// as false.
func (t *Tracer) shouldPrint() (ok bool) {
	if t.printCondition == nil {
		return true
	}
	defer func() {
		if r := recover(); r != nil {
			t.log.Error(fmt.Errorf("%v", r), "Print condition panicked")
			ok = false
		}
	}()
	return t.printCondition(t)
}

// Report snapshots the trace. Durations are read at call time.
func (t *Tracer) Report() Report {
	measurements := t.Measurements()
	return Report{
		TraceID:      t.traceID,
		Name:         t.name,
		Start:        t.start,
		Total:        t.TotalDuration(),
		Measurements: measurements,
		Items:        t.filters.Apply(measurements),
		Filters:      t.filters,
		Caller:       t.caller,
	}
}

// Render formats the current trace in the current style without writing it.
func (t *Tracer) Render() string {
	return Render(t.style, t.Report(), t.color)
}

// Measurements returns the recorded spans in order, without "End" entries.
func (t *Tracer) Measurements() []Measurement {
	result := make([]Measurement, 0, len(t.measurements))
	for _, m := range t.measurements {
		if m.Label == EndLabel {
			continue
		}
		result = append(result, m)
	}
	return result
}

// AllMeasurements returns every recorded span including "End".
func (t *Tracer) AllMeasurements() []Measurement {
	result := make([]Measurement, len(t.measurements))
	copy(result, t.measurements)
	return result
}

// TotalDuration returns the time since the tracer was created.
func (t *Tracer) TotalDuration() time.Duration {
	return t.clock.Now().Sub(t.start)
}

// Name returns the tracer name.
func (t *Tracer) Name() string {
	return t.name
}

// TraceID returns the identifier assigned at creation.
func (t *Tracer) TraceID() string {
	return t.traceID
}

// Filters returns the smart filter configuration.
func (t *Tracer) Filters() FilterConfig {
	return t.filters
}

// Caller returns the creation site, if one was supplied.
func (t *Tracer) Caller() *CallerInfo {
	return t.caller
}

// SetEnabled turns recording on or off.
func (t *Tracer) SetEnabled(enabled bool) {
	t.enabled = enabled
}

// SetSilent toggles rendering at End; data is still collected.
func (t *Tracer) SetSilent(silent bool) {
	t.silent = silent
}

// SetOutputStyle changes the formatter used by later End calls.
func (t *Tracer) SetOutputStyle(style Style) {
	t.style = style
}

// SetPrintCondition replaces the print condition. Nil renders always.
func (t *Tracer) SetPrintCondition(condition PrintCondition) {
	t.printCondition = condition
}

// IsEnabled reports whether marks are recorded.
func (t *Tracer) IsEnabled() bool {
	return t.enabled
}

// IsSilent reports whether End skips rendering.
func (t *Tracer) IsSilent() bool {
	return t.silent
}

// OutputStyle returns the current style.
func (t *Tracer) OutputStyle() Style {
	return t.style
}

// PrintCondition returns the current print condition.
func (t *Tracer) PrintCondition() PrintCondition {
	return t.printCondition
}

// OnEnd registers a synchronous handler called on every enabled End.
func (t *Tracer) OnEnd(handler ReportHandler) uint64 {
	return t.registerHandler(handler, false)
}

// OnEndAsync registers a handler called on its own goroutine, or on the
// worker pool when one is enabled.
func (t *Tracer) OnEndAsync(handler ReportHandler) uint64 {
	return t.registerHandler(handler, true)
}

func (t *Tracer) registerHandler(handler ReportHandler, async bool) uint64 {
	if handler == nil {
		return 0
	}

	id := t.nextID.Add(1)

	t.handlersLock.Lock()
	defer t.handlersLock.Unlock()

	t.handlers = append(t.handlers, handlerEntry{
		id:      id,
		handler: handler,
		async:   async,
	})

	return id
}

// RemoveHandler removes a handler by ID.
func (t *Tracer) RemoveHandler(id uint64) {
	t.handlersLock.Lock()
	defer t.handlersLock.Unlock()

	// Preserve order
	for i, h := range t.handlers {
		if h.id == id {
			copy(t.handlers[i:], t.handlers[i+1:])
			t.handlers = t.handlers[:len(t.handlers)-1]
			return
		}
	}
}

// SetPanicHook sets a function to be called when a handler panics.
func (t *Tracer) SetPanicHook(hook func(handlerID uint64, r interface{})) {
	t.panicHook = hook
}

// executeHandlers calls all registered handlers with the report.
func (t *Tracer) executeHandlers(report Report) {
	t.handlersLock.RLock()
	if len(t.handlers) == 0 {
		t.handlersLock.RUnlock()
		return
	}

	handlers := make([]handlerEntry, len(t.handlers))
	copy(handlers, t.handlers)
	t.handlersLock.RUnlock()

	for _, h := range handlers {
		if h.async {
			entry := h
			if t.workers != nil {
				t.workers.submit(func() {
					t.safeCall(entry, report)
				})
			} else {
				go t.safeCall(entry, report)
			}
		} else {
			t.safeCall(h, report)
		}
	}
}

func (t *Tracer) safeCall(entry handlerEntry, report Report) {
	defer func() {
		if r := recover(); r != nil {
			if t.panicHook != nil {
				t.panicHook(entry.id, r)
				return
			}
			t.log.Error(fmt.Errorf("%v", r), "Report handler panicked", "handler", entry.id)
		}
	}()
	entry.handler(report)
}

// EnableWorkerPool creates a bounded worker pool for async handlers.
func (t *Tracer) EnableWorkerPool(workers, queueSize int) error {
	if t.workers != nil {
		return errors.New("worker pool already enabled")
	}
	if workers <= 0 {
		return errors.New("workers must be > 0")
	}
	if queueSize <= 0 {
		return errors.New("queueSize must be > 0")
	}

	t.workers = &workerPool{
		tasks:   make(chan func(), queueSize),
		stop:    make(chan struct{}),
		dropped: &t.droppedReports,
	}

	t.workers.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go t.workers.run()
	}

	return nil
}

// DroppedReports returns the number of reports dropped due to a full worker queue.
func (t *Tracer) DroppedReports() uint64 {
	return t.droppedReports.Load()
}

// Close removes all handlers and stops the worker pool.
// Only needed when handlers or a worker pool were configured.
func (t *Tracer) Close() {
	t.handlersLock.Lock()
	t.handlers = nil
	t.handlersLock.Unlock()

	if t.workers != nil {
		t.workers.shutdown()
		t.workers = nil
	}
}

// workerPool manages a fixed number of workers for processing async handlers.
//
//nolint:govet // Field order optimized for functionality over memory
type workerPool struct {
	tasks   chan func()
	stop    chan struct{}
	dropped *atomic.Uint64
	wg      sync.WaitGroup
}

func (w *workerPool) run() {
	defer w.wg.Done()
	for {
		select {
		case task := <-w.tasks:
			task()
		case <-w.stop:
			return
		}
	}
}

func (w *workerPool) submit(task func()) {
	select {
	case w.tasks <- task:
	default:
		w.dropped.Add(1)
	}
}

func (w *workerPool) shutdown() {
	close(w.stop)
	w.wg.Wait()
}
