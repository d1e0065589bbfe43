package spanz

import (
	"sync"
	"sync/atomic"
	"time"
)

// Collector buffers finished reports for batch export.
// Register it with Tracer.OnEnd(collector.Collect).
// Safe for concurrent use by multiple goroutines.
//
//nolint:govet // Field alignment optimized for readability over memory efficiency
type Collector struct {
	reports      []Report
	reportsCh    chan Report
	stopCh       chan struct{}
	done         chan struct{}
	droppedCount atomic.Int64
	name         string
	mu           sync.Mutex
	sendMu       sync.RWMutex
	closeOnce    sync.Once
	closed       atomic.Bool
	syncMode     atomic.Bool
}

// NewCollector creates a new collector with the specified name and buffer size.
func NewCollector(name string, bufferSize int) *Collector {
	if bufferSize < 0 {
		bufferSize = 0
	}
	c := &Collector{
		name:      name,
		reports:   make([]Report, 0, 8),
		reportsCh: make(chan Report, bufferSize),
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
	go c.start()
	return c
}

// Name returns the collector name.
func (c *Collector) Name() string {
	return c.name
}

// start runs the collector's main loop, receiving reports from the channel.
func (c *Collector) start() {
	defer close(c.done)

	for {
		select {
		case <-c.stopCh:
			c.drain()
			return
		case r := <-c.reportsCh:
			c.buffer(r)
		}
	}
}

// Close stops the collector goroutine after draining queued reports.
// Buffered reports remain available through Export.
func (c *Collector) Close() {
	c.closeOnce.Do(func() {
		// No Collect is mid-send once the write lock is held.
		c.sendMu.Lock()
		c.closed.Store(true)
		c.sendMu.Unlock()

		close(c.stopCh)
		select {
		case <-c.done:
			c.drain()
		case <-time.After(100 * time.Millisecond):
		}
	})
}

// drain buffers whatever is still queued.
func (c *Collector) drain() {
	for {
		select {
		case r := <-c.reportsCh:
			c.buffer(r)
		default:
			return
		}
	}
}

// Collect queues a report with backpressure protection.
// If the internal channel is full, or the collector is closed, the report
// is dropped and the drop counter is incremented.
func (c *Collector) Collect(r Report) {
	c.sendMu.RLock()
	defer c.sendMu.RUnlock()

	if c.closed.Load() {
		c.droppedCount.Add(1)
		return
	}

	r = cloneReport(r)

	if c.syncMode.Load() {
		c.buffer(r)
		return
	}

	select {
	case c.reportsCh <- r:
	default:
		c.droppedCount.Add(1)
	}
}

func (c *Collector) buffer(r Report) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports = append(c.reports, r)
}

// Export returns all buffered reports and clears the internal buffer.
func (c *Collector) Export() []Report {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.reports) == 0 {
		return nil
	}

	result := make([]Report, len(c.reports))
	copy(result, c.reports)

	// Shrink only when the buffer is very oversized to avoid allocation churn.
	if cap(c.reports) > 256 && len(c.reports) < cap(c.reports)/8 {
		c.reports = make([]Report, 0, cap(c.reports)/4)
	} else {
		c.reports = c.reports[:0]
	}

	return result
}

// Count returns the current number of buffered reports.
func (c *Collector) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.reports)
}

// DroppedCount returns the total number of reports dropped due to backpressure.
func (c *Collector) DroppedCount() int64 {
	return c.droppedCount.Load()
}

// SetSyncMode enables synchronous collection for testing.
// When enabled, reports are buffered directly without using the channel.
func (c *Collector) SetSyncMode(sync bool) {
	c.syncMode.Store(sync)
}

// Reset clears all buffered reports and resets the drop counter.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reports = c.reports[:0]
	c.droppedCount.Store(0)
}

// cloneReport copies the slices so the collector never shares memory with
// other handlers.
func cloneReport(r Report) Report {
	if r.Measurements != nil {
		r.Measurements = append([]Measurement(nil), r.Measurements...)
	}
	if r.Items != nil {
		r.Items = append([]Item(nil), r.Items...)
	}
	if r.Caller != nil {
		caller := *r.Caller
		r.Caller = &caller
	}
	return r
}
