package debounce

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Debouncer coalesces bursts of triggers under a key into a single delayed
// callback. Each Schedule call cancels the pending timer for its key, so only
// the most recent callback fires, after the delay of quiescence. Keys run
// independent timers.
type Debouncer struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
	logger *zap.Logger
}

// New constructs a Debouncer.
func New(logger *zap.Logger) *Debouncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Debouncer{
		timers: make(map[string]*time.Timer),
		logger: logger,
	}
}

// Schedule arms a timer for key, replacing any pending one. fn runs on its
// own goroutine once delay elapses without a newer Schedule for the same key.
// Calls after Close are ignored.
func (d *Debouncer) Schedule(key string, delay time.Duration, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	if prev, ok := d.timers[key]; ok {
		prev.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		d.mu.Lock()
		// A newer Schedule or Close superseded this timer between firing
		// and acquiring the lock.
		if d.closed || d.timers[key] != timer {
			d.mu.Unlock()
			return
		}
		delete(d.timers, key)
		d.mu.Unlock()
		fn()
	})
	d.timers[key] = timer
}

// Cancel drops the pending timer for key, if any.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if timer, ok := d.timers[key]; ok {
		timer.Stop()
		delete(d.timers, key)
	}
}

// Pending returns the number of armed timers.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.timers)
}

// Close cancels every pending timer. No callback fires after Close returns.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	for key, timer := range d.timers {
		timer.Stop()
		delete(d.timers, key)
	}
	d.logger.Debug("debouncer closed")
}
