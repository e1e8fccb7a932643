package performance

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of triggers into one callback fired after the
// burst has been quiet for the configured delay. A burst that keeps going
// still fires at least once every maxWait, so a constantly growing log file
// keeps refreshing.
type Debouncer struct {
	delay    time.Duration
	maxWait  time.Duration
	timer    *time.Timer
	callback func()
	mutex    sync.Mutex
	pending  bool
	first    time.Time
}

// NewDebouncer creates a new debouncer with the specified delay
func NewDebouncer(delay time.Duration, callback func()) *Debouncer {
	return &Debouncer{
		delay:    delay,
		maxWait:  10 * delay,
		callback: callback,
	}
}

// Trigger schedules the callback
func (d *Debouncer) Trigger() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	now := time.Now()
	if !d.pending {
		d.first = now
	}
	d.pending = true

	if d.timer != nil {
		d.timer.Stop()
	}

	wait := d.delay
	if d.maxWait > 0 {
		if remaining := d.maxWait - now.Sub(d.first); remaining < wait {
			wait = max(remaining, 0)
		}
	}
	d.timer = time.AfterFunc(wait, d.fire)
}

func (d *Debouncer) fire() {
	d.mutex.Lock()
	if !d.pending {
		d.mutex.Unlock()
		return
	}
	d.pending = false
	callback := d.callback
	d.mutex.Unlock()

	callback()
}

// Flush runs a pending callback immediately
func (d *Debouncer) Flush() {
	d.mutex.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mutex.Unlock()

	d.fire()
}

// Cancel cancels any pending debounced call
func (d *Debouncer) Cancel() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// IsPending returns whether a call is pending
func (d *Debouncer) IsPending() bool {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.pending
}

// SetDelay updates the debounce delay and the burst ceiling
func (d *Debouncer) SetDelay(delay time.Duration) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.delay = delay
	d.maxWait = 10 * delay
}
