package asyncutil

import (
	"sync"
	"time"
)

// Debouncer collapses bursts of calls into a single trailing-edge invocation
// of the wrapped function, fired once the calls have settled for the
// configured wait duration.
type Debouncer struct {
	fn   func()
	wait time.Duration

	lock  sync.Mutex
	timer *time.Timer
	gen   uint64
}

// NewDebouncer returns a Debouncer for the given function.
func NewDebouncer(fn func(), wait time.Duration) *Debouncer {
	return &Debouncer{fn: fn, wait: wait}
}

// Call (re)arms the timer. Only the last call of a burst runs fn.
func (d *Debouncer) Call() {
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen

	d.timer = time.AfterFunc(d.wait, func() {
		d.lock.Lock()
		if gen != d.gen {
			d.lock.Unlock()
			return
		}
		d.timer = nil
		d.lock.Unlock()

		d.fn()
	})
}

// Cancel drops the pending invocation, if any. Safe to call at any time.
func (d *Debouncer) Cancel() {
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

// Pending returns whether an invocation is armed and not fired yet.
func (d *Debouncer) Pending() bool {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.timer != nil
}
