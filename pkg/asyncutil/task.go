package asyncutil

import (
	"sync"
	"time"
)

// Task is a single cancellable scheduled callback. Scheduling a new run
// always cancels the previous one; a generation counter makes sure a timer
// that already fired before being stopped does not run a stale callback.
type Task struct {
	lock  sync.Mutex
	timer *time.Timer
	gen   uint64
}

// ScheduleAt arms the task to run fn at the given instant. An instant in the
// past runs fn as soon as possible.
func (t *Task) ScheduleAt(at time.Time, fn func()) {
	t.ScheduleIn(time.Until(at), fn)
}

// ScheduleIn arms the task to run fn after d.
func (t *Task) ScheduleIn(d time.Duration, fn func()) {
	if d < 0 {
		d = 0
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	if t.timer != nil {
		t.timer.Stop()
	}
	t.gen++
	gen := t.gen

	t.timer = time.AfterFunc(d, func() {
		t.lock.Lock()
		if gen != t.gen {
			t.lock.Unlock()
			return
		}
		t.timer = nil
		t.lock.Unlock()

		fn()
	})
}

// Cancel stops the scheduled run, if any. Idempotent.
func (t *Task) Cancel() {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.gen++
}

// Scheduled returns whether a run is armed.
func (t *Task) Scheduled() bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.timer != nil
}
