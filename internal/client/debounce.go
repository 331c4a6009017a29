package client

import (
	"sync"
	"time"
)

// Debouncer delays fn until no Trigger happened for the configured delay. Only the last value
// triggered is written.
type Debouncer[T any] struct {
	delay time.Duration
	fn    func(T)

	mu      sync.Mutex
	timer   *time.Timer
	pending *T
	// run serializes writes so a flush never overlaps a timer-driven write.
	run sync.Mutex
}

func NewDebouncer[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{delay: delay, fn: fn}
}

// Trigger replaces the pending value and restarts the timer.
func (d *Debouncer[T]) Trigger(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = &v
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

// Flush runs the pending value now, if any, and returns once it is written.
func (d *Debouncer[T]) Flush() {
	d.run.Lock()
	defer d.run.Unlock()
	if v, ok := d.take(); ok {
		d.fn(v)
	}
}

// Stop drops the pending value without running it.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
}

// Pending reports whether a value is waiting to be written.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

func (d *Debouncer[T]) fire() {
	d.Flush()
}

func (d *Debouncer[T]) take() (T, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.pending == nil {
		var zero T
		return zero, false
	}
	v := *d.pending
	d.pending = nil
	return v, true
}
