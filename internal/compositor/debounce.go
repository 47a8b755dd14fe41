package compositor

import "time"

// DefaultDebounce coalesces bursts of edits into one composite per frame.
const DefaultDebounce = 16 * time.Millisecond

// Debouncer is a trailing-edge timer polled from the render loop. Every
// Trigger pushes the deadline out; Ready fires once after the input has
// been quiet for Delay.
type Debouncer struct {
	Delay time.Duration

	pending  bool
	deadline time.Time
}

// NewDebouncer returns a debouncer with the given delay.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{Delay: delay}
}

// Trigger records a change at now.
func (d *Debouncer) Trigger(now time.Time) {
	d.pending = true
	d.deadline = now.Add(d.Delay)
}

// Ready reports whether a pending change has settled, and consumes it.
func (d *Debouncer) Ready(now time.Time) bool {
	if !d.pending || now.Before(d.deadline) {
		return false
	}
	d.pending = false
	return true
}

// Pending reports whether a change is waiting.
func (d *Debouncer) Pending() bool {
	return d.pending
}

// Flush consumes a pending change regardless of the deadline.
func (d *Debouncer) Flush() bool {
	was := d.pending
	d.pending = false
	return was
}
