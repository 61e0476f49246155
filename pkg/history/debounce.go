package history

import (
	"time"
)

// DefaultDebounce is the delay before a debounced edit is recorded.
const DefaultDebounce = 750 * time.Millisecond

// Debouncer is the single timer shared by all debounced edits.
//
// It is not safe for concurrent use: the owner guards it with its own lock,
// including inside the fire callback. A timer callback that lost the race
// against Cancel or a newer Arm is detected through Take and must do nothing.
type Debouncer struct {
	delay       time.Duration
	timer       *time.Timer
	generation  uint64
	pending     bool
	description string
	afterFunc   func(time.Duration, func()) *time.Timer
}

// NewDebouncer creates a Debouncer with the given delay.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{
		delay:     delay,
		afterFunc: time.AfterFunc,
	}
}

// Delay returns the configured delay.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Arm (re)starts the timer. The description of the latest call wins.
// fire runs on the timer goroutine with the generation it was armed for.
func (d *Debouncer) Arm(description string, fire func(generation uint64)) {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.generation++
	d.pending = true
	d.description = description

	gen := d.generation
	d.timer = d.afterFunc(d.delay, func() { fire(gen) })
}

// Take claims a fired generation. It returns false when the generation was
// cancelled or superseded in the meantime.
func (d *Debouncer) Take(generation uint64) (string, bool) {
	if !d.pending || generation != d.generation {
		return "", false
	}
	d.pending = false
	d.timer = nil
	return d.description, true
}

// Cancel disarms the timer and returns the description of the pending edit, if any.
func (d *Debouncer) Cancel() (string, bool) {
	if !d.pending {
		return "", false
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = false
	d.generation++
	return d.description, true
}

// Pending reports whether a debounced edit awaits recording.
func (d *Debouncer) Pending() bool {
	return d.pending
}
