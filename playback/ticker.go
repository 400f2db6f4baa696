package playback

import "time"

// FrameTicker paces playback from a frame loop that must own the thread, such as
// the graphical host. Frame time accumulates until one interval has passed.
type FrameTicker struct {
	interval    time.Duration
	accumulator time.Duration
}

// NewFrameTicker creates a ticker firing once per interval.
func NewFrameTicker(interval time.Duration) *FrameTicker {
	f := &FrameTicker{}
	f.SetInterval(interval)
	return f
}

// SetInterval changes the tick interval. Non-positive values fall back to 250ms.
func (f *FrameTicker) SetInterval(interval time.Duration) {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	f.interval = interval
}

// Advance adds one frame's elapsed time and reports whether a tick is due.
// At most one tick fires per frame; a slow frame does not queue a backlog.
func (f *FrameTicker) Advance(dt time.Duration) bool {
	f.accumulator += dt
	if f.accumulator < f.interval {
		return false
	}
	f.accumulator -= f.interval
	if f.accumulator >= f.interval {
		f.accumulator = 0
	}
	return true
}
