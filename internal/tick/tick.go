// Package tick provides monotonic time plumbing for 32-bit host tick values.
package tick

import "time"

const (
	// shortTickSpan is the range of the host's wrapping tick counter.
	shortTickSpan = uint64(1) << 32
	// flushMargin is how far (ms) a checkpoint may lag before it is moved.
	flushMargin = 1000
)

var processStart = time.Now()

// UptimeMillis returns monotonic milliseconds since process start. Event
// sources truncate it to 32 bits when stamping raw events.
func UptimeMillis() uint64 {
	return uint64(time.Since(processStart) / time.Millisecond)
}

// Widener lifts wrapping 32-bit tick values onto a monotonic 64-bit axis.
// It re-anchors against the wide clock only when an observed tick goes
// backwards (wraparound), so the hot path is two comparisons.
type Widener struct {
	now  func() uint64
	accu uint64
	last uint32
}

// NewWidener builds a widener anchored on now, a monotonic 64-bit
// millisecond clock. Pass UptimeMillis outside of tests.
func NewWidener(now func() uint64) *Widener {
	w := &Widener{now: now}
	w.flush()
	return w
}

func (w *Widener) flush() {
	w.accu = w.now() / shortTickSpan * shortTickSpan
}

// Widen converts a host tick into a monotonic 64-bit tick.
func (w *Widener) Widen(t uint32) uint64 {
	if t >= w.last {
		if uint64(t-w.last) > flushMargin {
			w.last = t
		}
	} else {
		w.flush()
		w.last = t
	}
	return w.accu + uint64(t)
}
