package tick

// Ratelimit gates an action to at most once per interval, measured in
// widened ticks. The zero window allows the first call at any tick.
type Ratelimit struct {
	next uint64
	per  uint64
}

// NewRatelimit builds a limiter allowing one pass per interval ticks.
func NewRatelimit(interval uint64) *Ratelimit {
	return &Ratelimit{per: interval}
}

// Allow reports whether the action may run at tick, advancing the window
// when it does.
func (r *Ratelimit) Allow(tick uint64) bool {
	if tick >= r.next {
		r.next = tick + r.per
		return true
	}
	return false
}

// Reset changes the interval, re-basing the current window without losing
// its phase.
func (r *Ratelimit) Reset(interval uint64) {
	if r.next >= r.per {
		r.next = r.next - r.per + interval
	}
	r.per = interval
}
