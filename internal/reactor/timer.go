package reactor

import "time"

// Timer injects Tick messages into the surface channel at a configurable
// interval. The interval can be retuned at runtime without restarting the
// goroutine; Stop closes the control channel and the goroutine exits on
// its own.
type Timer struct {
	updates chan time.Duration
}

func StartTimer(interval time.Duration, sink chan<- Message) *Timer {
	t := &Timer{updates: make(chan time.Duration, 1)}
	go t.run(interval, sink)
	return t
}

func (t *Timer) run(interval time.Duration, sink chan<- Message) {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case d, ok := <-t.updates:
			if !ok {
				return
			}
			tick.Reset(d)
		case <-tick.C:
			select {
			case sink <- Tick{}:
			default:
				// Surface is behind; a skipped refresh is harmless.
			}
		}
	}
}

// SetInterval retunes the period. Non-positive intervals are ignored.
// Must not be called after Stop.
func (t *Timer) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	t.updates <- d
}

// Stop terminates the timer goroutine.
func (t *Timer) Stop() {
	close(t.updates)
}
