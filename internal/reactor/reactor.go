package reactor

import "time"

// channelDepth keeps both directions buffered so neither side stalls the
// other under normal load.
const channelDepth = 64

// Core is the processor goroutine's endpoint. It polls requests without
// blocking, once per loop iteration, so raw input handling is never held
// up by the surface.
type Core struct {
	requests <-chan Message
	ui       chan<- Message
}

// Surface is the control surface's endpoint.
type Surface struct {
	requests chan<- Message
	inbound  <-chan Message
}

// New builds a connected endpoint pair.
func New() (*Core, *Surface) {
	req := make(chan Message, channelDepth)
	ui := make(chan Message, channelDepth)
	return &Core{requests: req, ui: ui}, &Surface{requests: req, inbound: ui}
}

// Poll fetches one pending request, never blocking.
func (c *Core) Poll() (Message, bool) {
	select {
	case m := <-c.requests:
		return m, true
	default:
		return nil, false
	}
}

// PushUI hands an envelope or notification to the surface.
func (c *Core) PushUI(m Message) {
	c.ui <- m
}

// UISink exposes the surface-bound channel for producers other than the
// processor, such as the refresh timer.
func (c *Core) UISink() chan<- Message {
	return c.ui
}

// Send queues a request for the processor.
func (s *Surface) Send(m Message) {
	s.requests <- m
}

// Recv blocks until the next inbound message.
func (s *Surface) Recv() Message {
	return <-s.inbound
}

// Messages exposes the inbound channel so a surface loop can select over
// it together with its own control channels.
func (s *Surface) Messages() <-chan Message {
	return s.inbound
}

// RecvTimeout waits up to d for an inbound message.
func (s *Surface) RecvTimeout(d time.Duration) (Message, bool) {
	select {
	case m := <-s.inbound:
		return m, true
	case <-time.After(d):
		return nil, false
	}
}

// Poll fetches one inbound message, never blocking.
func (s *Surface) Poll() (Message, bool) {
	select {
	case m := <-s.inbound:
		return m, true
	default:
		return nil, false
	}
}
