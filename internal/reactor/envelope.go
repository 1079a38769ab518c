// Package reactor connects the processor goroutine to the control surface
// with typed request/response envelopes over a channel pair. Correlation is
// structural: each request carries its own response slot and the envelope
// itself travels back, so there are no request ids.
package reactor

// Send carries a fire-and-forget payload, consumed exactly once.
type Send[T any] struct {
	payload *T
}

func NewSend[T any](v T) *Send[T] {
	return &Send[T]{payload: &v}
}

// Take removes the payload. Taking twice is a programming error.
func (s *Send[T]) Take() T {
	if s.payload == nil {
		panic("reactor: payload already taken")
	}
	v := *s.payload
	s.payload = nil
	return v
}

// Roundtrip carries a request one way and the response back on the same
// envelope. The handler takes the request exactly once and fills the
// response slot exactly once before pushing the envelope back; the
// requester consumes the slot exactly once.
type Roundtrip[Req, Rsp any] struct {
	req *Req
	rsp *outcome[Rsp]
}

type outcome[Rsp any] struct {
	value Rsp
	err   error
}

func NewRoundtrip[Req, Rsp any](req Req) *Roundtrip[Req, Rsp] {
	return &Roundtrip[Req, Rsp]{req: &req}
}

// TakeRequest removes the request. Taking twice is a programming error.
func (r *Roundtrip[Req, Rsp]) TakeRequest() Req {
	if r.req == nil {
		panic("reactor: request already taken")
	}
	v := *r.req
	r.req = nil
	return v
}

// Reply fills the response slot with a success value.
func (r *Roundtrip[Req, Rsp]) Reply(v Rsp) {
	if r.rsp != nil {
		panic("reactor: response already filled")
	}
	r.rsp = &outcome[Rsp]{value: v}
}

// Fail fills the response slot with an error.
func (r *Roundtrip[Req, Rsp]) Fail(err error) {
	if r.rsp != nil {
		panic("reactor: response already filled")
	}
	r.rsp = &outcome[Rsp]{err: err}
}

// TakeResponse consumes the filled slot. Reading an unfilled slot, or
// reading twice, is a programming error: every handler fills the slot
// before handing the envelope back.
func (r *Roundtrip[Req, Rsp]) TakeResponse() (Rsp, error) {
	if r.rsp == nil {
		panic("reactor: response slot not filled")
	}
	out := *r.rsp
	r.rsp = nil
	return out.value, out.err
}
