package reactor

import (
	"errors"
	"testing"
	"time"

	"github.com/bnema/mousemux/internal/input"
)

func expectPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s did not panic", name)
		}
	}()
	fn()
}

func TestSendTakeOnce(t *testing.T) {
	s := NewSend("device-1")
	if got := s.Take(); got != "device-1" {
		t.Fatalf("Take() = %q", got)
	}
	expectPanic(t, "second Take", func() { s.Take() })
}

func TestRoundtripRequestTakeOnce(t *testing.T) {
	rt := NewRoundtrip[int, string](7)
	if got := rt.TakeRequest(); got != 7 {
		t.Fatalf("TakeRequest() = %d", got)
	}
	expectPanic(t, "second TakeRequest", func() { rt.TakeRequest() })
}

func TestRoundtripReply(t *testing.T) {
	rt := NewRoundtrip[struct{}, int](struct{}{})
	rt.Reply(42)

	got, err := rt.TakeResponse()
	if err != nil {
		t.Fatal(err)
	}
	if got != 42 {
		t.Fatalf("TakeResponse() = %d", got)
	}
	expectPanic(t, "second TakeResponse", func() { rt.TakeResponse() })
}

func TestRoundtripFail(t *testing.T) {
	rt := NewRoundtrip[struct{}, int](struct{}{})
	want := errors.New("scan refused")
	rt.Fail(want)

	_, err := rt.TakeResponse()
	if !errors.Is(err, want) {
		t.Fatalf("TakeResponse() err = %v", err)
	}
}

func TestRoundtripSlotMisuse(t *testing.T) {
	rt := NewRoundtrip[struct{}, int](struct{}{})
	expectPanic(t, "TakeResponse before fill", func() { rt.TakeResponse() })

	rt.Reply(1)
	expectPanic(t, "second Reply", func() { rt.Reply(2) })
	expectPanic(t, "Fail after Reply", func() { rt.Fail(errors.New("late")) })
}

func TestEnvelopeRoundTripsThroughPair(t *testing.T) {
	core, surface := New()

	req := NewScanDevices()
	surface.Send(req)

	m, ok := core.Poll()
	if !ok {
		t.Fatal("core saw no request")
	}
	scan, ok := m.(*ScanDevices)
	if !ok {
		t.Fatalf("core got %T", m)
	}
	scan.Rt.TakeRequest()
	scan.Rt.Reply([]input.Info{{ID: "mouse-1", Type: input.TypeMouse}})
	core.PushUI(scan)

	back := surface.Recv()
	if back != Message(req) {
		t.Fatalf("surface got a different envelope: %T", back)
	}
	devs, err := req.Rt.TakeResponse()
	if err != nil {
		t.Fatal(err)
	}
	if len(devs) != 1 || devs[0].ID != "mouse-1" {
		t.Fatalf("devices = %+v", devs)
	}
}

func TestCorePollNeverBlocks(t *testing.T) {
	core, _ := New()
	if _, ok := core.Poll(); ok {
		t.Fatal("empty channel produced a message")
	}
}

func TestSurfaceRecvTimeout(t *testing.T) {
	_, surface := New()
	start := time.Now()
	if _, ok := surface.RecvTimeout(20 * time.Millisecond); ok {
		t.Fatal("timeout produced a message")
	}
	if time.Since(start) < 10*time.Millisecond {
		t.Fatal("returned before the deadline")
	}
}

func TestTimerEmitsTicks(t *testing.T) {
	core, surface := New()
	timer := StartTimer(10*time.Millisecond, core.UISink())
	defer timer.Stop()

	if m, ok := surface.RecvTimeout(time.Second); !ok {
		t.Fatal("no tick arrived")
	} else if _, ok := m.(Tick); !ok {
		t.Fatalf("got %T", m)
	}

	// Retuning keeps the same goroutine ticking.
	timer.SetInterval(5 * time.Millisecond)
	if _, ok := surface.RecvTimeout(time.Second); !ok {
		t.Fatal("no tick after retune")
	}
}

func TestTimerStops(t *testing.T) {
	core, surface := New()
	timer := StartTimer(5*time.Millisecond, core.UISink())

	if _, ok := surface.RecvTimeout(time.Second); !ok {
		t.Fatal("no tick before stop")
	}
	timer.Stop()

	// Drain anything in flight, then the channel must stay quiet.
	for {
		if _, ok := surface.RecvTimeout(50 * time.Millisecond); !ok {
			break
		}
	}
	if _, ok := surface.RecvTimeout(50 * time.Millisecond); ok {
		t.Fatal("tick after Stop")
	}
}
