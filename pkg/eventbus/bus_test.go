// pkg/eventbus/bus_test.go
package eventbus

import (
	"testing"

	"github.com/YaganovValera/admin-console/pkg/logger"
)

func newTestBus(t *testing.T) *Bus {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error", DevMode: true})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return New(log)
}

func TestEmit_RegistrationOrder(t *testing.T) {
	bus := newTestBus(t)

	var order []int
	bus.On("tick", func(any) { order = append(order, 1) })
	bus.On("tick", func(any) { order = append(order, 2) })
	bus.On("tick", func(any) { order = append(order, 3) })

	bus.Emit("tick", nil)

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("handlers ran in order %v; want [1 2 3]", order)
	}
}

func TestOff_RemovesOnlyThatRegistration(t *testing.T) {
	bus := newTestBus(t)

	calls := map[string]int{}
	tokA := bus.On("tick", func(any) { calls["a"]++ })
	bus.On("tick", func(any) { calls["b"]++ })

	bus.Off("tick", tokA)
	bus.Emit("tick", nil)

	if calls["a"] != 0 {
		t.Errorf("removed handler was called %d times", calls["a"])
	}
	if calls["b"] != 1 {
		t.Errorf("remaining handler called %d times; want 1", calls["b"])
	}
	if n := bus.HandlerCount("tick"); n != 1 {
		t.Errorf("HandlerCount = %d; want 1", n)
	}
}

func TestOff_UnknownTokenIsNoop(t *testing.T) {
	bus := newTestBus(t)
	bus.On("tick", func(any) {})

	bus.Off("tick", Token("no-such-token"))
	bus.Off("other", Token("no-such-token"))

	if n := bus.HandlerCount("tick"); n != 1 {
		t.Errorf("HandlerCount = %d; want 1", n)
	}
}

func TestEmit_NoReplayForLateSubscribers(t *testing.T) {
	bus := newTestBus(t)

	bus.Emit("tick", nil)

	called := false
	bus.On("tick", func(any) { called = true })
	if called {
		t.Error("late subscriber observed an event emitted before registration")
	}
}

func TestEmit_ReentrantOffDuringEmit(t *testing.T) {
	bus := newTestBus(t)

	var tok2 Token
	got := []string{}
	bus.On("tick", func(any) {
		got = append(got, "first")
		bus.Off("tick", tok2) // mutates the live set mid-emission
	})
	tok2 = bus.On("tick", func(any) { got = append(got, "second") })

	// Snapshot semantics: the second handler still runs for this emission,
	// but is gone for the next one.
	bus.Emit("tick", nil)
	if len(got) != 2 {
		t.Fatalf("first emission invoked %d handlers; want 2 (snapshot)", len(got))
	}

	got = got[:0]
	bus.Emit("tick", nil)
	if len(got) != 1 || got[0] != "first" {
		t.Errorf("second emission invoked %v; want [first]", got)
	}
}

func TestEmit_ReentrantOnDuringEmit(t *testing.T) {
	bus := newTestBus(t)

	nested := 0
	bus.On("tick", func(any) {
		bus.On("tick", func(any) { nested++ })
	})

	bus.Emit("tick", nil)
	if nested != 0 {
		t.Errorf("handler registered during emit ran %d times in same emission", nested)
	}

	bus.Emit("tick", nil)
	if nested != 1 {
		t.Errorf("handler registered during first emit ran %d times on second; want 1", nested)
	}
}

func TestEmit_PanicIsolation(t *testing.T) {
	bus := newTestBus(t)

	ran := false
	bus.On("tick", func(any) { panic("boom") })
	bus.On("tick", func(any) { ran = true })

	bus.Emit("tick", nil)
	if !ran {
		t.Error("handler after a panicking one did not run")
	}
}

func TestEmit_PayloadDelivered(t *testing.T) {
	bus := newTestBus(t)

	var got any
	bus.On("price_update", func(d any) { got = d })
	bus.Emit("price_update", 42)

	if got != 42 {
		t.Errorf("payload = %v; want 42", got)
	}
}
