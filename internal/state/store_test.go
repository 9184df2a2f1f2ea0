package state

import (
	"fmt"
	"testing"

	"github.com/YaganovValera/admin-console/pkg/eventbus"
	"github.com/YaganovValera/admin-console/pkg/logger"
	"github.com/YaganovValera/admin-console/pkg/mt5ws"
)

func newStore(t *testing.T) (*Store, *eventbus.Bus) {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	bus := eventbus.New(log)
	s := New(log)
	s.Attach(bus)
	return s, bus
}

func TestDefaults(t *testing.T) {
	s, _ := newStore(t)

	if s.LinkUp() {
		t.Fatal("link must start down")
	}
	if s.MT5Status() != "disconnected" {
		t.Fatalf("MT5Status() = %q", s.MT5Status())
	}
	symbol, timeframe := s.Selected()
	if symbol != "EURUSD" || timeframe != "M15" {
		t.Fatalf("Selected() = %q, %q", symbol, timeframe)
	}
}

func TestLinkAndStatusFollowBusEvents(t *testing.T) {
	s, bus := newStore(t)

	bus.Emit(mt5ws.EventConnected, nil)
	bus.Emit(mt5ws.EventStatus, "connected")

	if !s.LinkUp() || s.MT5Status() != "connected" {
		t.Fatalf("link=%v status=%q", s.LinkUp(), s.MT5Status())
	}

	// потеря линка сбрасывает и статус моста
	bus.Emit(mt5ws.EventDisconnected, nil)
	if s.LinkUp() || s.MT5Status() != "disconnected" {
		t.Fatalf("link=%v status=%q after disconnect", s.LinkUp(), s.MT5Status())
	}
}

func TestLastTickPerSymbol(t *testing.T) {
	s, bus := newStore(t)

	bus.Emit(mt5ws.EventPrice, mt5ws.PriceTick{Symbol: "EURUSD", Bid: 1.1})
	bus.Emit(mt5ws.EventPrice, mt5ws.PriceTick{Symbol: "EURUSD", Bid: 1.2})
	bus.Emit(mt5ws.EventPrice, mt5ws.PriceTick{Symbol: "XAUUSD", Bid: 2400})

	tick, ok := s.LastTick("EURUSD")
	if !ok || tick.Bid != 1.2 {
		t.Fatalf("LastTick(EURUSD) = %+v, %v", tick, ok)
	}
	if _, ok := s.LastTick("GBPUSD"); ok {
		t.Fatal("LastTick returned a tick for an unseen symbol")
	}
}

func TestNoticeRingIsBounded(t *testing.T) {
	s, bus := newStore(t)

	for i := 0; i < noticeRingSize+10; i++ {
		bus.Emit(EventAlertTriggered, map[string]any{"n": i})
	}

	notices := s.Notices()
	if len(notices) != noticeRingSize {
		t.Fatalf("len(notices) = %d, want %d", len(notices), noticeRingSize)
	}
	// старые вытеснены: первым должен быть элемент 10
	first, _ := notices[0].Payload.(map[string]any)
	if fmt.Sprint(first["n"]) != "10" {
		t.Fatalf("oldest notice = %v", first)
	}
}

func TestDetachStopsUpdates(t *testing.T) {
	s, bus := newStore(t)
	s.Detach(bus)

	bus.Emit(mt5ws.EventConnected, nil)
	bus.Emit(mt5ws.EventPrice, mt5ws.PriceTick{Symbol: "EURUSD", Bid: 1.1})

	if s.LinkUp() {
		t.Fatal("store updated after Detach")
	}
	if _, ok := s.LastTick("EURUSD"); ok {
		t.Fatal("tick recorded after Detach")
	}
}

func TestSelect(t *testing.T) {
	s, _ := newStore(t)
	s.Select("XAUUSD", "H1")
	symbol, timeframe := s.Selected()
	if symbol != "XAUUSD" || timeframe != "H1" {
		t.Fatalf("Selected() = %q, %q", symbol, timeframe)
	}
}
