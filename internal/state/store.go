// internal/state/store.go

// Package state держит наблюдаемое состояние консоли: статус моста MT5,
// состояние собственного ws-линка, последние котировки по символам,
// выбранный символ/таймфрейм и кольцо последних алертов. Обновляется
// событиями шины; читается UI-слоем и ops-эндпоинтами.
package state

import (
	"sync"
	"time"

	"github.com/YaganovValera/admin-console/pkg/eventbus"
	"github.com/YaganovValera/admin-console/pkg/logger"
	"github.com/YaganovValera/admin-console/pkg/mt5ws"
)

// EventAlertTriggered — кадр бэкенда о сработавшем алерте.
const EventAlertTriggered = "alert_triggered"

const noticeRingSize = 50

// Notice — один сработавший алерт в кольце уведомлений.
type Notice struct {
	Payload any
	At      time.Time
}

type registration struct {
	event string
	token eventbus.Token
}

// Store is safe for concurrent use.
type Store struct {
	log *logger.Logger

	mu                sync.RWMutex
	mt5Status         string
	linkUp            bool
	ticks             map[string]mt5ws.PriceTick
	selectedSymbol    string
	selectedTimeframe string
	notices           []Notice
	tokens            []registration
}

// New создаёт стор с дефолтным выбором инструмента.
func New(log *logger.Logger) *Store {
	return &Store{
		log:               log.Named("state"),
		mt5Status:         "disconnected",
		ticks:             make(map[string]mt5ws.PriceTick),
		selectedSymbol:    "EURUSD",
		selectedTimeframe: "M15",
	}
}

// Attach подписывает стор на события шины. Вызывается один раз при сборке
// приложения; Detach снимает все регистрации.
func (s *Store) Attach(bus *eventbus.Bus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	on := func(event string, h eventbus.Handler) {
		s.tokens = append(s.tokens, registration{event, bus.On(event, h)})
	}

	on(mt5ws.EventConnected, func(any) { s.setLink(true) })
	on(mt5ws.EventDisconnected, func(any) { s.setLink(false) })
	on(mt5ws.EventStatus, func(v any) {
		if status, ok := v.(string); ok {
			s.setMT5Status(status)
		}
	})
	on(mt5ws.EventPrice, func(v any) {
		if tick, ok := v.(mt5ws.PriceTick); ok {
			s.recordTick(tick)
		}
	})
	on(EventAlertTriggered, func(v any) { s.recordNotice(v) })
}

// Detach снимает все регистрации стора с шины.
func (s *Store) Detach(bus *eventbus.Bus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.tokens {
		bus.Off(r.event, r.token)
	}
	s.tokens = nil
}

func (s *Store) setLink(up bool) {
	s.mu.Lock()
	s.linkUp = up
	if !up {
		// статус моста неизвестен без линка
		s.mt5Status = "disconnected"
	}
	s.mu.Unlock()
}

func (s *Store) setMT5Status(status string) {
	s.mu.Lock()
	s.mt5Status = status
	s.mu.Unlock()
}

func (s *Store) recordTick(tick mt5ws.PriceTick) {
	s.mu.Lock()
	s.ticks[tick.Symbol] = tick
	s.mu.Unlock()
}

func (s *Store) recordNotice(payload any) {
	s.mu.Lock()
	s.notices = append(s.notices, Notice{Payload: payload, At: time.Now()})
	if len(s.notices) > noticeRingSize {
		s.notices = s.notices[len(s.notices)-noticeRingSize:]
	}
	s.mu.Unlock()
}

// LinkUp reports whether the console's own websocket link is connected.
func (s *Store) LinkUp() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.linkUp
}

// MT5Status returns the backend bridge status ("connected"/"disconnected").
func (s *Store) MT5Status() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mt5Status
}

// LastTick returns the most recent tick for the symbol.
func (s *Store) LastTick(symbol string) (mt5ws.PriceTick, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tick, ok := s.ticks[symbol]
	return tick, ok
}

// Select sets the active symbol and timeframe.
func (s *Store) Select(symbol, timeframe string) {
	s.mu.Lock()
	s.selectedSymbol = symbol
	s.selectedTimeframe = timeframe
	s.mu.Unlock()
}

// Selected returns the active symbol and timeframe.
func (s *Store) Selected() (symbol, timeframe string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedSymbol, s.selectedTimeframe
}

// Notices returns a copy of the alert notice ring, oldest first.
func (s *Store) Notices() []Notice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Notice, len(s.notices))
	copy(out, s.notices)
	return out
}
