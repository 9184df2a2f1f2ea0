// pkg/eventbus/bus.go
package eventbus

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/YaganovValera/admin-console/pkg/logger"
)

// Handler обрабатывает одно событие. data может быть nil.
type Handler func(data any)

// Token — непрозрачный идентификатор регистрации. Off принимает именно
// токен, выданный On: идентичность обработчика не зависит от равенства
// замыканий.
type Token string

type entry struct {
	token Token
	fn    Handler
}

// Bus — реестр обработчиков по имени события. Emit вызывает обработчиков
// синхронно, в порядке регистрации. Очередей и повторной доставки нет:
// обработчик, зарегистрированный после Emit, событие не увидит.
type Bus struct {
	mu       sync.Mutex
	handlers map[string][]entry
	log      *logger.Logger
}

// New создаёт пустую шину.
func New(log *logger.Logger) *Bus {
	return &Bus{
		handlers: make(map[string][]entry),
		log:      log.Named("eventbus"),
	}
}

// On регистрирует обработчик и возвращает токен для Off.
func (b *Bus) On(event string, h Handler) Token {
	t := Token(uuid.NewString())

	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[event] = append(b.handlers[event], entry{token: t, fn: h})
	return t
}

// Off снимает регистрацию по токену. Неизвестный токен — no-op.
func (b *Bus) Off(event string, t Token) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.handlers[event]
	for i, e := range list {
		if e.token == t {
			b.handlers[event] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(b.handlers[event]) == 0 {
		delete(b.handlers, event)
	}
}

// Emit вызывает всех зарегистрированных на event обработчиков.
// Итерация идёт по срезу-снимку: обработчик может безопасно вызывать
// On/Off/Emit изнутри. Паника одного обработчика не мешает остальным.
func (b *Bus) Emit(event string, data any) {
	b.mu.Lock()
	list := b.handlers[event]
	snapshot := make([]entry, len(list))
	copy(snapshot, list)
	b.mu.Unlock()

	for _, e := range snapshot {
		b.invoke(event, e, data)
	}
}

func (b *Bus) invoke(event string, e entry, data any) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("handler panic recovered",
				zap.String("event", event),
				zap.Any("panic", r),
			)
		}
	}()
	e.fn(data)
}

// HandlerCount возвращает число обработчиков события.
func (b *Bus) HandlerCount(event string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers[event])
}
