// internal/subscription/registry.go

// Package subscription хранит соответствие между UID подписчика графика и
// регистрацией в шине событий. На каждый UID приходится не более одной
// регистрации; повторный Subscribe с тем же UID вытесняет предыдущую.
package subscription

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/YaganovValera/admin-console/internal/metrics"
	"github.com/YaganovValera/admin-console/internal/platform"
	"github.com/YaganovValera/admin-console/internal/resolution"
	"github.com/YaganovValera/admin-console/pkg/eventbus"
	"github.com/YaganovValera/admin-console/pkg/logger"
	"github.com/YaganovValera/admin-console/pkg/mt5ws"
)

// BarHandler получает синтетические live-бары, собранные из тиков.
type BarHandler func(platform.Bar)

type entry struct {
	token  eventbus.Token
	symbol string
	res    resolution.Resolution
}

// Registry индексирует регистрации шины по UID подписчика.
type Registry struct {
	bus *eventbus.Bus
	log *logger.Logger

	mu   sync.Mutex
	subs map[string]entry
}

func New(bus *eventbus.Bus, log *logger.Logger) *Registry {
	return &Registry{
		bus:  bus,
		log:  log.Named("subscription"),
		subs: make(map[string]entry),
	}
}

// Subscribe регистрирует обработчик price_update для UID. Тики чужих
// символов обработчик отбрасывает; подходящий тик превращается в
// синтетический бар (open=high=low=close=bid, volume 0) с меткой текущей
// секунды. Повторный Subscribe с тем же UID сначала снимает старую
// регистрацию, так что у UID никогда не бывает двух.
func (r *Registry) Subscribe(uid, symbol string, res resolution.Resolution, onBar BarHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.subs[uid]; ok {
		r.bus.Off(mt5ws.EventPrice, prev.token)
		r.log.Debug("subscription superseded", zap.String("uid", uid))
	}

	token := r.bus.On(mt5ws.EventPrice, func(v any) {
		tick, ok := v.(mt5ws.PriceTick)
		if !ok || tick.Symbol != symbol {
			return
		}
		price := tick.Best()
		onBar(platform.Bar{
			Time:  time.Now().Unix() * 1000,
			Open:  price,
			High:  price,
			Low:   price,
			Close: price,
		})
	})

	r.subs[uid] = entry{token: token, symbol: symbol, res: res}
	metrics.ActiveSubscriptions.Set(float64(len(r.subs)))
	r.log.Debug("subscribed",
		zap.String("uid", uid),
		zap.String("symbol", symbol),
		zap.String("resolution", string(res)))
}

// Unsubscribe снимает регистрацию UID. Незнакомый UID — no-op.
func (r *Registry) Unsubscribe(uid string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.subs[uid]
	if !ok {
		return
	}
	r.bus.Off(mt5ws.EventPrice, e.token)
	delete(r.subs, uid)
	metrics.ActiveSubscriptions.Set(float64(len(r.subs)))
	r.log.Debug("unsubscribed", zap.String("uid", uid))
}

// Active сообщает, держит ли UID регистрацию в данный момент.
func (r *Registry) Active(uid string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.subs[uid]
	return ok
}

// Len возвращает число живых подписок.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}
