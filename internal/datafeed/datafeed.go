// internal/datafeed/datafeed.go

// Package datafeed реализует контракт источника данных графикового движка
// поверх REST-клиента платформы (история) и реестра подписок (live-бары).
// Ошибки не выходят наружу паниками: любой исход доставляется через
// callbacks движка.
package datafeed

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/YaganovValera/admin-console/internal/metrics"
	"github.com/YaganovValera/admin-console/internal/platform"
	"github.com/YaganovValera/admin-console/internal/resolution"
	"github.com/YaganovValera/admin-console/internal/subscription"
	"github.com/YaganovValera/admin-console/pkg/logger"
)

const (
	minBarCount = 100
	maxBarCount = 500
)

var errEmptySymbol = errors.New("datafeed: empty symbol name")

// Capabilities — дескриптор, который получает onReady.
type Capabilities struct {
	SupportedResolutions []string `json:"supported_resolutions"`
	SupportsMarks        bool     `json:"supports_marks"`
	SupportsTime         bool     `json:"supports_time"`
	SupportsSearch       bool     `json:"supports_search"`
}

// SymbolInfo — дескриптор разрешённого символа. Выводится детерминированно
// из имени, без похода на backend.
type SymbolInfo struct {
	Name                 string   `json:"name"`
	Ticker               string   `json:"ticker"`
	Description          string   `json:"description"`
	Type                 string   `json:"type"`
	Session              string   `json:"session"`
	Timezone             string   `json:"timezone"`
	MinMov               int      `json:"minmov"`
	PriceScale           int      `json:"pricescale"`
	HasIntraday          bool     `json:"has_intraday"`
	SupportedResolutions []string `json:"supported_resolutions"`
	VolumePrecision      int      `json:"volume_precision"`
	DataStatus           string   `json:"data_status"`
}

// HistoryCallback получает результат getBars. noData означает исчерпанный
// диапазон: движок прекращает листать историю назад, а не считает это
// пустым успехом.
type HistoryCallback func(bars []platform.Bar, noData bool)

// ErrorCallback получает ошибки загрузки. Retry — забота движка.
type ErrorCallback func(err error)

// HistoryProvider — та часть клиента платформы, которая нужна getBars.
type HistoryProvider interface {
	History(ctx context.Context, symbol, timeframe string, count int) (platform.HistoryResponse, error)
}

// Adapter связывает контракт источника данных с внутренностями консоли.
type Adapter struct {
	history  HistoryProvider
	registry *subscription.Registry
	log      *logger.Logger
	tracer   trace.Tracer
}

func New(history HistoryProvider, registry *subscription.Registry, log *logger.Logger) *Adapter {
	return &Adapter{
		history:  history,
		registry: registry,
		log:      log.Named("datafeed"),
		tracer:   otel.Tracer("datafeed"),
	}
}

// OnReady сообщает статические capabilities. Без I/O.
func (a *Adapter) OnReady(cb func(Capabilities)) {
	cb(Capabilities{
		SupportedResolutions: resolution.Supported(),
		SupportsMarks:        false,
		SupportsTime:         true,
		SupportsSearch:       false,
	})
}

// ResolveSymbol синтезирует дескриптор по имени символа. Непустое имя
// разрешается всегда; onError входит в контракт, но достижим только для
// пустого имени.
func (a *Adapter) ResolveSymbol(name string, onResolved func(SymbolInfo), onError ErrorCallback) {
	if name == "" {
		onError(errEmptySymbol)
		return
	}
	onResolved(SymbolInfo{
		Name:                 name,
		Ticker:               name,
		Description:          name,
		Type:                 "forex",
		Session:              "24x7",
		Timezone:             "Etc/UTC",
		MinMov:               1,
		PriceScale:           priceScale(name),
		HasIntraday:          true,
		SupportedResolutions: resolution.Supported(),
		VolumePrecision:      0,
		DataStatus:           "streaming",
	})
}

// priceScale выводит точность котировки из класса символа: JPY-кроссы —
// 3 знака, металлы и индексы — 2, всё остальное — 5.
func priceScale(symbol string) int {
	s := strings.ToUpper(symbol)
	switch {
	case strings.HasSuffix(s, "JPY"):
		return 1000
	case strings.HasPrefix(s, "XAU"), strings.HasPrefix(s, "XAG"), strings.HasPrefix(s, "US"), strings.HasPrefix(s, "DE"):
		return 100
	default:
		return 100000
	}
}

// GetBars загружает историю для диапазона [from, to] (Unix-секунды).
// Запрашиваемый count — эвристическая граница нагрузки на backend, а не
// точный ответ на диапазон: clamp(ceil((to-from)/barSeconds), 100, 500).
// Ответ фильтруется по диапазону (метки backend — миллисекунды) и
// сортируется по возрастанию. Пусто после фильтра — noData; ошибка
// загрузки уходит в onError и здесь не ретраится.
func (a *Adapter) GetBars(ctx context.Context, si SymbolInfo, res resolution.Resolution, from, to int64, firstRequest bool, onHistory HistoryCallback, onError ErrorCallback) {
	ctx, span := a.tracer.Start(ctx, "datafeed.GetBars",
		trace.WithAttributes(
			attribute.String("symbol", si.Ticker),
			attribute.String("resolution", string(res)),
			attribute.Bool("first_request", firstRequest),
		))
	defer span.End()

	timeframe := resolution.Timeframe(res)
	count := barCount(from, to, resolution.Seconds(res))

	start := time.Now()
	resp, err := a.history.History(ctx, si.Ticker, timeframe, count)
	metrics.HistoryFetchLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.HistoryFetchErrors.Inc()
		span.RecordError(err)
		a.log.Warn("history fetch failed",
			zap.String("symbol", si.Ticker),
			zap.String("timeframe", timeframe),
			zap.Error(err))
		onError(err)
		return
	}

	bars := filterWindow(resp.Data, from*1000, to*1000)
	if len(bars) == 0 {
		metrics.HistoryNoData.Inc()
		onHistory(nil, true)
		return
	}
	onHistory(bars, false)
}

// barCount реализует эвристику размера запроса.
func barCount(from, to, barSeconds int64) int {
	span := to - from
	if span < 0 {
		span = 0
	}
	n := span / barSeconds
	if span%barSeconds != 0 {
		n++
	}
	switch {
	case n < minBarCount:
		return minBarCount
	case n > maxBarCount:
		return maxBarCount
	default:
		return int(n)
	}
}

// filterWindow оставляет бары с fromMs <= time <= toMs, по возрастанию.
func filterWindow(bars []platform.Bar, fromMs, toMs int64) []platform.Bar {
	out := make([]platform.Bar, 0, len(bars))
	for _, b := range bars {
		if b.Time >= fromMs && b.Time <= toMs {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	if len(out) == 0 {
		return nil
	}
	return out
}

// SubscribeBars запускает синтетические live-бары для UID подписчика.
// Подписка уже зарегистрированного UID вытесняет предыдущую регистрацию.
func (a *Adapter) SubscribeBars(si SymbolInfo, res resolution.Resolution, onBar subscription.BarHandler, uid string, onReset func()) {
	_ = onReset // локального кеша баров нет, сбрасывать нечего
	a.registry.Subscribe(uid, si.Ticker, res, onBar)
}

// UnsubscribeBars останавливает live-бары для UID. Незнакомый UID — no-op.
func (a *Adapter) UnsubscribeBars(uid string) {
	a.registry.Unsubscribe(uid)
}
