// internal/metrics/metrics.go
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// HistoryFetchLatency — гистограмма длительности запросов истории.
	HistoryFetchLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "console",
		Subsystem: "history",
		Name:      "fetch_latency_seconds",
		Help:      "Latency of historical bar fetches (seconds)",
		Buckets:   prometheus.DefBuckets,
	})

	// HistoryFetchErrors — число неудачных запросов истории.
	HistoryFetchErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "console",
		Subsystem: "history",
		Name:      "fetch_errors_total",
		Help:      "Total failed historical bar fetches",
	})

	// HistoryNoData — число запросов, закончившихся пустым окном.
	HistoryNoData = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "console",
		Subsystem: "history",
		Name:      "fetch_no_data_total",
		Help:      "Total history fetches that produced an empty window",
	})

	// ActiveSubscriptions — текущее число живых подписок на бары.
	ActiveSubscriptions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "console",
		Subsystem: "subscriptions",
		Name:      "active",
		Help:      "Current number of live bar subscriptions",
	})
)

// Register регистрирует все метрики в заданном реестре.
// Можно вызвать без аргументов, чтобы зарегистрировать в DefaultRegisterer.
func Register(registerers ...prometheus.Registerer) {
	once.Do(func() {
		var reg prometheus.Registerer
		if len(registerers) > 0 && registerers[0] != nil {
			reg = registerers[0]
		} else {
			reg = prometheus.DefaultRegisterer
		}
		reg.MustRegister(
			HistoryFetchLatency,
			HistoryFetchErrors,
			HistoryNoData,
			ActiveSubscriptions,
		)
	})
}
