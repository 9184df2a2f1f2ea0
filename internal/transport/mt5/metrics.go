// internal/transport/mt5/metrics.go
package mt5

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once         sync.Once
	wsConnects   *prometheus.CounterVec
	wsErrors     prometheus.Counter
	wsMessages   *prometheus.CounterVec
	wsReconnects prometheus.Counter
)

func RegisterMetrics(r prometheus.Registerer) {
	once.Do(func() {
		if r == nil {
			r = prometheus.DefaultRegisterer
		}
		wsConnects = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "console", Subsystem: "mt5ws", Name: "connects_total",
			Help: "Total connection state transitions",
		}, []string{"state"})

		wsErrors = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "console", Subsystem: "mt5ws", Name: "errors_total",
			Help: "Total transport errors surfaced on the bus",
		})

		wsMessages = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "console", Subsystem: "mt5ws", Name: "messages_total",
			Help: "Total inbound frames by classified event",
		}, []string{"event"})

		wsReconnects = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "console", Subsystem: "mt5ws", Name: "reconnects_total",
			Help: "Total disconnects that triggered the reconnect sequence",
		})

		collectors := []prometheus.Collector{wsConnects, wsErrors, wsMessages, wsReconnects}
		for _, c := range collectors {
			_ = r.Register(c)
		}
	})
}

func IncConnect(state string) { wsConnects.WithLabelValues(state).Inc() }
func IncError()               { wsErrors.Inc() }
func IncMessage(event string) { wsMessages.WithLabelValues(event).Inc() }
func IncReconnect()           { wsReconnects.Inc() }
