// internal/transport/mt5/instrument.go

// Package mt5 instruments the websocket transport client with Prometheus
// counters. The transport itself stays metrics-free; this package observes
// it through the frame hook and the bus lifecycle events.
package mt5

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/YaganovValera/admin-console/pkg/mt5ws"
)

// Instrument регистрирует метрики и навешивает наблюдателей на клиента.
// Вызывать до Connect.
func Instrument(client *mt5ws.Client, r prometheus.Registerer) {
	RegisterMetrics(r)

	client.SetFrameObserver(func(event string) {
		IncMessage(event)
	})

	bus := client.Bus()
	bus.On(mt5ws.EventConnected, func(any) { IncConnect("connected") })
	bus.On(mt5ws.EventDisconnected, func(any) {
		IncConnect("disconnected")
		IncReconnect()
	})
	bus.On(mt5ws.EventError, func(any) { IncError() })
}
