package mt5ws

import (
	"testing"
)

func TestClassifyFrame(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		event string
	}{
		{"explicit type tag", `{"type":"mt5_data","payload":{"accounts":3}}`, EventData},
		{"explicit status tag", `{"type":"mt5_status","payload":"connected"}`, EventStatus},
		{"explicit price tag", `{"type":"price_update","payload":{"symbol":"EURUSD","bid":1.1,"ask":1.2}}`, EventPrice},
		{"bare status field", `{"status":"disconnected"}`, EventStatus},
		{"bare price shape", `{"symbol":"EURUSD","bid":1.0945,"ask":1.0947}`, EventPrice},
		{"bare price field", `{"symbol":"XAUUSD","price":2411.5}`, EventPrice},
		{"generic object", `{"accounts":[{"login":100}]}`, EventData},
		{"text with status prefix", `mt5_status: connected`, EventStatus},
		{"plain text", `hello there`, EventMessage},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			event, _ := classifyFrame([]byte(tc.raw))
			if event != tc.event {
				t.Fatalf("classifyFrame(%s) = %q, want %q", tc.raw, event, tc.event)
			}
		})
	}
}

func TestClassifyFrame_PriceCoercion(t *testing.T) {
	event, payload := classifyFrame([]byte(`{"type":"price_update","payload":{"symbol":"EURUSD","bid":1.1,"ask":1.2,"time":"12:00:01"}}`))
	if event != EventPrice {
		t.Fatalf("event = %q, want %q", event, EventPrice)
	}
	tick, ok := payload.(PriceTick)
	if !ok {
		t.Fatalf("payload = %T, want PriceTick", payload)
	}
	if tick.Symbol != "EURUSD" || tick.Bid != 1.1 || tick.Ask != 1.2 {
		t.Fatalf("unexpected tick: %+v", tick)
	}
	if tick.Best() != 1.1 {
		t.Fatalf("Best() = %v, want bid", tick.Best())
	}
}

func TestClassifyFrame_TextStatusStripped(t *testing.T) {
	event, payload := classifyFrame([]byte("mt5_status:   connected  "))
	if event != EventStatus {
		t.Fatalf("event = %q, want %q", event, EventStatus)
	}
	if payload != "connected" {
		t.Fatalf("payload = %q, want %q", payload, "connected")
	}
}

func TestPriceTick_BestFallsBackToPrice(t *testing.T) {
	tick := PriceTick{Symbol: "XAUUSD", Price: 2411.5}
	if tick.Best() != 2411.5 {
		t.Fatalf("Best() = %v, want price fallback", tick.Best())
	}
}

func TestConfig_Validate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid ws", Config{URL: "ws://localhost:9000/ws"}, false},
		{"valid wss", Config{URL: "wss://console.example.com/ws"}, false},
		{"empty url", Config{}, true},
		{"http scheme", Config{URL: "http://localhost:9000/ws"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.ApplyDefaults()
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() err = %v, wantErr = %v", err, tc.wantErr)
			}
		})
	}
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{URL: "ws://x/ws"}
	cfg.ApplyDefaults()
	if cfg.ReconnectBase <= 0 || cfg.MaxReconnectAttempts <= 0 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.WriteTimeout <= 0 || cfg.HandshakeTimeout <= 0 {
		t.Fatalf("timeout defaults not applied: %+v", cfg)
	}
}
