// pkg/mt5ws/config.go
package mt5ws

import (
	"fmt"
	"strings"
	"time"
)

// Config holds connection settings for the trading-backend WebSocket.
type Config struct {
	// URL is the backend endpoint, e.g. "ws://localhost:8000/ws".
	URL string `mapstructure:"url"`

	// ReconnectBase is the base delay for the linear reconnect policy:
	// attempt n is scheduled after ReconnectBase×n.
	ReconnectBase time.Duration `mapstructure:"reconnect_base"`

	// MaxReconnectAttempts caps one reconnect sequence. Once exhausted,
	// reconnection stops until an explicit Connect().
	MaxReconnectAttempts int `mapstructure:"max_reconnect_attempts"`

	// WriteTimeout bounds every outbound frame write.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// HandshakeTimeout bounds the WebSocket dial.
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`
}

// ApplyDefaults applies fallback defaults if values are unset.
func (c *Config) ApplyDefaults() {
	if c.ReconnectBase <= 0 {
		c.ReconnectBase = time.Second
	}
	if c.MaxReconnectAttempts <= 0 {
		c.MaxReconnectAttempts = 5
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 5 * time.Second
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = 10 * time.Second
	}
}

// Validate checks config for required fields.
func (c *Config) Validate() error {
	switch {
	case c.URL == "":
		return fmt.Errorf("mt5ws: URL is required")
	case !strings.HasPrefix(c.URL, "ws://") && !strings.HasPrefix(c.URL, "wss://"):
		return fmt.Errorf("mt5ws: URL must start with ws:// or wss://")
	default:
		return nil
	}
}
