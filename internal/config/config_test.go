package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.ServiceName != "admin-console" {
		t.Fatalf("service_name = %q", cfg.ServiceName)
	}
	if cfg.MT5WS.MaxReconnectAttempts != 5 {
		t.Fatalf("max_reconnect_attempts = %d", cfg.MT5WS.MaxReconnectAttempts)
	}
	if cfg.MT5WS.ReconnectBase != time.Second {
		t.Fatalf("reconnect_base = %v", cfg.MT5WS.ReconnectBase)
	}
	if cfg.HTTP.MetricsPath != "/metrics" {
		t.Fatalf("metrics_path = %q", cfg.HTTP.MetricsPath)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CONSOLE_LOGGING_LEVEL", "debug")
	t.Setenv("CONSOLE_MT5WS_URL", "wss://backend:9000/ws")
	t.Setenv("CONSOLE_AUTH_EMAIL", "svc@example.com")
	t.Setenv("CONSOLE_AUTH_PASSWORD", "s3cret")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("logging.level = %q", cfg.Logging.Level)
	}
	if cfg.MT5WS.URL != "wss://backend:9000/ws" {
		t.Fatalf("mt5ws.url = %q", cfg.MT5WS.URL)
	}
	// Креды часто приходят только из окружения, без config-файла.
	if cfg.Auth.Email != "svc@example.com" || cfg.Auth.Password != "s3cret" {
		t.Fatalf("auth = %+v", cfg.Auth)
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
logging:
  level: warn
mt5ws:
  reconnect_base: 250ms
  max_reconnect_attempts: 3
platform:
  base_url: http://backend:8000
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("logging.level = %q", cfg.Logging.Level)
	}
	if cfg.MT5WS.ReconnectBase != 250*time.Millisecond || cfg.MT5WS.MaxReconnectAttempts != 3 {
		t.Fatalf("mt5ws = %+v", cfg.MT5WS)
	}
	if cfg.Platform.BaseURL != "http://backend:8000" {
		t.Fatalf("platform.base_url = %q", cfg.Platform.BaseURL)
	}
}

func TestLoad_InvalidValuesRejected(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"bad log level", "CONSOLE_LOGGING_LEVEL", "verbose"},
		{"bad ws scheme", "CONSOLE_MT5WS_URL", "http://x/ws"},
		{"bad base url", "CONSOLE_PLATFORM_BASE_URL", "tcp://x"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := Load(""); err == nil {
				t.Fatalf("Load accepted %s=%s", tc.key, tc.value)
			}
		})
	}
}
