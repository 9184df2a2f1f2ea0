// internal/platform/client.go

// Package platform — REST-клиент backend'а торговой платформы:
// аутентификация, управление пользователями и алертами, символы и история
// графиков. Один экземпляр Client разделяется всей консолью; bearer-токен
// закрыт мьютексом, чтобы параллельные запросы видели согласованное
// значение.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/YaganovValera/admin-console/pkg/logger"
)

// ErrUnauthorized возвращается на ответ 401. Вызывающий сбрасывает токен и
// логинится заново; сам клиент никогда не ретраит.
var ErrUnauthorized = errors.New("platform: unauthorized")

// Config описывает endpoint backend'а.
type Config struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
}

func (c Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("platform: base_url is required")
	case !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://"):
		return fmt.Errorf("platform: base_url must start with http:// or https://")
	}
	return nil
}

// Client говорит с REST API backend'а по JSON.
type Client struct {
	cfg  Config
	http *http.Client
	log  *logger.Logger

	mu    sync.RWMutex
	token string
}

func New(cfg Config, log *logger.Logger) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log.Named("platform"),
	}, nil
}

// SetToken устанавливает bearer-токен, полученный вне Login (например,
// восстановленный из состояния консоли).
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token возвращает текущий bearer-токен ("" — не аутентифицирован).
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// apiError — конверт ошибки backend'а {"detail": "..."}.
type apiError struct {
	Detail string `json:"detail"`
}

// do выполняет один JSON-запрос. Непустой body сериализуется; непустой out
// получает раскодированный ответ. 401 маппится в ErrUnauthorized.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := strings.TrimRight(c.cfg.BaseURL, "/") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	rid := uuid.NewString()
	log := c.log.With(zap.String("request_id", rid))

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("platform: marshal request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("platform: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", rid)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return fmt.Errorf("platform: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%s %s: %w", method, path, ErrUnauthorized)
	}
	if resp.StatusCode >= 400 {
		log.Warn("unexpected status",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		var apiErr apiError
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Detail != "" {
			return fmt.Errorf("platform: %s %s: %d: %s", method, path, resp.StatusCode, apiErr.Detail)
		}
		return fmt.Errorf("platform: %s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("platform: decode %s %s: %w", method, path, err)
	}
	return nil
}

// -----------------------------------------------------------------------------
// auth
// -----------------------------------------------------------------------------

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse — ответ auth-эндпоинта.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login обменивает креды на bearer-токен и сохраняет его в клиенте для
// последующих вызовов.
func (c *Client) Login(ctx context.Context, email, password string) (TokenResponse, error) {
	var tok TokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/login-json", nil, loginRequest{Email: email, Password: password}, &tok)
	if err != nil {
		return TokenResponse{}, err
	}
	c.SetToken(tok.AccessToken)
	c.log.Info("authenticated", zap.String("email", email))
	return tok, nil
}

// Logout сбрасывает сохранённый токен. Backend сессий не хранит.
func (c *Client) Logout() { c.SetToken("") }
