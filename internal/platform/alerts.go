// internal/platform/alerts.go
package platform

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Виды условий и триггеров алертов, принимаемые backend'ом.
const (
	ConditionPriceAbove = "PRICE_ABOVE"
	ConditionPriceBelow = "PRICE_BELOW"

	TriggerOnce  = "ONCE"
	TriggerEvery = "EVERY_TIME"
)

// Alert — серверный ценовой алерт, привязанный к аутентифицированному
// пользователю.
type Alert struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	Symbol         string     `json:"symbol"`
	ConditionType  string     `json:"condition_type"`
	ConditionValue *float64   `json:"condition_value,omitempty"`
	ConditionCode  string     `json:"condition_code,omitempty"`
	Timeframe      string     `json:"timeframe"`
	WebhookURL     string     `json:"webhook_url"`
	TriggerType    string     `json:"trigger_type"`
	IsActive       bool       `json:"is_active"`
	LastTriggered  *time.Time `json:"last_triggered,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CreateAlertRequest повторяет форму создания алерта.
type CreateAlertRequest struct {
	Symbol         string   `json:"symbol"`
	ConditionType  string   `json:"condition_type"`
	ConditionValue *float64 `json:"condition_value,omitempty"`
	ConditionCode  string   `json:"condition_code,omitempty"`
	Timeframe      string   `json:"timeframe"`
	WebhookURL     string   `json:"webhook_url"`
	TriggerType    string   `json:"trigger_type,omitempty"`
	IsActive       *bool    `json:"is_active,omitempty"`
}

// UpdateAlertRequest несёт только изменяемые поля.
type UpdateAlertRequest struct {
	Symbol         *string  `json:"symbol,omitempty"`
	ConditionType  *string  `json:"condition_type,omitempty"`
	ConditionValue *float64 `json:"condition_value,omitempty"`
	ConditionCode  *string  `json:"condition_code,omitempty"`
	Timeframe      *string  `json:"timeframe,omitempty"`
	WebhookURL     *string  `json:"webhook_url,omitempty"`
	TriggerType    *string  `json:"trigger_type,omitempty"`
	IsActive       *bool    `json:"is_active,omitempty"`
}

func (c *Client) ListAlerts(ctx context.Context) ([]Alert, error) {
	var alerts []Alert
	err := c.do(ctx, http.MethodGet, "/alerts/", nil, nil, &alerts)
	return alerts, err
}

func (c *Client) CreateAlert(ctx context.Context, req CreateAlertRequest) (Alert, error) {
	var a Alert
	err := c.do(ctx, http.MethodPost, "/alerts/", nil, req, &a)
	return a, err
}

func (c *Client) UpdateAlert(ctx context.Context, id string, req UpdateAlertRequest) (Alert, error) {
	var a Alert
	err := c.do(ctx, http.MethodPut, "/alerts/"+url.PathEscape(id), nil, req, &a)
	return a, err
}

func (c *Client) DeleteAlert(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/alerts/"+url.PathEscape(id), nil, nil, nil)
}
