// pkg/mt5ws/events.go
package mt5ws

import (
	"encoding/json"
	"strings"
)

// Имена событий, публикуемых клиентом на шину. Входящие кадры с явным
// полем "type" публикуются под своим типом как есть.
const (
	EventConnected    = "connected"
	EventDisconnected = "disconnected"
	EventError        = "error"
	EventStatus       = "mt5_status"
	EventPrice        = "price_update"
	EventData         = "mt5_data"
	EventMessage      = "message"
)

// PriceTick — котировка по символу. Бэкенд шлёт либо bid/ask, либо
// одно поле price, в зависимости от фрейминга.
type PriceTick struct {
	Symbol string  `json:"symbol"`
	Bid    float64 `json:"bid"`
	Ask    float64 `json:"ask"`
	Price  float64 `json:"price"`
	Time   string  `json:"time"`
}

// Best возвращает цену для обновления бара: bid, если он есть.
func (t PriceTick) Best() float64 {
	if t.Bid != 0 {
		return t.Bid
	}
	return t.Price
}

// classifyFrame разбирает один входящий кадр в (событие, полезная нагрузка).
// Бэкенд использует как минимум два несовместимых стиля фрейминга, поэтому
// разбор либеральный: каждый вариант — именованная ветка, последняя ветка —
// текстовый fallback. Разбор никогда не роняет соединение.
func classifyFrame(data []byte) (string, any) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return classifyText(string(data))
	}

	// 1) Явный тег type: {type, payload}.
	if t, ok := m["type"].(string); ok && t != "" {
		payload, has := m["payload"]
		if !has {
			payload = m
		}
		if t == EventPrice {
			return EventPrice, coerceTick(payload)
		}
		return t, payload
	}

	// 2) Статус соединения по форме: {status: "..."}.
	if s, ok := m["status"].(string); ok {
		return EventStatus, s
	}

	// 3) Котировка по форме: есть price или bid.
	if _, ok := m["price"]; ok {
		return EventPrice, coerceTick(m)
	}
	if _, ok := m["bid"]; ok {
		return EventPrice, coerceTick(m)
	}

	// 4) Прочий JSON — неклассифицированные данные.
	return EventData, m
}

// classifyText обрабатывает не-JSON кадры: из текста с подстрокой
// "mt5_status" восстанавливается статус, остальное уходит как message.
func classifyText(text string) (string, any) {
	if strings.Contains(text, "mt5_status") {
		status := strings.TrimSpace(strings.Replace(text, "mt5_status:", "", 1))
		return EventStatus, status
	}
	return EventMessage, text
}

// coerceTick приводит payload любой формы к PriceTick.
func coerceTick(payload any) PriceTick {
	switch v := payload.(type) {
	case PriceTick:
		return v
	case map[string]any:
		raw, err := json.Marshal(v)
		if err != nil {
			return PriceTick{}
		}
		var tick PriceTick
		if err := json.Unmarshal(raw, &tick); err != nil {
			return PriceTick{}
		}
		return tick
	default:
		return PriceTick{}
	}
}
