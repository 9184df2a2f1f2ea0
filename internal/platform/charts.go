// internal/platform/charts.go
package platform

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Bar — одна свеча в формате графика. Time — Unix-миллисекунды.
type Bar struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// HistoryResponse — конверт эндпоинта истории.
type HistoryResponse struct {
	Symbol    string `json:"symbol"`
	Timeframe string `json:"timeframe"`
	Data      []Bar  `json:"data"`
}

type symbolsResponse struct {
	Symbols []string `json:"symbols"`
}

// Symbols возвращает имена торгуемых символов, известных backend'у.
func (c *Client) Symbols(ctx context.Context) ([]string, error) {
	var resp symbolsResponse
	if err := c.do(ctx, http.MethodGet, "/charts/symbols", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Symbols, nil
}

// History загружает до count последних свечей символа на таймфрейме MT5
// (M1..MN1). Пустой набор данных — не ошибка: у символа может ещё не быть
// котировок в backend'е.
func (c *Client) History(ctx context.Context, symbol, timeframe string, count int) (HistoryResponse, error) {
	if symbol == "" {
		return HistoryResponse{}, fmt.Errorf("platform: history: symbol is required")
	}
	q := url.Values{}
	q.Set("timeframe", timeframe)
	q.Set("count", strconv.Itoa(count))

	var resp HistoryResponse
	err := c.do(ctx, http.MethodGet, "/charts/history/"+url.PathEscape(symbol), q, nil, &resp)
	if err != nil {
		return HistoryResponse{}, err
	}
	return resp, nil
}
