// pkg/mt5ws/client.go
package mt5ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/YaganovValera/admin-console/pkg/backoff"
	"github.com/YaganovValera/admin-console/pkg/eventbus"
	"github.com/YaganovValera/admin-console/pkg/logger"
)

// ConnState — состояние соединения. Меняется только на событиях жизненного
// цикла сокета; читать можно из любого места.
type ConnState int32

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// FrameObserver вызывается на каждый классифицированный входящий кадр.
// Используется транспортным слоем для метрик; может быть nil.
type FrameObserver func(event string)

// outboundFrame — единственный исходящий формат: {"type": ..., "payload": ...}.
type outboundFrame struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Client владеет одним постоянным соединением с бэкендом. Все входящие
// кадры декодируются и публикуются на шину; переподключение — линейная
// последовательность с жёстким лимитом попыток (см. backoff.Linear).
type Client struct {
	cfg     Config
	bus     *eventbus.Bus
	log     *logger.Logger
	observe FrameObserver

	mu       sync.Mutex
	state    ConnState
	conn     *websocket.Conn
	retry    *backoff.Linear
	timer    *time.Timer
	gen      int  // поколение соединения: защищает от устаревших read-loop
	disposed bool // выставлен Disconnect-ом; снимается явным Connect
}

// New создаёт клиента. Шина обязательна: клиент ничего не буферизирует
// и не хранит — вся доставка событий идёт через неё.
func New(cfg Config, bus *eventbus.Bus, log *logger.Logger) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		cfg:   cfg,
		bus:   bus,
		log:   log.Named("mt5ws"),
		retry: backoff.NewLinear(cfg.ReconnectBase, cfg.MaxReconnectAttempts),
	}, nil
}

// SetFrameObserver устанавливает наблюдателя кадров. Вызывать до Connect.
func (c *Client) SetFrameObserver(fn FrameObserver) { c.observe = fn }

// Bus возвращает шину клиента — регистрация обработчиков идёт через неё.
func (c *Client) Bus() *eventbus.Bus { return c.bus }

// State возвращает текущее состояние соединения.
func (c *Client) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect открывает соединение, если оно ещё не открыто и не открывается.
// Повторный вызов в состоянии Connecting/Connected — no-op. Явный Connect
// сбрасывает счётчик попыток переподключения.
func (c *Client) Connect() {
	c.mu.Lock()
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return
	}
	c.disposed = false
	c.retry.Reset()
	c.state = StateConnecting
	c.mu.Unlock()

	go c.dial()
}

// Disconnect закрывает соединение и отменяет запланированное
// переподключение. Дальнейших попыток не будет до явного Connect.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.disposed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	conn := c.conn
	if conn == nil {
		// ни соединения, ни read-loop — переводим состояние сами
		c.state = StateDisconnected
	}
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close() // read-loop заметит и опубликует disconnected
	}
}

// Send отправляет кадр {"type": event, "payload": payload}. Вне состояния
// Connected кадр молча отбрасывается: доставка best-effort, at-most-once,
// без очередей. Ошибка записи публикуется как событие error и не закрывает
// машину состояний — это делает событие закрытия сокета.
func (c *Client) Send(event string, payload any) {
	c.mu.Lock()
	if c.state != StateConnected || c.conn == nil {
		c.mu.Unlock()
		c.log.Debug("send dropped: not connected", zap.String("event", event))
		return
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	err := c.conn.WriteJSON(outboundFrame{Type: event, Payload: payload})
	c.mu.Unlock()

	if err != nil {
		c.log.Warn("send failed", zap.String("event", event), zap.Error(err))
		c.bus.Emit(EventError, err)
	}
}

// -----------------------------------------------------------------------------
// internals
// -----------------------------------------------------------------------------

func (c *Client) dial() {
	dialer := websocket.Dialer{HandshakeTimeout: c.cfg.HandshakeTimeout}
	conn, resp, err := dialer.Dial(c.cfg.URL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	c.mu.Lock()
	if c.disposed {
		c.state = StateDisconnected
		c.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return
	}

	if err != nil {
		c.state = StateDisconnected
		c.mu.Unlock()
		c.log.Warn("dial failed", zap.String("url", c.cfg.URL), zap.Error(err))
		c.bus.Emit(EventError, err)
		c.scheduleReconnect()
		return
	}

	c.conn = conn
	c.gen++
	gen := c.gen
	c.state = StateConnected
	c.retry.Reset()
	c.mu.Unlock()

	c.log.Info("connected", zap.String("url", c.cfg.URL))
	c.bus.Emit(EventConnected, nil)

	go c.readLoop(conn, gen)
}

func (c *Client) readLoop(conn *websocket.Conn, gen int) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.handleClose(gen, err)
			return
		}

		event, payload := classifyFrame(data)
		if c.observe != nil {
			c.observe(event)
		}
		c.bus.Emit(event, payload)
	}
}

func (c *Client) handleClose(gen int, err error) {
	c.mu.Lock()
	if gen != c.gen {
		// устаревший read-loop уже заменённого соединения
		c.mu.Unlock()
		return
	}
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.state = StateDisconnected
	disposed := c.disposed
	c.mu.Unlock()

	c.log.Warn("connection closed", zap.Error(err))
	c.bus.Emit(EventDisconnected, nil)

	if !disposed {
		c.scheduleReconnect()
	}
}

// scheduleReconnect планирует следующую попытку по линейной схеме.
// Исчерпанная последовательность ничего не планирует: до явного Connect
// клиент остаётся отключённым.
func (c *Client) scheduleReconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed || c.state != StateDisconnected || c.timer != nil {
		return
	}

	delay := c.retry.NextBackOff()
	if delay == backoff.Stop {
		c.log.Warn("reconnect attempts exhausted",
			zap.Int("attempts", c.cfg.MaxReconnectAttempts))
		return
	}

	attempt := c.retry.Attempt()
	c.log.Info("reconnect scheduled",
		zap.Int("attempt", attempt),
		zap.Duration("delay", delay))

	c.timer = time.AfterFunc(delay, func() {
		c.mu.Lock()
		c.timer = nil
		if c.disposed || c.state != StateDisconnected {
			c.mu.Unlock()
			return
		}
		c.state = StateConnecting
		c.mu.Unlock()
		c.dial()
	})
}
