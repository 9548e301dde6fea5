package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/R0GUET3CHNO/interactive/observability"
)

const (
	reconnectInitialDelay = 500 * time.Millisecond
	reconnectMaxDelay     = 30 * time.Second
)

// wireFrame is the JSON shape of every message on the socket, in both
// directions: a named call with one string argument.
type wireFrame struct {
	Method string `json:"method"`
	Arg    string `json:"arg"`
}

// WebSocketConnection is the default Connection, speaking JSON frames over
// a single websocket. After a successful Start it reconnects automatically
// with capped exponential backoff; registered handlers persist across
// reconnects.
type WebSocketConnection struct {
	rawURL   string
	dialer   *websocket.Dialer
	observer observability.Observer

	mu       sync.Mutex
	handlers map[string]func(string)
	conn     *websocket.Conn

	writeMu sync.Mutex

	state  atomic.Int32
	closed atomic.Bool
}

// NewWebSocketConnection creates a connection targeting the given hub URL.
// http/https schemes are converted to ws/wss at dial time. A nil observer
// discards diagnostics.
func NewWebSocketConnection(hubURL string, observer observability.Observer) *WebSocketConnection {
	if observer == nil {
		observer = observability.NoOpObserver{}
	}
	return &WebSocketConnection{
		rawURL:   hubURL,
		dialer:   websocket.DefaultDialer,
		observer: observer,
		handlers: make(map[string]func(string)),
	}
}

func (c *WebSocketConnection) Start(ctx context.Context) error {
	c.setState(StateConnecting)

	conn, err := c.dial(ctx)
	if err != nil {
		c.setState(StateDisconnected)
		return fmt.Errorf("failed to start connection to %s: %w", c.rawURL, err)
	}

	c.mu.Lock()
	if c.closed.Load() {
		c.mu.Unlock()
		conn.Close()
		return ErrConnectionClosed
	}
	c.conn = conn
	c.mu.Unlock()
	c.setState(StateConnected)

	go c.readLoop(conn)
	return nil
}

func (c *WebSocketConnection) Invoke(ctx context.Context, method, arg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.State() != StateConnected {
		return fmt.Errorf("%w: connection is %s", ErrNotConnected, c.State())
	}

	payload, err := json.Marshal(wireFrame{Method: method, Arg: arg})
	if err != nil {
		return fmt.Errorf("failed to encode %s frame: %w", method, err)
	}

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	// gorilla permits one concurrent writer per connection.
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	deadline := time.Time{}
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	if err := conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("failed to send %s: %w", method, err)
	}
	return nil
}

func (c *WebSocketConnection) On(method string, handler func(arg string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[method] = handler
}

func (c *WebSocketConnection) State() ConnectionState {
	return ConnectionState(c.state.Load())
}

func (c *WebSocketConnection) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.setState(StateDisconnected)

	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

func (c *WebSocketConnection) dial(ctx context.Context) (*websocket.Conn, error) {
	target, err := url.Parse(c.rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid hub url %q: %w", c.rawURL, err)
	}
	switch target.Scheme {
	case "http":
		target.Scheme = "ws"
	case "https":
		target.Scheme = "wss"
	}

	conn, _, err := c.dialer.DialContext(ctx, target.String(), nil)
	return conn, err
}

func (c *WebSocketConnection) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return
			}
			go c.reconnect()
			return
		}
		c.dispatch(data)
	}
}

// reconnect redials until it succeeds or the connection is closed. Handlers
// stay registered; nothing is resent on the caller's behalf.
func (c *WebSocketConnection) reconnect() {
	c.setState(StateReconnecting)
	delay := reconnectInitialDelay

	for attempt := 1; !c.closed.Load(); attempt++ {
		observability.Emit(context.Background(), c.observer, EventConnectionReconnecting, observability.LevelWarn,
			"transport.WebSocketConnection", map[string]any{"url": c.rawURL, "attempt": attempt})

		conn, err := c.dial(context.Background())
		if err == nil {
			c.mu.Lock()
			if c.closed.Load() {
				// Close won the race while the dial was in flight;
				// discard the new socket instead of resurrecting a
				// closed connection.
				c.mu.Unlock()
				conn.Close()
				return
			}
			c.conn = conn
			c.mu.Unlock()
			c.setState(StateConnected)

			observability.Emit(context.Background(), c.observer, EventConnectionReconnected, observability.LevelInfo,
				"transport.WebSocketConnection", map[string]any{"url": c.rawURL, "attempts": attempt})

			go c.readLoop(conn)
			return
		}

		time.Sleep(delay)
		if delay *= 2; delay > reconnectMaxDelay {
			delay = reconnectMaxDelay
		}
	}
}

func (c *WebSocketConnection) dispatch(data []byte) {
	var frame wireFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		observability.Emit(context.Background(), c.observer, EventMalformedFrame, observability.LevelWarn,
			"transport.WebSocketConnection", map[string]any{"error": err.Error()})
		return
	}

	c.mu.Lock()
	handler := c.handlers[frame.Method]
	c.mu.Unlock()

	if handler != nil {
		handler(frame.Arg)
	}
}

func (c *WebSocketConnection) setState(s ConnectionState) {
	c.state.Store(int32(s))
}
