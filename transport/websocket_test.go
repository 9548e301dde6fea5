package transport_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/R0GUET3CHNO/interactive/transport"
)

var upgrader = websocket.Upgrader{}

// startConnection dials the httptest server through its http:// URL, which
// also exercises the http→ws scheme mapping.
func startConnection(t *testing.T, url string) *transport.WebSocketConnection {
	t.Helper()
	c := transport.NewWebSocketConnection(url, nil)
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func recv[T any](t *testing.T, ch <-chan T, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
		panic("unreachable")
	}
}

func TestWebSocketConnection_InvokeFrameShape(t *testing.T) {
	frames := make(chan []byte, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		if _, data, err := conn.ReadMessage(); err == nil {
			frames <- data
		}
	}))
	defer srv.Close()

	c := startConnection(t, srv.URL)

	if err := c.Invoke(context.Background(), "submitCommand", `{"token":"t"}`); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	var frame struct {
		Method string `json:"method"`
		Arg    string `json:"arg"`
	}
	if err := json.Unmarshal(recv(t, frames, "frame"), &frame); err != nil {
		t.Fatalf("unmarshal frame: %v", err)
	}
	if frame.Method != "submitCommand" {
		t.Errorf("method = %q, want %q", frame.Method, "submitCommand")
	}
	if frame.Arg != `{"token":"t"}` {
		t.Errorf("arg = %q, want the envelope verbatim", frame.Arg)
	}
}

func TestWebSocketConnection_InvokeBeforeStart(t *testing.T) {
	c := transport.NewWebSocketConnection("http://127.0.0.1:0", nil)

	err := c.Invoke(context.Background(), "submitCommand", "x")
	if !errors.Is(err, transport.ErrNotConnected) {
		t.Errorf("Invoke() before Start error = %v, want ErrNotConnected", err)
	}
}

func TestWebSocketConnection_DispatchesToHandler(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.WriteMessage(websocket.TextMessage, []byte(`{"method":"kernelEvent","arg":"payload"}`))
		conn.ReadMessage() // hold the connection open until the client closes
	}))
	defer srv.Close()

	got := make(chan string, 1)
	c := transport.NewWebSocketConnection(srv.URL, nil)
	c.On("kernelEvent", func(arg string) { got <- arg })
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer c.Close()

	if arg := recv(t, got, "handler dispatch"); arg != "payload" {
		t.Errorf("handler arg = %q, want %q", arg, "payload")
	}
}

func TestWebSocketConnection_ReconnectKeepsHandlers(t *testing.T) {
	conns := make(chan *websocket.Conn, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conns <- conn
	}))
	defer srv.Close()

	got := make(chan string, 1)
	c := transport.NewWebSocketConnection(srv.URL, nil)
	c.On("kernelEvent", func(arg string) { got <- arg })
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer c.Close()

	first := recv(t, conns, "first connection")
	first.Close() // drop the link server-side; the client redials on its own

	second := recv(t, conns, "reconnect")
	if err := second.WriteMessage(websocket.TextMessage, []byte(`{"method":"kernelEvent","arg":"after-reconnect"}`)); err != nil {
		t.Fatalf("server write: %v", err)
	}

	if arg := recv(t, got, "post-reconnect dispatch"); arg != "after-reconnect" {
		t.Errorf("handler arg = %q, want %q", arg, "after-reconnect")
	}
	if state := c.State(); state != transport.StateConnected {
		t.Errorf("State() = %v, want connected after reconnect", state)
	}
}

func TestWebSocketConnection_CloseDuringReconnect(t *testing.T) {
	conns := make(chan *websocket.Conn, 2)
	redialing := make(chan struct{})
	release := make(chan struct{})
	var attempts atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 2 {
			// Hold the redial handshake until Close has run, so the dial
			// completes only after the connection is already closed.
			close(redialing)
			<-release
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conns <- conn
	}))
	defer srv.Close()

	c := transport.NewWebSocketConnection(srv.URL, nil)
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	first := recv(t, conns, "first connection")
	first.Close()

	recv(t, redialing, "redial attempt")
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	close(release)

	// The late dial succeeds, but the client must discard that socket
	// instead of resurrecting the closed connection.
	second := recv(t, conns, "late redial socket")
	second.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := second.ReadMessage(); err == nil {
		t.Fatal("client kept the post-Close socket alive")
	}

	if state := c.State(); state != transport.StateDisconnected {
		t.Errorf("State() = %v, want disconnected after Close", state)
	}
	if err := c.Invoke(context.Background(), "submitCommand", "x"); !errors.Is(err, transport.ErrNotConnected) {
		t.Errorf("Invoke() after Close error = %v, want ErrNotConnected", err)
	}
}
