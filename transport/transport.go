// Package transport maintains the persistent link to a remote kernel hub.
// It carries typed commands out and fans typed events back in to every
// currently registered subscriber. The transport never correlates responses
// to commands; callers that need request/response semantics layer them on
// top (see the client package).
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/R0GUET3CHNO/interactive/core/protocol"
	"github.com/R0GUET3CHNO/interactive/observability"
)

const (
	hubPathSegment      = "kernelhub"
	submitCommandMethod = "submitCommand"
	kernelEventMethod   = "kernelEvent"
)

// HubURL derives the canonical hub endpoint from a root URL, with exactly
// one path separator between the root and the hub segment.
func HubURL(rootURL string) string {
	return strings.TrimSuffix(rootURL, "/") + "/" + hubPathSegment
}

// EventObserver receives every inbound kernel event envelope, verbatim.
type EventObserver func(protocol.EventEnvelope)

// Option configures a Transport created by New.
type Option func(*Transport)

// WithConnection replaces the default websocket connection. The transport
// registers its inbound handler and starts whatever connection it is given.
func WithConnection(conn Connection) Option {
	return func(t *Transport) { t.conn = conn }
}

// WithObserver sets the diagnostic sink.
func WithObserver(obs observability.Observer) Option {
	return func(t *Transport) { t.observer = obs }
}

// WithTokenSource overrides the default token generator.
func WithTokenSource(tokens TokenSource) Option {
	return func(t *Transport) { t.tokens = tokens }
}

// Transport owns one logical hub connection and the subscriber table fed by
// it. Inbound events are dispatched single-threaded in wire arrival order.
type Transport struct {
	conn     Connection
	observer observability.Observer
	tokens   TokenSource

	mu          sync.Mutex
	subscribers map[string]EventObserver
	order       []string
}

// New builds a transport for the hub behind rootURL and starts its
// connection. A failed start is logged and swallowed: the transport is
// returned regardless, and sends fail individually until the connection
// comes up. State() distinguishes connected from degraded.
func New(ctx context.Context, rootURL string, opts ...Option) *Transport {
	t := &Transport{
		observer:    observability.NoOpObserver{},
		tokens:      NewTokenGenerator(),
		subscribers: make(map[string]EventObserver),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.conn == nil {
		t.conn = NewWebSocketConnection(HubURL(rootURL), t.observer)
	}

	t.conn.On(kernelEventMethod, t.handleKernelEvent)

	if err := t.conn.Start(ctx); err != nil {
		observability.Emit(ctx, t.observer, EventConnectionStartFailed, observability.LevelWarn,
			"transport.New", map[string]any{"url": rootURL, "error": err.Error()})
	} else {
		observability.Emit(ctx, t.observer, EventConnectionStarted, observability.LevelInfo,
			"transport.New", map[string]any{"url": rootURL})
	}

	return t
}

// State reports the underlying connection state.
func (t *Transport) State() ConnectionState {
	return t.conn.State()
}

// Close tears down the underlying connection.
func (t *Transport) Close() error {
	return t.conn.Close()
}

// SubmitCommand wraps the command into an envelope and sends it. The
// returned error is the only completion signal; there is no acknowledgement
// or retry above the connection's own send semantics.
func (t *Transport) SubmitCommand(ctx context.Context, commandType protocol.CommandType, command any, token string) error {
	env, err := protocol.NewCommandEnvelope(commandType, command, token)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode command envelope: %w", err)
	}

	return t.conn.Invoke(ctx, submitCommandMethod, string(payload))
}

// EventSubscription is the handle returned by SubscribeToKernelEvents.
type EventSubscription struct {
	token     string
	transport *Transport
}

// Token returns the subscription's identity token.
func (s *EventSubscription) Token() string { return s.token }

// Dispose removes the subscription. Idempotent: disposing twice, or after
// the token is otherwise gone, is a no-op.
func (s *EventSubscription) Dispose() {
	s.transport.unsubscribe(s.token)
}

// SubscribeToKernelEvents registers an observer for every inbound kernel
// event. Subscriptions are independent: disposing one never affects the
// others, and the transport never expires them on its own.
func (t *Transport) SubscribeToKernelEvents(observer EventObserver) *EventSubscription {
	token := t.tokens.Next()

	t.mu.Lock()
	t.subscribers[token] = observer
	t.order = append(t.order, token)
	count := len(t.order)
	t.mu.Unlock()

	observability.Emit(context.Background(), t.observer, EventSubscriptionAdded, observability.LevelDebug,
		"transport.SubscribeToKernelEvents", map[string]any{"token": token, "subscribers": count})

	return &EventSubscription{token: token, transport: t}
}

func (t *Transport) unsubscribe(token string) {
	t.mu.Lock()
	if _, exists := t.subscribers[token]; !exists {
		t.mu.Unlock()
		return
	}
	delete(t.subscribers, token)
	for i, tok := range t.order {
		if tok == token {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	count := len(t.order)
	t.mu.Unlock()

	observability.Emit(context.Background(), t.observer, EventSubscriptionRemoved, observability.LevelDebug,
		"transport.unsubscribe", map[string]any{"token": token, "subscribers": count})
}

// handleKernelEvent is the single inbound handler. It snapshots the
// subscriber list before delivering so a handler that subscribes or
// disposes mid-delivery cannot skip or duplicate delivery for the current
// message.
func (t *Transport) handleKernelEvent(arg string) {
	var env protocol.EventEnvelope
	if err := json.Unmarshal([]byte(arg), &env); err != nil {
		observability.Emit(context.Background(), t.observer, EventMalformedEvent, observability.LevelWarn,
			"transport.handleKernelEvent", map[string]any{"error": err.Error()})
		return
	}

	t.mu.Lock()
	snapshot := make([]EventObserver, 0, len(t.order))
	for _, token := range t.order {
		snapshot = append(snapshot, t.subscribers[token])
	}
	t.mu.Unlock()

	// Insertion order, synchronously: subscribers observe the event stream
	// in wire arrival order.
	for _, observer := range snapshot {
		observer(env)
	}
}
