package transport

import "context"

// ConnectionState describes where a Connection is in its lifecycle.
type ConnectionState int32

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// Connection is the persistent duplex link to the kernel hub. Named inbound
// handlers are registered with On before Start and survive reconnects; the
// connection re-establishes itself after transient network loss without the
// caller re-registering anything. In-flight sends lost to a drop are not
// replayed.
type Connection interface {
	// Start opens the connection. A failed Start is not retried; reconnect
	// logic only engages after a successful Start.
	Start(ctx context.Context) error

	// Invoke sends a named call with a single string argument.
	Invoke(ctx context.Context, method, arg string) error

	// On registers the handler for a named inbound call, replacing any
	// previous handler for that method.
	On(method string, handler func(arg string))

	// State reports the current lifecycle state.
	State() ConnectionState

	Close() error
}
