package transport

import "github.com/R0GUET3CHNO/interactive/observability"

// Transport event types emitted to the diagnostic sink.
const (
	EventConnectionStarted      observability.EventType = "transport.connection.started"
	EventConnectionStartFailed  observability.EventType = "transport.connection.start_failed"
	EventConnectionReconnecting observability.EventType = "transport.connection.reconnecting"
	EventConnectionReconnected  observability.EventType = "transport.connection.reconnected"
	EventSubscriptionAdded      observability.EventType = "transport.subscription.added"
	EventSubscriptionRemoved    observability.EventType = "transport.subscription.removed"
	EventMalformedFrame         observability.EventType = "transport.frame.malformed"
	EventMalformedEvent         observability.EventType = "transport.event.malformed"
)
