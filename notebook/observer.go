package notebook

import "github.com/R0GUET3CHNO/interactive/observability"

// Serializer event types emitted to the diagnostic sink.
const (
	// EventParseFailed records a swallowed deserialization failure; the
	// caller still receives a normalized single-cell document.
	EventParseFailed observability.EventType = "notebook.parse.failed"
)
