// Package observability provides the diagnostic sink consumed by the
// transport and serialization subsystems. Subsystems emit typed events;
// observers decide what to do with them (log, count, discard). The sink is
// write-only from the emitter's perspective.
package observability

import (
	"context"
	"log/slog"
	"time"
)

// Level is event severity, carried as the slog level it maps to.
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// EventType identifies the kind of event. Each package defines its own
// constants using this type (e.g. "transport.connection.start_failed").
type EventType string

// Event is a single diagnostic record emitted by a subsystem.
type Event struct {
	Type      EventType
	Level     Level
	Timestamp time.Time
	Source    string
	Data      map[string]any
}

// Observer receives events from subsystems. Implementations must not block;
// emitters call OnEvent synchronously on their own goroutine.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}

// Emit constructs an Event with the current time and hands it to obs.
// Convenience for the common emit-inline pattern.
func Emit(ctx context.Context, obs Observer, typ EventType, level Level, source string, data map[string]any) {
	obs.OnEvent(ctx, Event{
		Type:      typ,
		Level:     level,
		Timestamp: time.Now(),
		Source:    source,
		Data:      data,
	})
}
