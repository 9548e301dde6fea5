// Package protocol defines the wire contract shared with the remote kernel
// hub: command and event envelopes, the notebook cell shape the kernel
// parses and renders, and the payloads of the document operations.
//
// Envelopes are immutable after construction. The transport layer moves them
// verbatim; it never inspects command or event payloads.
package protocol

import (
	"encoding/json"
	"fmt"
)

// CommandType tags the shape of an outgoing command payload.
type CommandType string

const (
	CommandSubmitCode        CommandType = "SubmitCode"
	CommandParseNotebook     CommandType = "ParseNotebook"
	CommandSerializeNotebook CommandType = "SerializeNotebook"
)

// EventType tags the shape of an incoming event payload.
type EventType string

const (
	EventNotebookParsed     EventType = "NotebookParsed"
	EventNotebookSerialized EventType = "NotebookSerialized"
	EventCommandFailed      EventType = "CommandFailed"
)

// CommandEnvelope wraps an outgoing command with its type tag and
// correlation token. Fire-and-forget: the sender discards it after the send
// completes. Any later events carrying the same token correlate only by
// convention of the remote protocol.
type CommandEnvelope struct {
	CommandType CommandType     `json:"commandType"`
	Command     json.RawMessage `json:"command"`
	Token       string          `json:"token"`
}

// NewCommandEnvelope marshals command into a CommandEnvelope.
func NewCommandEnvelope(commandType CommandType, command any, token string) (CommandEnvelope, error) {
	payload, err := json.Marshal(command)
	if err != nil {
		return CommandEnvelope{}, fmt.Errorf("failed to encode %s command: %w", commandType, err)
	}
	return CommandEnvelope{
		CommandType: commandType,
		Command:     payload,
		Token:       token,
	}, nil
}

// EventEnvelope wraps an incoming event. The transport delivers it unchanged
// to every subscriber; Event stays raw so subscribers decode only the types
// they care about.
type EventEnvelope struct {
	EventType EventType       `json:"eventType"`
	Event     json.RawMessage `json:"event"`
	Token     string          `json:"token,omitempty"`
}

// DecodeEvent unmarshals the envelope payload into out.
func (e EventEnvelope) DecodeEvent(out any) error {
	if err := json.Unmarshal(e.Event, out); err != nil {
		return fmt.Errorf("failed to decode %s event: %w", e.EventType, err)
	}
	return nil
}
