// Package client layers request/response semantics over the kernel
// transport. The transport itself is fire-and-forget; a Client correlates
// completion events back to the command that asked for them by token, which
// is exactly the convention the remote kernel follows.
package client

import (
	"context"
	"fmt"

	"github.com/R0GUET3CHNO/interactive/core/protocol"
	"github.com/R0GUET3CHNO/interactive/transport"
)

// Option configures a Client.
type Option func(*Client)

// WithTokenSource overrides the default token generator.
func WithTokenSource(tokens transport.TokenSource) Option {
	return func(c *Client) { c.tokens = tokens }
}

// Client issues document operations against one kernel transport.
type Client struct {
	transport *transport.Transport
	tokens    transport.TokenSource
}

// New creates a Client on top of an existing transport.
func New(t *transport.Transport, opts ...Option) *Client {
	c := &Client{
		transport: t,
		tokens:    transport.NewTokenGenerator(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Transport exposes the underlying transport, e.g. for subscribing to the
// raw event stream.
func (c *Client) Transport() *transport.Transport {
	return c.transport
}

// ParseNotebook asks the kernel to parse raw document bytes of the named
// kind into cells.
func (c *Client) ParseNotebook(ctx context.Context, documentKind string, content []byte) ([]protocol.NotebookCell, error) {
	env, err := c.roundTrip(ctx, protocol.CommandParseNotebook,
		protocol.ParseNotebookRequest{DocumentKind: documentKind, Content: content},
		protocol.EventNotebookParsed)
	if err != nil {
		return nil, err
	}

	var parsed protocol.NotebookParsedEvent
	if err := env.DecodeEvent(&parsed); err != nil {
		return nil, err
	}
	return parsed.Cells, nil
}

// SerializeNotebook asks the kernel to render cells to document bytes of
// the named kind using the given line-ending convention.
func (c *Client) SerializeNotebook(ctx context.Context, documentKind, newLine string, cells []protocol.NotebookCell) ([]byte, error) {
	env, err := c.roundTrip(ctx, protocol.CommandSerializeNotebook,
		protocol.SerializeNotebookRequest{DocumentKind: documentKind, NewLine: newLine, Cells: cells},
		protocol.EventNotebookSerialized)
	if err != nil {
		return nil, err
	}

	var serialized protocol.NotebookSerializedEvent
	if err := env.DecodeEvent(&serialized); err != nil {
		return nil, err
	}
	return serialized.Content, nil
}

// SubmitCode sends code for execution, fire-and-forget. It returns the
// correlation token so the caller can match later events if it cares to.
func (c *Client) SubmitCode(ctx context.Context, code string) (string, error) {
	token := c.tokens.Next()
	err := c.transport.SubmitCommand(ctx, protocol.CommandSubmitCode,
		protocol.SubmitCodeCommand{Code: code}, token)
	if err != nil {
		return "", err
	}
	return token, nil
}

// roundTrip submits a command and waits for its completion event. The
// subscription lives only as long as the call; the kernel's in-flight work
// is not aborted on cancellation, only no longer awaited.
func (c *Client) roundTrip(ctx context.Context, commandType protocol.CommandType, command any, completion protocol.EventType) (protocol.EventEnvelope, error) {
	token := c.tokens.Next()

	done := make(chan protocol.EventEnvelope, 1)
	failed := make(chan error, 1)

	sub := c.transport.SubscribeToKernelEvents(func(env protocol.EventEnvelope) {
		if env.Token != token {
			return
		}
		switch env.EventType {
		case completion:
			select {
			case done <- env:
			default:
			}
		case protocol.EventCommandFailed:
			var failure protocol.CommandFailedEvent
			if err := env.DecodeEvent(&failure); err != nil {
				failure.Message = "unreadable failure event"
			}
			select {
			case failed <- fmt.Errorf("%w: %s: %s", ErrCommandFailed, commandType, failure.Message):
			default:
			}
		}
	})
	defer sub.Dispose()

	if err := c.transport.SubmitCommand(ctx, commandType, command, token); err != nil {
		return protocol.EventEnvelope{}, err
	}

	select {
	case env := <-done:
		return env, nil
	case err := <-failed:
		return protocol.EventEnvelope{}, err
	case <-ctx.Done():
		return protocol.EventEnvelope{}, ctx.Err()
	}
}
