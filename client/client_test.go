package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R0GUET3CHNO/interactive/client"
	"github.com/R0GUET3CHNO/interactive/core/protocol"
	"github.com/R0GUET3CHNO/interactive/transport"
)

// loopbackKernel implements transport.Connection and plays the remote
// kernel: every submitted command is answered synchronously through the
// kernelEvent handler, echoing the command's correlation token.
type loopbackKernel struct {
	handlers map[string]func(string)
	respond  func(env protocol.CommandEnvelope) *protocol.EventEnvelope
	sent     []protocol.CommandEnvelope
}

func newLoopbackKernel(respond func(protocol.CommandEnvelope) *protocol.EventEnvelope) *loopbackKernel {
	return &loopbackKernel{
		handlers: make(map[string]func(string)),
		respond:  respond,
	}
}

func (k *loopbackKernel) Start(ctx context.Context) error { return nil }

func (k *loopbackKernel) Invoke(ctx context.Context, method, arg string) error {
	var env protocol.CommandEnvelope
	if err := json.Unmarshal([]byte(arg), &env); err != nil {
		return err
	}
	k.sent = append(k.sent, env)

	if k.respond == nil {
		return nil
	}
	if reply := k.respond(env); reply != nil {
		payload, err := json.Marshal(reply)
		if err != nil {
			return err
		}
		k.handlers["kernelEvent"](string(payload))
	}
	return nil
}

func (k *loopbackKernel) On(method string, handler func(string)) { k.handlers[method] = handler }
func (k *loopbackKernel) State() transport.ConnectionState       { return transport.StateConnected }
func (k *loopbackKernel) Close() error                           { return nil }

func newClient(t *testing.T, kernel *loopbackKernel) *client.Client {
	t.Helper()
	tr := transport.New(context.Background(), "http://h", transport.WithConnection(kernel))
	return client.New(tr)
}

func reply(token string, eventType protocol.EventType, event any) *protocol.EventEnvelope {
	payload, err := json.Marshal(event)
	if err != nil {
		panic(err)
	}
	return &protocol.EventEnvelope{EventType: eventType, Event: payload, Token: token}
}

func TestClient_ParseNotebook(t *testing.T) {
	kernel := newLoopbackKernel(func(env protocol.CommandEnvelope) *protocol.EventEnvelope {
		require.Equal(t, protocol.CommandParseNotebook, env.CommandType)

		var req protocol.ParseNotebookRequest
		require.NoError(t, json.Unmarshal(env.Command, &req))
		require.Equal(t, "dib", req.DocumentKind)
		require.Equal(t, "#!csharp\nx", string(req.Content))

		return reply(env.Token, protocol.EventNotebookParsed, protocol.NotebookParsedEvent{
			Cells: []protocol.NotebookCell{{Language: "csharp", Contents: "x"}},
		})
	})
	c := newClient(t, kernel)

	cells, err := c.ParseNotebook(context.Background(), "dib", []byte("#!csharp\nx"))
	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.Equal(t, "csharp", cells[0].Language)
	assert.Equal(t, "x", cells[0].Contents)
}

func TestClient_SerializeNotebook(t *testing.T) {
	kernel := newLoopbackKernel(func(env protocol.CommandEnvelope) *protocol.EventEnvelope {
		var req protocol.SerializeNotebookRequest
		require.NoError(t, json.Unmarshal(env.Command, &req))
		require.Equal(t, "ipynb", req.DocumentKind)
		require.Equal(t, "\n", req.NewLine)

		return reply(env.Token, protocol.EventNotebookSerialized, protocol.NotebookSerializedEvent{
			Content: []byte(`{"cells":[]}`),
		})
	})
	c := newClient(t, kernel)

	content, err := c.SerializeNotebook(context.Background(), "ipynb", "\n", nil)
	require.NoError(t, err)
	assert.Equal(t, `{"cells":[]}`, string(content))
}

func TestClient_CommandFailed(t *testing.T) {
	kernel := newLoopbackKernel(func(env protocol.CommandEnvelope) *protocol.EventEnvelope {
		return reply(env.Token, protocol.EventCommandFailed, protocol.CommandFailedEvent{
			Message: "unknown document kind",
		})
	})
	c := newClient(t, kernel)

	_, err := c.ParseNotebook(context.Background(), "bogus", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrCommandFailed)
	assert.Contains(t, err.Error(), "unknown document kind")
}

func TestClient_IgnoresUnrelatedTokens(t *testing.T) {
	kernel := newLoopbackKernel(func(env protocol.CommandEnvelope) *protocol.EventEnvelope {
		// Event for somebody else's token: the client must keep waiting,
		// then give up on its own deadline.
		return reply("other-token", protocol.EventNotebookParsed, protocol.NotebookParsedEvent{})
	})
	c := newClient(t, kernel)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ParseNotebook(ctx, "dib", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_SubmitCode(t *testing.T) {
	kernel := newLoopbackKernel(nil)
	c := newClient(t, kernel)

	token, err := c.SubmitCode(context.Background(), "1 + 1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.Len(t, kernel.sent, 1)
	assert.Equal(t, protocol.CommandSubmitCode, kernel.sent[0].CommandType)
	assert.Equal(t, token, kernel.sent[0].Token)
}

type stubTokens struct {
	n int
}

func (s *stubTokens) Next() string {
	s.n++
	return fmt.Sprintf("tok-%d", s.n)
}

func TestClient_UsesInjectedTokenSource(t *testing.T) {
	kernel := newLoopbackKernel(nil)
	tr := transport.New(context.Background(), "http://h", transport.WithConnection(kernel))
	c := client.New(tr, client.WithTokenSource(&stubTokens{}))

	token, err := c.SubmitCode(context.Background(), "1 + 1")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	require.Len(t, kernel.sent, 1)
	assert.Equal(t, "tok-1", kernel.sent[0].Token)
}

func TestRegistry_MemoizesPerKey(t *testing.T) {
	created := 0
	registry := client.NewRegistry(func(ctx context.Context, key string) (*client.Client, error) {
		created++
		return newClient(t, newLoopbackKernel(nil)), nil
	})

	first, err := registry.Resolve(context.Background(), client.SerializerClientKey)
	require.NoError(t, err)
	second, err := registry.Resolve(context.Background(), client.SerializerClientKey)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, created)

	other, err := registry.Resolve(context.Background(), "another-kernel")
	require.NoError(t, err)
	assert.NotSame(t, first, other)
	assert.Equal(t, 2, created)
}

func TestRegistry_DoesNotMemoizeFailure(t *testing.T) {
	attempts := 0
	registry := client.NewRegistry(func(ctx context.Context, key string) (*client.Client, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("kernel unreachable")
		}
		return newClient(t, newLoopbackKernel(nil)), nil
	})

	_, err := registry.Resolve(context.Background(), "k")
	require.Error(t, err)

	c, err := registry.Resolve(context.Background(), "k")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, 2, attempts)
}
