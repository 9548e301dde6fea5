// Package bridge composes the transport, client registry, and per-kind
// serializers into one configured unit. It is the only package that decides
// concrete wiring; everything below it takes its collaborators as
// parameters.
//
//	b, err := bridge.New(&cfg)
//	doc := b.SerializerFor(".dib").Deserialize(ctx, content)
package bridge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/R0GUET3CHNO/interactive/client"
	"github.com/R0GUET3CHNO/interactive/notebook"
	"github.com/R0GUET3CHNO/interactive/observability"
	"github.com/R0GUET3CHNO/interactive/transport"
)

// ErrUnknownDocumentKind is returned for file extensions outside the
// configured kinds.
var ErrUnknownDocumentKind = errors.New("unknown document kind")

// Option configures a Bridge after config-driven initialization.
type Option func(*Bridge)

// WithObserver sets the diagnostic sink for every subsystem.
func WithObserver(obs observability.Observer) Option {
	return func(b *Bridge) { b.observer = obs }
}

// WithClientFactory overrides how kernel clients are created, replacing the
// default websocket transport per key. Intended for tests.
func WithClientFactory(factory client.Factory) Option {
	return func(b *Bridge) { b.factory = factory }
}

// Bridge owns one client registry and one serializer per configured
// document kind. Kernel connections are created lazily, one per well-known
// client key.
type Bridge struct {
	observer observability.Observer
	factory  client.Factory
	registry *client.Registry

	serializers map[string]*notebook.Serializer

	mu         sync.Mutex
	transports []*transport.Transport
}

// New creates a Bridge from configuration.
func New(cfg *Config, opts ...Option) (*Bridge, error) {
	if cfg.RootURL == "" {
		return nil, errors.New("bridge config requires a root URL")
	}
	cfg.normalize()

	b := &Bridge{
		observer:    observability.NoOpObserver{},
		serializers: make(map[string]*notebook.Serializer),
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.factory == nil {
		rootURL := cfg.RootURL
		b.factory = func(ctx context.Context, key string) (*client.Client, error) {
			t := transport.New(ctx, rootURL, transport.WithObserver(b.observer))
			b.mu.Lock()
			b.transports = append(b.transports, t)
			b.mu.Unlock()
			return client.New(t), nil
		}
	}
	b.registry = client.NewRegistry(b.factory)

	resolver := notebook.ResolverFunc(func(ctx context.Context) (notebook.KernelClient, error) {
		c, err := b.registry.Resolve(ctx, client.SerializerClientKey)
		if err != nil {
			return nil, err
		}
		return c, nil
	})

	for _, kind := range cfg.Kinds {
		b.serializers[strings.ToLower(kind.Extension)] = notebook.NewSerializer(
			kind, resolver, notebook.WithObserver(b.observer))
	}

	return b, nil
}

// SerializerFor returns the serializer configured for the given file
// extension.
func (b *Bridge) SerializerFor(extension string) (*notebook.Serializer, error) {
	s, exists := b.serializers[strings.ToLower(extension)]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDocumentKind, extension)
	}
	return s, nil
}

// Extensions lists the configured file extensions.
func (b *Bridge) Extensions() []string {
	extensions := make([]string, 0, len(b.serializers))
	for ext := range b.serializers {
		extensions = append(extensions, ext)
	}
	return extensions
}

// Client resolves the kernel client registered under key, creating it on
// first use.
func (b *Bridge) Client(ctx context.Context, key string) (*client.Client, error) {
	return b.registry.Resolve(ctx, key)
}

// Close tears down every transport the bridge created.
func (b *Bridge) Close() error {
	b.mu.Lock()
	transports := b.transports
	b.transports = nil
	b.mu.Unlock()

	var firstErr error
	for _, t := range transports {
		if err := t.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
