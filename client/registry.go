package client

import (
	"context"
	"fmt"
	"sync"
)

// SerializerClientKey is the well-known identifier of the kernel connection
// dedicated to notebook serialization work.
const SerializerClientKey = "notebook-serializer"

// Factory creates the client for a key on first resolution.
type Factory func(ctx context.Context, key string) (*Client, error)

// Registry memoizes clients by key with lazy construction. One client (and
// therefore one transport) exists per key for the registry's lifetime.
// Thread-safe.
type Registry struct {
	factory Factory

	mu      sync.Mutex
	clients map[string]*Client
}

// NewRegistry creates an empty Registry backed by the given factory.
func NewRegistry(factory Factory) *Registry {
	return &Registry{
		factory: factory,
		clients: make(map[string]*Client),
	}
}

// Resolve returns the client for key, creating it on first access. A failed
// creation is not memoized; the next Resolve retries.
func (r *Registry) Resolve(ctx context.Context, key string) (*Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, exists := r.clients[key]; exists {
		return c, nil
	}

	c, err := r.factory(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to create client %q: %w", key, err)
	}

	r.clients[key] = c
	return c, nil
}
