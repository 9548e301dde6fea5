package transport

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// TokenSource issues correlation and subscription tokens. Implementations
// must never return the same token twice within a process lifetime.
type TokenSource interface {
	Next() string
}

// TokenGenerator is the default TokenSource: a random per-process prefix
// followed by a monotonic counter. The counter only grows; tokens are never
// reused.
type TokenGenerator struct {
	prefix string
	next   atomic.Uint64
}

// NewTokenGenerator creates a TokenGenerator with a fresh process-unique
// prefix.
func NewTokenGenerator() *TokenGenerator {
	return &TokenGenerator{prefix: uuid.NewString()[:8]}
}

func (g *TokenGenerator) Next() string {
	return fmt.Sprintf("%s-%d", g.prefix, g.next.Add(1))
}
