package notebook

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/R0GUET3CHNO/interactive/core/protocol"
	"github.com/R0GUET3CHNO/interactive/observability"
)

// KernelClient is the slice of the kernel contract the serializer uses. The
// byte grammar of every document kind is owned by the remote kernel; this
// layer only supplies and consumes cell lists.
type KernelClient interface {
	ParseNotebook(ctx context.Context, documentKind string, content []byte) ([]protocol.NotebookCell, error)
	SerializeNotebook(ctx context.Context, documentKind, newLine string, cells []protocol.NotebookCell) ([]byte, error)
}

// ClientResolver hands out the kernel client dedicated to serialization
// work. Resolution is expected to be memoized behind this interface (see
// client.Registry); the serializer just asks every time.
type ClientResolver interface {
	Resolve(ctx context.Context) (KernelClient, error)
}

// ResolverFunc adapts a function to the ClientResolver interface.
type ResolverFunc func(ctx context.Context) (KernelClient, error)

func (f ResolverFunc) Resolve(ctx context.Context) (KernelClient, error) { return f(ctx) }

// SerializerConfig is the data that distinguishes the serializer variants.
// The document kind tag is derived from the extension; everything else is
// shared behavior.
type SerializerConfig struct {
	Extension       string `json:"extension"`        // e.g. ".dib", ".dotnet-interactive", ".ipynb"
	DefaultLanguage string `json:"default_language"` // kernel tag for synthesized cells
}

// KindForExtension derives the document kind tag from a file extension.
func KindForExtension(extension string) string {
	return strings.TrimPrefix(strings.ToLower(extension), ".")
}

// SerializerOption configures a Serializer.
type SerializerOption func(*Serializer)

// WithObserver sets the diagnostic sink.
func WithObserver(obs observability.Observer) SerializerOption {
	return func(s *Serializer) { s.observer = obs }
}

// WithNewLine overrides the line-ending convention captured at
// construction. Intended for tests and cross-platform rendering.
func WithNewLine(newLine string) SerializerOption {
	return func(s *Serializer) { s.newLine = newLine }
}

// Serializer converts whole documents between bytes and the generic model
// through the remote kernel. One instance per document kind; the kinds
// differ only in configuration, not behavior.
type Serializer struct {
	kind            string
	extension       string
	defaultLanguage string
	newLine         string
	resolver        ClientResolver
	observer        observability.Observer
}

// NewSerializer creates a Serializer for one document kind. The host
// line-ending convention is captured here, once; Serialize never re-samples
// it.
func NewSerializer(cfg SerializerConfig, resolver ClientResolver, opts ...SerializerOption) *Serializer {
	s := &Serializer{
		kind:            KindForExtension(cfg.Extension),
		extension:       cfg.Extension,
		defaultLanguage: cfg.DefaultLanguage,
		newLine:         hostNewLine(),
		resolver:        resolver,
		observer:        observability.NoOpObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Kind returns the document kind tag, e.g. "dib".
func (s *Serializer) Kind() string { return s.kind }

// Extension returns the configured file extension, e.g. ".dib".
func (s *Serializer) Extension() string { return s.extension }

// Deserialize converts document bytes into a Document. It never fails
// visibly: any parse or resolution failure is written to the diagnostic
// sink and degrades to zero cells, and zero cells are normalized to a
// single empty cell of the configured default language. The returned
// document therefore always has at least one cell, and its metadata marks
// execution-order tracking as unsupported.
func (s *Serializer) Deserialize(ctx context.Context, content []byte) *Document {
	doc := &Document{
		Metadata: DocumentMetadata{SupportsExecutionOrder: false},
	}

	for _, wire := range s.parse(ctx, content) {
		doc.Cells = append(doc.Cells, FromWireCell(wire))
	}

	if len(doc.Cells) == 0 {
		doc.Cells = []Cell{{Language: EditorLanguage(s.defaultLanguage)}}
	}
	return doc
}

func (s *Serializer) parse(ctx context.Context, content []byte) []protocol.NotebookCell {
	kernel, err := s.resolver.Resolve(ctx)
	if err != nil {
		s.reportParseFailure(ctx, "resolve", err)
		return nil
	}

	cells, err := kernel.ParseNotebook(ctx, s.kind, content)
	if err != nil {
		s.reportParseFailure(ctx, "parse", err)
		return nil
	}
	return cells
}

func (s *Serializer) reportParseFailure(ctx context.Context, stage string, err error) {
	observability.Emit(ctx, s.observer, EventParseFailed, observability.LevelWarn,
		"notebook.Serializer", map[string]any{
			"kind":  s.kind,
			"stage": stage,
			"error": err.Error(),
		})
}

// Serialize renders a Document to bytes via the remote kernel, mapping
// every cell in order. Unlike Deserialize, failures propagate: a malformed
// in-memory document is a programming error, not expected input.
func (s *Serializer) Serialize(ctx context.Context, doc *Document) ([]byte, error) {
	kernel, err := s.resolver.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve serialization kernel: %w", err)
	}

	cells := make([]protocol.NotebookCell, 0, len(doc.Cells))
	for _, cell := range doc.Cells {
		cells = append(cells, ToWireCell(cell))
	}

	content, err := kernel.SerializeNotebook(ctx, s.kind, s.newLine, cells)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize %s document: %w", s.kind, err)
	}
	return content, nil
}

func hostNewLine() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}
