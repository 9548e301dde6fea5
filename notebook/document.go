// Package notebook holds the generic notebook document model and its
// bidirectional mapping to the kernel's wire representation. The model is
// editor-facing: cells carry editor language ids and typed outputs; the
// kernel side (core/protocol) carries kernel language tags and MIME-item
// groups.
package notebook

import "fmt"

// Document is an ordered sequence of cells. A document has no identity
// beyond its content; equality is cell-for-cell.
type Document struct {
	Cells    []Cell
	Metadata DocumentMetadata
}

// DocumentMetadata is fixed per document kind. The kinds this package
// handles never persist cell execution order.
type DocumentMetadata struct {
	SupportsExecutionOrder bool
}

// Cell is one document cell. Ordering among cells is significant and
// preserved exactly through round-trip.
type Cell struct {
	Language string // editor language id, e.g. "interactive.csharp"
	Contents string
	Outputs  []CellOutput
}

// OutputKind discriminates the closed CellOutput variant.
type OutputKind uint8

const (
	OutputKindDisplay OutputKind = iota + 1
	OutputKindError
	OutputKindText
)

func (k OutputKind) String() string {
	switch k {
	case OutputKindDisplay:
		return "display"
	case OutputKindError:
		return "error"
	case OutputKindText:
		return "text"
	default:
		return fmt.Sprintf("OutputKind(%d)", k)
	}
}

// CellOutput is a closed variant: exactly one of Display, Error, or Text is
// populated, selected by Kind. Use the constructors.
type CellOutput struct {
	Kind    OutputKind
	Display map[string][]byte
	Error   string
	Text    string
}

// DisplayOutput creates an output carrying one or more renderable
// representations of a single result, keyed by MIME type.
func DisplayOutput(data map[string][]byte) CellOutput {
	return CellOutput{Kind: OutputKindDisplay, Display: data}
}

// ErrorOutput creates an output carrying a single opaque error value.
func ErrorOutput(message string) CellOutput {
	return CellOutput{Kind: OutputKindError, Error: message}
}

// TextOutput creates a plain-text output.
func TextOutput(text string) CellOutput {
	return CellOutput{Kind: OutputKindText, Text: text}
}
