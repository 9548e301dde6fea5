package notebook

import (
	"strings"

	"github.com/R0GUET3CHNO/interactive/core/protocol"
)

// editorLanguagePrefix namespaces kernel language tags inside the host
// editor, e.g. kernel "csharp" is editor id "interactive.csharp".
const editorLanguagePrefix = "interactive."

// KernelLanguage derives the kernel language tag from an editor language
// id. Ids outside the interactive namespace pass through unchanged.
func KernelLanguage(editorID string) string {
	return strings.TrimPrefix(editorID, editorLanguagePrefix)
}

// EditorLanguage derives the editor language id for a kernel language tag.
func EditorLanguage(kernelTag string) string {
	if kernelTag == "" {
		return ""
	}
	return editorLanguagePrefix + kernelTag
}

// ToWireCell maps a generic cell to the kernel's cell contract: language
// tag from the editor id, contents verbatim, outputs expanded per group.
func ToWireCell(cell Cell) protocol.NotebookCell {
	var outputs []protocol.NotebookCellOutput
	if len(cell.Outputs) > 0 {
		outputs = make([]protocol.NotebookCellOutput, 0, len(cell.Outputs))
		for _, out := range cell.Outputs {
			outputs = append(outputs, ExpandOutput(out))
		}
	}
	return protocol.NotebookCell{
		Language: KernelLanguage(cell.Language),
		Contents: cell.Contents,
		Outputs:  outputs,
	}
}

// FromWireCell maps a kernel cell back to the generic model.
func FromWireCell(wire protocol.NotebookCell) Cell {
	var outputs []CellOutput
	if len(wire.Outputs) > 0 {
		outputs = make([]CellOutput, 0, len(wire.Outputs))
		for _, group := range wire.Outputs {
			outputs = append(outputs, CollapseOutput(group))
		}
	}
	return Cell{
		Language: EditorLanguage(wire.Language),
		Contents: wire.Contents,
		Outputs:  outputs,
	}
}
