package notebook

import (
	"sort"

	"github.com/R0GUET3CHNO/interactive/core/protocol"
)

// ExpandOutput converts one generic output into its wire group. A Display
// output expands to one item per MIME key, in sorted key order so the item
// sequence is deterministic; Error and Text expand to exactly one item
// each, tagged with the error sentinel and text/plain respectively.
func ExpandOutput(out CellOutput) protocol.NotebookCellOutput {
	switch out.Kind {
	case OutputKindError:
		return protocol.NotebookCellOutput{Items: []protocol.OutputItem{
			{Mime: protocol.ErrorMimeType, Value: []byte(out.Error)},
		}}
	case OutputKindText:
		return protocol.NotebookCellOutput{Items: []protocol.OutputItem{
			{Mime: protocol.TextPlainMimeType, Value: []byte(out.Text)},
		}}
	default:
		mimes := make([]string, 0, len(out.Display))
		for mime := range out.Display {
			mimes = append(mimes, mime)
		}
		sort.Strings(mimes)

		items := make([]protocol.OutputItem, 0, len(mimes))
		for _, mime := range mimes {
			items = append(items, protocol.OutputItem{Mime: mime, Value: out.Display[mime]})
		}
		return protocol.NotebookCellOutput{Items: items}
	}
}

// CollapseOutput reconstructs exactly one output variant from a wire group.
// A group whose sole item carries the error sentinel becomes Error; a group
// whose sole item is text/plain becomes Text; everything else becomes
// Display keyed by item MIME type. The rule is deterministic, so a Display
// output holding only a text/plain entry normalizes to Text on round-trip.
func CollapseOutput(group protocol.NotebookCellOutput) CellOutput {
	if len(group.Items) == 1 {
		item := group.Items[0]
		switch item.Mime {
		case protocol.ErrorMimeType:
			return ErrorOutput(string(item.Value))
		case protocol.TextPlainMimeType:
			return TextOutput(string(item.Value))
		}
	}

	data := make(map[string][]byte, len(group.Items))
	for _, item := range group.Items {
		data[item.Mime] = item.Value
	}
	return DisplayOutput(data)
}
