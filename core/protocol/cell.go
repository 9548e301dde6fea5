package protocol

import (
	"encoding/base64"
	"encoding/json"
	"strings"
)

// MIME types with fixed meaning in the cell output contract.
const (
	// ErrorMimeType is the sentinel tagging the single item of an error
	// output group.
	ErrorMimeType = "application/vnd.interactive.error"

	// TextPlainMimeType tags plain-text output values.
	TextPlainMimeType = "text/plain"
)

// NotebookCell is the kernel's view of one document cell. Cell order is
// significant and preserved exactly through parse and serialize.
type NotebookCell struct {
	Language string               `json:"language"`
	Contents string               `json:"contents"`
	Outputs  []NotebookCellOutput `json:"outputs"`
}

// NotebookCellOutput is one wire output group. Items that originated from
// the same source output travel in the same group so the inverse mapping can
// reconstruct exactly one output variant per group.
type NotebookCellOutput struct {
	Items []OutputItem `json:"items"`
}

// OutputItem is a single MIME-tagged value inside an output group.
//
// On the wire the value is always a JSON string: text-family MIME types
// carry their payload as UTF-8 text, every other MIME type carries it
// base64-encoded. The reshaping is a pure function of (value, mime) and is
// lossless within a MIME family.
type OutputItem struct {
	Mime  string
	Value []byte
}

// IsTextMime reports whether values of the given MIME type are carried as
// UTF-8 text rather than base64 bytes.
func IsTextMime(mime string) bool {
	if strings.HasPrefix(mime, "text/") {
		return true
	}
	switch mime {
	case "application/json",
		"application/xml",
		"application/javascript",
		"image/svg+xml",
		ErrorMimeType:
		return true
	}
	return false
}

type outputItemJSON struct {
	Mime  string `json:"mime"`
	Value string `json:"value"`
}

func (i OutputItem) MarshalJSON() ([]byte, error) {
	encoded := outputItemJSON{Mime: i.Mime}
	if IsTextMime(i.Mime) {
		encoded.Value = string(i.Value)
	} else {
		encoded.Value = base64.StdEncoding.EncodeToString(i.Value)
	}
	return json.Marshal(encoded)
}

func (i *OutputItem) UnmarshalJSON(data []byte) error {
	var decoded outputItemJSON
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	i.Mime = decoded.Mime
	if IsTextMime(decoded.Mime) {
		i.Value = []byte(decoded.Value)
		return nil
	}

	raw, err := base64.StdEncoding.DecodeString(decoded.Value)
	if err != nil {
		return err
	}
	i.Value = raw
	return nil
}
