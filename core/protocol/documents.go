package protocol

// ParseNotebookRequest asks the kernel to parse raw document bytes into
// cells. DocumentKind names the on-disk format; its byte grammar is owned by
// the kernel.
type ParseNotebookRequest struct {
	DocumentKind string `json:"documentKind"`
	Content      []byte `json:"content"`
}

// NotebookParsedEvent carries the cells of a successfully parsed document.
type NotebookParsedEvent struct {
	Cells []NotebookCell `json:"cells"`
}

// SerializeNotebookRequest asks the kernel to render cells to document
// bytes using the named format and line-ending convention.
type SerializeNotebookRequest struct {
	DocumentKind string         `json:"documentKind"`
	NewLine      string         `json:"newLine"`
	Cells        []NotebookCell `json:"cells"`
}

// NotebookSerializedEvent carries the rendered document bytes.
type NotebookSerializedEvent struct {
	Content []byte `json:"content"`
}

// SubmitCodeCommand submits source code for execution on the remote kernel.
type SubmitCodeCommand struct {
	Code         string `json:"code"`
	TargetKernel string `json:"targetKernel,omitempty"`
}

// CommandFailedEvent reports that the command with the matching token
// failed on the remote kernel.
type CommandFailedEvent struct {
	Message string `json:"message"`
}
