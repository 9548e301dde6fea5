package client

import "errors"

// ErrCommandFailed wraps a CommandFailed event received for one of this
// client's correlation tokens.
var ErrCommandFailed = errors.New("kernel command failed")
