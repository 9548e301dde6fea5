package transport

import "errors"

// ErrNotConnected is returned by sends attempted while the connection is
// not in the Connected state.
var ErrNotConnected = errors.New("transport not connected")

// ErrConnectionClosed is returned when an operation races a Close that has
// already won.
var ErrConnectionClosed = errors.New("connection closed")
