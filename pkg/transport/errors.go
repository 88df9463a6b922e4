package transport

import "errors"

// Transport errors.
var (
	// ErrClosed is returned when an operation is attempted on a closed transport.
	ErrClosed = errors.New("transport: closed")

	// ErrNoHandler is returned when no message handler is configured.
	ErrNoHandler = errors.New("transport: no message handler configured")

	// ErrNotConnected is returned when Send is called before Connect succeeds.
	ErrNotConnected = errors.New("transport: not connected")

	// ErrAlreadyStarted is returned when Connect is called on an already
	// connecting/connected transport.
	ErrAlreadyStarted = errors.New("transport: already started")

	// ErrSendFailed is returned when writing a frame to the socket fails.
	ErrSendFailed = errors.New("transport: send failed")

	// ErrFrameTooLarge is returned when an outbound frame exceeds MaxFrameSize.
	ErrFrameTooLarge = errors.New("transport: frame too large")
)
