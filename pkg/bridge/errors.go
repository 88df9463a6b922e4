package bridge

import "errors"

// Error kinds the facade surfaces (Spec Section 7). Lower-level packages
// define their own sentinels; this package wraps them into these public
// kinds at the boundary so callers only need to errors.Is against one set.
var (
	// ErrConfigMissing is returned by Init when BridgeIP or AuthKey is
	// empty.
	ErrConfigMissing = errors.New("bridge: missing bridge ip or auth key")

	// ErrConnectTimeout is returned by Init when the handshake or initial
	// discovery does not complete within ConnectTimeout.
	ErrConnectTimeout = errors.New("bridge: connect timed out")

	// ErrConnectionDeclined is returned by Init when the bridge refuses
	// the handshake.
	ErrConnectionDeclined = errors.New("bridge: bridge declined connection")

	// ErrAuthFailed is returned by Init when the login sequence fails to
	// yield a token.
	ErrAuthFailed = errors.New("bridge: authentication failed")

	// ErrNotConnected is returned by mutating operations made without an
	// authenticated session.
	ErrNotConnected = errors.New("bridge: not connected")

	// ErrInvalidArgument is returned for a bad id, bad type, or
	// out-of-range value passed to a facade method.
	ErrInvalidArgument = errors.New("bridge: invalid argument")

	// ErrAckTimeout is returned when retries are exhausted on an
	// outbound command.
	ErrAckTimeout = errors.New("bridge: ack retries exhausted")

	// ErrCodecError is logged when a frame fails to decrypt or parse; the
	// frame is discarded and processing continues.
	ErrCodecError = errors.New("bridge: frame decode failed")

	// ErrTransportClosed names the transport-closed error kind. No facade
	// method returns it: a command whose ack waiter is aborted because the
	// socket closed fails with ErrNotConnected.
	ErrTransportClosed = errors.New("bridge: transport closed")
)
