package transport

// ReceivedMessage represents an incoming frame from the bridge, with the
// trailing frame terminator (Spec Section 4.5) already stripped. Higher
// layers (the router) are responsible for decoding the JSON envelope.
type ReceivedMessage struct {
	// Data contains the raw frame bytes, terminator stripped.
	Data []byte
}

// MessageHandler is called for each received message. Implementations
// should process messages quickly or dispatch to a goroutine to avoid
// blocking the transport's read loop.
type MessageHandler func(msg *ReceivedMessage)

// StateHandler is called whenever the transport's connectivity changes,
// driving the ack tracker's immediate-fail-if-disconnected semantics
// (Spec Section 4.6). The reconnect loop runs inside the transport and
// does not depend on it.
type StateHandler func(connected bool)
