// Package ack implements the outbound acknowledgement/retry discipline
// described in Spec Section 4.6: a map from outbound message counter
// (mc) to a waiter, resolved by inbound ACK/NACK and retried on timeout.
package ack

import "errors"

// Errors returned by the ack package.
var (
	// ErrNotConnected is returned by SendWithRetry when the tracker has
	// been told the transport is down.
	ErrNotConnected = errors.New("ack: not connected")

	// ErrTimeout is returned after retries are exhausted without a
	// successful ACK.
	ErrTimeout = errors.New("ack: retries exhausted, no ack received")

	// ErrNacked is returned when the final attempt is explicitly NACKed
	// rather than timing out.
	ErrNacked = errors.New("ack: bridge rejected message (nack)")

	// ErrClosed is returned by SendWithRetry calls made after the tracker
	// has been torn down (Clear); waiters still pending at Clear fail with
	// ErrNotConnected instead.
	ErrClosed = errors.New("ack: tracker closed")
)
