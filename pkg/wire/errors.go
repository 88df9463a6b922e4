// Package wire implements the bridge's framed AES-256-CBC message codec,
// the RSA key-wrap used during the handshake, and the password-derivation
// helper (Spec Sections 4.1-4.3).
package wire

import "errors"

// Errors returned by the wire package.
var (
	// ErrCodecDecrypt is returned when a frame fails to decrypt or decode.
	ErrCodecDecrypt = errors.New("wire: frame failed to decrypt or decode")

	// ErrCodecEncode is returned when a payload cannot be JSON-encoded.
	ErrCodecEncode = errors.New("wire: payload failed to encode")

	// ErrKeyTooSmall is returned when the bridge's RSA public key is
	// below the minimum required modulus size.
	ErrKeyTooSmall = errors.New("wire: bridge public key smaller than 2048 bits")

	// ErrNotRSAKey is returned when the PEM block does not contain an
	// RSA public key.
	ErrNotRSAKey = errors.New("wire: PEM block is not an RSA public key")

	// ErrInvalidPEM is returned when the PEM block cannot be parsed.
	ErrInvalidPEM = errors.New("wire: invalid PEM-encoded public key")
)
