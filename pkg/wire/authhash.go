package wire

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DefaultSaltLength is the default number of characters generated by
// GenerateSalt (Spec Section 4.3).
const DefaultSaltLength = 32

const saltAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// ComputeAuthHash computes the double-SHA-256 password derivation
// defined in Spec Section 4.3:
//
//	sha256_hex( salt ++ sha256_hex( device_id ++ auth_key ) )
//
// Byte concatenation is over the UTF-8 encodings of the inputs.
func ComputeAuthHash(deviceID, authKey, salt string) string {
	inner := sha256Hex([]byte(deviceID + authKey))
	return sha256Hex([]byte(salt + inner))
}

// GenerateSalt returns a cryptographically random string of length n
// composed only of [A-Za-z0-9], as required by Spec Section 4.3.
func GenerateSalt(n int) (string, error) {
	if n <= 0 {
		n = DefaultSaltLength
	}

	out := make([]byte, n)
	// Rejection sampling: byte values >= 248 (the largest multiple of 62
	// not above 256) are discarded so the modulo maps the remaining 248
	// values evenly onto the alphabet.
	buf := make([]byte, n)
	for filled := 0; filled < n; {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("wire: generate salt: %w", err)
		}
		for _, b := range buf {
			if filled >= n {
				break
			}
			if int(b) >= len(saltAlphabet)*(256/len(saltAlphabet)) {
				continue // reject to avoid modulo bias
			}
			out[filled] = saltAlphabet[int(b)%len(saltAlphabet)]
			filled++
		}
	}
	return string(out), nil
}
