package wire

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// KeySize and IVSize are the AES-256-CBC key and block sizes mandated by
// the bridge protocol (Spec Section 3, EncryptionContext).
const (
	KeySize = 32
	IVSize  = 16

	blockSize = 16

	// FrameTerminator is the single control byte appended after the
	// base64 ciphertext of every encrypted frame (Spec Section 4.1).
	FrameTerminator = 0x04
)

// EncryptionContext holds the AES-256 key and IV generated fresh at
// handshake for the lifetime of one WebSocket session. It must never be
// reused across sessions (Spec Section 3 invariants).
type EncryptionContext struct {
	Key [KeySize]byte
	IV  [IVSize]byte
}

// NewEncryptionContext generates a fresh random key and IV using a
// cryptographically secure source.
func NewEncryptionContext() (*EncryptionContext, error) {
	ctx := &EncryptionContext{}
	if _, err := rand.Read(ctx.Key[:]); err != nil {
		return nil, fmt.Errorf("wire: generate key: %w", err)
	}
	if _, err := rand.Read(ctx.IV[:]); err != nil {
		return nil, fmt.Errorf("wire: generate iv: %w", err)
	}
	return ctx, nil
}

// Encrypt serializes v to UTF-8 JSON, applies the protocol's null-byte
// padding, encrypts under AES-256-CBC and returns the base64 ciphertext
// with the trailing FrameTerminator byte appended (Spec Section 4.1).
func Encrypt(v interface{}, ctx *EncryptionContext) (string, error) {
	plain, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCodecEncode, err)
	}

	padded := padNullBytes(plain)

	block, err := aes.NewCipher(ctx.Key[:])
	if err != nil {
		return "", fmt.Errorf("wire: new cipher: %w", err)
	}
	mode := cipher.NewCBCEncrypter(block, ctx.IV[:])

	ciphertext := make([]byte, len(padded))
	mode.CryptBlocks(ciphertext, padded)

	encoded := base64.StdEncoding.EncodeToString(ciphertext)
	var out bytes.Buffer
	out.WriteString(encoded)
	out.WriteByte(FrameTerminator)
	return out.String(), nil
}

// padNullBytes appends pad = 16 - (len(b) mod 16) null bytes. When len(b)
// is already block-aligned, a full extra block of 16 zero bytes is
// appended — this is the "always add at least one byte" quirk the server
// requires bit-for-bit (Spec Section 4.1, Section 9 padding quirk note).
func padNullBytes(b []byte) []byte {
	pad := blockSize - (len(b) % blockSize)
	out := make([]byte, len(b)+pad)
	copy(out, b)
	return out
}

// Decrypt base64-decodes a frame (with the trailing FrameTerminator
// already stripped by the caller), right-pads to a block boundary if
// necessary, decrypts under AES-256-CBC, strips trailing null bytes and
// JSON-decodes the result into out (Spec Section 4.1).
func Decrypt(b64 string, ctx *EncryptionContext, out interface{}) error {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return fmt.Errorf("%w: base64: %v", ErrCodecDecrypt, err)
	}

	if len(raw)%blockSize != 0 {
		aligned := make([]byte, len(raw)+(blockSize-len(raw)%blockSize))
		copy(aligned, raw)
		raw = aligned
	}
	if len(raw) == 0 {
		return fmt.Errorf("%w: empty frame", ErrCodecDecrypt)
	}

	block, err := aes.NewCipher(ctx.Key[:])
	if err != nil {
		return fmt.Errorf("wire: new cipher: %w", err)
	}
	mode := cipher.NewCBCDecrypter(block, ctx.IV[:])

	plain := make([]byte, len(raw))
	mode.CryptBlocks(plain, raw)

	plain = bytes.TrimRight(plain, "\x00")

	if err := json.Unmarshal(plain, out); err != nil {
		return fmt.Errorf("%w: json: %v", ErrCodecDecrypt, err)
	}
	return nil
}

// StripTerminator removes a single trailing FrameTerminator byte from a
// received frame, if present. The transport layer does this before
// handing frames to the router (Spec Section 4.5).
func StripTerminator(frame []byte) []byte {
	if len(frame) > 0 && frame[len(frame)-1] == FrameTerminator {
		return frame[:len(frame)-1]
	}
	return frame
}
