package wire

import (
	"encoding/base64"
	"strings"
	"testing"
)

type samplePayload struct {
	Type int    `json:"type"`
	Name string `json:"name"`
	Mc   int    `json:"mc,omitempty"`
}

func mustContext(t *testing.T) *EncryptionContext {
	t.Helper()
	ctx, err := NewEncryptionContext()
	if err != nil {
		t.Fatalf("NewEncryptionContext: %v", err)
	}
	return ctx
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	ctx := mustContext(t)

	cases := []samplePayload{
		{Type: 300, Name: ""},
		{Type: 310, Name: "Lamp", Mc: 42},
		{Type: 1, Name: strings.Repeat("x", 13)},  // misaligned length
		{Type: 1, Name: strings.Repeat("y", 12)},  // exactly 16-byte aligned JSON
		{Type: 1, Name: strings.Repeat("z", 200)}, // spans many blocks
	}

	for _, in := range cases {
		frame, err := Encrypt(in, ctx)
		if err != nil {
			t.Fatalf("Encrypt(%+v): %v", in, err)
		}
		if !strings.HasSuffix(frame, string(rune(FrameTerminator))) {
			t.Fatalf("frame missing terminator byte: %q", frame)
		}

		b64 := strings.TrimSuffix(frame, string(rune(FrameTerminator)))

		var out samplePayload
		if err := Decrypt(b64, ctx, &out); err != nil {
			t.Fatalf("Decrypt: %v", err)
		}
		if out != in {
			t.Fatalf("round trip mismatch: got %+v, want %+v", out, in)
		}
	}
}

func TestPadNullBytesNeverZero(t *testing.T) {
	for l := 0; l < 64; l++ {
		padded := padNullBytes(make([]byte, l))
		padLen := len(padded) - l
		if padLen < 1 || padLen > 16 {
			t.Fatalf("length %d: pad length %d out of [1,16]", l, padLen)
		}
		if len(padded)%blockSize != 0 {
			t.Fatalf("length %d: padded length %d not block-aligned", l, len(padded))
		}
	}
}

func TestPadAlignedInputGetsFullExtraBlock(t *testing.T) {
	in := make([]byte, 32) // already 2 blocks
	padded := padNullBytes(in)
	if len(padded) != 48 {
		t.Fatalf("expected a full extra block appended, got length %d", len(padded))
	}
}

func TestDecryptMisalignedCiphertextIsZeroPadded(t *testing.T) {
	ctx := mustContext(t)

	// Find a payload whose ciphertext ends in a zero byte and drop that
	// byte: Decrypt's zero right-padding must restore it.
	var raw []byte
	var want samplePayload
	for mc := 1; raw == nil; mc++ {
		if mc > 100000 {
			t.Fatal("no ciphertext ending in a zero byte found")
		}
		want = samplePayload{Type: 1, Name: "a", Mc: mc}
		frame, err := Encrypt(want, ctx)
		if err != nil {
			t.Fatalf("Encrypt: %v", err)
		}
		b64 := strings.TrimSuffix(frame, string(rune(FrameTerminator)))
		full, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			t.Fatalf("base64: %v", err)
		}
		if full[len(full)-1] == 0 {
			raw = full[:len(full)-1]
		}
	}
	if len(raw)%blockSize == 0 {
		t.Fatalf("expected misaligned ciphertext, got length %d", len(raw))
	}

	var out samplePayload
	if err := Decrypt(base64.StdEncoding.EncodeToString(raw), ctx, &out); err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if out != want {
		t.Fatalf("got %+v, want %+v", out, want)
	}
}

func TestDecryptInvalidBase64(t *testing.T) {
	ctx := mustContext(t)
	var out samplePayload
	if err := Decrypt("not-base64!!!", ctx, &out); err == nil {
		t.Fatal("expected error for invalid base64")
	}
}

func TestStripTerminator(t *testing.T) {
	in := []byte("abc\x04")
	out := StripTerminator(in)
	if string(out) != "abc" {
		t.Fatalf("got %q", out)
	}

	// No terminator present: unchanged.
	in2 := []byte("abc")
	if string(StripTerminator(in2)) != "abc" {
		t.Fatalf("unexpected mutation without terminator")
	}
}
