package wire

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"testing"
)

func TestComputeAuthHashMatchesReferenceFormula(t *testing.T) {
	deviceID := "device-123"
	authKey := "s3cr3t"
	salt := "abcdefghij0123456789ABCDEFGHIJKL"

	inner := sha256.Sum256([]byte(deviceID + authKey))
	innerHex := hex.EncodeToString(inner[:])
	outer := sha256.Sum256([]byte(salt + innerHex))
	want := hex.EncodeToString(outer[:])

	got := ComputeAuthHash(deviceID, authKey, salt)
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestComputeAuthHashDeterministic(t *testing.T) {
	a := ComputeAuthHash("dev", "key", "salt")
	b := ComputeAuthHash("dev", "key", "salt")
	if a != b {
		t.Fatalf("expected deterministic output, got %s vs %s", a, b)
	}
}

func TestComputeAuthHashDiffersOnAnyInput(t *testing.T) {
	base := ComputeAuthHash("dev", "key", "salt")
	if ComputeAuthHash("dev2", "key", "salt") == base {
		t.Fatal("device id change should alter hash")
	}
	if ComputeAuthHash("dev", "key2", "salt") == base {
		t.Fatal("auth key change should alter hash")
	}
	if ComputeAuthHash("dev", "key", "salt2") == base {
		t.Fatal("salt change should alter hash")
	}
}

var saltCharset = regexp.MustCompile(`^[A-Za-z0-9]+$`)

func TestGenerateSaltLengthAndCharset(t *testing.T) {
	for _, n := range []int{1, 8, 32, 64, 100} {
		salt, err := GenerateSalt(n)
		if err != nil {
			t.Fatalf("GenerateSalt(%d): %v", n, err)
		}
		if len(salt) != n {
			t.Fatalf("GenerateSalt(%d): got length %d", n, len(salt))
		}
		if !saltCharset.MatchString(salt) {
			t.Fatalf("GenerateSalt(%d): salt %q contains disallowed characters", n, salt)
		}
	}
}

func TestGenerateSaltDefaultsWhenNonPositive(t *testing.T) {
	salt, err := GenerateSalt(0)
	if err != nil {
		t.Fatalf("GenerateSalt(0): %v", err)
	}
	if len(salt) != DefaultSaltLength {
		t.Fatalf("expected default length %d, got %d", DefaultSaltLength, len(salt))
	}
}

func TestGenerateSaltIsRandom(t *testing.T) {
	a, _ := GenerateSalt(32)
	b, _ := GenerateSalt(32)
	if a == b {
		t.Fatal("two generated salts collided — suspicious")
	}
}
