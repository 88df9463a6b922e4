package wire

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"strings"
	"testing"
)

func generateTestKey(t *testing.T, bits int) ([]byte, *rsa.PrivateKey) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		t.Fatalf("MarshalPKIXPublicKey: %v", err)
	}
	block := &pem.Block{Type: "PUBLIC KEY", Bytes: der}
	return pem.EncodeToMemory(block), priv
}

func TestParseBridgePublicKeyAccepts2048(t *testing.T) {
	pemBytes, _ := generateTestKey(t, 2048)
	pub, err := ParseBridgePublicKey(pemBytes)
	if err != nil {
		t.Fatalf("ParseBridgePublicKey: %v", err)
	}
	if pub.N.BitLen() < minRSAModulusBits {
		t.Fatalf("unexpected bit length %d", pub.N.BitLen())
	}
}

func TestParseBridgePublicKeyRejectsSmallKey(t *testing.T) {
	pemBytes, _ := generateTestKey(t, 1024)
	if _, err := ParseBridgePublicKey(pemBytes); err != ErrKeyTooSmall {
		t.Fatalf("expected ErrKeyTooSmall, got %v", err)
	}
}

func TestParseBridgePublicKeyRejectsGarbage(t *testing.T) {
	if _, err := ParseBridgePublicKey([]byte("not pem")); err == nil {
		t.Fatal("expected error for invalid PEM")
	}
}

func TestWrapSecretFormatAndDecrypt(t *testing.T) {
	pemBytes, priv := generateTestKey(t, 2048)
	pub, err := ParseBridgePublicKey(pemBytes)
	if err != nil {
		t.Fatalf("ParseBridgePublicKey: %v", err)
	}

	ctx := mustContext(t)
	wrapped, err := WrapSecret(ctx, pub)
	if err != nil {
		t.Fatalf("WrapSecret: %v", err)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(wrapped)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	plain, err := rsa.DecryptPKCS1v15(rand.Reader, priv, ciphertext)
	if err != nil {
		t.Fatalf("DecryptPKCS1v15: %v", err)
	}

	parts := strings.Split(string(plain), secretDelimiter)
	if len(parts) != 2 {
		t.Fatalf("expected exactly one %q delimiter, got %q", secretDelimiter, plain)
	}
	if len(parts[0]) != KeySize*2 || len(parts[1]) != IVSize*2 {
		t.Fatalf("unexpected hex lengths: key=%d iv=%d", len(parts[0]), len(parts[1]))
	}
}
