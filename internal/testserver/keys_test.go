package testserver

import (
	"testing"

	"github.com/xcomfort/bridgeclient/pkg/wire"
)

func TestUnwrapSecretRoundTrip(t *testing.T) {
	keys, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}

	bridgeKey, err := wire.ParseBridgePublicKey([]byte(keys.PEM))
	if err != nil {
		t.Fatalf("ParseBridgePublicKey: %v", err)
	}

	ctx, err := wire.NewEncryptionContext()
	if err != nil {
		t.Fatalf("NewEncryptionContext: %v", err)
	}

	wrapped, err := wire.WrapSecret(ctx, bridgeKey)
	if err != nil {
		t.Fatalf("WrapSecret: %v", err)
	}

	got, err := keys.UnwrapSecret(wrapped)
	if err != nil {
		t.Fatalf("UnwrapSecret: %v", err)
	}

	if got.Key != ctx.Key || got.IV != ctx.IV {
		t.Fatal("unwrapped context does not match original")
	}
}

func TestUnwrapSecretRejectsMalformed(t *testing.T) {
	keys, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}

	if _, err := keys.UnwrapSecret("not-base64!!!"); err == nil {
		t.Fatal("expected error for invalid base64")
	}
}
