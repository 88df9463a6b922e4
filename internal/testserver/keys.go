package testserver

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"strings"

	"github.com/xcomfort/bridgeclient/pkg/wire"
)

// KeyPair is the bridge-side RSA keypair used to answer
// PublicKeyResponse and unwrap the client's SecretExchange, mirroring
// pkg/auth's own handshake test helper (genRSAKeyPEM).
type KeyPair struct {
	Private *rsa.PrivateKey
	PEM     string
}

// GenerateKeyPair creates a 2048-bit RSA keypair, satisfying
// wire.ParseBridgePublicKey's minimum modulus size.
func GenerateKeyPair() (*KeyPair, error) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, err
	}
	block := &pem.Block{Type: "PUBLIC KEY", Bytes: der}
	return &KeyPair{Private: priv, PEM: string(pem.EncodeToMemory(block))}, nil
}

// UnwrapSecret reverses wire.WrapSecret: RSA-decrypts the base64
// ciphertext and parses out the hex(key):::hex(iv) EncryptionContext.
func (k *KeyPair) UnwrapSecret(b64Secret string) (*wire.EncryptionContext, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(b64Secret)
	if err != nil {
		return nil, err
	}
	plain, err := rsa.DecryptPKCS1v15(rand.Reader, k.Private, ciphertext)
	if err != nil {
		return nil, err
	}

	parts := strings.Split(string(plain), ":::")
	if len(parts) != 2 {
		return nil, fmt.Errorf("testserver: malformed secret %q", string(plain))
	}

	key, err := hex.DecodeString(parts[0])
	if err != nil {
		return nil, err
	}
	iv, err := hex.DecodeString(parts[1])
	if err != nil {
		return nil, err
	}
	if len(key) != wire.KeySize || len(iv) != wire.IVSize {
		return nil, fmt.Errorf("testserver: unexpected key/iv size %d/%d", len(key), len(iv))
	}

	var ctx wire.EncryptionContext
	copy(ctx.Key[:], key)
	copy(ctx.IV[:], iv)
	return &ctx, nil
}
