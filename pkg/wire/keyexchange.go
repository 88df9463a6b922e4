package wire

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/pem"
	"fmt"
)

// minRSAModulusBits is the minimum bridge public key size this client
// will accept (Spec Section 4.2).
const minRSAModulusBits = 2048

// secretDelimiter separates the hex key and hex IV in the wrapped secret
// string. The exact delimiter is mandated by the protocol.
const secretDelimiter = ":::"

// ParseBridgePublicKey parses a PEM-encoded RSA public key received from
// the bridge during the handshake and validates its minimum size.
func ParseBridgePublicKey(pemBytes []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, ErrInvalidPEM
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPEM, err)
	}

	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, ErrNotRSAKey
	}

	if rsaPub.N.BitLen() < minRSAModulusBits {
		return nil, ErrKeyTooSmall
	}

	return rsaPub, nil
}

// WrapSecret formats the EncryptionContext as hex(key)+":::"+hex(iv),
// RSA-encrypts it with PKCS#1 v1.5 padding under the bridge's public key
// and returns the base64-encoded ciphertext (Spec Section 4.2, 6).
func WrapSecret(ctx *EncryptionContext, bridgeKey *rsa.PublicKey) (string, error) {
	secret := hex.EncodeToString(ctx.Key[:]) + secretDelimiter + hex.EncodeToString(ctx.IV[:])

	ciphertext, err := rsa.EncryptPKCS1v15(rand.Reader, bridgeKey, []byte(secret))
	if err != nil {
		return "", fmt.Errorf("wire: rsa wrap: %w", err)
	}

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}
