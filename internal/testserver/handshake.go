package testserver

import (
	"encoding/json"
	"fmt"

	"github.com/xcomfort/bridgeclient/pkg/proto"
	"github.com/xcomfort/bridgeclient/pkg/wire"
)

// HandshakeResult carries the state a scripted test needs once a session
// has reached StateAuthenticated: the shared EncryptionContext and the
// token the mock bridge issued.
type HandshakeResult struct {
	Ctx   *wire.EncryptionContext
	Token string
}

// RunHandshake drives the full bridge-side handshake/token-renewal
// sequence of Spec Section 4.4 against one client connection, up through
// the second TokenApplyAck. It does not validate the login hash — this
// is a scripted mock, not a real authenticator.
func RunHandshake(s *Session, deviceID, connectionID string) (*HandshakeResult, error) {
	keys, err := GenerateKeyPair()
	if err != nil {
		return nil, err
	}

	if err := s.Send(proto.ConnectionStart{
		Type:         proto.TypeConnectionStart,
		DeviceID:     deviceID,
		ConnectionID: connectionID,
	}); err != nil {
		return nil, err
	}
	if _, err := s.RecvEnvelope(); err != nil { // ConnectionConfirm
		return nil, err
	}

	if err := s.Send(proto.ScInit{Type: proto.TypeScInitResponse}); err != nil {
		return nil, err
	}
	if _, err := s.RecvEnvelope(); err != nil { // ScInitRequest
		return nil, err
	}

	if err := s.Send(proto.PublicKeyResponse{
		Type:      proto.TypePublicKeyResponse,
		PublicKey: keys.PEM,
	}); err != nil {
		return nil, err
	}

	secretEnv, err := s.RecvEnvelope() // SecretExchange
	if err != nil {
		return nil, err
	}
	var secretMsg proto.SecretExchange
	if err := decodeInto(secretEnv, &secretMsg); err != nil {
		return nil, err
	}
	ctx, err := keys.UnwrapSecret(secretMsg.Secret)
	if err != nil {
		return nil, fmt.Errorf("testserver: unwrapping secret: %w", err)
	}

	if err := s.Send(typeOnly{Type: proto.TypeSecretExchangeAck}); err != nil {
		return nil, err
	}

	if _, err := s.RecvDecryptedEnvelope(ctx); err != nil { // LoginRequest
		return nil, err
	}

	const token = "mock-token-1"
	if err := s.SendEncrypted(proto.LoginResponse{Type: proto.TypeLoginResponse, Token: token}, ctx); err != nil {
		return nil, err
	}
	if _, err := s.RecvDecryptedEnvelope(ctx); err != nil { // TokenApply
		return nil, err
	}
	if err := s.SendEncrypted(typeOnly{Type: proto.TypeTokenApplyAck}, ctx); err != nil {
		return nil, err
	}
	if _, err := s.RecvDecryptedEnvelope(ctx); err != nil { // TokenRenew
		return nil, err
	}

	const newToken = "mock-token-2"
	if err := s.SendEncrypted(proto.TokenRenewResponse{Type: proto.TypeTokenRenewResponse, NewToken: newToken}, ctx); err != nil {
		return nil, err
	}
	if _, err := s.RecvDecryptedEnvelope(ctx); err != nil { // TokenApply (final)
		return nil, err
	}
	if err := s.SendEncrypted(typeOnly{Type: proto.TypeTokenApplyAck}, ctx); err != nil {
		return nil, err
	}

	return &HandshakeResult{Ctx: ctx, Token: newToken}, nil
}

type typeOnly struct {
	Type int `json:"type"`
}

func decodeInto(env *proto.Envelope, out interface{}) error {
	return json.Unmarshal(env.Raw, out)
}
