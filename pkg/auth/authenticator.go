package auth

import (
	"encoding/json"
	"fmt"

	"github.com/pion/logging"

	"github.com/xcomfort/bridgeclient/pkg/proto"
	"github.com/xcomfort/bridgeclient/pkg/wire"
)

// Sender is the subset of the transport the Authenticator needs. Raw
// frames are used up through SecretExchange, since the bridge cannot
// decrypt a frame that is itself delivering the AES context; Encrypted
// is used from LoginRequest onward (Spec Section 4.4, 4.5).
type Sender interface {
	SendRaw(v interface{}) error
	SendEncrypted(v interface{}) error
}

// Config configures one handshake run (Spec Section 3, 4.1). DeviceID is
// NOT part of this config: the AuthContext's device id is bridge-advertised
// (carried on ConnectionStart), not client-configured (Spec Section 3
// "AuthContext").
type Config struct {
	AuthKey       string
	ClientType    string
	ClientID      string
	ClientVersion string
	SaltLength    int
}

// DefaultConfig fills in the Spec Section 5 salt length default; callers
// must still set AuthKey/ClientID.
func DefaultConfig() Config {
	return Config{
		ClientType: "app",
		SaltLength: wire.DefaultSaltLength,
	}
}

// Authenticator drives the handshake/token-renewal state machine of Spec
// Section 4.4, grounded on the teacher's pkg/securechannel PASE session
// State+Handle* pattern.
type Authenticator struct {
	log    logging.LeveledLogger
	cfg    Config
	sender Sender

	state State

	connectionID string
	token        string
	ctx          *wire.EncryptionContext

	onEncryptionReady func(*wire.EncryptionContext)
	onAuthenticated   func(token string)
}

// New creates an Authenticator in StateIdle.
func New(cfg Config, sender Sender, log logging.LeveledLogger) *Authenticator {
	return &Authenticator{
		log:    log,
		cfg:    cfg,
		sender: sender,
		state:  StateIdle,
	}
}

// OnEncryptionReady registers a callback fired once the AES context is
// established and acknowledged (SecretExchangeAck), so the transport can
// switch outbound non-handshake frames to SendEncrypted.
func (a *Authenticator) OnEncryptionReady(fn func(*wire.EncryptionContext)) {
	a.onEncryptionReady = fn
}

// OnAuthenticated registers a callback fired once, with the renewed token,
// when the final TokenApplyAck moves the state machine to Authenticated.
func (a *Authenticator) OnAuthenticated(fn func(token string)) {
	a.onAuthenticated = fn
}

// State returns the current handshake state.
func (a *Authenticator) State() State {
	return a.state
}

// Start begins the handshake by sending ConnectionConfirm in reply to
// the bridge's ConnectionStart (Spec Section 4.4 step 1).
func (a *Authenticator) Start(deviceID string) error {
	a.connectionID = deviceID
	a.state = StateAwaitingScInit
	return a.sender.SendRaw(proto.ConnectionConfirm{
		Type:          proto.TypeConnectionConfirm,
		ClientType:    a.cfg.ClientType,
		ClientID:      a.cfg.ClientID,
		ClientVersion: a.cfg.ClientVersion,
		ConnectionID:  deviceID,
	})
}

// HandleMessage advances the state machine in response to an inbound
// handshake-flow envelope. ConnectionDeclined is fatal from any state
// (Open Question b).
func (a *Authenticator) HandleMessage(env *proto.Envelope) error {
	if env.Type == proto.TypeConnectionDeclined {
		prev := a.state
		a.state = StateFailed
		return fmt.Errorf("%w: bridge sent ConnectionDeclined in state %s", ErrConnectionDeclined, prev)
	}

	switch a.state {
	case StateIdle:
		return a.handleIdle(env)
	case StateAwaitingScInit:
		return a.handleAwaitingScInit(env)
	case StateAwaitingPublicKey:
		return a.handleAwaitingPublicKey(env)
	case StateAwaitingSecretAck:
		return a.handleAwaitingSecretAck(env)
	case StateAwaitingLoginResponse:
		return a.handleAwaitingLoginResponse(env)
	case StateAwaitingTokenApply:
		return a.handleAwaitingTokenApply(env)
	case StateAwaitingTokenRenew:
		return a.handleAwaitingTokenRenew(env)
	case StateAwaitingTokenApplyFinal:
		return a.handleAwaitingTokenApplyFinal(env)
	default:
		a.log.Debugf("auth: unexpected message type %s in state %s", proto.TypeName(env.Type), a.state)
		return nil
	}
}

func (a *Authenticator) handleIdle(env *proto.Envelope) error {
	if env.Type != proto.TypeConnectionStart {
		a.log.Warnf("auth: expected ConnectionStart, got %s", proto.TypeName(env.Type))
		return nil
	}

	var msg proto.ConnectionStart
	if err := unmarshalEnvelope(env, &msg); err != nil {
		return err
	}
	return a.Start(msg.DeviceID)
}

func (a *Authenticator) handleAwaitingScInit(env *proto.Envelope) error {
	if env.Type != proto.TypeScInitResponse {
		a.log.Warnf("auth: expected ScInitResponse, got %s", proto.TypeName(env.Type))
		return nil
	}
	a.state = StateAwaitingPublicKey
	return a.sender.SendRaw(proto.ScInit{Type: proto.TypeScInitRequest})
}

func (a *Authenticator) handleAwaitingPublicKey(env *proto.Envelope) error {
	if env.Type == proto.TypeScInitRequest {
		// The bridge echoes our ScInitRequest back; Open Question (a): keep
		// responding with our own ScInitRequest rather than treating it
		// as a protocol error.
		return a.sender.SendRaw(proto.ScInit{Type: proto.TypeScInitRequest})
	}

	if env.Type != proto.TypePublicKeyResponse {
		a.log.Warnf("auth: expected PublicKeyResponse, got %s", proto.TypeName(env.Type))
		return nil
	}

	var msg proto.PublicKeyResponse
	if err := unmarshalEnvelope(env, &msg); err != nil {
		return err
	}

	bridgeKey, err := wire.ParseBridgePublicKey([]byte(msg.PublicKey))
	if err != nil {
		return fmt.Errorf("auth: parsing bridge public key: %w", err)
	}

	encCtx, err := wire.NewEncryptionContext()
	if err != nil {
		return fmt.Errorf("auth: generating encryption context: %w", err)
	}
	a.ctx = encCtx

	wrapped, err := wire.WrapSecret(encCtx, bridgeKey)
	if err != nil {
		return fmt.Errorf("auth: wrapping secret: %w", err)
	}

	a.state = StateAwaitingSecretAck
	return a.sender.SendRaw(proto.SecretExchange{
		Type:   proto.TypeSecretExchange,
		Secret: wrapped,
	})
}

func (a *Authenticator) handleAwaitingSecretAck(env *proto.Envelope) error {
	if env.Type != proto.TypeSecretExchangeAck {
		a.log.Warnf("auth: expected SecretExchangeAck, got %s", proto.TypeName(env.Type))
		return nil
	}

	if a.onEncryptionReady != nil {
		a.onEncryptionReady(a.ctx)
	}

	salt, err := wire.GenerateSalt(a.cfg.SaltLength)
	if err != nil {
		return fmt.Errorf("auth: generating salt: %w", err)
	}
	hash := wire.ComputeAuthHash(a.connectionID, a.cfg.AuthKey, salt)

	a.state = StateAwaitingLoginResponse
	return a.sender.SendEncrypted(proto.LoginRequest{
		Type:     proto.TypeLoginRequest,
		Username: proto.DefaultUsername,
		Password: hash,
		Salt:     salt,
	})
}

func (a *Authenticator) handleAwaitingLoginResponse(env *proto.Envelope) error {
	if env.Type != proto.TypeLoginResponse {
		a.log.Warnf("auth: expected LoginResponse, got %s", proto.TypeName(env.Type))
		return nil
	}

	var msg proto.LoginResponse
	if err := unmarshalEnvelope(env, &msg); err != nil {
		return err
	}
	a.token = msg.Token

	a.state = StateAwaitingTokenApply
	return a.sender.SendEncrypted(proto.TokenApply{
		Type:  proto.TypeTokenApply,
		Token: a.token,
	})
}

func (a *Authenticator) handleAwaitingTokenApply(env *proto.Envelope) error {
	if env.Type != proto.TypeTokenApplyAck {
		a.log.Warnf("auth: expected TokenApplyAck, got %s", proto.TypeName(env.Type))
		return nil
	}

	a.state = StateAwaitingTokenRenew
	return a.sender.SendEncrypted(proto.TokenRenew{
		Type:  proto.TypeTokenRenew,
		Token: a.token,
	})
}

func (a *Authenticator) handleAwaitingTokenRenew(env *proto.Envelope) error {
	if env.Type != proto.TypeTokenRenewResponse {
		a.log.Warnf("auth: expected TokenRenewResponse, got %s", proto.TypeName(env.Type))
		return nil
	}

	var msg proto.TokenRenewResponse
	if err := unmarshalEnvelope(env, &msg); err != nil {
		return err
	}
	a.token = msg.NewToken

	a.state = StateAwaitingTokenApplyFinal
	return a.sender.SendEncrypted(proto.TokenApply{
		Type:  proto.TypeTokenApply,
		Token: a.token,
	})
}

func (a *Authenticator) handleAwaitingTokenApplyFinal(env *proto.Envelope) error {
	if env.Type != proto.TypeTokenApplyAck {
		a.log.Warnf("auth: expected TokenApplyAck, got %s", proto.TypeName(env.Type))
		return nil
	}

	a.state = StateAuthenticated
	if a.onAuthenticated != nil {
		a.onAuthenticated(a.token)
	}
	return nil
}

func unmarshalEnvelope(env *proto.Envelope, out interface{}) error {
	if err := json.Unmarshal(env.Raw, out); err != nil {
		return fmt.Errorf("auth: decoding %s: %w", proto.TypeName(env.Type), err)
	}
	return nil
}
