package proto

// ConnectionStart is sent by the bridge to open the handshake (type 10).
type ConnectionStart struct {
	Type         int    `json:"type"`
	DeviceID     string `json:"deviceId"`
	ConnectionID string `json:"connectionId"`
}

// ConnectionConfirm replies to ConnectionStart (type 11).
type ConnectionConfirm struct {
	Type           int    `json:"type"`
	ClientType     string `json:"clientType"`
	ClientID       string `json:"clientId"`
	ClientVersion  string `json:"clientVersion"`
	ConnectionID   string `json:"connectionId"`
}

// ScInit is both the ScInitRequest (14, both directions) and, read-only,
// the ScInitResponse (12) — the bridge's response carries no fields this
// client needs beyond the type tag that drives the state transition.
type ScInit struct {
	Type int `json:"type"`
}

// PublicKeyResponse carries the bridge's PEM-encoded RSA public key
// (type 15).
type PublicKeyResponse struct {
	Type      int    `json:"type"`
	PublicKey string `json:"publicKey"`
}

// SecretExchange carries the RSA-wrapped AES key+IV (type 16, out).
type SecretExchange struct {
	Type   int    `json:"type"`
	Secret string `json:"secret"`
}

// LoginRequest is the encrypted login payload (type 30, out).
type LoginRequest struct {
	Type     int    `json:"type"`
	Username string `json:"username"`
	Password string `json:"password"`
	Salt     string `json:"salt"`
}

// LoginResponse carries the bridge-issued token after a successful login
// (type 32, in).
type LoginResponse struct {
	Type  int    `json:"type"`
	Token string `json:"token"`
}

// TokenApply applies a token to the session (type 33, out).
type TokenApply struct {
	Type  int    `json:"type"`
	Token string `json:"token"`
}

// TokenRenew requests a fresh token (type 37, out).
type TokenRenew struct {
	Type  int    `json:"type"`
	Token string `json:"token"`
}

// TokenRenewResponse carries the renewed token (type 38, in).
type TokenRenewResponse struct {
	Type     int    `json:"type"`
	NewToken string `json:"token"`
}

// DefaultUsername is the fixed login username the protocol requires
// (Spec Section 6).
const DefaultUsername = "default"
