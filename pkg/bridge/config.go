package bridge

import (
	"time"

	"github.com/pion/logging"
)

// Config configures a Facade (Spec Section 5 defaults, Section 6
// configuration inputs). Mirrors the teacher's controller.Options /
// DefaultOptions() pattern (examples/controller/controller.go).
type Config struct {
	// BridgeIP is the bridge's network address, e.g. "192.168.1.50".
	// Combined with the fixed port-80 plaintext WebSocket endpoint
	// (Spec Section 6).
	BridgeIP string

	// AuthKey is the pre-shared secret used to derive the login password
	// hash (Spec Section 4.3).
	AuthKey string

	// ClientID/ClientType/ClientVersion identify this client during the
	// handshake (Spec Section 4.4, ConnectionConfirm).
	ClientID      string
	ClientType    string
	ClientVersion string

	// ConnectTimeout bounds Init(): the handshake plus initial discovery
	// must complete within this window.
	ConnectTimeout time.Duration

	// HeartbeatInterval is the period of the periodic Heartbeat sent once
	// Authenticated (Spec Section 4.4, 5).
	HeartbeatInterval time.Duration

	// ReconnectDelay is the fixed delay between reconnect attempts after
	// a previously-connected session drops (Spec Section 4.5).
	ReconnectDelay time.Duration

	// AckTimeout/AckMaxRetries/AckRetryDelay configure the AckTracker
	// (Spec Section 4.6).
	AckTimeout    time.Duration
	AckMaxRetries int
	AckRetryDelay time.Duration

	// LoggerFactory builds per-component loggers; defaults to
	// logging.NewDefaultLoggerFactory() when nil.
	LoggerFactory logging.LoggerFactory
}

// DefaultConfig returns the Spec Section 5 timeout/retry defaults
// (Connect 30s, Heartbeat 30s, Reconnect 5s, Ack wait 5s, 3 retries,
// 500ms retry delay) plus a fixed client identity trio.
func DefaultConfig() Config {
	return Config{
		ClientID:          "bridgeclient",
		ClientType:        "app",
		ClientVersion:     "1.0.0",
		ConnectTimeout:    30 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		ReconnectDelay:    5 * time.Second,
		AckTimeout:        5 * time.Second,
		AckMaxRetries:     3,
		AckRetryDelay:     500 * time.Millisecond,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ClientID == "" {
		c.ClientID = d.ClientID
	}
	if c.ClientType == "" {
		c.ClientType = d.ClientType
	}
	if c.ClientVersion == "" {
		c.ClientVersion = d.ClientVersion
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = d.ConnectTimeout
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = d.HeartbeatInterval
	}
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = d.ReconnectDelay
	}
	if c.AckTimeout <= 0 {
		c.AckTimeout = d.AckTimeout
	}
	if c.AckMaxRetries <= 0 {
		c.AckMaxRetries = d.AckMaxRetries
	}
	if c.AckRetryDelay <= 0 {
		c.AckRetryDelay = d.AckRetryDelay
	}
	return c
}
