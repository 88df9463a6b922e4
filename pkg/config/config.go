// Package config loads a bridge.Config from the environment, grounded
// on the teacher's envVars/envconfig.Process pattern (pkg/configuration
// in the research-pack's dc4eu-vc repo) and the bridge's own
// Config/DefaultConfig option-struct shape.
package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/xcomfort/bridgeclient/pkg/bridge"
)

// envVars mirrors bridge.Config one field at a time so envconfig can
// populate it from BRIDGE_* environment variables; zero/unset fields
// stay zero and are filled with the defaults by bridge.New.
type envVars struct {
	BridgeIP          string        `envconfig:"BRIDGE_IP"`
	AuthKey           string        `envconfig:"BRIDGE_AUTH_KEY"`
	ClientID          string        `envconfig:"BRIDGE_CLIENT_ID"`
	ClientType        string        `envconfig:"BRIDGE_CLIENT_TYPE"`
	ClientVersion     string        `envconfig:"BRIDGE_CLIENT_VERSION"`
	ConnectTimeout    time.Duration `envconfig:"BRIDGE_CONNECT_TIMEOUT"`
	HeartbeatInterval time.Duration `envconfig:"BRIDGE_HEARTBEAT_INTERVAL"`
	ReconnectDelay    time.Duration `envconfig:"BRIDGE_RECONNECT_DELAY"`
	AckTimeout        time.Duration `envconfig:"BRIDGE_ACK_TIMEOUT"`
	AckMaxRetries     int           `envconfig:"BRIDGE_ACK_MAX_RETRIES"`
	AckRetryDelay     time.Duration `envconfig:"BRIDGE_ACK_RETRY_DELAY"`
}

// Load reads BRIDGE_* environment variables into a bridge.Config. Fields
// left unset stay zero; bridge.New replaces them with its defaults.
func Load() (bridge.Config, error) {
	var env envVars
	if err := envconfig.Process("", &env); err != nil {
		return bridge.Config{}, err
	}

	return bridge.Config{
		BridgeIP:          env.BridgeIP,
		AuthKey:           env.AuthKey,
		ClientID:          env.ClientID,
		ClientType:        env.ClientType,
		ClientVersion:     env.ClientVersion,
		ConnectTimeout:    env.ConnectTimeout,
		HeartbeatInterval: env.HeartbeatInterval,
		ReconnectDelay:    env.ReconnectDelay,
		AckTimeout:        env.AckTimeout,
		AckMaxRetries:     env.AckMaxRetries,
		AckRetryDelay:     env.AckRetryDelay,
	}, nil
}
