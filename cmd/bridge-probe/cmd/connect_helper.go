package cmd

import (
	"context"
	"fmt"

	"github.com/xcomfort/bridgeclient/pkg/bridge"
	"github.com/xcomfort/bridgeclient/pkg/config"
)

// connectFacade loads BRIDGE_* configuration (overridden by the
// --bridge-ip/--auth-key flags), builds a Facade, and blocks in Init
// until the session is fully connected.
func connectFacade(ctx context.Context) (*bridge.Facade, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if bridgeIP != "" {
		cfg.BridgeIP = bridgeIP
	}
	if authKey != "" {
		cfg.AuthKey = authKey
	}
	cfg.LoggerFactory = loggerFactory()

	b, err := bridge.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("building facade: %w", err)
	}

	if err := b.Init(ctx); err != nil {
		return nil, fmt.Errorf("connecting: %w", err)
	}
	return b, nil
}
