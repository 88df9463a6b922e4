package config

import "errors"

// ErrBridgeNotFound is returned by DiscoverBridgeIP when no bridge
// advertisement is resolved within the discovery window.
var ErrBridgeNotFound = errors.New("config: no bridge found via mdns discovery")
