package config

import (
	"context"
	"time"

	"github.com/grandcat/zeroconf"
)

// bridgeServiceType is the bridge's mDNS advertisement, grounded on the
// teacher's pkg/discovery service-type/browse shape
// (pkg/discovery/resolver.go), adapted from Matter's commissionable
// node discovery to a single fixed service name.
const bridgeServiceType = "_xcomfort-bridge._tcp"

// DefaultDiscoveryTimeout bounds DiscoverBridgeIP's mDNS browse.
const DefaultDiscoveryTimeout = 5 * time.Second

// DiscoverBridgeIP browses the local network for the bridge's mDNS
// advertisement and returns the first resolved IPv4 address, formatted
// as "host:port" for direct use as bridge.Config.BridgeIP. This is an
// optional convenience: Load leaves BridgeIP blank when the environment
// variable is unset, and Init still requires BridgeIP to be non-empty
// (ErrConfigMissing), so callers decide whether to fall back to this
// helper or demand explicit configuration.
func DiscoverBridgeIP(ctx context.Context) (string, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return "", err
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultDiscoveryTimeout)
		defer cancel()
	}

	entries := make(chan *zeroconf.ServiceEntry)
	go func() {
		_ = resolver.Browse(ctx, bridgeServiceType, "local.", entries)
	}()

	select {
	case entry, ok := <-entries:
		if !ok || entry == nil {
			return "", ErrBridgeNotFound
		}
		return formatHostPort(entry), nil
	case <-ctx.Done():
		return "", ErrBridgeNotFound
	}
}

func formatHostPort(entry *zeroconf.ServiceEntry) string {
	host := entry.HostName
	if len(entry.AddrIPv4) > 0 {
		host = entry.AddrIPv4[0].String()
	}
	return host + ":" + itoa(entry.Port)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	return string(buf[pos:])
}
