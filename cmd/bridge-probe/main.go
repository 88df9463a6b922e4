// bridge-probe is a command-line smoke-test client for the bridge
// protocol: connect, list inventory, and issue one-shot commands
// against a real bridge.
//
// Usage:
//
//	bridge-probe connect
//	bridge-probe devices
//	bridge-probe rooms
//	bridge-probe scenes
//	bridge-probe switch <deviceID> <on|off>
//	bridge-probe dim <deviceID> <value>
//	bridge-probe activate-scene <sceneID>
//
// BridgeIP and AuthKey are read from BRIDGE_IP/BRIDGE_AUTH_KEY (see
// pkg/config) or overridden with --bridge-ip/--auth-key.
package main

import "github.com/xcomfort/bridgeclient/cmd/bridge-probe/cmd"

func main() {
	cmd.Execute()
}
