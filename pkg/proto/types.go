// Package proto defines the xComfort bridge wire message types and JSON
// payload shapes shared by the transport, router, authenticator,
// inventory and fanout layers (Spec Section 6).
package proto

// Message type codes (Spec Section 6).
const (
	TypeNACK               = 0
	TypeACK                = 1
	TypeHeartbeat           = 2
	TypePing               = 3
	TypeConnectionStart    = 10
	TypeConnectionConfirm  = 11
	TypeScInitResponse     = 12
	TypeConnectionDeclined = 13
	TypeScInitRequest      = 14
	TypePublicKeyResponse  = 15
	TypeSecretExchange     = 16
	TypeSecretExchangeAck  = 17
	TypeLoginRequest       = 30
	TypeLoginResponse      = 32
	TypeTokenApply         = 33
	TypeTokenApplyAck      = 34
	TypeTokenRenew         = 37
	TypeTokenRenewResponse = 38
	TypeRequestDevices     = 240
	TypeRequestRooms       = 242
	TypeDeviceDim          = 280
	TypeDeviceSwitch       = 281
	TypeRoomDim            = 283
	TypeRoomSwitch         = 284
	TypeActivateScene      = 285
	TypeErrorInfo          = 295
	TypeSetAllData         = 300
	TypeSetHomeData        = 303
	TypeLogData            = 304
	TypeStateUpdate        = 310
	TypeSetBridgeState     = 364
	TypeLogEntries         = 408
)

// authFlowTypes are the message types belonging to the handshake/token
// renewal sequence (Spec Section 4.4, 4.7 routing table).
var authFlowTypes = map[int]bool{
	TypeConnectionStart:    true,
	TypeConnectionConfirm:  true,
	TypeScInitResponse:     true,
	TypeConnectionDeclined: true,
	TypeScInitRequest:      true,
	TypePublicKeyResponse:  true,
	TypeSecretExchange:     true,
	TypeSecretExchangeAck:  true,
	TypeLoginRequest:       true,
	TypeLoginResponse:      true,
	TypeTokenApply:         true,
	TypeTokenApplyAck:      true,
	TypeTokenRenew:         true,
	TypeTokenRenewResponse: true,
}

// IsAuthFlowType reports whether t belongs to the handshake/token-renewal
// sequence routed to the Authenticator.
func IsAuthFlowType(t int) bool {
	return authFlowTypes[t]
}

// TypeName returns a human-readable name for a message type, used in log
// lines for unhandled/unknown types (Spec Section 4.7).
func TypeName(t int) string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "Unknown"
}

var typeNames = map[int]string{
	TypeNACK:               "NACK",
	TypeACK:                "ACK",
	TypeHeartbeat:           "Heartbeat",
	TypePing:               "Ping",
	TypeConnectionStart:    "ConnectionStart",
	TypeConnectionConfirm:  "ConnectionConfirm",
	TypeScInitResponse:     "ScInitResponse",
	TypeConnectionDeclined: "ConnectionDeclined",
	TypeScInitRequest:      "ScInitRequest",
	TypePublicKeyResponse:  "PublicKeyResponse",
	TypeSecretExchange:     "SecretExchange",
	TypeSecretExchangeAck:  "SecretExchangeAck",
	TypeLoginRequest:       "LoginRequest",
	TypeLoginResponse:      "LoginResponse",
	TypeTokenApply:         "TokenApply",
	TypeTokenApplyAck:      "TokenApplyAck",
	TypeTokenRenew:         "TokenRenew",
	TypeTokenRenewResponse: "TokenRenewResponse",
	TypeRequestDevices:     "RequestDevices",
	TypeRequestRooms:       "RequestRooms",
	TypeDeviceDim:          "DeviceDim",
	TypeDeviceSwitch:       "DeviceSwitch",
	TypeRoomDim:            "RoomDim",
	TypeRoomSwitch:         "RoomSwitch",
	TypeActivateScene:      "ActivateScene",
	TypeErrorInfo:          "ErrorInfo",
	TypeSetAllData:         "SetAllData",
	TypeSetHomeData:        "SetHomeData",
	TypeLogData:            "LogData",
	TypeStateUpdate:        "StateUpdate",
	TypeSetBridgeState:     "SetBridgeState",
	TypeLogEntries:         "LogEntries",
}
