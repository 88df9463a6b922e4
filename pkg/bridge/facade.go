// Package bridge implements the BridgeFacade public contract (Spec
// Section 4.10): the single entry point that owns the transport,
// authenticator, ack tracker, router, inventory and fanout, and the
// shared outbound message counter (mc). Grounded on the teacher's
// examples/controller/controller.go Options/DefaultOptions/New/Start(ctx)
// shape.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pion/logging"

	"github.com/xcomfort/bridgeclient/pkg/ack"
	"github.com/xcomfort/bridgeclient/pkg/auth"
	"github.com/xcomfort/bridgeclient/pkg/fanout"
	"github.com/xcomfort/bridgeclient/pkg/inventory"
	"github.com/xcomfort/bridgeclient/pkg/proto"
	"github.com/xcomfort/bridgeclient/pkg/router"
	"github.com/xcomfort/bridgeclient/pkg/transport"
	"github.com/xcomfort/bridgeclient/pkg/wire"
)

// Facade is the public bridge client. It is an actor in spirit (Spec
// Section 9 "Coroutine shape"): the socket, the EncryptionContext, mc,
// and the per-connection Authenticator are all guarded by mu and only
// ever mutated from the transport's callbacks or from Facade methods
// that take the lock for the duration of the mutation.
type Facade struct {
	cfg       Config
	log       logging.LeveledLogger
	sessionID uuid.UUID

	transport  *transport.Transport
	ackTracker *ack.Tracker
	inventory  *inventory.Inventory
	fanout     *fanout.StateFanout
	router     *router.Router

	mu            sync.Mutex
	authn         *auth.Authenticator
	authErrCh     chan error
	encCtx        *wire.EncryptionContext
	mc            int
	connected     bool
	authenticated bool
	heartbeatStop chan struct{}

	heartbeatWg sync.WaitGroup
}

// New builds a Facade wired per Spec Section 2's data-flow diagram:
// Transport -> Router -> {Authenticator | AckTracker | Inventory |
// StateFanout}, with the Facade itself satisfying auth.Sender and
// router.Sender so no SendEncrypted adapter type is needed.
func New(cfg Config) (*Facade, error) {
	cfg = cfg.withDefaults()

	var log logging.LeveledLogger
	if cfg.LoggerFactory != nil {
		log = cfg.LoggerFactory.NewLogger("bridge")
	} else {
		log = logging.NewDefaultLoggerFactory().NewLogger("bridge")
	}

	b := &Facade{
		cfg:       cfg,
		log:       log,
		sessionID: uuid.New(),
		inventory: inventory.New(),
		fanout:    fanout.New(cfg.LoggerFactory),
		ackTracker: ack.New(ack.Params{
			Timeout:     cfg.AckTimeout,
			MaxAttempts: cfg.AckMaxRetries,
			RetryDelay:  cfg.AckRetryDelay,
		}),
	}

	r := router.New(router.Config{
		Sender:        b,
		Authenticator: b,
		AckTracker:    b.ackTracker,
		Inventory:     b.inventory,
		Fanout:        b.fanout,
		LoggerFactory: cfg.LoggerFactory,
	})
	b.router = r

	tr, err := transport.New(transport.Config{
		URL:              fmt.Sprintf("ws://%s", cfg.BridgeIP),
		HandshakeTimeout: cfg.ConnectTimeout,
		ReconnectDelay:   cfg.ReconnectDelay,
		LoggerFactory:    cfg.LoggerFactory,
	}, b.onFrame)
	if err != nil {
		return nil, fmt.Errorf("bridge: building transport: %w", err)
	}
	tr.OnStateChange(b.onTransportStateChange)
	b.transport = tr

	return b, nil
}

// Init establishes the session: it dials the transport, drives the
// handshake via a fresh Authenticator, and blocks until the initial
// inventory discovery completes (the "fully connected" signal of Spec
// Section 3) or the connect window (default 30s) elapses.
func (b *Facade) Init(ctx context.Context) error {
	if b.cfg.BridgeIP == "" || b.cfg.AuthKey == "" {
		return ErrConfigMissing
	}

	connectCtx, cancel := context.WithTimeout(ctx, b.cfg.ConnectTimeout)
	defer cancel()

	if err := b.transport.Connect(connectCtx); err != nil {
		return fmt.Errorf("%w: %v", ErrConnectTimeout, err)
	}

	b.mu.Lock()
	doneCh := b.inventory.Done()
	errCh := b.authErrCh
	b.mu.Unlock()

	select {
	case <-doneCh:
		return nil
	case err := <-errCh:
		b.transport.Close()
		return mapAuthError(err)
	case <-connectCtx.Done():
		b.transport.Close()
		return ErrConnectTimeout
	}
}

// Cleanup tears down heartbeats, aborts pending ack waiters, and closes
// the socket (Spec Section 5 "Cancellation"). Subsequent mutating
// operations fail with ErrNotConnected.
func (b *Facade) Cleanup() error {
	b.mu.Lock()
	b.connected = false
	b.authenticated = false
	stop := b.heartbeatStop
	b.heartbeatStop = nil
	b.mu.Unlock()

	if stop != nil {
		close(stop)
		b.heartbeatWg.Wait()
	}

	b.ackTracker.Clear()
	err := b.transport.Close()
	b.router.Wait()
	return err
}

// IsConnected reports whether the facade considers itself fully
// connected: authenticated, transport-up, AND initial inventory discovery
// complete (Spec Section 3 invariant).
func (b *Facade) IsConnected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connected && b.authenticated && b.inventory.DiscoveryComplete()
}

// Devices/Rooms/Scenes return inventory snapshots (Spec Section 4.10).
func (b *Facade) Devices() []inventory.Device { return b.inventory.Devices() }
func (b *Facade) Rooms() []inventory.Room     { return b.inventory.Rooms() }
func (b *Facade) Scenes() []inventory.Scene   { return b.inventory.Scenes() }

// AddDeviceStateListener registers a device listener, returning an
// unsubscribe handle (Open Question d).
func (b *Facade) AddDeviceStateListener(deviceID string, fn fanout.DeviceListener) fanout.Unsubscribe {
	return b.fanout.AddDeviceStateListener(deviceID, fn)
}

// AddRoomStateListener registers a room listener, returning an
// unsubscribe handle.
func (b *Facade) AddRoomStateListener(roomID string, fn fanout.RoomListener) fanout.Unsubscribe {
	return b.fanout.AddRoomStateListener(roomID, fn)
}

// SwitchDevice sends DEVICE_SWITCH, rejecting an empty device id (Spec
// Section 4.10, 8).
func (b *Facade) SwitchDevice(ctx context.Context, deviceID string, on bool) error {
	if deviceID == "" {
		return ErrInvalidArgument
	}
	return b.sendTracked(ctx, func(mc int) interface{} {
		return proto.DeviceSwitchCommand{Type: proto.TypeDeviceSwitch, Mc: mc, DeviceID: deviceID, Switch: on}
	})
}

// SetDimmerValue sends DEVICE_DIM, rejecting NaN and clamping v into
// [1, 99] (Spec Section 4.10, 8).
func (b *Facade) SetDimmerValue(ctx context.Context, deviceID string, v float64) error {
	if deviceID == "" {
		return ErrInvalidArgument
	}
	if math.IsNaN(v) {
		return ErrInvalidArgument
	}
	dim := clampDim(v)
	return b.sendTracked(ctx, func(mc int) interface{} {
		return proto.DeviceDimCommand{Type: proto.TypeDeviceDim, Mc: mc, DeviceID: deviceID, DimmValue: dim}
	})
}

// ControlRoom sends ROOM_SWITCH or ROOM_DIM depending on action. "switch"
// requires a bool value; "dimm" requires a numeric value, clamped into
// [1, 99] and rejecting non-numeric input (Open Question c). Any other
// action, or a value of the wrong kind, fails with ErrInvalidArgument.
func (b *Facade) ControlRoom(ctx context.Context, roomID, action string, value interface{}) error {
	if roomID == "" {
		return ErrInvalidArgument
	}

	switch action {
	case "switch":
		on, ok := value.(bool)
		if !ok {
			return ErrInvalidArgument
		}
		return b.sendTracked(ctx, func(mc int) interface{} {
			return proto.RoomSwitchCommand{Type: proto.TypeRoomSwitch, Mc: mc, RoomID: roomID, Switch: on}
		})
	case "dimm":
		num, ok := toFloat(value)
		if !ok || math.IsNaN(num) {
			return ErrInvalidArgument
		}
		dim := clampDim(num)
		return b.sendTracked(ctx, func(mc int) interface{} {
			return proto.RoomDimCommand{Type: proto.TypeRoomDim, Mc: mc, RoomID: roomID, DimmValue: dim}
		})
	default:
		return ErrInvalidArgument
	}
}

// ActivateScene sends ACTIVATE_SCENE, rejecting negative scene ids (Spec
// Section 4.10, 8).
func (b *Facade) ActivateScene(ctx context.Context, sceneID int) error {
	if sceneID < 0 {
		return ErrInvalidArgument
	}
	return b.sendTracked(ctx, func(mc int) interface{} {
		return proto.ActivateSceneCommand{Type: proto.TypeActivateScene, Mc: mc, SceneID: sceneID}
	})
}

// RefreshAllDeviceInfo re-issues RequestDevices, RequestRooms and a
// Heartbeat to solicit fresh state (Spec Section 4.10).
func (b *Facade) RefreshAllDeviceInfo(ctx context.Context) error {
	if err := b.requestDevices(ctx); err != nil {
		return err
	}
	if err := b.requestRooms(ctx); err != nil {
		return err
	}
	return b.sendHeartbeat(ctx)
}

func (b *Facade) requestDevices(ctx context.Context) error {
	return b.sendTracked(ctx, func(mc int) interface{} {
		return proto.Simple{Type: proto.TypeRequestDevices, Mc: mc}
	})
}

func (b *Facade) requestRooms(ctx context.Context) error {
	return b.sendTracked(ctx, func(mc int) interface{} {
		return proto.Simple{Type: proto.TypeRequestRooms, Mc: mc}
	})
}

func (b *Facade) sendHeartbeat(ctx context.Context) error {
	return b.sendTracked(ctx, func(mc int) interface{} {
		return proto.Simple{Type: proto.TypeHeartbeat, Mc: mc}
	})
}

// sendTracked draws the next mc, builds the payload once (so retries
// resend byte-identical frames), and drives it through the AckTracker
// (Spec Section 4.6).
func (b *Facade) sendTracked(ctx context.Context, build func(mc int) interface{}) error {
	mc := b.nextMc()
	msg := build(mc)
	err := b.ackTracker.SendWithRetry(ctx, mc, true, func() error {
		return b.SendEncrypted(msg)
	})
	return mapAckError(err)
}

func (b *Facade) nextMc() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mc++
	return b.mc
}

// SendRaw satisfies auth.Sender: handshake frames up through
// SecretExchange are always sent unencrypted.
func (b *Facade) SendRaw(v interface{}) error {
	return b.transport.SendRaw(v)
}

// SendEncrypted satisfies both auth.Sender and router.Sender, closing
// over whichever EncryptionContext the current session established.
// This is the single adapter that resolves the two-argument
// transport.SendEncrypted against the one-argument Sender interfaces
// both packages require.
func (b *Facade) SendEncrypted(v interface{}) error {
	b.mu.Lock()
	ctx := b.encCtx
	b.mu.Unlock()
	if ctx == nil {
		return ErrNotConnected
	}
	return b.transport.SendEncrypted(v, ctx)
}

// HandleMessage satisfies router.Authenticator by delegating to whichever
// per-connection Authenticator is current, and forwards any terminal
// error (ConnectionDeclined) to Init's waiter.
func (b *Facade) HandleMessage(env *proto.Envelope) error {
	b.mu.Lock()
	authn := b.authn
	errCh := b.authErrCh
	b.mu.Unlock()

	if authn == nil {
		return nil
	}

	err := authn.HandleMessage(env)
	if err != nil && errCh != nil {
		select {
		case errCh <- err:
		default:
		}
	}
	return err
}

// onFrame is the transport's MessageHandler: it decrypts (once an
// EncryptionContext exists) before handing the plaintext envelope to the
// router, which re-decodes it exactly once (Spec Section 4.1, 4.7).
func (b *Facade) onFrame(msg *transport.ReceivedMessage) {
	b.mu.Lock()
	ctx := b.encCtx
	b.mu.Unlock()

	data := msg.Data
	if ctx != nil {
		var raw json.RawMessage
		if err := wire.Decrypt(string(data), ctx, &raw); err != nil {
			b.log.Errorf("%v: %v", ErrCodecError, err)
			return
		}
		data = []byte(raw)
	}
	b.router.HandleFrame(data)
}

// onTransportStateChange rebuilds the per-connection Authenticator on
// every (re)connect: mc resets, pending ack waiters are aborted, and a
// fresh EncryptionContext will be generated by the new Authenticator run
// (Spec Section 4.5 "Each reconnect resets mc, clears pending ACK
// waiters, creates a fresh EncryptionContext").
func (b *Facade) onTransportStateChange(connected bool) {
	b.ackTracker.SetConnected(connected)

	if !connected {
		b.mu.Lock()
		b.connected = false
		b.authenticated = false
		b.encCtx = nil
		b.authn = nil
		b.mu.Unlock()
		return
	}

	authCfg := auth.DefaultConfig()
	authCfg.AuthKey = b.cfg.AuthKey
	authCfg.ClientID = b.cfg.ClientID
	authCfg.ClientType = b.cfg.ClientType
	authCfg.ClientVersion = b.cfg.ClientVersion

	var authLog logging.LeveledLogger
	if b.cfg.LoggerFactory != nil {
		authLog = b.cfg.LoggerFactory.NewLogger("bridge-auth")
	} else {
		authLog = logging.NewDefaultLoggerFactory().NewLogger("bridge-auth")
	}

	authn := auth.New(authCfg, b, authLog)
	authn.OnEncryptionReady(func(c *wire.EncryptionContext) {
		b.mu.Lock()
		b.encCtx = c
		b.mu.Unlock()
	})
	authn.OnAuthenticated(func(string) {
		go b.onSessionAuthenticated()
	})

	b.mu.Lock()
	b.mc = 0
	b.connected = true
	b.authenticated = false
	b.authn = authn
	b.authErrCh = make(chan error, 1)
	b.mu.Unlock()
}

// onSessionAuthenticated fires the mandatory post-handshake requests
// (Spec Section 4.4) and starts the periodic heartbeat.
func (b *Facade) onSessionAuthenticated() {
	b.mu.Lock()
	b.authenticated = true
	b.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), b.cfg.AckTimeout*time.Duration(b.cfg.AckMaxRetries))
	defer cancel()

	if err := b.requestDevices(ctx); err != nil {
		b.log.Warnf("bridge: requesting devices: %v", err)
	}
	if err := b.requestRooms(ctx); err != nil {
		b.log.Warnf("bridge: requesting rooms: %v", err)
	}
	if err := b.sendHeartbeat(ctx); err != nil {
		b.log.Warnf("bridge: initial heartbeat: %v", err)
	}

	b.startHeartbeatLoop()
}

func (b *Facade) startHeartbeatLoop() {
	b.mu.Lock()
	if b.heartbeatStop != nil {
		b.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	b.heartbeatStop = stop
	b.mu.Unlock()

	b.heartbeatWg.Add(1)
	go func() {
		defer b.heartbeatWg.Done()
		ticker := time.NewTicker(b.cfg.HeartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), b.cfg.AckTimeout*time.Duration(b.cfg.AckMaxRetries))
				if err := b.sendHeartbeat(ctx); err != nil {
					b.log.Debugf("bridge: heartbeat: %v", err)
				}
				cancel()
			case <-stop:
				return
			}
		}
	}()
}

func mapAckError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ack.ErrNotConnected):
		return ErrNotConnected
	case errors.Is(err, ack.ErrClosed):
		return ErrNotConnected
	case errors.Is(err, ack.ErrTimeout), errors.Is(err, ack.ErrNacked):
		return ErrAckTimeout
	default:
		return err
	}
}

func mapAuthError(err error) error {
	if errors.Is(err, auth.ErrConnectionDeclined) {
		return ErrConnectionDeclined
	}
	return fmt.Errorf("%w: %v", ErrAuthFailed, err)
}

func clampDim(v float64) int {
	v = math.Round(v)
	if v < 1 {
		return 1
	}
	if v > 99 {
		return 99
	}
	return int(v)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
