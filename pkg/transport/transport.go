package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pion/logging"
	pionnet "github.com/pion/transport/v3"
	"github.com/pion/transport/v3/stdnet"

	"github.com/xcomfort/bridgeclient/pkg/wire"
)

// frameTerminator trails every frame on the wire (Spec Section 4.5).
const frameTerminator = wire.FrameTerminator

// Config configures a Transport (Spec Section 4.5, 4.8).
type Config struct {
	// URL is the bridge's ws:// or wss:// endpoint.
	URL string

	// HandshakeTimeout bounds the WebSocket upgrade.
	HandshakeTimeout time.Duration

	// ReconnectDelay is the fixed delay between reconnect attempts
	// (Spec Section 4.8: reconnect-safe, not exponential backoff — mirrors
	// the ack tracker's fixed-delay retry policy).
	ReconnectDelay time.Duration

	// MaxFrameSize bounds outbound frame size; 0 disables the check.
	// Inbound frames are not checked against it.
	MaxFrameSize int

	// LoggerFactory builds the component logger; defaults to
	// logging.NewDefaultLoggerFactory().
	LoggerFactory logging.LoggerFactory
}

// DefaultConfig returns the Spec Section 5 defaults.
func DefaultConfig() Config {
	return Config{
		HandshakeTimeout: 10 * time.Second,
		ReconnectDelay:   5 * time.Second,
	}
}

// Transport owns the single WebSocket connection to the bridge: dialing,
// TCP_NODELAY tuning, framing, and the reconnect loop (Spec Section 4.5,
// 4.8). Grounded on the teacher's pkg/transport/tcp.go connection
// lifecycle shape, adapted from multi-peer TCP listening to a single
// outbound WebSocket client connection.
type Transport struct {
	cfg     Config
	log     logging.LeveledLogger
	handler MessageHandler
	onState StateHandler

	dialer *websocket.Dialer

	mu         sync.Mutex
	conn       *websocket.Conn
	started    bool
	closed     bool
	dropSignal chan struct{}
	connMu     sync.Mutex // serializes writes to / reconnection of conn

	wg     sync.WaitGroup
	stopCh chan struct{}
}

// New creates a Transport. MessageHandler must be set before Connect.
func New(cfg Config, handler MessageHandler) (*Transport, error) {
	if handler == nil {
		return nil, ErrNoHandler
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 5 * time.Second
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 10 * time.Second
	}

	var log logging.LeveledLogger
	if cfg.LoggerFactory != nil {
		log = cfg.LoggerFactory.NewLogger("transport-ws")
	} else {
		log = logging.NewDefaultLoggerFactory().NewLogger("transport-ws")
	}

	n, err := stdnet.NewNet()
	if err != nil {
		return nil, fmt.Errorf("transport: building net abstraction: %w", err)
	}

	t := &Transport{
		cfg:     cfg,
		log:     log,
		handler: handler,
		stopCh:  make(chan struct{}),
	}

	t.dialer = &websocket.Dialer{
		HandshakeTimeout: cfg.HandshakeTimeout,
		NetDialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return t.dialTuned(n, network, addr)
		},
	}

	return t, nil
}

// dialTuned dials the raw TCP connection through the pion net abstraction
// and disables Nagle's algorithm explicitly (Spec Section 4.5:
// TCP_NODELAY), rather than relying on it being Go's default.
func (t *Transport) dialTuned(n pionnet.Net, network, addr string) (net.Conn, error) {
	conn, err := n.Dial(network, addr)
	if err != nil {
		return nil, err
	}
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		if err := tcpConn.SetNoDelay(true); err != nil {
			t.log.Warnf("transport: failed to set TCP_NODELAY: %v", err)
		}
	}
	return conn, nil
}

// OnStateChange registers a callback invoked whenever connectivity
// changes, used by the facade to drive the ack tracker and to reset its
// per-connection session state (Spec Section 4.6, 4.8).
func (t *Transport) OnStateChange(fn StateHandler) {
	t.onState = fn
}

// Connect dials the bridge and starts the read loop. It makes a single
// dial attempt, bounded by ctx, and returns its error if that attempt
// fails; drops after a successful Connect are retried by the reconnect
// loop in the background.
func (t *Transport) Connect(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	if t.started {
		t.mu.Unlock()
		return ErrAlreadyStarted
	}
	t.started = true
	t.mu.Unlock()

	if err := t.dial(ctx); err != nil {
		return err
	}

	t.wg.Add(1)
	go t.reconnectLoop()

	return nil
}

func (t *Transport) dial(ctx context.Context) error {
	conn, _, err := t.dialer.DialContext(ctx, t.cfg.URL, http.Header{})
	if err != nil {
		return fmt.Errorf("transport: dial %s: %w", t.cfg.URL, err)
	}

	dropped := make(chan struct{})

	t.connMu.Lock()
	t.conn = conn
	t.mu.Lock()
	t.dropSignal = dropped
	t.mu.Unlock()
	t.connMu.Unlock()

	t.log.Infof("connected to %s", t.cfg.URL)
	if t.onState != nil {
		t.onState(true)
	}

	t.wg.Add(1)
	go t.readLoop(conn, dropped)

	return nil
}

// reconnectLoop watches for the active connection to drop and redials on
// a fixed delay until it succeeds (Spec Section 4.8: reconnect-safe,
// preserves subscriptions in the layers above since those are never torn
// down here).
func (t *Transport) reconnectLoop() {
	defer t.wg.Done()

	for {
		t.mu.Lock()
		dropped := t.dropSignal
		t.mu.Unlock()
		if dropped == nil {
			return
		}

		select {
		case <-t.stopCh:
			return
		case <-dropped:
		}

		t.mu.Lock()
		closed := t.closed
		t.mu.Unlock()
		if closed {
			return
		}

		t.connMu.Lock()
		t.conn = nil
		t.connMu.Unlock()

		t.log.Warnf("connection lost, reconnecting")
		if t.onState != nil {
			t.onState(false)
		}

		for {
			select {
			case <-time.After(t.cfg.ReconnectDelay):
			case <-t.stopCh:
				return
			}

			ctx, cancel := context.WithTimeout(context.Background(), t.cfg.HandshakeTimeout)
			err := t.dial(ctx)
			cancel()
			if err == nil {
				break
			}
			t.log.Warnf("reconnect attempt failed: %v", err)
		}
	}
}

func (t *Transport) readLoop(conn *websocket.Conn, dropped chan struct{}) {
	defer t.wg.Done()
	defer conn.Close()
	defer close(dropped)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.log.Debugf("read loop exiting: %v", err)
			return
		}

		frame := wire.StripTerminator(data)
		t.handler(&ReceivedMessage{Data: frame})
	}
}

// SendRaw marshals v as JSON and writes it to the socket unencrypted,
// with the trailing frame terminator appended (used for ConnectionConfirm,
// ScInit and SecretExchange — Spec Section 4.5).
func (t *Transport) SendRaw(v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("transport: marshaling frame: %w", err)
	}
	return t.writeFrame(append(payload, frameTerminator))
}

// SendEncrypted encrypts v under ctx and writes the resulting frame (Spec
// Section 4.1, 4.5). Encoding is delegated to wire.Encrypt, which already
// appends the frame terminator.
func (t *Transport) SendEncrypted(v interface{}, ctx *wire.EncryptionContext) error {
	frame, err := wire.Encrypt(v, ctx)
	if err != nil {
		return fmt.Errorf("transport: encrypting frame: %w", err)
	}
	return t.writeFrame([]byte(frame))
}

func (t *Transport) writeFrame(frame []byte) error {
	if t.cfg.MaxFrameSize > 0 && len(frame) > t.cfg.MaxFrameSize {
		return ErrFrameTooLarge
	}

	t.connMu.Lock()
	conn := t.conn
	t.connMu.Unlock()

	if conn == nil {
		return ErrNotConnected
	}

	t.connMu.Lock()
	defer t.connMu.Unlock()
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	return nil
}

// IsConnected reports whether the socket is currently up.
func (t *Transport) IsConnected() bool {
	t.connMu.Lock()
	defer t.connMu.Unlock()
	return t.conn != nil
}

// Close stops the reconnect loop and closes the active connection.
func (t *Transport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	close(t.stopCh)

	t.connMu.Lock()
	if t.conn != nil {
		t.conn.Close()
	}
	t.connMu.Unlock()

	t.wg.Wait()
	return nil
}
