package testserver

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/xcomfort/bridgeclient/pkg/proto"
	"github.com/xcomfort/bridgeclient/pkg/wire"
)

// Session is the server side of one bridge connection: JSON framing
// with the protocol's 0x04 terminator, mirroring pkg/transport's own
// writeFrame/readLoop so a script can speak the exact wire format the
// client expects.
type Session struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func newSession(conn *websocket.Conn) *Session {
	return &Session{conn: conn}
}

// Send marshals v and writes it unencrypted with the trailing frame
// terminator, for handshake-flow messages.
func (s *Session) Send(v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.writeFrame(append(payload, wire.FrameTerminator))
}

// SendEncrypted encrypts v under ctx (appending the terminator itself,
// matching wire.Encrypt) and writes the resulting frame.
func (s *Session) SendEncrypted(v interface{}, ctx *wire.EncryptionContext) error {
	frame, err := wire.Encrypt(v, ctx)
	if err != nil {
		return err
	}
	return s.writeFrame([]byte(frame))
}

func (s *Session) writeFrame(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, frame)
}

// Recv reads one frame and strips the trailing terminator.
func (s *Session) Recv() ([]byte, error) {
	_, data, err := s.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return wire.StripTerminator(data), nil
}

// RecvEnvelope reads one frame and decodes its common header, for
// unencrypted handshake-flow messages.
func (s *Session) RecvEnvelope() (*proto.Envelope, error) {
	data, err := s.Recv()
	if err != nil {
		return nil, err
	}
	return proto.DecodeEnvelope(data)
}

// RecvDecryptedEnvelope reads one frame, decrypts it under ctx, and
// decodes its common header.
func (s *Session) RecvDecryptedEnvelope(ctx *wire.EncryptionContext) (*proto.Envelope, error) {
	data, err := s.Recv()
	if err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if err := wire.Decrypt(string(data), ctx, &raw); err != nil {
		return nil, err
	}
	return proto.DecodeEnvelope(raw)
}

// Ack replies to an inbound mc with the mandatory {type: ACK, ref: mc}
// acknowledgement, encrypted (every post-handshake frame is).
func (s *Session) Ack(ctx *wire.EncryptionContext, mc int) error {
	return s.SendEncrypted(proto.NewAck(mc), ctx)
}
