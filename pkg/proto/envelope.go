package proto

import (
	"encoding/json"
	"fmt"
)

// Envelope is the decoded header common to every bridge message: its
// type, and the optional mc/ref correlation fields (Spec Section 3, 6).
// Raw holds the full decoded JSON so handlers can re-unmarshal into a
// type-specific payload without the router re-reading the wire frame.
type Envelope struct {
	Type  int
	Mc    int
	HasMc bool
	Ref   int
	HasRef bool
	Raw   json.RawMessage
}

type envelopeHeader struct {
	Type int  `json:"type"`
	Mc   *int `json:"mc,omitempty"`
	Ref  *int `json:"ref,omitempty"`
}

// DecodeEnvelope parses the common header of a decrypted or plaintext
// bridge message.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var h envelopeHeader
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("proto: decode envelope: %w", err)
	}

	env := &Envelope{Type: h.Type, Raw: data}
	if h.Mc != nil {
		env.Mc = *h.Mc
		env.HasMc = true
	}
	if h.Ref != nil {
		env.Ref = *h.Ref
		env.HasRef = true
	}
	return env, nil
}

// Ack is the {type: ACK, ref: mc} acknowledgement sent for any inbound
// message carrying an mc field (Spec Section 3, 4.6).
type Ack struct {
	Type int `json:"type"`
	Ref  int `json:"ref"`
}

// NewAck builds the mandatory acknowledgement for an inbound message
// counter.
func NewAck(ref int) Ack {
	return Ack{Type: TypeACK, Ref: ref}
}

// Nack mirrors Ack but additionally carries the bridge's failure info.
type Nack struct {
	Type int             `json:"type"`
	Ref  int             `json:"ref"`
	Info json.RawMessage `json:"info,omitempty"`
}
