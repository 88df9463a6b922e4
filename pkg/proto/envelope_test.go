package proto

import "testing"

func TestDecodeEnvelopeWithMcAndRef(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"type":310,"mc":100}`))
	if err != nil {
		t.Fatalf("DecodeEnvelope: %v", err)
	}
	if env.Type != TypeStateUpdate || !env.HasMc || env.Mc != 100 {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if env.HasRef {
		t.Fatal("did not expect ref to be present")
	}
}

func TestDecodeEnvelopeWithoutMc(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"type":2}`))
	if err != nil {
		t.Fatalf("DecodeEnvelope: %v", err)
	}
	if env.HasMc {
		t.Fatal("did not expect mc to be present")
	}
}

func TestDecodeEnvelopeAck(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"type":1,"ref":7}`))
	if err != nil {
		t.Fatalf("DecodeEnvelope: %v", err)
	}
	if env.Type != TypeACK || !env.HasRef || env.Ref != 7 {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestDecodeEnvelopeInvalidJSON(t *testing.T) {
	if _, err := DecodeEnvelope([]byte(`not json`)); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestTypeNameKnownAndUnknown(t *testing.T) {
	if TypeName(TypeStateUpdate) != "StateUpdate" {
		t.Fatalf("got %s", TypeName(TypeStateUpdate))
	}
	if TypeName(999) != "Unknown" {
		t.Fatalf("got %s", TypeName(999))
	}
}
