package bridge

import (
	"context"
	"errors"
	"testing"
)

func newTestFacade(t *testing.T) *Facade {
	t.Helper()
	b, err := New(Config{
		BridgeIP: "127.0.0.1:0",
		AuthKey:  "auth-key",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

func TestInitRejectsMissingConfig(t *testing.T) {
	b, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := b.Init(context.Background()); !errors.Is(err, ErrConfigMissing) {
		t.Fatalf("expected ErrConfigMissing, got %v", err)
	}
}

func TestSwitchDeviceRejectsEmptyID(t *testing.T) {
	b := newTestFacade(t)
	if err := b.SwitchDevice(context.Background(), "", true); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestSwitchDeviceFailsWithoutConnection(t *testing.T) {
	b := newTestFacade(t)
	if err := b.SwitchDevice(context.Background(), "dev-1", true); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestSetDimmerValueRejectsEmptyIDAndNaN(t *testing.T) {
	b := newTestFacade(t)
	if err := b.SetDimmerValue(context.Background(), "", 50); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for empty id, got %v", err)
	}
	nan := mathNaN()
	if err := b.SetDimmerValue(context.Background(), "dev-1", nan); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for NaN, got %v", err)
	}
}

func TestClampDim(t *testing.T) {
	cases := []struct {
		in   float64
		want int
	}{
		{in: -5, want: 1},
		{in: 0, want: 1},
		{in: 1, want: 1},
		{in: 50.4, want: 50},
		{in: 50.6, want: 51},
		{in: 99, want: 99},
		{in: 150, want: 99},
	}
	for _, c := range cases {
		if got := clampDim(c.in); got != c.want {
			t.Errorf("clampDim(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestControlRoomValidation(t *testing.T) {
	b := newTestFacade(t)

	if err := b.ControlRoom(context.Background(), "", "switch", true); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for empty room id, got %v", err)
	}
	if err := b.ControlRoom(context.Background(), "room-1", "switch", "on"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for non-bool switch value, got %v", err)
	}
	if err := b.ControlRoom(context.Background(), "room-1", "dimm", "bright"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for non-numeric dimm value, got %v", err)
	}
	if err := b.ControlRoom(context.Background(), "room-1", "flicker", nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for unknown action, got %v", err)
	}
	if err := b.ControlRoom(context.Background(), "room-1", "switch", true); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected for a valid-but-unsent switch command, got %v", err)
	}
	if err := b.ControlRoom(context.Background(), "room-1", "dimm", 42); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected for a valid-but-unsent dimm command, got %v", err)
	}
}

func TestActivateSceneRejectsNegativeID(t *testing.T) {
	b := newTestFacade(t)
	if err := b.ActivateScene(context.Background(), -1); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if err := b.ActivateScene(context.Background(), 0); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected for a valid-but-unsent scene id, got %v", err)
	}
}

func TestIsConnectedFalseBeforeInit(t *testing.T) {
	b := newTestFacade(t)
	if b.IsConnected() {
		t.Fatal("expected IsConnected to be false before Init")
	}
}

func TestToFloat(t *testing.T) {
	cases := []struct {
		in   interface{}
		want float64
		ok   bool
	}{
		{in: float64(1.5), want: 1.5, ok: true},
		{in: float32(2.5), want: 2.5, ok: true},
		{in: int(3), want: 3, ok: true},
		{in: int32(4), want: 4, ok: true},
		{in: int64(5), want: 5, ok: true},
		{in: "nope", want: 0, ok: false},
		{in: true, want: 0, ok: false},
	}
	for _, c := range cases {
		got, ok := toFloat(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("toFloat(%v) = (%v, %v), want (%v, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestMapAckError(t *testing.T) {
	if mapAckError(nil) != nil {
		t.Fatal("expected nil passthrough")
	}
}

func mathNaN() float64 {
	var zero float64
	return zero / zero
}
