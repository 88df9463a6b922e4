package fanout

import (
	"sync"
	"testing"
	"time"

	"github.com/xcomfort/bridgeclient/pkg/proto"
)

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met within timeout")
}

func TestDeviceItemsCoalescedByID(t *testing.T) {
	f := New(nil)
	defer f.Close()

	var mu sync.Mutex
	var received []DeviceStateUpdate
	f.AddDeviceStateListener("D1", func(u DeviceStateUpdate) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, u)
	})

	f.Dispatch(&proto.StateUpdate{
		Item: []proto.StateItem{
			{DeviceID: "D1", Switch: boolPtr(true), DimmValue: intPtr(80)},
			{DeviceID: "D1", Info: []proto.InfoEntry{{Text: "1109", Value: "22.5"}}},
		},
	})

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1
	})

	mu.Lock()
	defer mu.Unlock()
	u := received[0]
	if u.Switch == nil || !*u.Switch {
		t.Fatalf("expected switch=true, got %+v", u)
	}
	if u.DimmValue == nil || *u.DimmValue != 80 {
		t.Fatalf("expected dimmvalue=80, got %+v", u)
	}
	if u.Metadata == nil || u.Metadata.Temperature == nil || *u.Metadata.Temperature != 22.5 {
		t.Fatalf("expected metadata.temperature=22.5, got %+v", u.Metadata)
	}
}

func TestMetadataParserRecognizesFixedCodes(t *testing.T) {
	md := ParseMetadata([]proto.InfoEntry{
		{Text: "1222", Value: "21.0"},
		{Text: "1223", Value: "55.0"},
		{Text: "9999", Value: "1.0"},
	})
	if md == nil {
		t.Fatal("expected non-nil metadata")
	}
	if md.Temperature == nil || *md.Temperature != 21.0 {
		t.Fatalf("expected temperature=21.0, got %+v", md.Temperature)
	}
	if md.Humidity == nil || *md.Humidity != 55.0 {
		t.Fatalf("expected humidity=55.0, got %+v", md.Humidity)
	}
}

func TestMetadataParserIgnoresUnrecognizedCodes(t *testing.T) {
	md := ParseMetadata([]proto.InfoEntry{{Text: "9999", Value: "1.0"}})
	if md != nil {
		t.Fatalf("expected nil metadata for unrecognized codes, got %+v", md)
	}
}

func TestMetadataParserIgnoresNonNumericValues(t *testing.T) {
	md := ParseMetadata([]proto.InfoEntry{{Text: "1222", Value: "not-a-number"}})
	if md != nil {
		t.Fatalf("expected nil metadata for non-numeric value, got %+v", md)
	}
}

func TestRoomItemsAreNotCoalesced(t *testing.T) {
	f := New(nil)
	defer f.Close()

	var mu sync.Mutex
	var received []RoomStateUpdate
	f.AddRoomStateListener("R1", func(u RoomStateUpdate) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, u)
	})

	f.Dispatch(&proto.StateUpdate{
		Item: []proto.StateItem{
			{RoomID: "R1", Switch: boolPtr(true)},
			{RoomID: "R1", LightsOn: intPtr(2)},
		},
	})

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 2
	})
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	f := New(nil)
	defer f.Close()

	var count int
	var mu sync.Mutex
	unsub := f.AddDeviceStateListener("D1", func(u DeviceStateUpdate) {
		mu.Lock()
		defer mu.Unlock()
		count++
	})

	f.Dispatch(&proto.StateUpdate{Item: []proto.StateItem{{DeviceID: "D1", Switch: boolPtr(true)}}})
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count == 1
	})

	unsub()
	unsub() // idempotent

	f.Dispatch(&proto.StateUpdate{Item: []proto.StateItem{{DeviceID: "D1", Switch: boolPtr(false)}}})
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if count != 1 {
		t.Fatalf("expected no further delivery after unsubscribe, got count=%d", count)
	}
}

func TestListenerPanicDoesNotBlockSiblingsOrWorker(t *testing.T) {
	f := New(nil)
	defer f.Close()

	var mu sync.Mutex
	var secondCalled bool

	f.AddDeviceStateListener("D1", func(u DeviceStateUpdate) {
		panic("boom")
	})
	f.AddDeviceStateListener("D1", func(u DeviceStateUpdate) {
		mu.Lock()
		defer mu.Unlock()
		secondCalled = true
	})

	f.Dispatch(&proto.StateUpdate{Item: []proto.StateItem{{DeviceID: "D1", Switch: boolPtr(true)}}})

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return secondCalled
	})

	// Worker must still be alive for subsequent dispatches.
	var thirdCalled bool
	f.AddDeviceStateListener("D2", func(u DeviceStateUpdate) {
		mu.Lock()
		defer mu.Unlock()
		thirdCalled = true
	})
	f.Dispatch(&proto.StateUpdate{Item: []proto.StateItem{{DeviceID: "D2", Switch: boolPtr(true)}}})
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return thirdCalled
	})
}

func TestDispatchIgnoresItemsWithNeitherDeviceNorRoomID(t *testing.T) {
	f := New(nil)
	defer f.Close()
	// Should not panic even though the item matches neither branch.
	f.Dispatch(&proto.StateUpdate{Item: []proto.StateItem{{}}})
}
