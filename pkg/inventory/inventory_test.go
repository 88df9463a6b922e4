package inventory

import (
	"testing"
	"time"

	"github.com/xcomfort/bridgeclient/pkg/proto"
)

func TestApplyMergesByPrimaryKey(t *testing.T) {
	inv := New()

	if err := inv.Apply(&proto.DiscoveryPayload{
		Devices: []proto.Device{
			{DeviceID: "D1", Name: "Lamp", DevType: 101, Dimmable: true},
		},
		Rooms: []proto.Room{
			{RoomID: "R1", Name: "Living Room", DeviceIDs: []string{"D1"}},
		},
		Scenes: []proto.Scene{
			{SceneID: 1, Name: "Evening", Devices: []proto.SceneDeviceValue{{DeviceID: "D1", Value: 80}}},
		},
	}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	devices := inv.Devices()
	if len(devices) != 1 || devices[0].Name != "Lamp" {
		t.Fatalf("unexpected devices: %+v", devices)
	}
	rooms := inv.Rooms()
	if len(rooms) != 1 || rooms[0].Name != "Living Room" {
		t.Fatalf("unexpected rooms: %+v", rooms)
	}
	scenes := inv.Scenes()
	if len(scenes) != 1 || scenes[0].Devices["D1"] != 80 {
		t.Fatalf("unexpected scenes: %+v", scenes)
	}
}

func TestApplyReplacesWholesaleOnReReceipt(t *testing.T) {
	inv := New()

	if err := inv.Apply(&proto.DiscoveryPayload{
		Devices: []proto.Device{{DeviceID: "D1", Name: "Lamp", Dimmable: false}},
	}); err != nil {
		t.Fatalf("first Apply: %v", err)
	}
	if err := inv.Apply(&proto.DiscoveryPayload{
		Devices: []proto.Device{{DeviceID: "D1", Name: "Lamp (renamed)", Dimmable: true}},
	}); err != nil {
		t.Fatalf("second Apply: %v", err)
	}

	d, ok := inv.Device("D1")
	if !ok {
		t.Fatal("expected D1 to be present")
	}
	if d.Name != "Lamp (renamed)" || !d.Dimmable {
		t.Fatalf("expected wholesale replace, got %+v", d)
	}
}

func TestLastItemSignalsDiscoveryComplete(t *testing.T) {
	inv := New()

	select {
	case <-inv.Done():
		t.Fatal("Done() should not be closed before lastItem")
	default:
	}
	if inv.DiscoveryComplete() {
		t.Fatal("expected DiscoveryComplete()==false before lastItem")
	}

	if err := inv.Apply(&proto.DiscoveryPayload{
		Devices:  []proto.Device{{DeviceID: "D1", Name: "Lamp"}},
		LastItem: true,
	}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	select {
	case <-inv.Done():
	case <-time.After(time.Second):
		t.Fatal("expected Done() to close after lastItem=true")
	}
	if !inv.DiscoveryComplete() {
		t.Fatal("expected DiscoveryComplete()==true after lastItem")
	}
}

func TestApplyMultipleLastItemDoesNotPanic(t *testing.T) {
	inv := New()
	for i := 0; i < 2; i++ {
		if err := inv.Apply(&proto.DiscoveryPayload{LastItem: true}); err != nil {
			t.Fatalf("Apply #%d: %v", i, err)
		}
	}
}

func TestDeviceRoomSceneLookupMiss(t *testing.T) {
	inv := New()
	if _, ok := inv.Device("nope"); ok {
		t.Fatal("expected miss for unknown device")
	}
	if _, ok := inv.Room("nope"); ok {
		t.Fatal("expected miss for unknown room")
	}
	scenes := inv.Scenes()
	if len(scenes) != 0 {
		t.Fatalf("expected no scenes, got %+v", scenes)
	}
}
