// Package inventory maintains the device/room/scene maps discovered from
// the bridge's SET_ALL_DATA / SET_HOME_DATA payloads (Spec Section 4.8),
// grounded on the teacher's pkg/datamodel.BasicNode map-by-id,
// replace-wholesale-on-update shape.
package inventory

import (
	"sync"

	"github.com/xcomfort/bridgeclient/pkg/proto"
)

// Inventory holds the bridge's device/room/scene maps, merged wholesale
// by primary key on every discovery payload, with a one-shot signal for
// the first `lastItem=true` marker (Spec Section 4.8, 3.6).
type Inventory struct {
	mu sync.RWMutex

	devices map[string]Device
	rooms   map[string]Room
	scenes  map[int]Scene

	discoveryDone bool
	doneCh        chan struct{}
	doneOnce      sync.Once
}

// Device is the in-memory snapshot of a discovered device.
type Device struct {
	DeviceID string
	Name     string
	DevType  int
	Dimmable bool
	Info     []proto.InfoEntry
}

// Room is the in-memory snapshot of a discovered room.
type Room struct {
	RoomID    string
	Name      string
	DeviceIDs []string
}

// Scene is the in-memory snapshot of a discovered scene.
type Scene struct {
	SceneID int
	Name    string
	Devices map[string]int
}

// New creates an empty Inventory.
func New() *Inventory {
	return &Inventory{
		devices: make(map[string]Device),
		rooms:   make(map[string]Room),
		scenes:  make(map[int]Scene),
		doneCh:  make(chan struct{}),
	}
}

// Apply merges a discovery payload's arrays into the maps by primary key,
// replacing wholesale on re-receipt (Spec Section 4.8). When the payload
// carries lastItem=true, discovery is marked complete and the Done()
// channel is closed exactly once.
func (inv *Inventory) Apply(p *proto.DiscoveryPayload) error {
	inv.mu.Lock()
	for _, d := range p.Devices {
		inv.devices[d.DeviceID] = Device{
			DeviceID: d.DeviceID,
			Name:     d.Name,
			DevType:  d.DevType,
			Dimmable: d.Dimmable,
			Info:     d.Info,
		}
	}
	for _, r := range p.Rooms {
		inv.rooms[r.RoomID] = Room{
			RoomID:    r.RoomID,
			Name:      r.Name,
			DeviceIDs: r.DeviceIDs,
		}
	}
	for _, s := range p.Scenes {
		devices := make(map[string]int, len(s.Devices))
		for _, dv := range s.Devices {
			devices[dv.DeviceID] = dv.Value
		}
		inv.scenes[s.SceneID] = Scene{
			SceneID: s.SceneID,
			Name:    s.Name,
			Devices: devices,
		}
	}
	if p.LastItem {
		inv.discoveryDone = true
	}
	inv.mu.Unlock()

	if p.LastItem {
		inv.doneOnce.Do(func() { close(inv.doneCh) })
	}
	return nil
}

// Done returns a channel that closes the first time a discovery payload
// carries lastItem=true — the signal that unblocks connect() (Spec
// Section 3.6, 4.8).
func (inv *Inventory) Done() <-chan struct{} {
	return inv.doneCh
}

// DiscoveryComplete reports whether the initial discovery has finished.
func (inv *Inventory) DiscoveryComplete() bool {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.discoveryDone
}

// Devices returns a snapshot of all known devices.
func (inv *Inventory) Devices() []Device {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	out := make([]Device, 0, len(inv.devices))
	for _, d := range inv.devices {
		out = append(out, d)
	}
	return out
}

// Device looks up a single device by id.
func (inv *Inventory) Device(id string) (Device, bool) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	d, ok := inv.devices[id]
	return d, ok
}

// Rooms returns a snapshot of all known rooms.
func (inv *Inventory) Rooms() []Room {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	out := make([]Room, 0, len(inv.rooms))
	for _, r := range inv.rooms {
		out = append(out, r)
	}
	return out
}

// Room looks up a single room by id.
func (inv *Inventory) Room(id string) (Room, bool) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	r, ok := inv.rooms[id]
	return r, ok
}

// Scenes returns a snapshot of all known scenes.
func (inv *Inventory) Scenes() []Scene {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	out := make([]Scene, 0, len(inv.scenes))
	for _, s := range inv.scenes {
		out = append(out, s)
	}
	return out
}
