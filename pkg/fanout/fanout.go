// Package fanout implements StateFanout (Spec Section 4.9): per-entity
// observer lists fed by STATE_UPDATE payloads, with device-item
// coalescing, a fixed-text-code metadata parser, and deferred
// non-reentrant dispatch. Grounded on the teacher's
// pkg/discovery.Advertiser listener-map shape (sync.RWMutex-guarded map
// keyed by identity, logging.LeveledLogger field).
package fanout

import (
	"strconv"
	"sync"

	"github.com/pion/logging"

	"github.com/xcomfort/bridgeclient/pkg/proto"
)

// Metadata holds the sensor readings the text-code parser recognizes
// (Spec Section 4.9).
type Metadata struct {
	Temperature *float64
	Humidity    *float64
}

// DeviceStateUpdate is the coalesced per-device update dispatched to
// device listeners (Spec Section 4.9).
type DeviceStateUpdate struct {
	DeviceID  string
	Switch    *bool
	DimmValue *int
	Power     *float64
	CurState  *int
	Metadata  *Metadata
}

// RoomStateUpdate is the full aggregate update dispatched to room
// listeners (Spec Section 3, 4.9). Room items are never coalesced.
type RoomStateUpdate struct {
	RoomID       string
	Switch       *bool
	Dim          *int
	LightsOn     *int
	LoadsOn      *int
	WindowsOpen  *int
	DoorsOpen    *int
	Presence     *int
	ShadesClosed *int
	Power        *float64
	Error        *bool
}

// DeviceListener receives coalesced device updates.
type DeviceListener func(DeviceStateUpdate)

// RoomListener receives room updates.
type RoomListener func(RoomStateUpdate)

// Unsubscribe removes a previously registered listener. Calling it more
// than once is a no-op (Open Question d: additive, does not change
// existing delivery semantics).
type Unsubscribe func()

type subscription[T any] struct {
	id uint64
	fn T
}

// StateFanout dispatches STATE_UPDATE payloads to per-entity listeners
// on a deferred, single-worker (non-reentrant) execution step, so no
// observer callback ever runs concurrently with another and none run
// synchronously from the router's frame handler (Spec Section 4.7, 4.9).
type StateFanout struct {
	log logging.LeveledLogger

	mu              sync.Mutex
	deviceListeners map[string][]subscription[DeviceListener]
	roomListeners   map[string][]subscription[RoomListener]
	nextID          uint64

	dispatchCh chan func()
	stopCh     chan struct{}
	wg         sync.WaitGroup
}

// New creates a StateFanout and starts its single deferred-dispatch
// worker goroutine.
func New(loggerFactory logging.LoggerFactory) *StateFanout {
	var log logging.LeveledLogger
	if loggerFactory != nil {
		log = loggerFactory.NewLogger("fanout")
	} else {
		log = logging.NewDefaultLoggerFactory().NewLogger("fanout")
	}

	f := &StateFanout{
		log:             log,
		deviceListeners: make(map[string][]subscription[DeviceListener]),
		roomListeners:   make(map[string][]subscription[RoomListener]),
		dispatchCh:      make(chan func(), 64),
		stopCh:          make(chan struct{}),
	}

	f.wg.Add(1)
	go f.worker()

	return f
}

// worker runs every deferred dispatch task serially, guaranteeing
// non-reentrant delivery: no two callbacks, even for different entities,
// ever run concurrently with one another.
func (f *StateFanout) worker() {
	defer f.wg.Done()
	for {
		select {
		case task := <-f.dispatchCh:
			task()
		case <-f.stopCh:
			return
		}
	}
}

// safeCall invokes fn and recovers any panic, so one misbehaving listener
// never blocks delivery to its siblings or kills the dispatch worker
// (Spec Section 4.9: callback errors are caught, logged, never propagated).
func (f *StateFanout) safeCall(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			f.log.Errorf("fanout: recovered panic in listener callback: %v", r)
		}
	}()
	fn()
}

// Close stops the dispatch worker. Pending tasks already queued are
// dropped.
func (f *StateFanout) Close() {
	close(f.stopCh)
	f.wg.Wait()
}

// AddDeviceStateListener registers fn for updates to deviceID, returning
// a handle to unsubscribe it (Open Question d).
func (f *StateFanout) AddDeviceStateListener(deviceID string, fn DeviceListener) Unsubscribe {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.deviceListeners[deviceID] = append(f.deviceListeners[deviceID], subscription[DeviceListener]{id: id, fn: fn})
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			subs := f.deviceListeners[deviceID]
			for i, s := range subs {
				if s.id == id {
					f.deviceListeners[deviceID] = append(subs[:i], subs[i+1:]...)
					return
				}
			}
		})
	}
}

// AddRoomStateListener registers fn for updates to roomID, returning a
// handle to unsubscribe it.
func (f *StateFanout) AddRoomStateListener(roomID string, fn RoomListener) Unsubscribe {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.roomListeners[roomID] = append(f.roomListeners[roomID], subscription[RoomListener]{id: id, fn: fn})
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			subs := f.roomListeners[roomID]
			for i, s := range subs {
				if s.id == id {
					f.roomListeners[roomID] = append(subs[:i], subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Dispatch coalesces a STATE_UPDATE's device items by device id per Spec
// Section 4.9 and queues deferred callbacks: one per coalesced device,
// then one per room item (room items are not coalesced).
func (f *StateFanout) Dispatch(update *proto.StateUpdate) {
	merged := make(map[string]*DeviceStateUpdate)
	order := make([]string, 0, len(update.Item))

	var rooms []RoomStateUpdate

	for _, item := range update.Item {
		switch {
		case item.DeviceID != "":
			du, ok := merged[item.DeviceID]
			if !ok {
				du = &DeviceStateUpdate{DeviceID: item.DeviceID}
				merged[item.DeviceID] = du
				order = append(order, item.DeviceID)
			}
			mergeDeviceItem(du, item)
		case item.RoomID != "":
			rooms = append(rooms, RoomStateUpdate{
				RoomID:       item.RoomID,
				Switch:       item.Switch,
				Dim:          item.DimmValue,
				LightsOn:     item.LightsOn,
				LoadsOn:      item.LoadsOn,
				WindowsOpen:  item.WindowsOpen,
				DoorsOpen:    item.DoorsOpen,
				Presence:     item.Presence,
				ShadesClosed: item.ShadesClosed,
				Power:        item.Power,
				Error:        item.Error,
			})
		}
	}

	for _, id := range order {
		du := *merged[id]
		f.queueDeviceDispatch(du)
	}
	for _, ru := range rooms {
		f.queueRoomDispatch(ru)
	}
}

// mergeDeviceItem applies one raw item's fields onto the in-progress
// merged update for its device id (Spec Section 4.9 coalescing rules).
func mergeDeviceItem(du *DeviceStateUpdate, item proto.StateItem) {
	if item.HasDeviceFields() {
		du.Switch = item.Switch
		du.DimmValue = item.DimmValue
		du.Power = item.Power
		du.CurState = item.CurState
		return
	}
	if item.Info != nil {
		if md := ParseMetadata(item.Info); md != nil {
			du.Metadata = md
		}
	}
}

// ParseMetadata converts recognized {text, value} entries into Metadata
// (Spec Section 4.9 metadata parser). Unrecognized text codes are
// silently ignored. Returns nil if no recognized code yielded a value.
func ParseMetadata(entries []proto.InfoEntry) *Metadata {
	var md Metadata
	var found bool

	for _, e := range entries {
		v, err := strconv.ParseFloat(e.Value, 64)
		if err != nil {
			continue
		}
		switch e.Text {
		case "1222":
			md.Temperature = floatPtr(v)
			found = true
		case "1223":
			md.Humidity = floatPtr(v)
			found = true
		case "1109":
			md.Temperature = floatPtr(v)
			found = true
		}
	}

	if !found {
		return nil
	}
	return &md
}

func floatPtr(v float64) *float64 { return &v }

func (f *StateFanout) queueDeviceDispatch(du DeviceStateUpdate) {
	f.mu.Lock()
	subs := append([]subscription[DeviceListener]{}, f.deviceListeners[du.DeviceID]...)
	f.mu.Unlock()
	if len(subs) == 0 {
		return
	}

	select {
	case f.dispatchCh <- func() {
		for _, s := range subs {
			s := s
			f.safeCall(func() { s.fn(du) })
		}
	}:
	case <-f.stopCh:
	}
}

func (f *StateFanout) queueRoomDispatch(ru RoomStateUpdate) {
	f.mu.Lock()
	subs := append([]subscription[RoomListener]{}, f.roomListeners[ru.RoomID]...)
	f.mu.Unlock()
	if len(subs) == 0 {
		return
	}

	select {
	case f.dispatchCh <- func() {
		for _, s := range subs {
			s := s
			f.safeCall(func() { s.fn(ru) })
		}
	}:
	case <-f.stopCh:
	}
}
