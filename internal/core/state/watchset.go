package state

import (
	"sync"

	"github.com/frostdev-ops/dashview-backend-go/internal/core/types"
)

// WatchSet holds the entity ids the panel observes. It grows as configuration
// sections load and never shrinks during a session; a config reload re-derives
// a fresh set instead of tracking deltas.
type WatchSet struct {
	mu  sync.RWMutex
	ids map[types.EntityID]bool
}

// NewWatchSet creates an empty watch set
func NewWatchSet() *WatchSet {
	return &WatchSet{ids: make(map[types.EntityID]bool)}
}

// Add inserts an entity id; adding an existing id is a no-op
func (w *WatchSet) Add(id types.EntityID) {
	if id == "" {
		return
	}
	w.mu.Lock()
	w.ids[id] = true
	w.mu.Unlock()
}

// AddRoom inserts every entity id the room configuration references
func (w *WatchSet) AddRoom(room *types.Room) {
	if room == nil {
		return
	}
	for _, id := range room.EntityIDs() {
		w.Add(id)
	}
}

// AddConfig inserts every entity referenced by rooms, floors and scenes
func (w *WatchSet) AddConfig(cfg *types.HouseConfig) {
	if cfg == nil {
		return
	}
	for _, room := range cfg.Rooms {
		r := room
		w.AddRoom(&r)
	}
	for _, floor := range cfg.Floors {
		w.Add(floor.FloorSensor)
	}
	for _, scene := range cfg.Scenes {
		for _, id := range scene.Entities {
			w.Add(id)
		}
	}
}

// Has reports whether the id is watched
func (w *WatchSet) Has(id types.EntityID) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.ids[id]
}

// Len returns the number of watched entities
func (w *WatchSet) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.ids)
}

// IDs returns a snapshot of the watched ids
func (w *WatchSet) IDs() []types.EntityID {
	w.mu.RLock()
	defer w.mu.RUnlock()

	ids := make([]types.EntityID, 0, len(w.ids))
	for id := range w.ids {
		ids = append(ids, id)
	}
	return ids
}
