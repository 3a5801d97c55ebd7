package popup

import (
	"context"
	"sync"
	"time"

	"github.com/frostdev-ops/dashview-backend-go/internal/core/types"
	"github.com/frostdev-ops/dashview-backend-go/pkg/utils"
)

// StateLookup reads the last-known state for an entity
type StateLookup interface {
	LastKnown(id types.EntityID) *types.EntityState
}

// FragmentSink receives widget render fragments for delivery to a client
type FragmentSink interface {
	SendFragment(popupID, widget string, payload interface{})
}

// Fragment is one widget's render payload. LastChangedLabels carries the
// "vor 5m" style label per entity for the card's footer line.
type Fragment struct {
	RoomKey           string               `json:"room_key"`
	Entities          []*types.EntityState `json:"entities"`
	LastChangedLabels map[string]string    `json:"last_changed_labels,omitempty"`
}

func newFragment(roomKey string, entities []*types.EntityState) Fragment {
	f := Fragment{RoomKey: roomKey, Entities: entities}
	if len(entities) == 0 {
		return f
	}
	now := time.Now()
	f.LastChangedLabels = make(map[string]string, len(entities))
	for _, st := range entities {
		f.LastChangedLabels[string(st.EntityID)] = utils.TimeDifferenceShort(st.LastChanged, now)
	}
	return f
}

// entityWidget is the shared behavior of the domain-scoped card widgets:
// it claims the popup entities of its domain, renders the full card on
// initialize and single-entity fragments on update.
type entityWidget struct {
	name   string
	domain string
	states StateLookup
	sink   FragmentSink

	mu       sync.Mutex
	popupID  string
	roomKey  string
	entities map[types.EntityID]bool
}

func (w *entityWidget) Name() string { return w.name }

func (w *entityWidget) Initialize(_ context.Context, popupID, roomKey string, entities []types.EntityID) error {
	w.mu.Lock()
	w.popupID = popupID
	w.roomKey = roomKey
	w.entities = make(map[types.EntityID]bool)

	var owned []*types.EntityState
	for _, id := range entities {
		if id.Domain() != w.domain {
			continue
		}
		w.entities[id] = true
		if st := w.states.LastKnown(id); st != nil {
			owned = append(owned, st)
		}
	}
	w.mu.Unlock()

	w.sink.SendFragment(popupID, w.name, newFragment(roomKey, owned))
	return nil
}

func (w *entityWidget) Handles(id types.EntityID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.entities[id]
}

func (w *entityWidget) Update(id types.EntityID) {
	w.mu.Lock()
	popupID, roomKey := w.popupID, w.roomKey
	owned := w.entities[id]
	w.mu.Unlock()
	if !owned {
		return
	}

	st := w.states.LastKnown(id)
	if st == nil {
		return
	}
	w.sink.SendFragment(popupID, w.name, newFragment(roomKey, []*types.EntityState{st}))
}

func (w *entityWidget) Dispose() {
	w.mu.Lock()
	w.popupID = ""
	w.roomKey = ""
	w.entities = nil
	w.mu.Unlock()
}

// NewLightsWidget renders a room's light controls
func NewLightsWidget(states StateLookup, sink FragmentSink) Widget {
	return &entityWidget{name: "lights", domain: "light", states: states, sink: sink}
}

// NewCoversWidget renders a room's cover controls
func NewCoversWidget(states StateLookup, sink FragmentSink) Widget {
	return &entityWidget{name: "covers", domain: "cover", states: states, sink: sink}
}

// NewMediaWidget renders a room's media players
func NewMediaWidget(states StateLookup, sink FragmentSink) Widget {
	return &entityWidget{name: "media", domain: "media_player", states: states, sink: sink}
}

// NewSecurityWidget renders a room's window, smoke and vibration sensors
func NewSecurityWidget(states StateLookup, sink FragmentSink) Widget {
	return &entityWidget{name: "security", domain: "binary_sensor", states: states, sink: sink}
}

// NewWeatherWidget renders the weather card
func NewWeatherWidget(states StateLookup, sink FragmentSink) Widget {
	return &entityWidget{name: "weather", domain: "weather", states: states, sink: sink}
}

// DefaultWidgetFactory builds the standard widget set for room popups
func DefaultWidgetFactory(states StateLookup, sink FragmentSink) WidgetFactory {
	return func(Content) []Widget {
		return []Widget{
			NewLightsWidget(states, sink),
			NewCoversWidget(states, sink),
			NewMediaWidget(states, sink),
			NewSecurityWidget(states, sink),
			NewWeatherWidget(states, sink),
		}
	}
}

// ConfigResolver resolves popup ids against the loaded house configuration:
// a popup id is a room key, and its content is the room's entity list.
type ConfigResolver struct {
	mu    sync.RWMutex
	rooms map[string]types.Room
}

// NewConfigResolver creates a resolver over the given rooms
func NewConfigResolver(rooms map[string]types.Room) *ConfigResolver {
	return &ConfigResolver{rooms: rooms}
}

// Reload swaps in a freshly loaded room map
func (r *ConfigResolver) Reload(rooms map[string]types.Room) {
	r.mu.Lock()
	r.rooms = rooms
	r.mu.Unlock()
}

// Resolve maps a room key to its popup content
func (r *ConfigResolver) Resolve(popupID string) (Content, bool) {
	r.mu.RLock()
	room, ok := r.rooms[popupID]
	r.mu.RUnlock()
	if !ok {
		return Content{}, false
	}
	return Content{RoomKey: popupID, Entities: room.EntityIDs()}, true
}
