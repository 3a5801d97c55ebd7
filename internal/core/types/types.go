package types

import (
	"reflect"
	"strings"
	"time"
)

// EntityID identifies a Home Assistant entity ("domain.object_id")
type EntityID string

// Domain returns the part before the first dot, or "" for malformed ids
func (id EntityID) Domain() string {
	if i := strings.IndexByte(string(id), '.'); i > 0 {
		return string(id)[:i]
	}
	return ""
}

// EntityState mirrors the platform's state object for a single entity.
// The authoritative copy is the platform's; this is a cache entry that is
// replaced wholesale on change.
type EntityState struct {
	EntityID    EntityID               `json:"entity_id"`
	State       string                 `json:"state"`
	Attributes  map[string]interface{} `json:"attributes"`
	LastChanged time.Time              `json:"last_changed"`
}

// Clone returns a defensive copy with its own attributes map
func (s *EntityState) Clone() *EntityState {
	if s == nil {
		return nil
	}
	cp := *s
	if s.Attributes != nil {
		cp.Attributes = make(map[string]interface{}, len(s.Attributes))
		for k, v := range s.Attributes {
			cp.Attributes[k] = v
		}
	}
	return &cp
}

// EqualTo reports whether state string and attributes match
func (s *EntityState) EqualTo(other *EntityState) bool {
	if s == nil || other == nil {
		return s == other
	}
	if s.State != other.State {
		return false
	}
	return reflect.DeepEqual(s.Attributes, other.Attributes)
}

// HeaderEntityType is the closed tag set for room header entities
type HeaderEntityType string

const (
	HeaderTypeMotion     HeaderEntityType = "motion"
	HeaderTypeWindow     HeaderEntityType = "window"
	HeaderTypeSmoke      HeaderEntityType = "smoke"
	HeaderTypeVibration  HeaderEntityType = "vibration"
	HeaderTypeMusic      HeaderEntityType = "music"
	HeaderTypeTV         HeaderEntityType = "tv"
	HeaderTypeDishwasher HeaderEntityType = "dishwasher"
	HeaderTypeWashing    HeaderEntityType = "washing"
	HeaderTypeDryer      HeaderEntityType = "dryer"
	HeaderTypeFreezer    HeaderEntityType = "freezer"
	HeaderTypeMower      HeaderEntityType = "mower"
	HeaderTypeUnknown    HeaderEntityType = "unknown"
)

var knownHeaderTypes = map[HeaderEntityType]bool{
	HeaderTypeMotion:     true,
	HeaderTypeWindow:     true,
	HeaderTypeSmoke:      true,
	HeaderTypeVibration:  true,
	HeaderTypeMusic:      true,
	HeaderTypeTV:         true,
	HeaderTypeDishwasher: true,
	HeaderTypeWashing:    true,
	HeaderTypeDryer:      true,
	HeaderTypeFreezer:    true,
	HeaderTypeMower:      true,
}

// NormalizeHeaderType maps unrecognized tags to HeaderTypeUnknown.
// Unknown tags render as "unknown" but never fail config loading.
func NormalizeHeaderType(t HeaderEntityType) HeaderEntityType {
	if knownHeaderTypes[t] {
		return t
	}
	return HeaderTypeUnknown
}

// HeaderEntity is a typed sensor shown in a room's header row
type HeaderEntity struct {
	Entity     EntityID         `json:"entity"`
	EntityType HeaderEntityType `json:"entity_type"`
}

// MediaPlayerRef binds a media player entity to its display name
type MediaPlayerRef struct {
	Entity   EntityID `json:"entity"`
	RoomName string   `json:"room_name"`
}

// Room is a configured room and its entity assignments
type Room struct {
	FriendlyName   string           `json:"friendly_name"`
	Icon           string           `json:"icon"`
	Floor          string           `json:"floor"`
	CombinedSensor EntityID         `json:"combined_sensor,omitempty"`
	Lights         []EntityID       `json:"lights,omitempty"`
	Covers         []EntityID       `json:"covers,omitempty"`
	Climate        []EntityID       `json:"climate,omitempty"`
	MediaPlayers   []MediaPlayerRef `json:"media_players,omitempty"`
	HeaderEntities []HeaderEntity   `json:"header_entities,omitempty"`
}

// EntityIDs returns every entity the room references, lights first,
// preserving configured order within each section
func (r *Room) EntityIDs() []EntityID {
	ids := make([]EntityID, 0, len(r.Lights)+len(r.Covers)+len(r.Climate)+len(r.MediaPlayers)+len(r.HeaderEntities)+1)
	ids = append(ids, r.Lights...)
	ids = append(ids, r.Covers...)
	ids = append(ids, r.Climate...)
	for _, mp := range r.MediaPlayers {
		ids = append(ids, mp.Entity)
	}
	for _, he := range r.HeaderEntities {
		ids = append(ids, he.Entity)
	}
	if r.CombinedSensor != "" {
		ids = append(ids, r.CombinedSensor)
	}
	return ids
}

// Floor groups rooms on a building level
type Floor struct {
	FriendlyName string   `json:"friendly_name"`
	Icon         string   `json:"icon"`
	FloorSensor  EntityID `json:"floor_sensor,omitempty"`
}

// SceneType distinguishes manual scenes from the generated classes
type SceneType string

const (
	SceneTypeManual        SceneType = "manual"
	SceneTypeRoomLightsOff SceneType = "auto_room_lights_off"
	SceneTypeRoomCovers    SceneType = "auto_room_covers"
	SceneTypeGlobalCovers  SceneType = "auto_global_covers"
)

// Scene is a named entity group the panel can activate
type Scene struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Icon          string     `json:"icon"`
	Type          SceneType  `json:"type"`
	Entities      []EntityID `json:"entities"`
	RoomKey       string     `json:"room_key,omitempty"`
	AutoGenerated bool       `json:"auto_generated"`
}

// HouseConfig is the root panel configuration, loaded wholesale;
// last loaded wins, no partial merge
type HouseConfig struct {
	Floors          map[string]Floor       `json:"floors"`
	Rooms           map[string]Room        `json:"rooms"`
	Scenes          []Scene                `json:"scenes"`
	LinkedCalendars []string               `json:"linked_calendars,omitempty"`
	MediaPresets    []MediaPreset          `json:"media_presets,omitempty"`
	AutoScenes      AutoSceneToggles       `json:"auto_scenes"`
	Extra           map[string]interface{} `json:"-"`
}

// MediaPreset is a saved media target (station, playlist) for quick play
type MediaPreset struct {
	Name        string `json:"name"`
	ContentID   string `json:"content_id"`
	ContentType string `json:"content_type"`
}

// AutoSceneToggles controls generated-scene classes independently.
// Pointers distinguish "unset" (defaults to enabled) from explicit false.
type AutoSceneToggles struct {
	LightsEnabled       *bool `json:"enabled,omitempty"`
	GlobalCoversEnabled *bool `json:"global_covers_enabled,omitempty"`
}

// LightScenesEnabled defaults to true when unset
func (t AutoSceneToggles) LightScenesEnabled() bool {
	return t.LightsEnabled == nil || *t.LightsEnabled
}

// CoverScenesEnabled defaults to true when unset
func (t AutoSceneToggles) CoverScenesEnabled() bool {
	return t.GlobalCoversEnabled == nil || *t.GlobalCoversEnabled
}

// Suggestion is an ephemeral rule-evaluation result
type Suggestion struct {
	ID    string `json:"id"`
	Icon  string `json:"icon"`
	Title string `json:"title"`
	Level string `json:"level"`
}

// Suggestion levels
const (
	SuggestionLevelInfo    = "info"
	SuggestionLevelWarning = "warning"
)

// ConsistencyReport lists detectable (never fatal) config inconsistencies
type ConsistencyReport struct {
	OrphanedRooms []string `json:"orphaned_rooms"`
	UnusedFloors  []string `json:"unused_floors"`
}

// CheckConsistency detects rooms referencing missing floors and floors with
// no referencing room
func (c *HouseConfig) CheckConsistency() ConsistencyReport {
	report := ConsistencyReport{
		OrphanedRooms: []string{},
		UnusedFloors:  []string{},
	}

	referenced := make(map[string]bool, len(c.Floors))
	for roomKey, room := range c.Rooms {
		if _, ok := c.Floors[room.Floor]; !ok {
			report.OrphanedRooms = append(report.OrphanedRooms, roomKey)
			continue
		}
		referenced[room.Floor] = true
	}

	for floorKey := range c.Floors {
		if !referenced[floorKey] {
			report.UnusedFloors = append(report.UnusedFloors, floorKey)
		}
	}

	return report
}
