package scenes

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/frostdev-ops/dashview-backend-go/internal/core/types"
)

// StateLookup answers whether an entity is currently known to the platform
type StateLookup interface {
	LastKnown(id types.EntityID) *types.EntityState
}

// Generator derives the automatic scene classes from room configuration.
// Generated scenes are never persisted; every config (re)load recomputes
// them from scratch.
type Generator struct {
	states StateLookup
	logger *logrus.Logger
}

// NewGenerator creates a scene generator backed by the given state lookup
func NewGenerator(states StateLookup, logger *logrus.Logger) *Generator {
	return &Generator{states: states, logger: logger}
}

// GenerateRoomLightsOffScene builds the "lights off" scene for one room.
// Rooms without lights yield nil. The entity list mirrors the room's light
// list verbatim, order preserved.
func (g *Generator) GenerateRoomLightsOffScene(roomKey string, room *types.Room) *types.Scene {
	if room == nil || len(room.Lights) == 0 {
		return nil
	}

	entities := make([]types.EntityID, len(room.Lights))
	copy(entities, room.Lights)

	return &types.Scene{
		ID:            fmt.Sprintf("dashview_auto_%s_lights_off", roomKey),
		Name:          "Lichter aus",
		Icon:          "mdi:lightbulb-off",
		Type:          types.SceneTypeRoomLightsOff,
		Entities:      entities,
		RoomKey:       roomKey,
		AutoGenerated: true,
	}
}

// GenerateRoomCoversScene builds the cover scene for one room. Entities the
// platform does not currently know are logged and excluded; a room with no
// valid cover yields nil.
func (g *Generator) GenerateRoomCoversScene(roomKey string, room *types.Room) *types.Scene {
	if room == nil {
		return nil
	}
	covers := g.validCovers(room.Covers)
	if len(covers) == 0 {
		return nil
	}

	return &types.Scene{
		ID:            fmt.Sprintf("dashview_auto_%s_covers", roomKey),
		Name:          "Rollos",
		Icon:          "mdi:window-shutter",
		Type:          types.SceneTypeRoomCovers,
		Entities:      covers,
		RoomKey:       roomKey,
		AutoGenerated: true,
	}
}

// GenerateGlobalCoversScene builds the whole-house cover scene over every
// valid cover in every room, or nil when none exist
func (g *Generator) GenerateGlobalCoversScene(rooms map[string]types.Room) *types.Scene {
	keys := make([]string, 0, len(rooms))
	for key := range rooms {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var covers []types.EntityID
	seen := make(map[types.EntityID]bool)
	for _, key := range keys {
		room := rooms[key]
		for _, id := range g.validCovers(room.Covers) {
			if !seen[id] {
				seen[id] = true
				covers = append(covers, id)
			}
		}
	}
	if len(covers) == 0 {
		return nil
	}

	return &types.Scene{
		ID:            "dashview_auto_global_covers",
		Name:          "Alle Rollos",
		Icon:          "mdi:window-shutter-settings",
		Type:          types.SceneTypeGlobalCovers,
		Entities:      covers,
		AutoGenerated: true,
	}
}

// GenerateAll derives every enabled auto scene class for the configuration,
// rooms in sorted key order for deterministic output
func (g *Generator) GenerateAll(cfg *types.HouseConfig) []types.Scene {
	if cfg == nil {
		return nil
	}

	keys := make([]string, 0, len(cfg.Rooms))
	for key := range cfg.Rooms {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var out []types.Scene
	if cfg.AutoScenes.LightScenesEnabled() {
		for _, key := range keys {
			room := cfg.Rooms[key]
			if scene := g.GenerateRoomLightsOffScene(key, &room); scene != nil {
				out = append(out, *scene)
			}
		}
	}
	if cfg.AutoScenes.CoverScenesEnabled() {
		for _, key := range keys {
			room := cfg.Rooms[key]
			if scene := g.GenerateRoomCoversScene(key, &room); scene != nil {
				out = append(out, *scene)
			}
		}
		if scene := g.GenerateGlobalCoversScene(cfg.Rooms); scene != nil {
			out = append(out, *scene)
		}
	}
	return out
}

func (g *Generator) validCovers(ids []types.EntityID) []types.EntityID {
	var valid []types.EntityID
	for _, id := range ids {
		if id.Domain() != "cover" {
			g.logger.WithField("entity_id", id).Warn("Configured cover is not a cover entity, skipping")
			continue
		}
		if g.states != nil && g.states.LastKnown(id) == nil {
			g.logger.WithField("entity_id", id).Warn("Configured cover unknown to the platform, skipping")
			continue
		}
		valid = append(valid, id)
	}
	return valid
}
