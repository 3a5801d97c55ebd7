package scenes

import (
	"github.com/frostdev-ops/dashview-backend-go/internal/core/types"
)

// RoomScenes filters the full scene list down to what a room's popup shows:
// auto scenes bound to the room by key, plus manual scenes sharing at least
// one entity with the room's lights, covers or media players. An empty
// result is a legitimate answer, not an error.
func RoomScenes(roomKey string, room *types.Room, all []types.Scene) []types.Scene {
	result := []types.Scene{}
	if room == nil {
		return result
	}

	roomEntities := make(map[types.EntityID]bool, len(room.Lights)+len(room.Covers)+len(room.MediaPlayers))
	for _, id := range room.Lights {
		roomEntities[id] = true
	}
	for _, id := range room.Covers {
		roomEntities[id] = true
	}
	for _, mp := range room.MediaPlayers {
		roomEntities[mp.Entity] = true
	}

	for _, scene := range all {
		if scene.AutoGenerated {
			if scene.RoomKey == roomKey {
				result = append(result, scene)
			}
			continue
		}
		for _, id := range scene.Entities {
			if roomEntities[id] {
				result = append(result, scene)
				break
			}
		}
	}
	return result
}
