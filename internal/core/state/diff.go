package state

import (
	"github.com/frostdev-ops/dashview-backend-go/internal/core/types"
)

// ComputeChanged diffs a new full-state snapshot against the last-known cache
// and returns the ids whose state or attributes changed, updating the cache
// with defensive copies as it goes.
//
// Only watched ids are considered, so the cost is bounded by the configured
// entities rather than the whole platform state. A watched id missing from
// the snapshot yields no change signal until it reappears.
func ComputeChanged(newStates map[types.EntityID]*types.EntityState, watch *WatchSet, cache map[types.EntityID]*types.EntityState) []types.EntityID {
	if cache == nil {
		return nil
	}

	var changed []types.EntityID
	for _, id := range watch.IDs() {
		current, ok := newStates[id]
		if !ok || current == nil {
			continue
		}

		last, cached := cache[id]
		if cached && current.EqualTo(last) {
			continue
		}

		cache[id] = current.Clone()
		changed = append(changed, id)
	}

	return changed
}
