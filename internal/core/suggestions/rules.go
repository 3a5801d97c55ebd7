package suggestions

import (
	"time"

	"github.com/frostdev-ops/dashview-backend-go/internal/core/types"
)

// EvalContext carries the user-enabled entity maps a rule may consult.
// Maps may be nil; a nil map enables nothing.
type EvalContext struct {
	EnabledLights  map[types.EntityID]bool
	EnabledClimate map[types.EntityID]bool
	EnabledWindows map[types.EntityID]bool
	EnabledMedia   map[types.EntityID]bool
}

// Rule is one suggestion predicate. Fires must be pure given the snapshot,
// the context and the clock.
type Rule struct {
	ID    string
	Icon  string
	Title string
	Level string
	Fires func(states map[types.EntityID]*types.EntityState, ctx EvalContext, now time.Time) bool
}

// lateHour reports whether the wall clock falls in the 22:00-06:00 window
func lateHour(now time.Time) bool {
	h := now.Hour()
	return h >= 22 || h < 6
}

func stateOf(states map[types.EntityID]*types.EntityState, id types.EntityID) string {
	if st, ok := states[id]; ok && st != nil {
		return st.State
	}
	return ""
}

// climateActive treats anything that is not off or unreachable as running
func climateActive(state string) bool {
	switch state {
	case "", "off", "unavailable", "unknown":
		return false
	}
	return true
}

// defaultRules is the closed, ordered rule set. Evaluation order and result
// order follow this declaration order.
var defaultRules = []Rule{
	{
		ID:    "lights-left-on",
		Icon:  "mdi:lightbulb-alert",
		Title: "Mehrere Lichter sind noch an",
		Level: types.SuggestionLevelInfo,
		Fires: func(states map[types.EntityID]*types.EntityState, ctx EvalContext, now time.Time) bool {
			if !lateHour(now) {
				return false
			}
			on := 0
			for id, enabled := range ctx.EnabledLights {
				if enabled && stateOf(states, id) == "on" {
					on++
					if on >= 2 {
						return true
					}
				}
			}
			return false
		},
	},
	{
		ID:    "ac-windows-conflict",
		Icon:  "mdi:air-conditioner",
		Title: "Klimaanlage läuft bei offenem Fenster",
		Level: types.SuggestionLevelWarning,
		Fires: func(states map[types.EntityID]*types.EntityState, ctx EvalContext, _ time.Time) bool {
			running := false
			for id, enabled := range ctx.EnabledClimate {
				if enabled && climateActive(stateOf(states, id)) {
					running = true
					break
				}
			}
			if !running {
				return false
			}
			for id, enabled := range ctx.EnabledWindows {
				if enabled && stateOf(states, id) == "on" {
					return true
				}
			}
			return false
		},
	},
	{
		ID:    "media-idle-overnight",
		Icon:  "mdi:television-play",
		Title: "Medienwiedergabe läuft noch",
		Level: types.SuggestionLevelInfo,
		Fires: func(states map[types.EntityID]*types.EntityState, ctx EvalContext, now time.Time) bool {
			if !lateHour(now) {
				return false
			}
			for id, enabled := range ctx.EnabledMedia {
				if enabled && stateOf(states, id) == "playing" {
					return true
				}
			}
			return false
		},
	},
}
