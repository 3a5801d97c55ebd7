package suggestions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/frostdev-ops/dashview-backend-go/internal/core/types"
)

type memKV struct {
	data    map[string]string
	failGet bool
	failSet bool
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string]string)}
}

func (m *memKV) Get(_ context.Context, key string) (string, error) {
	if m.failGet {
		return "", errors.New("storage unavailable")
	}
	return m.data[key], nil
}

func (m *memKV) Set(_ context.Context, key, value string) error {
	if m.failSet {
		return errors.New("storage unavailable")
	}
	m.data[key] = value
	return nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func newTestEngine(kv KVStore, now time.Time) *Engine {
	store := NewCooldownStore(kv, testLogger())
	store.now = func() time.Time { return now }
	e := NewEngine(store, testLogger())
	e.now = func() time.Time { return now }
	return e
}

func states(pairs map[types.EntityID]string) map[types.EntityID]*types.EntityState {
	m := make(map[types.EntityID]*types.EntityState, len(pairs))
	for id, st := range pairs {
		m[id] = &types.EntityState{EntityID: id, State: st}
	}
	return m
}

func lateNight() time.Time {
	return time.Date(2025, 6, 1, 23, 30, 0, 0, time.Local)
}

func afternoon() time.Time {
	return time.Date(2025, 6, 1, 14, 0, 0, 0, time.Local)
}

func enabledLights(ctx *EvalContext, ids ...types.EntityID) {
	ctx.EnabledLights = make(map[types.EntityID]bool)
	for _, id := range ids {
		ctx.EnabledLights[id] = true
	}
}

func TestEvaluateNilStates(t *testing.T) {
	e := newTestEngine(newMemKV(), lateNight())

	got := e.Evaluate(context.Background(), nil, EvalContext{})
	if got == nil || len(got) != 0 {
		t.Fatalf("nil snapshot must yield an empty, non-nil result, got %v", got)
	}
}

func TestLightsLeftOnLateNight(t *testing.T) {
	e := newTestEngine(newMemKV(), lateNight())
	snap := states(map[types.EntityID]string{"light.a": "on", "light.b": "on"})
	var ctx EvalContext
	enabledLights(&ctx, "light.a", "light.b")

	got := e.Evaluate(context.Background(), snap, ctx)

	if len(got) != 1 || got[0].ID != "lights-left-on" {
		t.Fatalf("expected lights-left-on, got %v", got)
	}
	if got[0].Level != types.SuggestionLevelInfo {
		t.Errorf("expected info level, got %s", got[0].Level)
	}
	if got[0].Icon == "" || got[0].Title == "" {
		t.Error("suggestion must carry icon and title")
	}
}

func TestLightsLeftOnNotInAfternoon(t *testing.T) {
	e := newTestEngine(newMemKV(), afternoon())
	snap := states(map[types.EntityID]string{"light.a": "on", "light.b": "on"})
	var ctx EvalContext
	enabledLights(&ctx, "light.a", "light.b")

	if got := e.Evaluate(context.Background(), snap, ctx); len(got) != 0 {
		t.Fatalf("rule must not fire outside the late window, got %v", got)
	}
}

func TestLightsLeftOnNeedsTwo(t *testing.T) {
	e := newTestEngine(newMemKV(), lateNight())
	snap := states(map[types.EntityID]string{"light.a": "on", "light.b": "off"})
	var ctx EvalContext
	enabledLights(&ctx, "light.a", "light.b")

	if got := e.Evaluate(context.Background(), snap, ctx); len(got) != 0 {
		t.Fatalf("one lit light must not fire, got %v", got)
	}
}

func TestLightsLeftOnIgnoresDisabled(t *testing.T) {
	e := newTestEngine(newMemKV(), lateNight())
	snap := states(map[types.EntityID]string{"light.a": "on", "light.b": "on"})
	ctx := EvalContext{EnabledLights: map[types.EntityID]bool{"light.a": true, "light.b": false}}

	if got := e.Evaluate(context.Background(), snap, ctx); len(got) != 0 {
		t.Fatalf("disabled lights must not count, got %v", got)
	}
}

func TestACWindowsConflict(t *testing.T) {
	e := newTestEngine(newMemKV(), afternoon())
	snap := states(map[types.EntityID]string{"climate.ac": "cool", "binary_sensor.window": "on"})
	ctx := EvalContext{
		EnabledClimate: map[types.EntityID]bool{"climate.ac": true},
		EnabledWindows: map[types.EntityID]bool{"binary_sensor.window": true},
	}

	got := e.Evaluate(context.Background(), snap, ctx)

	if len(got) != 1 || got[0].ID != "ac-windows-conflict" {
		t.Fatalf("expected ac-windows-conflict, got %v", got)
	}
	if got[0].Level != types.SuggestionLevelWarning {
		t.Errorf("expected warning level, got %s", got[0].Level)
	}
}

func TestACWindowsConflictNotWhenOff(t *testing.T) {
	e := newTestEngine(newMemKV(), afternoon())
	ctx := EvalContext{
		EnabledClimate: map[types.EntityID]bool{"climate.ac": true},
		EnabledWindows: map[types.EntityID]bool{"binary_sensor.window": true},
	}

	for _, climateState := range []string{"off", "unavailable", "unknown"} {
		snap := states(map[types.EntityID]string{"climate.ac": climateState, "binary_sensor.window": "on"})
		if got := e.Evaluate(context.Background(), snap, ctx); len(got) != 0 {
			t.Errorf("climate %q must not fire, got %v", climateState, got)
		}
	}
}

func TestMediaIdleOvernight(t *testing.T) {
	e := newTestEngine(newMemKV(), lateNight())
	snap := states(map[types.EntityID]string{"media_player.tv": "playing"})
	ctx := EvalContext{EnabledMedia: map[types.EntityID]bool{"media_player.tv": true}}

	got := e.Evaluate(context.Background(), snap, ctx)
	if len(got) != 1 || got[0].ID != "media-idle-overnight" {
		t.Fatalf("expected media-idle-overnight, got %v", got)
	}
}

func TestCapAndDeclarationOrder(t *testing.T) {
	e := newTestEngine(newMemKV(), lateNight())
	snap := states(map[types.EntityID]string{
		"light.a":              "on",
		"light.b":              "on",
		"climate.ac":           "cool",
		"binary_sensor.window": "on",
		"media_player.tv":      "playing",
	})
	ctx := EvalContext{
		EnabledLights:  map[types.EntityID]bool{"light.a": true, "light.b": true},
		EnabledClimate: map[types.EntityID]bool{"climate.ac": true},
		EnabledWindows: map[types.EntityID]bool{"binary_sensor.window": true},
		EnabledMedia:   map[types.EntityID]bool{"media_player.tv": true},
	}

	got := e.Evaluate(context.Background(), snap, ctx)

	if len(got) != 2 {
		t.Fatalf("expected exactly 2 suggestions (hard cap), got %d", len(got))
	}
	if got[0].ID != "lights-left-on" || got[1].ID != "ac-windows-conflict" {
		t.Errorf("expected declaration order, got [%s %s]", got[0].ID, got[1].ID)
	}
}

func TestDismissalSuppression(t *testing.T) {
	now := lateNight()
	kv := newMemKV()
	e := newTestEngine(kv, now)
	snap := states(map[types.EntityID]string{"light.a": "on", "light.b": "on"})
	var ctx EvalContext
	enabledLights(&ctx, "light.a", "light.b")

	if err := e.Dismiss(context.Background(), "lights-left-on", time.Hour); err != nil {
		t.Fatalf("dismiss failed: %v", err)
	}
	if got := e.Evaluate(context.Background(), snap, ctx); len(got) != 0 {
		t.Fatalf("dismissed rule must be suppressed, got %v", got)
	}

	// after expiry the rule may fire again
	later := now.Add(2 * time.Hour)
	e2 := newTestEngine(kv, later)
	if got := e2.Evaluate(context.Background(), snap, ctx); len(got) != 1 {
		t.Fatalf("rule must fire again after the dismissal expires, got %v", got)
	}
}

func TestActionCooldownSuppression(t *testing.T) {
	e := newTestEngine(newMemKV(), afternoon())
	snap := states(map[types.EntityID]string{"climate.ac": "heat", "binary_sensor.window": "on"})
	ctx := EvalContext{
		EnabledClimate: map[types.EntityID]bool{"climate.ac": true},
		EnabledWindows: map[types.EntityID]bool{"binary_sensor.window": true},
	}

	if err := e.RecordAction(context.Background(), "ac-windows-conflict", 30*time.Minute); err != nil {
		t.Fatalf("record action failed: %v", err)
	}
	if got := e.Evaluate(context.Background(), snap, ctx); len(got) != 0 {
		t.Fatalf("post-action cooldown must suppress the rule, got %v", got)
	}
}

func TestSuppressionIsPerRule(t *testing.T) {
	e := newTestEngine(newMemKV(), lateNight())
	snap := states(map[types.EntityID]string{
		"light.a":              "on",
		"light.b":              "on",
		"climate.ac":           "cool",
		"binary_sensor.window": "on",
	})
	ctx := EvalContext{
		EnabledLights:  map[types.EntityID]bool{"light.a": true, "light.b": true},
		EnabledClimate: map[types.EntityID]bool{"climate.ac": true},
		EnabledWindows: map[types.EntityID]bool{"binary_sensor.window": true},
	}

	e.Dismiss(context.Background(), "lights-left-on", time.Hour)

	got := e.Evaluate(context.Background(), snap, ctx)
	if len(got) != 1 || got[0].ID != "ac-windows-conflict" {
		t.Fatalf("other rules must survive a dismissal, got %v", got)
	}
}

func TestStorageFailureDegradesToNoSuppression(t *testing.T) {
	kv := newMemKV()
	kv.failGet = true
	e := newTestEngine(kv, lateNight())
	snap := states(map[types.EntityID]string{"light.a": "on", "light.b": "on"})
	var ctx EvalContext
	enabledLights(&ctx, "light.a", "light.b")

	got := e.Evaluate(context.Background(), snap, ctx)
	if len(got) != 1 {
		t.Fatalf("a broken store must not block evaluation, got %v", got)
	}
}

func TestCorruptCooldownRecordReset(t *testing.T) {
	kv := newMemKV()
	kv.data[cooldownKey] = "{not json"
	e := newTestEngine(kv, lateNight())
	snap := states(map[types.EntityID]string{"light.a": "on", "light.b": "on"})
	var ctx EvalContext
	enabledLights(&ctx, "light.a", "light.b")

	if got := e.Evaluate(context.Background(), snap, ctx); len(got) != 1 {
		t.Fatalf("corrupt record must reset, not suppress, got %v", got)
	}
}

func TestSuggestionShape(t *testing.T) {
	e := newTestEngine(newMemKV(), lateNight())
	for _, rule := range e.rules {
		if rule.ID == "" || rule.Icon == "" || rule.Title == "" {
			t.Errorf("rule %q missing id, icon or title", rule.ID)
		}
		if rule.Level != types.SuggestionLevelInfo && rule.Level != types.SuggestionLevelWarning {
			t.Errorf("rule %q has invalid level %q", rule.ID, rule.Level)
		}
	}
}
