package scenes

import (
	"context"
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/frostdev-ops/dashview-backend-go/internal/core/types"
)

type fakeStates map[types.EntityID]*types.EntityState

func (f fakeStates) LastKnown(id types.EntityID) *types.EntityState {
	return f[id]
}

func knownStates(ids ...types.EntityID) fakeStates {
	f := make(fakeStates, len(ids))
	for _, id := range ids {
		f[id] = &types.EntityState{EntityID: id, State: "closed"}
	}
	return f
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func boolPtr(b bool) *bool { return &b }

func TestGenerateRoomLightsOffScene(t *testing.T) {
	g := NewGenerator(knownStates(), testLogger())
	room := &types.Room{Lights: []types.EntityID{"light.b", "light.a"}}

	scene := g.GenerateRoomLightsOffScene("wohnzimmer", room)

	if scene == nil {
		t.Fatal("expected a scene for a room with lights")
	}
	if scene.ID != "dashview_auto_wohnzimmer_lights_off" {
		t.Errorf("unexpected id %q", scene.ID)
	}
	if !scene.AutoGenerated || scene.RoomKey != "wohnzimmer" {
		t.Error("scene must be auto_generated and carry the room key")
	}
	if !reflect.DeepEqual(scene.Entities, []types.EntityID{"light.b", "light.a"}) {
		t.Errorf("entity order must follow the room config verbatim, got %v", scene.Entities)
	}
	if scene.Type != types.SceneTypeRoomLightsOff {
		t.Errorf("unexpected type %q", scene.Type)
	}
}

func TestGenerateRoomLightsOffSceneNoLights(t *testing.T) {
	g := NewGenerator(knownStates(), testLogger())

	if got := g.GenerateRoomLightsOffScene("bad", &types.Room{}); got != nil {
		t.Errorf("room without lights must yield nil, got %v", got)
	}
	if got := g.GenerateRoomLightsOffScene("bad", nil); got != nil {
		t.Errorf("nil room must yield nil, got %v", got)
	}
}

func TestGenerateRoomCoversSceneFiltersUnknown(t *testing.T) {
	g := NewGenerator(knownStates("cover.a"), testLogger())
	room := &types.Room{Covers: []types.EntityID{"cover.a", "cover.unknown", "light.not_a_cover"}}

	scene := g.GenerateRoomCoversScene("schlafzimmer", room)

	if scene == nil {
		t.Fatal("expected a scene with one valid cover")
	}
	if scene.ID != "dashview_auto_schlafzimmer_covers" {
		t.Errorf("unexpected id %q", scene.ID)
	}
	if !reflect.DeepEqual(scene.Entities, []types.EntityID{"cover.a"}) {
		t.Errorf("unknown and mistyped entities must be excluded, got %v", scene.Entities)
	}
}

func TestGenerateRoomCoversSceneAllInvalid(t *testing.T) {
	g := NewGenerator(knownStates(), testLogger())
	room := &types.Room{Covers: []types.EntityID{"cover.unknown"}}

	if got := g.GenerateRoomCoversScene("bad", room); got != nil {
		t.Errorf("room with no valid cover must yield nil, got %v", got)
	}
}

func TestGenerateGlobalCoversScene(t *testing.T) {
	g := NewGenerator(knownStates("cover.a", "cover.b"), testLogger())
	rooms := map[string]types.Room{
		"wohnzimmer":   {Covers: []types.EntityID{"cover.a"}},
		"schlafzimmer": {Covers: []types.EntityID{"cover.b", "cover.a"}},
	}

	scene := g.GenerateGlobalCoversScene(rooms)

	if scene == nil {
		t.Fatal("expected a global scene")
	}
	if scene.ID != "dashview_auto_global_covers" {
		t.Errorf("unexpected id %q", scene.ID)
	}
	if scene.RoomKey != "" {
		t.Error("global scene must not carry a room key")
	}
	if len(scene.Entities) != 2 {
		t.Errorf("expected deduplicated covers, got %v", scene.Entities)
	}
}

func TestGenerateAllHonorsToggles(t *testing.T) {
	g := NewGenerator(knownStates("cover.a"), testLogger())
	cfg := &types.HouseConfig{
		Rooms: map[string]types.Room{
			"wohnzimmer": {
				Lights: []types.EntityID{"light.a"},
				Covers: []types.EntityID{"cover.a"},
			},
		},
	}

	countTypes := func(scenes []types.Scene) (lights, covers int) {
		for _, s := range scenes {
			switch s.Type {
			case types.SceneTypeRoomLightsOff:
				lights++
			case types.SceneTypeRoomCovers, types.SceneTypeGlobalCovers:
				covers++
			}
		}
		return
	}

	// defaults: both classes enabled
	lights, covers := countTypes(g.GenerateAll(cfg))
	if lights != 1 || covers != 2 {
		t.Errorf("expected 1 light scene and 2 cover scenes by default, got %d/%d", lights, covers)
	}

	cfg.AutoScenes.LightsEnabled = boolPtr(false)
	lights, covers = countTypes(g.GenerateAll(cfg))
	if lights != 0 || covers != 2 {
		t.Errorf("light toggle must not affect cover scenes, got %d/%d", lights, covers)
	}

	cfg.AutoScenes.LightsEnabled = nil
	cfg.AutoScenes.GlobalCoversEnabled = boolPtr(false)
	lights, covers = countTypes(g.GenerateAll(cfg))
	if lights != 1 || covers != 0 {
		t.Errorf("cover toggle must not affect light scenes, got %d/%d", lights, covers)
	}
}

func TestGenerateAllDeterministic(t *testing.T) {
	g := NewGenerator(knownStates(), testLogger())
	cfg := &types.HouseConfig{
		Rooms: map[string]types.Room{
			"b_zimmer": {Lights: []types.EntityID{"light.b"}},
			"a_zimmer": {Lights: []types.EntityID{"light.a"}},
		},
	}

	first := g.GenerateAll(cfg)
	for i := 0; i < 5; i++ {
		if !reflect.DeepEqual(g.GenerateAll(cfg), first) {
			t.Fatal("generation must be deterministic across calls")
		}
	}
	if first[0].RoomKey != "a_zimmer" {
		t.Errorf("expected sorted room order, got %v first", first[0].RoomKey)
	}
}

func TestRoomScenesFilter(t *testing.T) {
	room := &types.Room{
		Lights:       []types.EntityID{"light.a"},
		Covers:       []types.EntityID{"cover.a"},
		MediaPlayers: []types.MediaPlayerRef{{Entity: "media_player.tv"}},
	}
	all := []types.Scene{
		{ID: "auto-here", AutoGenerated: true, RoomKey: "wohnzimmer"},
		{ID: "auto-elsewhere", AutoGenerated: true, RoomKey: "schlafzimmer"},
		{ID: "manual-light", Entities: []types.EntityID{"light.a", "light.other"}},
		{ID: "manual-media", Entities: []types.EntityID{"media_player.tv"}},
		{ID: "manual-unrelated", Entities: []types.EntityID{"light.other"}},
	}

	got := RoomScenes("wohnzimmer", room, all)

	ids := make([]string, len(got))
	for i, s := range got {
		ids[i] = s.ID
	}
	want := []string{"auto-here", "manual-light", "manual-media"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("expected %v, got %v", want, ids)
	}
}

func TestRoomScenesNoMatches(t *testing.T) {
	room := &types.Room{Lights: []types.EntityID{"light.a"}}
	all := []types.Scene{{ID: "manual", Entities: []types.EntityID{"light.other"}}}

	got := RoomScenes("wohnzimmer", room, all)
	if got == nil || len(got) != 0 {
		t.Errorf("no matches must yield an empty, non-nil sequence, got %v", got)
	}
}

type recordingCaller struct {
	domain  string
	service string
	data    map[string]interface{}
	calls   int
}

func (r *recordingCaller) CallService(_ context.Context, domain, service string, data map[string]interface{}) error {
	r.domain, r.service, r.data = domain, service, data
	r.calls++
	return nil
}

func TestServiceActivate(t *testing.T) {
	g := NewGenerator(knownStates("cover.a"), testLogger())
	caller := &recordingCaller{}
	svc := NewService(g, caller, testLogger())
	svc.Reload(&types.HouseConfig{
		Rooms: map[string]types.Room{
			"wohnzimmer": {
				Lights: []types.EntityID{"light.a", "light.b"},
				Covers: []types.EntityID{"cover.a"},
			},
		},
		Scenes: []types.Scene{{ID: "scene.abend", Name: "Abend", Type: types.SceneTypeManual}},
	})

	if err := svc.Activate(context.Background(), "dashview_auto_wohnzimmer_lights_off"); err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	if caller.domain != "light" || caller.service != "turn_off" {
		t.Errorf("expected light.turn_off, got %s.%s", caller.domain, caller.service)
	}

	if err := svc.Activate(context.Background(), "dashview_auto_wohnzimmer_covers"); err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	if caller.domain != "cover" || caller.service != "close_cover" {
		t.Errorf("expected cover.close_cover, got %s.%s", caller.domain, caller.service)
	}

	if err := svc.Activate(context.Background(), "scene.abend"); err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	if caller.domain != "scene" || caller.service != "turn_on" || caller.data["entity_id"] != "scene.abend" {
		t.Errorf("expected scene.turn_on for the manual scene, got %s.%s %v", caller.domain, caller.service, caller.data)
	}

	if err := svc.Activate(context.Background(), "missing"); err == nil {
		t.Error("expected error for unknown scene id")
	}
}

func TestServiceForRoom(t *testing.T) {
	g := NewGenerator(knownStates(), testLogger())
	svc := NewService(g, &recordingCaller{}, testLogger())
	svc.Reload(&types.HouseConfig{
		Rooms: map[string]types.Room{
			"wohnzimmer": {Lights: []types.EntityID{"light.a"}},
		},
	})

	got, err := svc.ForRoom("wohnzimmer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "dashview_auto_wohnzimmer_lights_off" {
		t.Errorf("expected the room's auto scene, got %v", got)
	}

	if _, err := svc.ForRoom("missing"); err == nil {
		t.Error("expected error for unknown room")
	}
}
