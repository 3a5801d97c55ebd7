package popup

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/frostdev-ops/dashview-backend-go/internal/core/types"
)

type mapResolver map[string]Content

func (m mapResolver) Resolve(popupID string) (Content, bool) {
	c, ok := m[popupID]
	return c, ok
}

type fakeWidget struct {
	mu          sync.Mutex
	name        string
	entities    map[types.EntityID]bool
	initCount   int
	updates     []types.EntityID
	disposed    int
	initErr     error
	blockInit   chan struct{}
	initStarted chan struct{}
}

func (w *fakeWidget) Name() string { return w.name }

func (w *fakeWidget) Initialize(_ context.Context, _, _ string, entities []types.EntityID) error {
	if w.initStarted != nil {
		w.initStarted <- struct{}{}
	}
	if w.blockInit != nil {
		<-w.blockInit
	}
	w.mu.Lock()
	w.initCount++
	w.entities = make(map[types.EntityID]bool)
	for _, id := range entities {
		w.entities[id] = true
	}
	w.mu.Unlock()
	return w.initErr
}

func (w *fakeWidget) Handles(id types.EntityID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.entities[id]
}

func (w *fakeWidget) Update(id types.EntityID) {
	w.mu.Lock()
	w.updates = append(w.updates, id)
	w.mu.Unlock()
}

func (w *fakeWidget) Dispose() {
	w.mu.Lock()
	w.disposed++
	w.mu.Unlock()
}

type transitionLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *transitionLog) record(popupID string, state State) {
	l.mu.Lock()
	l.entries = append(l.entries, popupID+":"+string(state))
	l.mu.Unlock()
}

func (l *transitionLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}

func testEntry() *logrus.Entry {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log.WithField("component", "test")
}

func newTestPopupManager(resolver Resolver, widget *fakeWidget, log *transitionLog) *Manager {
	factory := func(Content) []Widget { return []Widget{widget} }
	var onTransition TransitionFunc
	if log != nil {
		onTransition = log.record
	}
	return NewManager(resolver, factory, onTransition, testEntry())
}

func TestNavigateOpensPopup(t *testing.T) {
	resolver := mapResolver{"wohnzimmer": {RoomKey: "wohnzimmer", Entities: []types.EntityID{"light.a"}}}
	widget := &fakeWidget{name: "lights"}
	log := &transitionLog{}
	m := newTestPopupManager(resolver, widget, log)

	if err := m.Navigate(context.Background(), "wohnzimmer"); err != nil {
		t.Fatalf("navigate failed: %v", err)
	}

	if id, state := m.Current(); id != "wohnzimmer" || state != StateActive {
		t.Errorf("expected wohnzimmer active, got %s %s", id, state)
	}
	if widget.initCount != 1 {
		t.Errorf("expected 1 initialize pass, got %d", widget.initCount)
	}

	want := []string{"wohnzimmer:opening", "wohnzimmer:active"}
	got := log.all()
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("expected transitions %v, got %v", want, got)
	}
}

func TestNavigateSwitchClosesPrevious(t *testing.T) {
	resolver := mapResolver{
		"a": {RoomKey: "a"},
		"b": {RoomKey: "b"},
	}
	widget := &fakeWidget{name: "lights"}
	log := &transitionLog{}
	m := newTestPopupManager(resolver, widget, log)

	m.Navigate(context.Background(), "a")
	m.Navigate(context.Background(), "b")

	if id, state := m.Current(); id != "b" || state != StateActive {
		t.Errorf("expected b active, got %s %s", id, state)
	}
	if widget.disposed != 1 {
		t.Errorf("expected previous popup's widgets disposed once, got %d", widget.disposed)
	}

	want := []string{"a:opening", "a:active", "a:closing", "a:closed", "b:opening", "b:active"}
	got := log.all()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestNavigateSameTargetNoOp(t *testing.T) {
	resolver := mapResolver{"a": {RoomKey: "a"}}
	widget := &fakeWidget{name: "lights"}
	m := newTestPopupManager(resolver, widget, nil)

	m.Navigate(context.Background(), "a")
	m.Navigate(context.Background(), "a")

	if widget.initCount != 1 {
		t.Errorf("re-navigating to the active popup must be a no-op, got %d initializes", widget.initCount)
	}
	if widget.disposed != 0 {
		t.Errorf("no-op navigation must not dispose, got %d", widget.disposed)
	}
}

func TestNavigateUnrecognizedClosesActive(t *testing.T) {
	resolver := mapResolver{"a": {RoomKey: "a"}}
	widget := &fakeWidget{name: "lights"}
	m := newTestPopupManager(resolver, widget, nil)

	m.Navigate(context.Background(), "a")
	m.Navigate(context.Background(), "does-not-exist")

	if id, state := m.Current(); id != "" || state != StateClosed {
		t.Errorf("expected idle after unrecognized target, got %q %s", id, state)
	}
	if widget.disposed != 1 {
		t.Errorf("expected active popup disposed, got %d", widget.disposed)
	}
}

func TestNavigateEmptyClosesActive(t *testing.T) {
	resolver := mapResolver{"a": {RoomKey: "a"}}
	widget := &fakeWidget{name: "lights"}
	m := newTestPopupManager(resolver, widget, nil)

	m.Navigate(context.Background(), "a")
	m.Navigate(context.Background(), "")
	m.Navigate(context.Background(), "")

	if id, state := m.Current(); id != "" || state != StateClosed {
		t.Errorf("expected idle, got %q %s", id, state)
	}
	if widget.disposed != 1 {
		t.Errorf("repeated empty navigation must not re-dispose, got %d", widget.disposed)
	}
}

func TestNavigateSupersedesInFlightOpen(t *testing.T) {
	resolver := mapResolver{
		"slow": {RoomKey: "slow"},
		"next": {RoomKey: "next"},
	}
	widget := &fakeWidget{
		name:        "lights",
		blockInit:   make(chan struct{}),
		initStarted: make(chan struct{}, 2),
	}
	m := newTestPopupManager(resolver, widget, nil)

	done := make(chan error, 1)
	go func() { done <- m.Navigate(context.Background(), "slow") }()

	<-widget.initStarted
	// second navigation arrives mid-open and must supersede, not run concurrently
	if err := m.Navigate(context.Background(), "next"); err != nil {
		t.Fatalf("superseding navigate failed: %v", err)
	}

	widget.blockInit <- struct{}{}
	<-widget.initStarted
	widget.blockInit <- struct{}{}
	if err := <-done; err != nil {
		t.Fatalf("navigate failed: %v", err)
	}

	if id, state := m.Current(); id != "next" || state != StateActive {
		t.Errorf("expected superseding target active, got %s %s", id, state)
	}
	if widget.initCount != 2 {
		t.Errorf("expected 2 sequential initialize passes, got %d", widget.initCount)
	}
}

func TestWidgetInitErrorSurfacesButActivates(t *testing.T) {
	resolver := mapResolver{"a": {RoomKey: "a"}}
	widget := &fakeWidget{name: "lights", initErr: errors.New("fetch failed")}
	m := newTestPopupManager(resolver, widget, nil)

	if err := m.Navigate(context.Background(), "a"); err == nil {
		t.Error("expected initialize error to surface")
	}
	if _, state := m.Current(); state != StateActive {
		t.Errorf("a failed widget must not wedge the popup, got %s", state)
	}
}

func TestOnEntityChangedRoutesToWidgets(t *testing.T) {
	resolver := mapResolver{"a": {RoomKey: "a", Entities: []types.EntityID{"light.a", "cover.a"}}}
	widget := &fakeWidget{name: "lights"}
	m := newTestPopupManager(resolver, widget, nil)

	m.Navigate(context.Background(), "a")
	m.OnEntityChanged([]types.EntityID{"light.a", "light.unrelated"})

	if len(widget.updates) != 1 || widget.updates[0] != "light.a" {
		t.Errorf("expected targeted update for light.a only, got %v", widget.updates)
	}
}

func TestOnEntityChangedIgnoredWhenClosed(t *testing.T) {
	widget := &fakeWidget{name: "lights", entities: map[types.EntityID]bool{"light.a": true}}
	m := newTestPopupManager(mapResolver{}, widget, nil)

	m.OnEntityChanged([]types.EntityID{"light.a"})

	if len(widget.updates) != 0 {
		t.Errorf("closed manager must not route updates, got %v", widget.updates)
	}
}

type fragmentRecorder struct {
	mu        sync.Mutex
	fragments []Fragment
	widgets   []string
}

func (r *fragmentRecorder) SendFragment(_, widget string, payload interface{}) {
	r.mu.Lock()
	r.widgets = append(r.widgets, widget)
	r.fragments = append(r.fragments, payload.(Fragment))
	r.mu.Unlock()
}

type fakeStates map[types.EntityID]*types.EntityState

func (f fakeStates) LastKnown(id types.EntityID) *types.EntityState { return f[id] }

func TestEntityWidgetClaimsOwnDomain(t *testing.T) {
	states := fakeStates{
		"light.a": {EntityID: "light.a", State: "on"},
		"cover.a": {EntityID: "cover.a", State: "closed"},
	}
	sink := &fragmentRecorder{}
	w := NewLightsWidget(states, sink)

	w.Initialize(context.Background(), "room", "room", []types.EntityID{"light.a", "cover.a"})

	if !w.Handles("light.a") || w.Handles("cover.a") {
		t.Error("lights widget must claim lights only")
	}
	if len(sink.fragments) != 1 || len(sink.fragments[0].Entities) != 1 {
		t.Fatalf("expected one fragment with the light state, got %v", sink.fragments)
	}

	w.Update("light.a")
	if len(sink.fragments) != 2 {
		t.Errorf("expected an update fragment, got %d", len(sink.fragments))
	}

	w.Dispose()
	if w.Handles("light.a") {
		t.Error("disposed widget must not claim entities")
	}
}

func TestEntityWidgetFragmentCarriesElapsedLabels(t *testing.T) {
	states := fakeStates{
		"light.a": {EntityID: "light.a", State: "on", LastChanged: time.Now().Add(-5 * time.Minute)},
		"light.b": {EntityID: "light.b", State: "off", LastChanged: time.Now()},
	}
	sink := &fragmentRecorder{}
	w := NewLightsWidget(states, sink)

	w.Initialize(context.Background(), "room", "room", []types.EntityID{"light.a", "light.b"})

	if len(sink.fragments) != 1 {
		t.Fatalf("expected one fragment, got %d", len(sink.fragments))
	}
	labels := sink.fragments[0].LastChangedLabels
	if labels["light.a"] != "vor 5m" {
		t.Errorf("expected elapsed label for light.a, got %q", labels["light.a"])
	}
	if labels["light.b"] != "Jetzt" {
		t.Errorf("expected just-changed label for light.b, got %q", labels["light.b"])
	}
}

func TestConfigResolver(t *testing.T) {
	r := NewConfigResolver(map[string]types.Room{
		"wohnzimmer": {Lights: []types.EntityID{"light.a"}},
	})

	content, ok := r.Resolve("wohnzimmer")
	if !ok || content.RoomKey != "wohnzimmer" || len(content.Entities) != 1 {
		t.Errorf("unexpected content %v ok=%v", content, ok)
	}
	if _, ok := r.Resolve("missing"); ok {
		t.Error("unknown room must not resolve")
	}

	r.Reload(map[string]types.Room{})
	if _, ok := r.Resolve("wohnzimmer"); ok {
		t.Error("reloaded resolver must drop stale rooms")
	}
}
