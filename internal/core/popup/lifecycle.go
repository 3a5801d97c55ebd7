package popup

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/frostdev-ops/dashview-backend-go/internal/core/types"
)

// State is a popup's lifecycle phase
type State string

const (
	StateClosed  State = "closed"
	StateOpening State = "opening"
	StateActive  State = "active"
	StateClosing State = "closing"
)

// Widget is one entity-scoped section of a popup (lights, covers, media,
// weather, security). Initialize is not reentrant; the manager guarantees it
// never runs twice concurrently for the same popup.
type Widget interface {
	Name() string
	Initialize(ctx context.Context, popupID, roomKey string, entities []types.EntityID) error
	Handles(id types.EntityID) bool
	Update(id types.EntityID)
	Dispose()
}

// WidgetFactory builds the widget set for a popup's content
type WidgetFactory func(content Content) []Widget

// Content is what a popup id resolves to
type Content struct {
	RoomKey  string
	Entities []types.EntityID
}

// Resolver maps a navigation target to popup content. Unrecognized targets
// resolve to false, which closes the active popup without opening another.
type Resolver interface {
	Resolve(popupID string) (Content, bool)
}

// TransitionFunc observes lifecycle transitions, e.g. to push them to clients
type TransitionFunc func(popupID string, state State)

// Manager drives one client's popup lifecycle. At most one popup is active
// at a time; a navigation arriving while another popup is opening supersedes
// it once the in-flight initialize pass completes.
type Manager struct {
	resolver     Resolver
	factory      WidgetFactory
	onTransition TransitionFunc
	logger       *logrus.Entry

	mu      sync.Mutex
	state   State
	current string
	widgets []Widget
	opening bool
	pending *string
}

// NewManager creates a popup manager in the closed state
func NewManager(resolver Resolver, factory WidgetFactory, onTransition TransitionFunc, logger *logrus.Entry) *Manager {
	return &Manager{
		resolver:     resolver,
		factory:      factory,
		onTransition: onTransition,
		logger:       logger,
		state:        StateClosed,
	}
}

// Current returns the active popup id and state
func (m *Manager) Current() (string, State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current, m.state
}

// Navigate processes one navigation target. An empty or unrecognized target
// closes the active popup. Navigating to the already-active popup is a no-op.
// If an opening pass is in flight the target is queued and supersedes it;
// only the latest queued target survives.
func (m *Manager) Navigate(ctx context.Context, target string) error {
	m.mu.Lock()
	if m.opening {
		t := target
		m.pending = &t
		m.mu.Unlock()
		m.logger.WithField("popup_id", target).Debug("Navigation queued behind in-flight open")
		return nil
	}
	if m.state == StateActive && m.current == target {
		m.mu.Unlock()
		return nil
	}
	m.opening = true
	m.mu.Unlock()

	return m.run(ctx, target)
}

// run closes whatever is active, then opens targets until no supersession
// is pending. Initialize runs outside the lock so a superseding Navigate
// is never blocked.
func (m *Manager) run(ctx context.Context, target string) error {
	var lastErr error
	for {
		m.closeActive()

		content, ok := m.resolver.Resolve(target)
		if target == "" || !ok {
			if target != "" {
				m.logger.WithField("popup_id", target).Warn("Unrecognized navigation target")
			}
			m.mu.Lock()
			if m.pending != nil {
				target, m.pending = *m.pending, nil
				m.mu.Unlock()
				continue
			}
			m.opening = false
			m.mu.Unlock()
			return lastErr
		}

		m.mu.Lock()
		m.state = StateOpening
		m.current = target
		widgets := m.factory(content)
		m.widgets = widgets
		m.mu.Unlock()
		m.emit(target, StateOpening)

		for _, w := range widgets {
			if err := w.Initialize(ctx, target, content.RoomKey, content.Entities); err != nil {
				m.logger.WithError(err).WithFields(logrus.Fields{
					"popup_id": target,
					"widget":   w.Name(),
				}).Error("Widget initialization failed")
				lastErr = err
			}
		}

		m.mu.Lock()
		if m.pending != nil {
			target, m.pending = *m.pending, nil
			m.state = StateActive
			m.mu.Unlock()
			continue
		}
		m.state = StateActive
		m.opening = false
		m.mu.Unlock()
		m.emit(target, StateActive)
		return lastErr
	}
}

// closeActive runs the closing sequence for the current popup, if any
func (m *Manager) closeActive() {
	m.mu.Lock()
	if m.current == "" || m.state == StateClosed {
		m.mu.Unlock()
		return
	}
	id := m.current
	widgets := m.widgets
	m.state = StateClosing
	m.mu.Unlock()
	m.emit(id, StateClosing)

	for _, w := range widgets {
		w.Dispose()
	}

	m.mu.Lock()
	m.state = StateClosed
	m.current = ""
	m.widgets = nil
	m.mu.Unlock()
	m.emit(id, StateClosed)
}

// Close shuts the active popup, if any
func (m *Manager) Close() {
	m.mu.Lock()
	if m.opening {
		empty := ""
		m.pending = &empty
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()
	m.closeActive()
}

// OnEntityChanged routes state changes to the active popup's widgets.
// Widgets receive targeted updates, never a full rebuild.
func (m *Manager) OnEntityChanged(changed []types.EntityID) {
	m.mu.Lock()
	if m.state != StateActive {
		m.mu.Unlock()
		return
	}
	widgets := m.widgets
	m.mu.Unlock()

	for _, id := range changed {
		for _, w := range widgets {
			if w.Handles(id) {
				w.Update(id)
			}
		}
	}
}

func (m *Manager) emit(popupID string, state State) {
	if m.onTransition != nil {
		m.onTransition(popupID, state)
	}
}
