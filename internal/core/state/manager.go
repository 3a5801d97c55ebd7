package state

import (
	"sync"

	"github.com/frostdev-ops/dashview-backend-go/internal/core/types"
	"github.com/sirupsen/logrus"
)

// ChangeListener receives the ids that changed in one snapshot pass
type ChangeListener func(changed []types.EntityID)

// Manager owns the watched-entity cache and serializes snapshot processing.
// Snapshots are diffed on a single goroutine, so two back-to-back snapshots
// are always diffed in arrival order against the cache the previous pass
// left behind.
type Manager struct {
	logger      *logrus.Logger
	watch       *WatchSet
	suppression *SuppressionMap

	mu    sync.RWMutex
	cache map[types.EntityID]*types.EntityState

	listenerMu sync.RWMutex
	listeners  map[string]ChangeListener

	snapshots chan map[types.EntityID]*types.EntityState
	stop      chan struct{}
}

// NewManager creates a state manager around the given watch set
func NewManager(watch *WatchSet, suppression *SuppressionMap, logger *logrus.Logger) *Manager {
	return &Manager{
		logger:      logger,
		watch:       watch,
		suppression: suppression,
		cache:       make(map[types.EntityID]*types.EntityState),
		listeners:   make(map[string]ChangeListener),
		snapshots:   make(chan map[types.EntityID]*types.EntityState, 64),
		stop:        make(chan struct{}),
	}
}

// Run consumes queued snapshots until Stop is called
func (m *Manager) Run() {
	m.logger.Info("State manager started")
	for {
		select {
		case snapshot := <-m.snapshots:
			m.ProcessSnapshot(snapshot)
		case <-m.stop:
			m.logger.Info("State manager stopped")
			return
		}
	}
}

// Stop terminates the Run loop
func (m *Manager) Stop() {
	close(m.stop)
}

// Submit queues a snapshot for processing. Under heavy churn a full queue
// drops the oldest pending snapshot: the newest full snapshot supersedes it.
func (m *Manager) Submit(snapshot map[types.EntityID]*types.EntityState) {
	select {
	case m.snapshots <- snapshot:
	default:
		select {
		case <-m.snapshots:
		default:
		}
		m.snapshots <- snapshot
		m.logger.Warn("Snapshot queue full, dropped oldest pending snapshot")
	}
}

// ProcessSnapshot diffs one snapshot synchronously and notifies listeners.
// Exposed for callers that already serialize their own processing.
func (m *Manager) ProcessSnapshot(snapshot map[types.EntityID]*types.EntityState) []types.EntityID {
	m.mu.Lock()
	var suppressed map[types.EntityID]*types.EntityState
	if m.suppression != nil {
		for id := range snapshot {
			if m.suppression.Active(id) {
				if suppressed == nil {
					suppressed = make(map[types.EntityID]*types.EntityState)
				}
				suppressed[id] = m.cache[id]
			}
		}
	}
	changed := ComputeChanged(snapshot, m.watch, m.cache)
	m.mu.Unlock()

	if len(changed) == 0 {
		return nil
	}

	// A suppressed change is withheld from listeners and the cache keeps the
	// pre-interaction value: the entity stays readable during the window and
	// the first post-window snapshot diffs as a change again.
	notify := changed[:0:len(changed)]
	for _, id := range changed {
		if prior, ok := suppressed[id]; ok {
			m.mu.Lock()
			if prior != nil {
				m.cache[id] = prior
			} else {
				delete(m.cache, id)
			}
			m.mu.Unlock()
			m.logger.WithField("entity_id", id).Debug("Update suppressed inside interaction window")
			continue
		}
		notify = append(notify, id)
	}

	if len(notify) > 0 {
		m.notifyListeners(notify)
	}
	return notify
}

// LastKnown returns a copy of the cached state for an entity, or nil
func (m *Manager) LastKnown(id types.EntityID) *types.EntityState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cache[id].Clone()
}

// Snapshot returns a copy of the full cache
func (m *Manager) Snapshot() map[types.EntityID]*types.EntityState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[types.EntityID]*types.EntityState, len(m.cache))
	for id, st := range m.cache {
		out[id] = st.Clone()
	}
	return out
}

// Watch exposes the underlying watch set
func (m *Manager) Watch() *WatchSet {
	return m.watch
}

// Suppression exposes the per-entity suppression map
func (m *Manager) Suppression() *SuppressionMap {
	return m.suppression
}

// AddListener registers a change listener under a stable key
func (m *Manager) AddListener(key string, fn ChangeListener) {
	m.listenerMu.Lock()
	m.listeners[key] = fn
	m.listenerMu.Unlock()
}

// RemoveListener unregisters a change listener
func (m *Manager) RemoveListener(key string) {
	m.listenerMu.Lock()
	delete(m.listeners, key)
	m.listenerMu.Unlock()
}

func (m *Manager) notifyListeners(changed []types.EntityID) {
	m.listenerMu.RLock()
	defer m.listenerMu.RUnlock()

	for key, fn := range m.listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					m.logger.WithFields(logrus.Fields{
						"listener": key,
						"panic":    r,
					}).Error("State change listener panicked")
				}
			}()
			fn(changed)
		}()
	}
}
