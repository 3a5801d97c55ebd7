package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Callback refreshes one registered component's data
type Callback func(ctx context.Context) error

// Stats are the manager's rolling refresh statistics
type Stats struct {
	TotalRefreshes  int64         `json:"total_refreshes"`
	LastDuration    time.Duration `json:"last_duration_ms"`
	AverageDuration time.Duration `json:"average_duration_ms"`
	LastRefresh     time.Time     `json:"last_refresh"`
}

// Manager coordinates data refreshes across registered components.
// Requests inside the minimum interval, or while a refresh is running, are
// rejected outright; there is no queueing.
type Manager struct {
	logger      *logrus.Logger
	minInterval time.Duration
	now         func() time.Time

	mu          sync.Mutex
	callbacks   map[string]Callback
	order       []string
	inFlight    bool
	lastAttempt time.Time

	statsMu sync.Mutex
	stats   Stats
}

// NewManager creates a refresh manager with the given minimum interval
func NewManager(minInterval time.Duration, logger *logrus.Logger) *Manager {
	return &Manager{
		logger:      logger,
		minInterval: minInterval,
		now:         time.Now,
		callbacks:   make(map[string]Callback),
	}
}

// Register adds a component's refresh callback; re-registering a component
// replaces its callback but keeps its position
func (m *Manager) Register(componentID string, fn Callback) {
	if componentID == "" || fn == nil {
		return
	}
	m.mu.Lock()
	if _, ok := m.callbacks[componentID]; !ok {
		m.order = append(m.order, componentID)
	}
	m.callbacks[componentID] = fn
	m.mu.Unlock()
}

// Unregister removes a component's refresh callback
func (m *Manager) Unregister(componentID string) {
	m.mu.Lock()
	if _, ok := m.callbacks[componentID]; ok {
		delete(m.callbacks, componentID)
		for i, id := range m.order {
			if id == componentID {
				m.order = append(m.order[:i], m.order[i+1:]...)
				break
			}
		}
	}
	m.mu.Unlock()
}

// Refresh runs the callbacks for the requested components, or for every
// registered component when none are named. Returns false without running
// anything when throttled or when a refresh is already in progress. A
// failing callback is logged and never aborts its siblings.
func (m *Manager) Refresh(ctx context.Context, componentIDs ...string) bool {
	m.mu.Lock()
	now := m.now()
	if m.inFlight {
		m.mu.Unlock()
		m.logger.Debug("Refresh rejected, another refresh in progress")
		return false
	}
	if !m.lastAttempt.IsZero() && now.Sub(m.lastAttempt) < m.minInterval {
		m.mu.Unlock()
		m.logger.Debug("Refresh rejected by throttle")
		return false
	}
	m.inFlight = true
	m.lastAttempt = now

	targets := componentIDs
	if len(targets) == 0 {
		targets = make([]string, len(m.order))
		copy(targets, m.order)
	}
	callbacks := make(map[string]Callback, len(targets))
	for _, id := range targets {
		if fn, ok := m.callbacks[id]; ok {
			callbacks[id] = fn
		}
	}
	m.mu.Unlock()

	start := m.now()
	for _, id := range targets {
		fn, ok := callbacks[id]
		if !ok {
			continue
		}
		m.runOne(ctx, id, fn)
	}
	m.recordStats(m.now().Sub(start), start)

	m.mu.Lock()
	m.inFlight = false
	m.mu.Unlock()
	return true
}

func (m *Manager) runOne(ctx context.Context, id string, fn Callback) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.WithFields(logrus.Fields{
				"component": id,
				"panic":     r,
			}).Error("Refresh callback panicked")
		}
	}()
	if err := fn(ctx); err != nil {
		m.logger.WithError(err).WithField("component", id).Error("Refresh callback failed")
	}
}

func (m *Manager) recordStats(duration time.Duration, at time.Time) {
	m.statsMu.Lock()
	m.stats.TotalRefreshes++
	m.stats.LastDuration = duration
	m.stats.LastRefresh = at
	// incremental mean: avg += (x - avg) / n
	n := m.stats.TotalRefreshes
	m.stats.AverageDuration += (duration - m.stats.AverageDuration) / time.Duration(n)
	m.statsMu.Unlock()
}

// Statistics returns a copy of the rolling refresh statistics
func (m *Manager) Statistics() Stats {
	m.statsMu.Lock()
	defer m.statsMu.Unlock()
	return m.stats
}
