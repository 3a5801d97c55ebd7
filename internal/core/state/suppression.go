package state

import (
	"sync"
	"time"

	"github.com/frostdev-ops/dashview-backend-go/internal/core/types"
)

// SuppressionMap tracks per-entity windows during which platform-driven
// updates are ignored. A window is armed when a user-initiated service call
// is issued for the entity, so the UI does not snap back before the
// platform's own state echo arrives.
//
// Re-arming an entity before its window expires resets the expiry; windows
// never stack.
type SuppressionMap struct {
	mu      sync.Mutex
	expires map[types.EntityID]time.Time
	now     func() time.Time
}

// NewSuppressionMap creates an empty suppression map
func NewSuppressionMap() *SuppressionMap {
	return &SuppressionMap{
		expires: make(map[types.EntityID]time.Time),
		now:     time.Now,
	}
}

// SetClock replaces the time source, for tests
func (s *SuppressionMap) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// Arm starts (or resets) the suppression window for an entity
func (s *SuppressionMap) Arm(id types.EntityID, window time.Duration) {
	if id == "" || window <= 0 {
		return
	}
	s.mu.Lock()
	s.expires[id] = s.now().Add(window)
	s.mu.Unlock()
}

// Active reports whether updates for the entity are currently suppressed,
// pruning the record once it has expired
func (s *SuppressionMap) Active(id types.EntityID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.expires[id]
	if !ok {
		return false
	}
	if s.now().Before(expiry) {
		return true
	}
	delete(s.expires, id)
	return false
}

// Clear removes the suppression window for an entity
func (s *SuppressionMap) Clear(id types.EntityID) {
	s.mu.Lock()
	delete(s.expires, id)
	s.mu.Unlock()
}
