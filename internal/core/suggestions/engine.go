package suggestions

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/frostdev-ops/dashview-backend-go/internal/core/types"
)

// maxSuggestions caps the result regardless of how many rules fire.
// This is a UI-noise cap, not a ranking.
const maxSuggestions = 2

// Engine evaluates the closed rule set against a state snapshot
type Engine struct {
	rules  []Rule
	store  *CooldownStore
	logger *logrus.Logger
	now    func() time.Time
}

// NewEngine creates an evaluator over the default rule set
func NewEngine(store *CooldownStore, logger *logrus.Logger) *Engine {
	return &Engine{
		rules:  defaultRules,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Evaluate runs every rule in declaration order and returns the firing,
// non-suppressed suggestions, at most two. A nil snapshot yields an empty
// result, never an error.
func (e *Engine) Evaluate(ctx context.Context, states map[types.EntityID]*types.EntityState, evalCtx EvalContext) []types.Suggestion {
	result := []types.Suggestion{}
	if states == nil {
		return result
	}

	now := e.now()
	for _, rule := range e.rules {
		if len(result) >= maxSuggestions {
			break
		}
		if !rule.Fires(states, evalCtx, now) {
			continue
		}
		if e.store != nil && e.store.Suppressed(ctx, rule.ID) {
			e.logger.WithField("rule_id", rule.ID).Debug("Suggestion suppressed by cooldown")
			continue
		}
		result = append(result, types.Suggestion{
			ID:    rule.ID,
			Icon:  rule.Icon,
			Title: rule.Title,
			Level: rule.Level,
		})
	}

	return result
}

// Dismiss records an explicit dismissal for a rule
func (e *Engine) Dismiss(ctx context.Context, ruleID string, ttl time.Duration) error {
	if e.store == nil {
		return nil
	}
	return e.store.Dismiss(ctx, ruleID, ttl)
}

// RecordAction records the post-action cooldown for a rule
func (e *Engine) RecordAction(ctx context.Context, ruleID string, cooldown time.Duration) error {
	if e.store == nil {
		return nil
	}
	return e.store.RecordAction(ctx, ruleID, cooldown)
}

// RuleIDs returns the ids of the configured rules in declaration order
func (e *Engine) RuleIDs() []string {
	ids := make([]string, len(e.rules))
	for i, r := range e.rules {
		ids[i] = r.ID
	}
	return ids
}
