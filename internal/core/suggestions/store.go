package suggestions

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
)

// cooldownKey is the persisted record of ruleID -> expiry (epoch milliseconds)
const cooldownKey = "dashview_suggestion_cooldowns"

// KVStore is the persistence surface the cooldown store needs
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// CooldownStore persists per-rule suppression expiries. Dismissals and
// post-action cooldowns share one record; whichever expiry is later wins.
//
// Storage failures degrade to "no suppression": a broken store must never
// keep the evaluator from running.
type CooldownStore struct {
	kv     KVStore
	logger *logrus.Logger
	now    func() time.Time
}

// NewCooldownStore creates a cooldown store backed by the given KV store
func NewCooldownStore(kv KVStore, logger *logrus.Logger) *CooldownStore {
	return &CooldownStore{
		kv:     kv,
		logger: logger,
		now:    time.Now,
	}
}

// Dismiss suppresses a rule until now + ttl
func (c *CooldownStore) Dismiss(ctx context.Context, ruleID string, ttl time.Duration) error {
	return c.record(ctx, ruleID, ttl)
}

// RecordAction suppresses a rule for the post-action cooldown window
func (c *CooldownStore) RecordAction(ctx context.Context, ruleID string, cooldown time.Duration) error {
	return c.record(ctx, ruleID, cooldown)
}

func (c *CooldownStore) record(ctx context.Context, ruleID string, ttl time.Duration) error {
	if ruleID == "" || ttl <= 0 {
		return nil
	}

	cooldowns := c.load(ctx)
	cooldowns[ruleID] = c.now().Add(ttl).UnixMilli()

	raw, err := json.Marshal(cooldowns)
	if err != nil {
		return err
	}
	if err := c.kv.Set(ctx, cooldownKey, string(raw)); err != nil {
		c.logger.WithError(err).WithField("rule_id", ruleID).Warn("Failed to persist suggestion cooldown")
		return err
	}
	return nil
}

// Suppressed reports whether a rule's suggestion is currently held back
func (c *CooldownStore) Suppressed(ctx context.Context, ruleID string) bool {
	expiry, ok := c.load(ctx)[ruleID]
	return ok && c.now().UnixMilli() < expiry
}

func (c *CooldownStore) load(ctx context.Context) map[string]int64 {
	cooldowns := make(map[string]int64)

	raw, err := c.kv.Get(ctx, cooldownKey)
	if err != nil || raw == "" {
		return cooldowns
	}
	if err := json.Unmarshal([]byte(raw), &cooldowns); err != nil {
		c.logger.WithError(err).Warn("Corrupt suggestion cooldown record, resetting")
		return make(map[string]int64)
	}
	return cooldowns
}
