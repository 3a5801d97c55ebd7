package panel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/frostdev-ops/dashview-backend-go/internal/config"
	"github.com/frostdev-ops/dashview-backend-go/internal/core/popup"
	"github.com/frostdev-ops/dashview-backend-go/internal/core/scenes"
	"github.com/frostdev-ops/dashview-backend-go/internal/core/state"
	"github.com/frostdev-ops/dashview-backend-go/internal/core/suggestions"
	"github.com/frostdev-ops/dashview-backend-go/internal/core/types"
	"github.com/frostdev-ops/dashview-backend-go/internal/database/repositories"
	apperrors "github.com/frostdev-ops/dashview-backend-go/pkg/errors"
)

const onboardedKey = "dashview_onboarded"

// defaultDismissTTL is how long an explicit dismissal holds when the client
// does not say otherwise
const defaultDismissTTL = 6 * time.Hour

// Service ties the panel's core engines to configuration and persistence.
// It owns the loaded house configuration and rebuilds the derived structures
// (watch set, auto scenes, popup resolver) whenever it changes.
type Service struct {
	logger     *logrus.Logger
	panelCfg   config.PanelConfig
	houseRepo  repositories.HouseConfigRepository
	kvRepo     repositories.KVRepository
	states     *state.Manager
	caller     scenes.ServiceCaller
	sceneSvc   *scenes.Service
	suggestSvc *suggestions.Engine
	resolver   *popup.ConfigResolver

	houseMu sync.RWMutex
	house   *types.HouseConfig

	actionCooldown time.Duration
}

// NewService creates the panel service
func NewService(
	panelCfg config.PanelConfig,
	houseRepo repositories.HouseConfigRepository,
	kvRepo repositories.KVRepository,
	states *state.Manager,
	caller scenes.ServiceCaller,
	sceneSvc *scenes.Service,
	suggestSvc *suggestions.Engine,
	resolver *popup.ConfigResolver,
	logger *logrus.Logger,
) *Service {
	actionCooldown, err := time.ParseDuration(panelCfg.ActionCooldown)
	if err != nil || actionCooldown <= 0 {
		actionCooldown = 30 * time.Minute
	}
	return &Service{
		logger:         logger,
		panelCfg:       panelCfg,
		houseRepo:      houseRepo,
		kvRepo:         kvRepo,
		states:         states,
		caller:         caller,
		sceneSvc:       sceneSvc,
		suggestSvc:     suggestSvc,
		resolver:       resolver,
		actionCooldown: actionCooldown,
	}
}

// LoadConfig reads the persisted house configuration and applies it
func (s *Service) LoadConfig(ctx context.Context) error {
	record, err := s.houseRepo.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to load house configuration: %w", err)
	}
	return s.applyPayload(record.Payload)
}

// SaveConfig validates, persists and applies a new configuration document
func (s *Service) SaveConfig(ctx context.Context, payload string) error {
	var cfg types.HouseConfig
	if err := json.Unmarshal([]byte(payload), &cfg); err != nil {
		return apperrors.WithDetails(apperrors.ErrBadRequest, "invalid house configuration: "+err.Error())
	}

	if err := s.houseRepo.Save(ctx, payload); err != nil {
		return fmt.Errorf("failed to persist house configuration: %w", err)
	}
	return s.applyPayload(payload)
}

func (s *Service) applyPayload(payload string) error {
	var cfg types.HouseConfig
	if err := json.Unmarshal([]byte(payload), &cfg); err != nil {
		return fmt.Errorf("corrupt house configuration: %w", err)
	}

	report := cfg.CheckConsistency()
	for _, roomKey := range report.OrphanedRooms {
		s.logger.WithField("room", roomKey).Warn("Room references a missing floor")
	}
	for _, floorKey := range report.UnusedFloors {
		s.logger.WithField("floor", floorKey).Warn("Floor has no rooms")
	}

	s.states.Watch().AddConfig(&cfg)
	s.sceneSvc.Reload(&cfg)
	s.resolver.Reload(cfg.Rooms)

	s.houseMu.Lock()
	s.house = &cfg
	s.houseMu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"rooms":            len(cfg.Rooms),
		"floors":           len(cfg.Floors),
		"watched_entities": s.states.Watch().Len(),
	}).Info("House configuration applied")
	return nil
}

// House returns the currently applied configuration, or nil before the
// first load
func (s *Service) House() *types.HouseConfig {
	s.houseMu.RLock()
	defer s.houseMu.RUnlock()
	return s.house
}

// EvalContext derives the suggestion evaluation context from the applied
// configuration: every configured entity of the relevant class is enabled
func (s *Service) EvalContext() suggestions.EvalContext {
	evalCtx := suggestions.EvalContext{
		EnabledLights:  make(map[types.EntityID]bool),
		EnabledClimate: make(map[types.EntityID]bool),
		EnabledWindows: make(map[types.EntityID]bool),
		EnabledMedia:   make(map[types.EntityID]bool),
	}

	house := s.House()
	if house == nil {
		return evalCtx
	}
	for _, room := range house.Rooms {
		for _, id := range room.Lights {
			evalCtx.EnabledLights[id] = true
		}
		for _, id := range room.Climate {
			evalCtx.EnabledClimate[id] = true
		}
		for _, mp := range room.MediaPlayers {
			evalCtx.EnabledMedia[mp.Entity] = true
		}
		for _, he := range room.HeaderEntities {
			if types.NormalizeHeaderType(he.EntityType) == types.HeaderTypeWindow {
				evalCtx.EnabledWindows[he.Entity] = true
			}
		}
	}
	return evalCtx
}

// EvaluateSuggestions runs the rule set against the latest snapshot
func (s *Service) EvaluateSuggestions(ctx context.Context) []types.Suggestion {
	return s.suggestSvc.Evaluate(ctx, s.states.Snapshot(), s.EvalContext())
}

// DismissSuggestion suppresses a rule for the given duration, falling back
// to the default dismissal window
func (s *Service) DismissSuggestion(ctx context.Context, ruleID string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = defaultDismissTTL
	}
	return s.suggestSvc.Dismiss(ctx, ruleID, ttl)
}

// RecordSuggestionAction applies the post-action cooldown to a rule
func (s *Service) RecordSuggestionAction(ctx context.Context, ruleID string) error {
	return s.suggestSvc.RecordAction(ctx, ruleID, s.actionCooldown)
}

// CallService forwards a user-initiated service call to the platform and
// arms the per-entity suppression window so the UI does not snap back
// before the platform's state echo arrives
func (s *Service) CallService(ctx context.Context, domain, service string, data map[string]interface{}) error {
	if domain == "" || service == "" {
		return apperrors.New(http.StatusBadRequest, "domain and service are required")
	}

	if err := s.caller.CallService(ctx, domain, service, data); err != nil {
		return err
	}

	window := time.Duration(s.panelCfg.SliderSuppressionMs) * time.Millisecond
	if domain == "media_player" && service == "volume_set" {
		window = time.Duration(s.panelCfg.VolumeSuppressionMs) * time.Millisecond
	}
	for _, id := range entityIDsFromServiceData(data) {
		s.states.Suppression().Arm(id, window)
	}
	return nil
}

// LinkedCalendars returns the calendar entities configured for the
// upcoming-events card, empty before the first load
func (s *Service) LinkedCalendars() []string {
	s.houseMu.RLock()
	defer s.houseMu.RUnlock()
	if s.house == nil {
		return []string{}
	}
	out := make([]string, len(s.house.LinkedCalendars))
	copy(out, s.house.LinkedCalendars)
	return out
}

// MediaPresets returns the configured quick-play presets
func (s *Service) MediaPresets() []types.MediaPreset {
	s.houseMu.RLock()
	defer s.houseMu.RUnlock()
	if s.house == nil {
		return []types.MediaPreset{}
	}
	out := make([]types.MediaPreset, len(s.house.MediaPresets))
	copy(out, s.house.MediaPresets)
	return out
}

// PlayMediaPreset starts a configured preset on the given media player
func (s *Service) PlayMediaPreset(ctx context.Context, presetName string, player types.EntityID) error {
	if player == "" {
		return apperrors.New(http.StatusBadRequest, "player is required")
	}

	var preset *types.MediaPreset
	for _, p := range s.MediaPresets() {
		if p.Name == presetName {
			preset = &p
			break
		}
	}
	if preset == nil {
		return apperrors.New(http.StatusNotFound, "Media preset not found: "+presetName)
	}

	return s.CallService(ctx, "media_player", "play_media", map[string]interface{}{
		"entity_id":          string(player),
		"media_content_id":   preset.ContentID,
		"media_content_type": preset.ContentType,
	})
}

// Onboarded reports whether first-run onboarding has completed
func (s *Service) Onboarded(ctx context.Context) bool {
	value, err := s.kvRepo.Get(ctx, onboardedKey)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to read onboarding flag")
		return false
	}
	return value == "true"
}

// SetOnboarded marks first-run onboarding as completed
func (s *Service) SetOnboarded(ctx context.Context) error {
	return s.kvRepo.Set(ctx, onboardedKey, "true")
}

// entityIDsFromServiceData extracts the targeted entity ids from a service
// call payload; entity_id may be a string or a list
func entityIDsFromServiceData(data map[string]interface{}) []types.EntityID {
	raw, ok := data["entity_id"]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case string:
		return []types.EntityID{types.EntityID(v)}
	case []string:
		out := make([]types.EntityID, len(v))
		for i, id := range v {
			out[i] = types.EntityID(id)
		}
		return out
	case []interface{}:
		var out []types.EntityID
		for _, item := range v {
			if id, ok := item.(string); ok {
				out = append(out, types.EntityID(id))
			}
		}
		return out
	}
	return nil
}
