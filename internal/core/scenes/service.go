package scenes

import (
	"context"
	"net/http"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/frostdev-ops/dashview-backend-go/internal/core/types"
	"github.com/frostdev-ops/dashview-backend-go/pkg/errors"
)

// ServiceCaller issues service calls against the platform
type ServiceCaller interface {
	CallService(ctx context.Context, domain, service string, data map[string]interface{}) error
}

// Service merges manual and generated scenes and activates them.
// Auto scenes are recomputed on every configuration (re)load; manual scenes
// come from the configuration verbatim.
type Service struct {
	generator *Generator
	caller    ServiceCaller
	logger    *logrus.Logger

	mu     sync.RWMutex
	manual []types.Scene
	auto   []types.Scene
	rooms  map[string]types.Room
}

// NewService creates a scene service
func NewService(generator *Generator, caller ServiceCaller, logger *logrus.Logger) *Service {
	return &Service{
		generator: generator,
		caller:    caller,
		logger:    logger,
	}
}

// Reload recomputes the scene list from a freshly loaded configuration
func (s *Service) Reload(cfg *types.HouseConfig) {
	if cfg == nil {
		return
	}
	auto := s.generator.GenerateAll(cfg)

	s.mu.Lock()
	s.manual = make([]types.Scene, len(cfg.Scenes))
	copy(s.manual, cfg.Scenes)
	s.auto = auto
	s.rooms = cfg.Rooms
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"manual": len(cfg.Scenes),
		"auto":   len(auto),
	}).Info("Scene list rebuilt")
}

// All returns manual scenes followed by generated scenes
func (s *Service) All() []types.Scene {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Scene, 0, len(s.manual)+len(s.auto))
	out = append(out, s.manual...)
	out = append(out, s.auto...)
	return out
}

// ForRoom returns the scenes a room's popup shows
func (s *Service) ForRoom(roomKey string) ([]types.Scene, error) {
	s.mu.RLock()
	room, ok := s.rooms[roomKey]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.New(http.StatusNotFound, "room not found: "+roomKey)
	}
	return RoomScenes(roomKey, &room, s.All()), nil
}

// Activate executes a scene by id. Generated scenes translate into the
// matching bulk service call; manual scenes are delegated to the platform's
// scene integration.
func (s *Service) Activate(ctx context.Context, sceneID string) error {
	scene, ok := s.find(sceneID)
	if !ok {
		return errors.New(http.StatusNotFound, "scene not found: "+sceneID)
	}

	var err error
	switch scene.Type {
	case types.SceneTypeRoomLightsOff:
		err = s.caller.CallService(ctx, "light", "turn_off", map[string]interface{}{
			"entity_id": entityIDStrings(scene.Entities),
		})
	case types.SceneTypeRoomCovers, types.SceneTypeGlobalCovers:
		err = s.caller.CallService(ctx, "cover", "close_cover", map[string]interface{}{
			"entity_id": entityIDStrings(scene.Entities),
		})
	default:
		err = s.caller.CallService(ctx, "scene", "turn_on", map[string]interface{}{
			"entity_id": scene.ID,
		})
	}

	if err != nil {
		s.logger.WithError(err).WithField("scene_id", sceneID).Error("Scene activation failed")
		return err
	}
	s.logger.WithField("scene_id", sceneID).Info("Scene activated")
	return nil
}

func (s *Service) find(sceneID string) (types.Scene, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, scene := range s.manual {
		if scene.ID == sceneID {
			return scene, true
		}
	}
	for _, scene := range s.auto {
		if scene.ID == sceneID {
			return scene, true
		}
	}
	return types.Scene{}, false
}

func entityIDStrings(ids []types.EntityID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
