package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/frostdev-ops/dashview-backend-go/internal/websocket"
	"github.com/frostdev-ops/dashview-backend-go/pkg/errors"
	"github.com/frostdev-ops/dashview-backend-go/pkg/utils"
)

// GetScenes returns every manual and generated scene
func (h *Handlers) GetScenes(c *gin.Context) {
	utils.SendSuccess(c, h.scenes.All())
}

// GetRoomScenes returns the scenes visible in one room's popup
func (h *Handlers) GetRoomScenes(c *gin.Context) {
	roomKey := c.Param("room_key")
	visible, err := h.scenes.ForRoom(roomKey)
	if err != nil {
		utils.SendError(c, errors.GetStatusCode(err), err.Error())
		return
	}
	utils.SendSuccess(c, visible)
}

// ActivateScene executes a scene by id
func (h *Handlers) ActivateScene(c *gin.Context) {
	sceneID := c.Param("scene_id")
	if err := h.scenes.Activate(c.Request.Context(), sceneID); err != nil {
		h.broadcastServiceCallError("scene_activation", sceneID, err)
		utils.SendError(c, errors.GetStatusCode(err), err.Error())
		return
	}
	if h.metrics != nil {
		h.metrics.ScenesActivated.Inc()
	}
	utils.SendSuccess(c, gin.H{"activated": sceneID})
}

func (h *Handlers) broadcastScenes() {
	h.hub.BroadcastToAll(websocket.Message{
		Type: websocket.MessageTypeScenesUpdated,
		Data: gin.H{"scenes": h.scenes.All()},
	})
}
