package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/frostdev-ops/dashview-backend-go/internal/core/types"
	"github.com/frostdev-ops/dashview-backend-go/internal/websocket"
	"github.com/frostdev-ops/dashview-backend-go/pkg/errors"
	"github.com/frostdev-ops/dashview-backend-go/pkg/utils"
)

// ListEntities returns the last-known state of every watched entity
func (h *Handlers) ListEntities(c *gin.Context) {
	snapshot := h.states.Snapshot()
	out := make([]*types.EntityState, 0, len(snapshot))
	for _, st := range snapshot {
		out = append(out, st)
	}
	utils.SendSuccessWithMeta(c, out, gin.H{"count": len(out)})
}

// GetEntity returns the last-known state of one entity
func (h *Handlers) GetEntity(c *gin.Context) {
	id := types.EntityID(c.Param("entity_id"))
	st := h.states.LastKnown(id)
	if st == nil {
		utils.SendError(c, http.StatusNotFound, "Entity not known: "+string(id))
		return
	}
	utils.SendSuccess(c, st)
}

// ServiceCallRequest is the payload for a forwarded service call
type ServiceCallRequest struct {
	Domain  string                 `json:"domain" binding:"required"`
	Service string                 `json:"service" binding:"required"`
	Data    map[string]interface{} `json:"data"`
}

// CallService forwards a user-initiated service call to the platform and
// arms the matching update-suppression window
func (h *Handlers) CallService(c *gin.Context) {
	var req ServiceCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, http.StatusBadRequest, "Invalid service call payload: "+err.Error())
		return
	}

	if err := h.panel.CallService(c.Request.Context(), req.Domain, req.Service, req.Data); err != nil {
		h.broadcastServiceCallError("service_call", entityIDFromData(req.Data), err)
		utils.SendError(c, errors.GetStatusCode(err), err.Error())
		return
	}
	utils.SendSuccess(c, gin.H{"called": req.Domain + "." + req.Service})
}

func entityIDFromData(data map[string]interface{}) string {
	if id, ok := data["entity_id"].(string); ok {
		return id
	}
	return ""
}

func (h *Handlers) broadcastServiceCallError(source, entityID string, err error) {
	h.hub.BroadcastToAll(websocket.Message{
		Type: websocket.MessageTypeServiceCallError,
		Data: gin.H{
			"source":    source,
			"entity_id": entityID,
			"error":     err.Error(),
		},
	})
}
