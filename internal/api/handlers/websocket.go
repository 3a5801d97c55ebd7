package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/frostdev-ops/dashview-backend-go/internal/websocket"
	"github.com/frostdev-ops/dashview-backend-go/pkg/utils"
)

// WebSocketHandler upgrades a panel client connection
func (h *Handlers) WebSocketHandler(c *gin.Context) {
	websocket.HandleWebSocket(h.hub, h.sessions, h.logger, c.Writer, c.Request)
}

// GetWebSocketStats returns hub statistics
func (h *Handlers) GetWebSocketStats(c *gin.Context) {
	utils.SendSuccess(c, h.hub.GetStats())
}
