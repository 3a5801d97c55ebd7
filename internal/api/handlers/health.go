package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/frostdev-ops/dashview-backend-go/pkg/utils"
)

var startTime = time.Now()

// Health returns service health and basic runtime information
func (h *Handlers) Health(c *gin.Context) {
	utils.SendSuccess(c, gin.H{
		"status":            "healthy",
		"uptime_seconds":    int64(time.Since(startTime).Seconds()),
		"connected_clients": h.hub.GetClientCount(),
		"watched_entities":  h.states.Watch().Len(),
		"config_loaded":     h.panel.House() != nil,
	})
}
