package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/frostdev-ops/dashview-backend-go/pkg/utils"
)

// RefreshRequest optionally limits the refresh to named components
type RefreshRequest struct {
	Components []string `json:"components"`
}

// TriggerRefresh requests a data refresh; throttled or overlapping
// requests are rejected, not queued
func (h *Handlers) TriggerRefresh(c *gin.Context) {
	var req RefreshRequest
	_ = c.ShouldBindJSON(&req)

	accepted := h.refresh.Refresh(c.Request.Context(), req.Components...)
	if !accepted && h.metrics != nil {
		h.metrics.RefreshesRejected.Inc()
	}
	utils.SendSuccess(c, gin.H{"accepted": accepted})
}

// GetRefreshStats returns rolling refresh statistics
func (h *Handlers) GetRefreshStats(c *gin.Context) {
	utils.SendSuccess(c, h.refresh.Statistics())
}
