package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/frostdev-ops/dashview-backend-go/pkg/utils"
)

// GetSuggestions evaluates the rule set against the latest snapshot
func (h *Handlers) GetSuggestions(c *gin.Context) {
	utils.SendSuccess(c, h.panel.EvaluateSuggestions(c.Request.Context()))
}

// DismissSuggestionRequest carries an optional dismissal duration
type DismissSuggestionRequest struct {
	DurationMs int64 `json:"duration_ms"`
}

// DismissSuggestion suppresses a rule's suggestion for a while
func (h *Handlers) DismissSuggestion(c *gin.Context) {
	ruleID := c.Param("rule_id")

	var req DismissSuggestionRequest
	// body is optional, the default dismissal window applies without one
	_ = c.ShouldBindJSON(&req)

	ttl := time.Duration(req.DurationMs) * time.Millisecond
	if err := h.panel.DismissSuggestion(c.Request.Context(), ruleID, ttl); err != nil {
		utils.SendError(c, http.StatusInternalServerError, "Failed to record dismissal")
		return
	}
	utils.SendSuccess(c, gin.H{"dismissed": ruleID})
}

// RecordSuggestionAction applies the post-action cooldown after the user
// acted on a suggestion
func (h *Handlers) RecordSuggestionAction(c *gin.Context) {
	ruleID := c.Param("rule_id")
	if err := h.panel.RecordSuggestionAction(c.Request.Context(), ruleID); err != nil {
		utils.SendError(c, http.StatusInternalServerError, "Failed to record action cooldown")
		return
	}
	utils.SendSuccess(c, gin.H{"recorded": ruleID})
}
