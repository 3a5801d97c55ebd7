package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/frostdev-ops/dashview-backend-go/internal/core/types"
	"github.com/frostdev-ops/dashview-backend-go/pkg/errors"
	"github.com/frostdev-ops/dashview-backend-go/pkg/utils"
)

// GetLinkedCalendars returns the calendars feeding the upcoming-events card
func (h *Handlers) GetLinkedCalendars(c *gin.Context) {
	utils.SendSuccess(c, gin.H{"calendars": h.panel.LinkedCalendars()})
}

// GetMediaPresets returns the configured quick-play presets
func (h *Handlers) GetMediaPresets(c *gin.Context) {
	utils.SendSuccess(c, gin.H{"presets": h.panel.MediaPresets()})
}

// PlayMediaPresetRequest names a preset and the player to start it on
type PlayMediaPresetRequest struct {
	Preset string `json:"preset" binding:"required"`
	Player string `json:"player" binding:"required"`
}

// PlayMediaPreset starts a preset on a media player
func (h *Handlers) PlayMediaPreset(c *gin.Context) {
	var req PlayMediaPresetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, http.StatusBadRequest, "Invalid preset play payload: "+err.Error())
		return
	}

	if err := h.panel.PlayMediaPreset(c.Request.Context(), req.Preset, types.EntityID(req.Player)); err != nil {
		h.broadcastServiceCallError("media_preset", req.Player, err)
		utils.SendError(c, errors.GetStatusCode(err), err.Error())
		return
	}
	utils.SendSuccess(c, gin.H{"playing": req.Preset})
}
