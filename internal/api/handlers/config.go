package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/frostdev-ops/dashview-backend-go/pkg/errors"
	"github.com/frostdev-ops/dashview-backend-go/pkg/utils"
)

// GetHouseConfig returns the applied house configuration
func (h *Handlers) GetHouseConfig(c *gin.Context) {
	house := h.panel.House()
	if house == nil {
		utils.SendError(c, http.StatusNotFound, "No house configuration loaded")
		return
	}
	utils.SendSuccess(c, house)
}

// SaveHouseConfig replaces the house configuration wholesale
func (h *Handlers) SaveHouseConfig(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil || len(payload) == 0 {
		utils.SendError(c, http.StatusBadRequest, "Request body required")
		return
	}

	if err := h.panel.SaveConfig(c.Request.Context(), string(payload)); err != nil {
		utils.SendError(c, errors.GetStatusCode(err), err.Error())
		return
	}

	h.broadcastScenes()
	utils.SendSuccess(c, gin.H{"saved": true})
}

// GetConsistencyReport returns detected configuration inconsistencies
func (h *Handlers) GetConsistencyReport(c *gin.Context) {
	house := h.panel.House()
	if house == nil {
		utils.SendError(c, http.StatusNotFound, "No house configuration loaded")
		return
	}
	utils.SendSuccess(c, house.CheckConsistency())
}

// GetOnboarding reports the first-run onboarding flag
func (h *Handlers) GetOnboarding(c *gin.Context) {
	utils.SendSuccess(c, gin.H{"onboarded": h.panel.Onboarded(c.Request.Context())})
}

// CompleteOnboarding marks onboarding as done
func (h *Handlers) CompleteOnboarding(c *gin.Context) {
	if err := h.panel.SetOnboarded(c.Request.Context()); err != nil {
		utils.SendError(c, http.StatusInternalServerError, "Failed to persist onboarding flag")
		return
	}
	utils.SendSuccess(c, gin.H{"onboarded": true})
}
