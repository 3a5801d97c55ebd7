package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/frostdev-ops/dashview-backend-go/internal/config"
	"github.com/frostdev-ops/dashview-backend-go/internal/core/metrics"
	"github.com/frostdev-ops/dashview-backend-go/internal/core/panel"
	"github.com/frostdev-ops/dashview-backend-go/internal/core/refresh"
	"github.com/frostdev-ops/dashview-backend-go/internal/core/scenes"
	"github.com/frostdev-ops/dashview-backend-go/internal/core/state"
	"github.com/frostdev-ops/dashview-backend-go/internal/websocket"
)

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	cfg      *config.Config
	logger   *logrus.Logger
	hub      *websocket.Hub
	panel    *panel.Service
	scenes   *scenes.Service
	states   *state.Manager
	refresh  *refresh.Manager
	sessions websocket.SessionFactory
	metrics  *metrics.Metrics
}

// NewHandlers creates the handler set
func NewHandlers(
	cfg *config.Config,
	panelSvc *panel.Service,
	sceneSvc *scenes.Service,
	states *state.Manager,
	refreshMgr *refresh.Manager,
	hub *websocket.Hub,
	sessions websocket.SessionFactory,
	m *metrics.Metrics,
	logger *logrus.Logger,
) *Handlers {
	return &Handlers{
		cfg:      cfg,
		logger:   logger,
		hub:      hub,
		panel:    panelSvc,
		scenes:   sceneSvc,
		states:   states,
		refresh:  refreshMgr,
		sessions: sessions,
		metrics:  m,
	}
}
