package homeassistant

import (
	"fmt"
	"time"

	"github.com/frostdev-ops/dashview-backend-go/internal/core/types"
)

// HAState is the platform's wire representation of one entity state
type HAState struct {
	EntityID    string                 `json:"entity_id"`
	State       string                 `json:"state"`
	Attributes  map[string]interface{} `json:"attributes"`
	LastChanged time.Time              `json:"last_changed"`
	LastUpdated time.Time              `json:"last_updated"`
}

// ToEntityState converts the wire state into the panel's representation
func (s *HAState) ToEntityState() *types.EntityState {
	if s == nil {
		return nil
	}
	return &types.EntityState{
		EntityID:    types.EntityID(s.EntityID),
		State:       s.State,
		Attributes:  s.Attributes,
		LastChanged: s.LastChanged,
	}
}

// wsMessage covers every websocket frame shape we exchange with the platform
type wsMessage struct {
	ID          int64           `json:"id,omitempty"`
	Type        string          `json:"type"`
	AccessToken string          `json:"access_token,omitempty"`
	EventType   string          `json:"event_type,omitempty"`
	Success     *bool           `json:"success,omitempty"`
	Event       *wsEvent        `json:"event,omitempty"`
	Error       *wsMessageError `json:"error,omitempty"`
}

type wsEvent struct {
	EventType string      `json:"event_type"`
	Data      wsEventData `json:"data"`
}

type wsEventData struct {
	EntityID string   `json:"entity_id"`
	NewState *HAState `json:"new_state"`
	OldState *HAState `json:"old_state"`
}

type wsMessageError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIError is a non-2xx response from the platform's REST API
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("home assistant API error %d: %s", e.StatusCode, e.Body)
}
