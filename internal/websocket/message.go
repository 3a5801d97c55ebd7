package websocket

import (
	"encoding/json"
	"time"
)

// Message types exchanged with panel clients
const (
	MessageTypeEntityStateChanged = "entity_state_changed"
	MessageTypeSuggestionsUpdated = "suggestions_updated"
	MessageTypeScenesUpdated      = "scenes_updated"
	MessageTypePopupState         = "popup_state"
	MessageTypePopupFragment      = "popup_fragment"
	MessageTypeNavigate           = "navigate"
	MessageTypeServiceCallError   = "service_call_error"
	MessageTypeConnection         = "connection"
)

// Message is one websocket frame
type Message struct {
	Type      string                 `json:"type"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
}

// ToJSON converts the message to JSON bytes
func (m Message) ToJSON() []byte {
	m.Timestamp = time.Now().UTC()
	data, _ := json.Marshal(m)
	return data
}
