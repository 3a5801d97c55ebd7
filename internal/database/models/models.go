package models

import "time"

// HouseConfigRecord is the persisted panel configuration document.
// The payload is the raw JSON the panel serves and edits; the panel loads
// it wholesale, last write wins.
type HouseConfigRecord struct {
	ID        int       `json:"id"`
	Payload   string    `json:"payload"`
	UpdatedAt time.Time `json:"updated_at"`
}

// KVEntry is one persisted key-value record (onboarding flag, suggestion
// cooldowns)
type KVEntry struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
