package models

import "time"

// ToolState is an opaque, upsert-keyed (ManifestID, StateKey) row a tool's
// execution loop can use to persist small bits of state across invocations.
type ToolState struct {
	ID         string    `json:"id"`
	ManifestID string    `json:"manifest_id"`
	StateKey   string    `json:"state_key"`
	Value      string    `json:"value"`
	UpdatedAt  time.Time `json:"updated_at"`
}
