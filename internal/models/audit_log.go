package models

import "time"

type AuditLog struct {
	ID         string         `json:"id" bson:"_id,omitempty"`
	EntityType string         `json:"entity_type" bson:"entity_type"`
	EntityID   *string        `json:"entity_id" bson:"entity_id"`
	Action     string         `json:"action" bson:"action"`
	Details    map[string]any `json:"details" bson:"details"`
	CreatedAt  time.Time      `json:"created_at" bson:"created_at"`
}
