package models

import "time"

// Insight is the AI-generated summary attached to an admitted transaction.
type Insight struct {
	TxID      string    `json:"tx_id" bson:"tx_id"`
	Summary   string    `json:"summary" bson:"summary"`
	Model     string    `json:"model" bson:"model"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
