package events

import (
	"context"
	"time"
)

// RouteAdmitted is the routing key for freshly admitted transactions.
const RouteAdmitted = "payment.admitted"

// TransactionAdmitted is published once per admitted transaction. Duplicate
// deliveries of the same tx_id never produce a second event.
type TransactionAdmitted struct {
	TxID            string    `json:"tx_id"`
	Amount          float64   `json:"amount"`
	Currency        string    `json:"currency"`
	SenderAccount   string    `json:"sender_account"`
	ReceiverAccount string    `json:"receiver_account"`
	Status          string    `json:"status"`
	Timestamp       time.Time `json:"timestamp"`
}

// Publisher delivers domain events to the broker.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body any) error
	Close() error
}

// Noop drops every event. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, string, any) error { return nil }
func (Noop) Close() error                               { return nil }
