package models

import "time"

type TransactionStatus string

const (
	TxnPending TransactionStatus = "pending"
	TxnSuccess TransactionStatus = "success"
	// TxnAlreadyProcessed marks duplicate deliveries in responses only;
	// stored records never carry it.
	TxnAlreadyProcessed TransactionStatus = "already_processed"
)

type Transaction struct {
	TxID            string            `json:"tx_id" bson:"tx_id"`
	Amount          float64           `json:"amount" bson:"amount"`
	Currency        string            `json:"currency" bson:"currency"`
	SenderAccount   string            `json:"sender_account" bson:"sender_account"`
	ReceiverAccount string            `json:"receiver_account" bson:"receiver_account"`
	Description     *string           `json:"description,omitempty" bson:"description,omitempty"`
	Status          TransactionStatus `json:"status" bson:"status"`
	Timestamp       time.Time         `json:"timestamp" bson:"timestamp"`
}
