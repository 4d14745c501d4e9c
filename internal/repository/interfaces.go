package repository

import (
	"context"
	"time"

	"github.com/autopay/backend/internal/models"
)

// Transactions is the storage surface for admitted transactions. FindByTxID
// reports found=false for unknown ids. InsertIfAbsent is backed by a unique
// index on tx_id and reports whether this call created the record.
type Transactions interface {
	FindByTxID(ctx context.Context, txID string) (models.Transaction, bool, error)
	InsertIfAbsent(ctx context.Context, tx models.Transaction) (bool, error)
	ListSince(ctx context.Context, since time.Time) ([]models.Transaction, error)
}

type Insights interface {
	Save(ctx context.Context, in models.Insight) error
	FindByTxID(ctx context.Context, txID string) (models.Insight, bool, error)
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}

// Repositories bundles the store implementations selected at boot.
type Repositories struct {
	Transactions Transactions
	Insights     Insights
	AuditLogs    AuditLogs
}
