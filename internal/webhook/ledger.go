package webhook

import (
	"context"
	"fmt"

	"github.com/autopay/backend/internal/models"
)

// TransactionStore is the narrow storage contract admission relies on.
// InsertIfAbsent must be atomic at the storage layer: implementations back it
// with a unique constraint on tx_id, never a read-then-write.
type TransactionStore interface {
	FindByTxID(ctx context.Context, txID string) (models.Transaction, bool, error)
	InsertIfAbsent(ctx context.Context, tx models.Transaction) (bool, error)
}

// Ledger decides, exactly once per tx_id, whether a transaction is admitted.
// Concurrent deliveries of the same tx_id serialize on the store's unique
// constraint; the ledger holds no locks of its own.
type Ledger struct {
	store TransactionStore
}

func NewLedger(store TransactionStore) *Ledger {
	return &Ledger{store: store}
}

// Admit stores the candidate record unless one with the same tx_id already
// exists. It returns the stored record: the fresh insert when admitted is
// true, or the original record, untouched, when the delivery is a duplicate.
// Storage faults surface as ErrStorageUnavailable.
func (l *Ledger) Admit(ctx context.Context, tx models.Transaction) (models.Transaction, bool, error) {
	inserted, err := l.store.InsertIfAbsent(ctx, tx)
	if err != nil {
		return models.Transaction{}, false, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if inserted {
		return tx, true, nil
	}

	existing, found, err := l.store.FindByTxID(ctx, tx.TxID)
	if err != nil {
		return models.Transaction{}, false, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if !found {
		// records are never deleted, so a missing row after a duplicate
		// insert means the store is misbehaving
		return models.Transaction{}, false, fmt.Errorf("%w: record missing after duplicate insert", ErrStorageUnavailable)
	}
	return existing, false, nil
}
