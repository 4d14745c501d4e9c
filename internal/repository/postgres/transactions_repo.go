package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/autopay/backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type transactionsRepo struct{ pool *pgxpool.Pool }

// InsertIfAbsent relies on the tx_id primary key: ON CONFLICT DO NOTHING
// makes concurrent duplicates lose without an error, and the affected-row
// count says which caller won.
func (r *transactionsRepo) InsertIfAbsent(ctx context.Context, tx models.Transaction) (bool, error) {
	const q = `
INSERT INTO transactions (
  tx_id, amount, currency, sender_account, receiver_account, description, status, "timestamp"
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (tx_id) DO NOTHING`
	tag, err := r.pool.Exec(ctx, q,
		tx.TxID, tx.Amount, tx.Currency, tx.SenderAccount, tx.ReceiverAccount, tx.Description, tx.Status, tx.Timestamp,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *transactionsRepo) FindByTxID(ctx context.Context, txID string) (models.Transaction, bool, error) {
	var tx models.Transaction
	err := r.pool.QueryRow(ctx,
		`SELECT tx_id, amount, currency, sender_account, receiver_account, description, status, "timestamp"
		   FROM transactions
		  WHERE tx_id=$1`,
		txID,
	).Scan(&tx.TxID, &tx.Amount, &tx.Currency, &tx.SenderAccount, &tx.ReceiverAccount, &tx.Description, &tx.Status, &tx.Timestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Transaction{}, false, nil
	}
	if err != nil {
		return models.Transaction{}, false, err
	}
	return tx, true, nil
}

func (r *transactionsRepo) ListSince(ctx context.Context, since time.Time) ([]models.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT tx_id, amount, currency, sender_account, receiver_account, description, status, "timestamp"
		   FROM transactions
		  WHERE "timestamp" >= $1
		  ORDER BY "timestamp" DESC`,
		since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(&tx.TxID, &tx.Amount, &tx.Currency, &tx.SenderAccount, &tx.ReceiverAccount, &tx.Description, &tx.Status, &tx.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}
