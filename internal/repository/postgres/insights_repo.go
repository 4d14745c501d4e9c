package postgres

import (
	"context"
	"errors"

	"github.com/autopay/backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type insightsRepo struct{ pool *pgxpool.Pool }

// Save upserts so a retried enrichment overwrites its own earlier result.
func (r *insightsRepo) Save(ctx context.Context, in models.Insight) error {
	const q = `
INSERT INTO insights (tx_id, summary, model, created_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (tx_id) DO UPDATE
SET summary = EXCLUDED.summary, model = EXCLUDED.model, created_at = EXCLUDED.created_at`
	_, err := r.pool.Exec(ctx, q, in.TxID, in.Summary, in.Model, in.CreatedAt)
	return err
}

func (r *insightsRepo) FindByTxID(ctx context.Context, txID string) (models.Insight, bool, error) {
	var in models.Insight
	err := r.pool.QueryRow(ctx,
		`SELECT tx_id, summary, model, created_at FROM insights WHERE tx_id=$1`,
		txID,
	).Scan(&in.TxID, &in.Summary, &in.Model, &in.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Insight{}, false, nil
	}
	if err != nil {
		return models.Insight{}, false, err
	}
	return in, true, nil
}
