package postgres

import (
	repo "github.com/autopay/backend/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositories(pool *pgxpool.Pool) repo.Repositories {
	return repo.Repositories{
		Transactions: &transactionsRepo{pool},
		Insights:     &insightsRepo{pool},
		AuditLogs:    &auditLogsRepo{pool},
	}
}
