package mongodb

import (
	repo "github.com/autopay/backend/internal/repository"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

func NewRepositories(db *mongo.Database) repo.Repositories {
	return repo.Repositories{
		Transactions: &transactionsRepo{col: db.Collection("transactions")},
		Insights:     &insightsRepo{col: db.Collection("insights")},
		AuditLogs:    &auditLogsRepo{col: db.Collection("audit_logs")},
	}
}
