package mongodb

import (
	"context"
	"time"

	"github.com/autopay/backend/internal/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type auditLogsRepo struct{ col *mongo.Collection }

func (r *auditLogsRepo) Create(ctx context.Context, l models.AuditLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, l)
	return err
}
