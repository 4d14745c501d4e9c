package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/autopay/backend/internal/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type transactionsRepo struct{ col *mongo.Collection }

// InsertIfAbsent relies on the unique index on tx_id: a duplicate key error
// means another delivery won, which is not a fault.
func (r *transactionsRepo) InsertIfAbsent(ctx context.Context, tx models.Transaction) (bool, error) {
	_, err := r.col.InsertOne(ctx, tx)
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *transactionsRepo) FindByTxID(ctx context.Context, txID string) (models.Transaction, bool, error) {
	var tx models.Transaction
	err := r.col.FindOne(ctx, bson.M{"tx_id": txID}).Decode(&tx)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Transaction{}, false, nil
	}
	if err != nil {
		return models.Transaction{}, false, err
	}
	return tx, true, nil
}

func (r *transactionsRepo) ListSince(ctx context.Context, since time.Time) ([]models.Transaction, error) {
	cur, err := r.col.Find(ctx,
		bson.M{"timestamp": bson.M{"$gte": since}},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	var out []models.Transaction
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
