package mongodb

import (
	"context"
	"errors"

	"github.com/autopay/backend/internal/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type insightsRepo struct{ col *mongo.Collection }

// Save upserts so a retried enrichment overwrites its own earlier result.
func (r *insightsRepo) Save(ctx context.Context, in models.Insight) error {
	_, err := r.col.ReplaceOne(ctx, bson.M{"tx_id": in.TxID}, in, options.Replace().SetUpsert(true))
	return err
}

func (r *insightsRepo) FindByTxID(ctx context.Context, txID string) (models.Insight, bool, error) {
	var in models.Insight
	err := r.col.FindOne(ctx, bson.M{"tx_id": txID}).Decode(&in)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Insight{}, false, nil
	}
	if err != nil {
		return models.Insight{}, false, err
	}
	return in, true, nil
}
