package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Connect dials MongoDB and verifies the connection with a short ping. The
// returned client must be disconnected by the caller.
func Connect(ctx context.Context, url string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(url).SetMaxPoolSize(50))
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// EnsureIndexes creates the indexes the repositories rely on. Index creation
// is idempotent, so this runs unconditionally at boot.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := func(col string) error {
		_, err := db.Collection(col).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "tx_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		return err
	}
	if err := unique("transactions"); err != nil {
		return err
	}
	return unique("insights")
}
