package store

import (
	"context"
	"fmt"
	"os"

	"github.com/autopay/backend/internal/config"
	"github.com/autopay/backend/internal/db"
	repo "github.com/autopay/backend/internal/repository"
	"github.com/autopay/backend/internal/repository/mongodb"
	"github.com/autopay/backend/internal/repository/postgres"
)

// Handle bundles opened repositories with the driver's lifecycle hooks.
type Handle struct {
	Repos repo.Repositories
	Ping  func(context.Context) error
	Close func()
}

// Open connects the configured store driver and returns ready repositories.
// With STORE_DRIVER=postgres and APP_MIGRATE=true, pending migrations run
// before the handle is returned.
func Open(ctx context.Context, cfg config.Config) (Handle, error) {
	switch cfg.StoreDriver {
	case "postgres":
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return Handle{}, fmt.Errorf("postgres connect: %w", err)
		}
		if os.Getenv("APP_MIGRATE") == "true" {
			if err := db.RunMigrations(ctx, pool); err != nil {
				pool.Close()
				return Handle{}, fmt.Errorf("migrations: %w", err)
			}
		}
		return Handle{
			Repos: postgres.NewRepositories(pool),
			Ping:  pool.Ping,
			Close: pool.Close,
		}, nil

	case "mongo":
		client, err := mongodb.Connect(ctx, cfg.MongoURL)
		if err != nil {
			return Handle{}, fmt.Errorf("mongo connect: %w", err)
		}
		database := client.Database(cfg.MongoDB)
		if err := mongodb.EnsureIndexes(ctx, database); err != nil {
			_ = client.Disconnect(context.Background())
			return Handle{}, fmt.Errorf("mongo indexes: %w", err)
		}
		return Handle{
			Repos: mongodb.NewRepositories(database),
			Ping: func(ctx context.Context) error {
				return client.Ping(ctx, nil)
			},
			Close: func() {
				_ = client.Disconnect(context.Background())
			},
		}, nil

	default:
		return Handle{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
