package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/vietddude/prober/internal/core/config"
	redisclient "github.com/vietddude/prober/internal/infra/redis"
	"github.com/vietddude/prober/internal/infra/storage"
	"github.com/vietddude/prober/internal/infra/storage/postgres"
)

// openRecords opens the shared sentinel repository for the given store type.
// The returned func releases the connection.
func openRecords(ctx context.Context, cfg *config.AppConfig, storeType string) (storage.RecordRepository, func(), error) {
	switch storeType {
	case config.StorePostgres:
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return postgres.NewRecordRepo(db), func() { _ = db.Close() }, nil
	case config.StoreRedis:
		client, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return redisclient.NewRecordRepo(client, cfg.Redis.Prefix), func() { _ = client.Close() }, nil
	default:
		return nil, nil, errors.New("store has no shared repository")
	}
}

func findJob(cfg *config.AppConfig, name string) (config.JobConfig, bool) {
	for _, j := range cfg.Jobs {
		if j.Name == name {
			return j, true
		}
	}
	return config.JobConfig{}, false
}
