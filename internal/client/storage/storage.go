// Package storage opens the persisted-slot backend selected by configuration.
package storage

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/fraudwatch/internal/client/config"
	"github.com/dmitrijs2005/fraudwatch/internal/client/repositories/metadata"
	"github.com/redis/go-redis/v9"
)

// Store bundles a slot repository with whatever must be released on exit.
type Store struct {
	Metadata metadata.Repository
	close    func() error
}

// Close releases the underlying database or connection pool.
func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Open builds the repository for cfg.Driver. An empty driver means sqlite.
func Open(ctx context.Context, cfg config.StorageConfig) (*Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = config.StorageSQLite
	}

	switch driver {
	case config.StorageMemory:
		return &Store{Metadata: metadata.NewMemoryRepository()}, nil

	case config.StorageSQLite:
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("sqlite storage requires a database path")
		}
		db, err := InitDatabase(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &Store{Metadata: metadata.NewSQLiteRepository(db), close: db.Close}, nil

	case config.StorageRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("redis storage requires an address")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping failed: %w", err)
		}
		return &Store{Metadata: metadata.NewRedisRepository(client, cfg.RedisPrefix), close: client.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", driver)
	}
}
