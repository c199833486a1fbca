package repository

import (
	"context"
	"errors"
	"fmt"

	"fairFin/business/artifact"
	"fairFin/internal/repository/filesystem"
	psqlRepo "fairFin/internal/repository/postgres"
	redisRepo "fairFin/internal/repository/redis"
	"fairFin/pkg/config"
	"fairFin/pkg/database"
	redisClient "fairFin/pkg/database/redis"
	"fairFin/pkg/logger"
)

// Backend is the artifact store selected by configuration.
type Backend struct {
	Store artifact.Store
	// Cache is the redis tier in front of Store, nil when disabled.
	Cache *redisRepo.ArtifactCache

	closers []func() error
}

// OpenBackend builds the configured artifact store, optionally fronted by
// the redis tier. Close releases every connection it opened.
func OpenBackend(ctx context.Context, cfg *config.Config) (*Backend, error) {
	b := &Backend{}

	switch cfg.Model.Source {
	case config.ModelSourceDB:
		db, err := database.Open(cfg)
		if err != nil {
			return nil, fmt.Errorf("open artifact database: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, sqlDB.Close)
		b.Store = psqlRepo.NewArtifactRepository(db)
	default:
		b.Store = filesystem.NewArtifactStore(cfg.Model.Dir)
	}

	if cfg.Redis.Enabled {
		client, err := redisClient.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		b.closers = append(b.closers, func() error { return redisClient.CloseRedisClient(client) })
		b.Cache = redisRepo.NewArtifactCache(client, b.Store, cfg.Redis.ArtifactTTL)
		b.Store = b.Cache
	}

	logger.Info("artifact store ready",
		"source", cfg.Model.Source,
		"redis", cfg.Redis.Enabled,
	)
	return b, nil
}

func (b *Backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i]())
	}
	b.closers = nil
	return errors.Join(errs...)
}
