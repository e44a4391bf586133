// Package bootstrap assembles the backing stores, services and router shared by
// the API server and the operator CLI.
package bootstrap

import (
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/transport-request-api/pkg/cache"
	"github.com/noah-isme/transport-request-api/pkg/config"
	"github.com/noah-isme/transport-request-api/pkg/database"
)

// Deps holds the database and cache clients.
type Deps struct {
	DB    *sqlx.DB
	Redis *redis.Client
}

// Open connects to PostgreSQL and, when withRedis is set, to Redis.
func Open(cfg *config.Config, withRedis bool, logger *zap.Logger) (Deps, error) {
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return Deps{}, err
	}
	deps := Deps{DB: db}
	if !withRedis {
		return deps, nil
	}

	client, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		_ = db.Close()
		return Deps{}, err
	}
	deps.Redis = client
	logger.Info("backing stores connected", zap.String("db", cfg.Database.Name), zap.Int("redis_db", cfg.Redis.DB))
	return deps, nil
}

// Close releases every open client.
func (d Deps) Close(logger *zap.Logger) {
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			logger.Warn("redis close failed", zap.Error(err))
		}
	}
	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			logger.Warn("postgres close failed", zap.Error(err))
		}
	}
}
