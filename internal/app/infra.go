package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auth-gateway/internal/config"
	"auth-gateway/internal/db"
	"auth-gateway/internal/logger"
	"auth-gateway/internal/redis"
	"auth-gateway/internal/session"

	"cattlecloud.net/go/scope"
)

const healthTimeout = 2 * time.Second

type Infra struct {
	DB       *db.DB
	Redis    *redis.Client // nil unless sessions are kept in redis
	Sessions session.Store
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	database, err := db.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx, database); err != nil {
		_ = database.Close()
		return nil, err
	}

	logger.Info("database ready", map[string]any{
		"driver": cfg.DatabaseDriver,
	})

	infra := &Infra{DB: database}

	switch cfg.SessionDriver {
	case "redis":
		client, err := redis.New(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		infra.Redis = client
		infra.Sessions = session.NewRedisStore(client.Client)
	default:
		infra.Sessions = session.NewMemoryStore()
	}

	logger.Info("session store ready", map[string]any{
		"driver": cfg.SessionDriver,
	})

	return infra, nil
}

// Healthy checks that every backing store answers.
func (i *Infra) Healthy() error {
	ctx, cancel := scope.TTL(healthTimeout)
	defer cancel()

	if err := i.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if i.Redis != nil {
		if err := i.Redis.Healthy(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

func (i *Infra) Close() error {
	var errs []error
	if i.Redis != nil {
		errs = append(errs, i.Redis.Close())
	}
	errs = append(errs, i.DB.Close())
	return errors.Join(errs...)
}
