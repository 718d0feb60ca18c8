package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hanifn/catalog-backend/config"
	"github.com/hanifn/catalog-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const (
	pingTimeout        = 5 * time.Second
	blacklistKeyPrefix = "catalog:token-blacklist:"
)

var client *redis.Client

// Init connects to Redis and verifies the connection with a ping.
func Init(cfg *config.RedisConfig) error {
	c := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	client = c
	logger.Info("Redis connection established", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})
	return nil
}

// GetClient returns the Redis client, or nil when Init was not called.
// Callers treat a nil client as "blacklist disabled".
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection.
func Close() error {
	if client == nil {
		return nil
	}
	return client.Close()
}

// BlacklistToken marks a revoked token until its natural expiry.
func BlacklistToken(ctx context.Context, token string, expiry time.Duration) error {
	if err := client.Set(ctx, blacklistKeyPrefix+token, "1", expiry).Err(); err != nil {
		logger.Error("Failed to blacklist token", err)
		return err
	}
	return nil
}

// IsTokenBlacklisted reports whether a token has been revoked.
func IsTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	err := client.Get(ctx, blacklistKeyPrefix+token).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
