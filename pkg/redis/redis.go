package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/ikkim/shopadmin-backend/config"
	"github.com/ikkim/shopadmin-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// NewClient builds a client without connecting.
func NewClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})
}

// Init initializes Redis connection
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client = NewClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully", nil)
	return nil
}

// GetClient returns the Redis client instance, nil before Init.
func GetClient() *redis.Client {
	return client
}

// Ping reports whether Redis answers. Used by the health check.
func Ping(ctx context.Context) error {
	if client == nil {
		return fmt.Errorf("redis not initialized")
	}
	return client.Ping(ctx).Err()
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection", nil)
		return client.Close()
	}
	return nil
}
