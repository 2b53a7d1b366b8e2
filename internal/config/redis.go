package config

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is the global Redis client; nil when Redis is not configured
var Redis *redis.Client

// ConnectRedis creates the Redis client used for reset tokens
func ConnectRedis(cfg *Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	Redis = client

	log.Printf("✅ Redis connected successfully [%s:%s]", cfg.Redis.Host, cfg.Redis.Port)
	return client, nil
}

// CloseRedis closes the Redis connection
func CloseRedis() error {
	if Redis == nil {
		return nil
	}
	return Redis.Close()
}

// RedisHealthCheck pings Redis; a nil client reports healthy
func RedisHealthCheck(ctx context.Context) error {
	if Redis == nil {
		return nil
	}
	return Redis.Ping(ctx).Err()
}
