package cache

import (
	"fmt"

	"donare/internal/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds a redis client from the application configuration.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
