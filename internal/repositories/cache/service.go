// Package cache provides a JSON-over-redis cache used to soften repeat
// donor lookups.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"donare/internal/models"

	"github.com/redis/go-redis/v9"
)

type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
	}
}

// Base operations
func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, s.ttl).Err()
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

func (s *CacheService) Close() error {
	return s.client.Close()
}

func (s *CacheService) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	return nil
}

// Donor caching

func donorKey(email, lastName string) string {
	return fmt.Sprintf("donor:lookup:%s:%s",
		strings.ToLower(email), strings.ToLower(lastName))
}

func (s *CacheService) CacheDonor(ctx context.Context, donor *models.Donor) error {
	if donor == nil {
		return fmt.Errorf("cannot cache nil donor")
	}
	return s.Set(ctx, donorKey(donor.Email, donor.LastName), donor)
}

func (s *CacheService) GetDonor(ctx context.Context, email, lastName string) (*models.Donor, bool, error) {
	var donor models.Donor
	found, err := s.Get(ctx, donorKey(email, lastName), &donor)
	if err != nil || !found {
		return nil, false, err
	}
	return &donor, true, nil
}

func (s *CacheService) InvalidateDonor(ctx context.Context, email, lastName string) error {
	return s.Delete(ctx, donorKey(email, lastName))
}
