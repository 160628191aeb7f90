package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"adsettle/internal/models"

	"github.com/redis/go-redis/v9"
)

// CacheService is a read-through cache for the hot read paths: user
// balances (polled by the withdrawal UI) and channel rows (read every
// auction cycle). Cached entries are invalidated on every mutation,
// never updated in place.
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

func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, s.ttl).Err()
}

// Get reports whether the key was found; a miss is not an error.
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

func balanceKey(userID uint) string {
	return fmt.Sprintf("balance:user:%d", userID)
}

func channelKey(id uint) string {
	return fmt.Sprintf("channel:id:%d", id)
}

func (s *CacheService) CacheBalance(ctx context.Context, balance *models.Balance) error {
	return s.Set(ctx, balanceKey(balance.UserID), balance)
}

func (s *CacheService) GetBalance(ctx context.Context, userID uint) (*models.Balance, bool) {
	var balance models.Balance
	found, err := s.Get(ctx, balanceKey(userID), &balance)
	if err != nil || !found {
		return nil, false
	}
	return &balance, true
}

func (s *CacheService) InvalidateBalance(ctx context.Context, userID uint) error {
	return s.Delete(ctx, balanceKey(userID))
}

func (s *CacheService) CacheChannel(ctx context.Context, channel *models.Channel) error {
	return s.Set(ctx, channelKey(channel.ID), channel)
}

func (s *CacheService) GetChannel(ctx context.Context, id uint) (*models.Channel, bool) {
	var channel models.Channel
	found, err := s.Get(ctx, channelKey(id), &channel)
	if err != nil || !found {
		return nil, false
	}
	return &channel, true
}

func (s *CacheService) InvalidateChannel(ctx context.Context, id uint) error {
	return s.Delete(ctx, channelKey(id))
}

func (s *CacheService) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	return nil
}

// FlushAll flushes all keys from the cache.
func (s *CacheService) FlushAll(ctx context.Context) error {
	return s.client.FlushAll(ctx).Err()
}

// Close closes the Redis client connection.
func (s *CacheService) Close() error {
	return s.client.Close()
}
