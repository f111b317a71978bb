package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agencyos/meeting-scribe/pkg/config"
)

const (
	deliveryKeyPrefix  = "delivery:"
	processedKeyPrefix = "processed:"
)

// RedisStore is a DeliveryStore backed by Redis. SETNX gives the atomic
// check-and-insert and entries survive process restarts.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(cfg *config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// CheckAndSet uses SET NX with TTL for the atomic check-and-insert
func (rs *RedisStore) CheckAndSet(ctx context.Context, deliveryID string, ttl time.Duration) (bool, error) {
	set, err := rs.client.SetNX(ctx, deliveryKeyPrefix+deliveryID, time.Now().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return !set, nil
}

// MarkProcessed records pipeline completion for the id
func (rs *RedisStore) MarkProcessed(ctx context.Context, deliveryID string, ttl time.Duration) error {
	if err := rs.client.Set(ctx, processedKeyPrefix+deliveryID, time.Now().Format(time.RFC3339), ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// ProcessedAt reports pipeline completion for the id
func (rs *RedisStore) ProcessedAt(ctx context.Context, deliveryID string) (time.Time, bool, error) {
	val, err := rs.client.Get(ctx, processedKeyPrefix+deliveryID).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("redis get: %w", err)
	}

	ts, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return time.Time{}, true, nil
	}
	return ts, true, nil
}

// Close releases the underlying client
func (rs *RedisStore) Close() error {
	return rs.client.Close()
}
