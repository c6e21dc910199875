package repository

import (
	"context"
	"fmt"
	"time"

	"yoyaku/internal/config"

	"github.com/redis/go-redis/v9"
)

// RedisSlotLocker claims slot starts with SETNX + TTL so two callers racing
// for the same slot inside one deployment collide before the calendar write.
type RedisSlotLocker struct {
	client *redis.Client
}

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	return redis.NewClient(options)
}

func NewRedisSlotLocker(client *redis.Client) *RedisSlotLocker {
	return &RedisSlotLocker{client: client}
}

func (r *RedisSlotLocker) Acquire(ctx context.Context, slotStart time.Time, ttl time.Duration) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}

	ok, err := r.client.SetNX(ctx, lockKey(slotStart), 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire slot lock: %w", err)
	}
	return ok, nil
}

func (r *RedisSlotLocker) Release(ctx context.Context, slotStart time.Time) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	if err := r.client.Del(ctx, lockKey(slotStart)).Err(); err != nil {
		return fmt.Errorf("failed to release slot lock: %w", err)
	}
	return nil
}

func lockKey(slotStart time.Time) string {
	return fmt.Sprintf("slot_lock:%d", slotStart.UTC().Unix())
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}
