package persistence

import (
	"context"
	"time"

	"tracker_server/core/port/out"

	"github.com/redis/go-redis/v9"
)

// RedisSyncLock serializes sync runs per user with a TTL'd SETNX key.
type RedisSyncLock struct {
	redis  *redis.Client
	prefix string
}

// NewRedisSyncLock creates a new RedisSyncLock.
func NewRedisSyncLock(client *redis.Client) *RedisSyncLock {
	return &RedisSyncLock{
		redis:  client,
		prefix: "sync:lock:",
	}
}

// Acquire takes the per-user lock. Returns false when another run holds it.
func (l *RedisSyncLock) Acquire(ctx context.Context, userID string, ttl time.Duration) (bool, error) {
	return l.redis.SetNX(ctx, l.prefix+userID, "1", ttl).Result()
}

// Release drops the per-user lock.
func (l *RedisSyncLock) Release(ctx context.Context, userID string) error {
	return l.redis.Del(ctx, l.prefix+userID).Err()
}

// NoopSyncLock is used when Redis is not configured; every acquire succeeds.
type NoopSyncLock struct{}

func (NoopSyncLock) Acquire(ctx context.Context, userID string, ttl time.Duration) (bool, error) {
	return true, nil
}

func (NoopSyncLock) Release(ctx context.Context, userID string) error {
	return nil
}

var (
	_ out.SyncLocker = (*RedisSyncLock)(nil)
	_ out.SyncLocker = NoopSyncLock{}
)
