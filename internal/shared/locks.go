package shared

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrLockHeld indicates another worker holds the critical section.
var ErrLockHeld = errors.New("lock already held")

// CloseLockKey builds the redis key guarding a close critical section.
func CloseLockKey(clientID int64, period string) string {
	return fmt.Sprintf("close:client:%d:period:%s:lock", clientID, period)
}

// PeriodLocker serialises close attempts per (client, period) through
// a redis lease. The database row lock remains the final authority;
// this keeps concurrent attempts from even reaching it.
type PeriodLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPeriodLocker constructs a locker with the given lease TTL.
func NewPeriodLocker(client *redis.Client, ttl time.Duration) *PeriodLocker {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &PeriodLocker{client: client, ttl: ttl}
}

// Acquire takes the lease or returns ErrLockHeld.
func (l *PeriodLocker) Acquire(ctx context.Context, clientID int64, period string) error {
	if l == nil || l.client == nil {
		return nil
	}
	ok, err := l.client.SetNX(ctx, CloseLockKey(clientID, period), time.Now().UTC().Format(time.RFC3339Nano), l.ttl).Result()
	if err != nil {
		return fmt.Errorf("shared: acquire close lock: %w", err)
	}
	if !ok {
		return ErrLockHeld
	}
	return nil
}

// Release drops the lease. Safe to call after Acquire failed.
func (l *PeriodLocker) Release(ctx context.Context, clientID int64, period string) {
	if l == nil || l.client == nil {
		return
	}
	_ = l.client.Del(ctx, CloseLockKey(clientID, period)).Err()
}
