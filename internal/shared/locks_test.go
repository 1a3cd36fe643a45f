package shared

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestPeriodLockerSerialisesAttempts(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	locker := NewPeriodLocker(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, locker.Acquire(ctx, 42, "2025-06"))
	require.ErrorIs(t, locker.Acquire(ctx, 42, "2025-06"), ErrLockHeld)

	// Other clients and periods are independent critical sections.
	require.NoError(t, locker.Acquire(ctx, 43, "2025-06"))
	require.NoError(t, locker.Acquire(ctx, 42, "2025-07"))

	locker.Release(ctx, 42, "2025-06")
	require.NoError(t, locker.Acquire(ctx, 42, "2025-06"))
}

func TestPeriodLockerLeaseExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	locker := NewPeriodLocker(client, time.Second)
	ctx := context.Background()

	require.NoError(t, locker.Acquire(ctx, 1, "2025-01"))
	mr.FastForward(2 * time.Second)
	require.NoError(t, locker.Acquire(ctx, 1, "2025-01"))
}
