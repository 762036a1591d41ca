package locker

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testLockKey = "sync:enrichment"

func setupLocker(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

func TestRedisLocker_Acquire(t *testing.T) {
	client, mr := setupLocker(t)
	l := NewRedisLocker(client, "gss", zap.NewNop())

	acquired, err := l.Acquire(context.Background(), testLockKey, 5*time.Second)
	require.NoError(t, err)
	assert.True(t, acquired)
	assert.True(t, mr.Exists("gss:lock:sync:enrichment"))
}

func TestRedisLocker_EmptyPrefix(t *testing.T) {
	client, mr := setupLocker(t)
	l := NewRedisLocker(client, "", zap.NewNop())

	acquired, err := l.Acquire(context.Background(), testLockKey, 5*time.Second)
	require.NoError(t, err)
	assert.True(t, acquired)
	assert.True(t, mr.Exists("lock:sync:enrichment"))
}

func TestRedisLocker_AlreadyHeld(t *testing.T) {
	client, _ := setupLocker(t)
	first := NewRedisLocker(client, "gss", zap.NewNop())
	second := NewRedisLocker(client, "gss", zap.NewNop())
	ctx := context.Background()

	acquired, err := first.Acquire(ctx, testLockKey, 5*time.Second)
	require.NoError(t, err)
	require.True(t, acquired)

	acquired, err = second.Acquire(ctx, testLockKey, 5*time.Second)
	require.NoError(t, err)
	assert.False(t, acquired)
}

func TestRedisLocker_ReleaseAllowsReacquire(t *testing.T) {
	client, _ := setupLocker(t)
	l := NewRedisLocker(client, "gss", zap.NewNop())
	ctx := context.Background()

	acquired, err := l.Acquire(ctx, testLockKey, 5*time.Second)
	require.NoError(t, err)
	require.True(t, acquired)

	require.NoError(t, l.Release(ctx, testLockKey))

	acquired, err = l.Acquire(ctx, testLockKey, 5*time.Second)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestRedisLocker_ReleaseNotOwned(t *testing.T) {
	client, _ := setupLocker(t)
	owner := NewRedisLocker(client, "gss", zap.NewNop())
	other := NewRedisLocker(client, "gss", zap.NewNop())
	ctx := context.Background()

	acquired, err := owner.Acquire(ctx, testLockKey, 5*time.Second)
	require.NoError(t, err)
	require.True(t, acquired)

	require.NoError(t, other.Release(ctx, testLockKey))

	acquired, err = other.Acquire(ctx, testLockKey, 5*time.Second)
	require.NoError(t, err)
	assert.False(t, acquired, "release by a non-owner must not free the lock")
}

func TestRedisLocker_Concurrent(t *testing.T) {
	client, _ := setupLocker(t)
	ctx := context.Background()

	const instances = 5
	results := make(chan bool, instances)
	for range instances {
		go func() {
			acquired, _ := NewRedisLocker(client, "gss", zap.NewNop()).Acquire(ctx, testLockKey, 2*time.Second)
			results <- acquired
		}()
	}

	winners := 0
	for range instances {
		if <-results {
			winners++
		}
	}
	assert.Equal(t, 1, winners)
}

func TestRedisLocker_Expiry(t *testing.T) {
	client, mr := setupLocker(t)
	first := NewRedisLocker(client, "gss", zap.NewNop())
	second := NewRedisLocker(client, "gss", zap.NewNop())
	ctx := context.Background()

	acquired, err := first.Acquire(ctx, testLockKey, time.Second)
	require.NoError(t, err)
	require.True(t, acquired)

	mr.FastForward(2 * time.Second)

	acquired, err = second.Acquire(ctx, testLockKey, time.Second)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestRedisLocker_CancelledContext(t *testing.T) {
	client, _ := setupLocker(t)
	l := NewRedisLocker(client, "gss", zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	acquired, err := l.Acquire(ctx, testLockKey, 5*time.Second)
	assert.Error(t, err)
	assert.False(t, acquired)
}
