// Package locker provides distributed locks for coordinating work across
// service instances.
package locker

import (
	"context"
	"time"
)

// DistributedLocker acquires and releases named locks shared by every instance.
// Implementations must be safe for concurrent use.
//
// A lock doubles as a cooldown when the holder does not release it:
//
//	ok, err := l.Acquire(ctx, "sync", interval)
//	if err != nil || !ok {
//	    return
//	}
//	// work; on failure call l.Release so another instance may retry
type DistributedLocker interface {
	// Acquire tries once to take the lock. It returns false, nil when another
	// instance holds it. The lock expires after ttl.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release gives up a lock held by this instance. Releasing a lock this
	// instance does not hold is a no-op.
	Release(ctx context.Context, key string) error
}
