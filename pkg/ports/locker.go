package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a previously acquired lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker provides cross-process mutual exclusion for session
// access. Hosts running a single process can skip it; the session manager
// already serializes access locally.
type DistributedLocker interface {
	// Lock blocks until the lock for key is acquired, the context is
	// cancelled, or the backend fails. The TTL bounds how long a crashed
	// holder can keep the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
