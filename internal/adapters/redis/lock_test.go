package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/internal/adapters/redis"
)

func TestLocker_AcquireAndRelease(t *testing.T) {
	client := newTestClient(t)
	locker := redis.NewLocker(client, "arbor:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "session-a", 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, unlock(ctx))

	// Released, so a second acquire succeeds immediately.
	unlock2, err := locker.Lock(ctx, "session-a", 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, unlock2(ctx))
}

func TestLocker_BlocksUntilCancelled(t *testing.T) {
	client := newTestClient(t)
	locker := redis.NewLocker(client, "arbor:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "held", 30*time.Second)
	require.NoError(t, err)
	defer func() { _ = unlock(ctx) }()

	shortCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()

	_, err = locker.Lock(shortCtx, "held", 30*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLocker_IndependentKeysDoNotContend(t *testing.T) {
	client := newTestClient(t)
	locker := redis.NewLocker(client, "arbor:")
	ctx := context.Background()

	unlockA, err := locker.Lock(ctx, "a", 5*time.Second)
	require.NoError(t, err)
	defer func() { _ = unlockA(ctx) }()

	unlockB, err := locker.Lock(ctx, "b", 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, unlockB(ctx))
}
