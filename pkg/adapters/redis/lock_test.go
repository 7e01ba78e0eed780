package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/cairnlabs/cairn/pkg/adapters/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocker_LockUnlock(t *testing.T) {
	mr, client := newTestClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "session-1", 5*time.Second)
	require.NoError(t, err)
	require.NotNil(t, unlock)
	assert.True(t, mr.Exists("test:lock:session-1"))

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:session-1"))
}

func TestLocker_UncontendedAcquireIsImmediate(t *testing.T) {
	_, client := newTestClient(t)
	locker := redis.NewLocker(client, "test:")

	start := time.Now()
	unlock, err := locker.Lock(context.Background(), "session-1", 5*time.Second)
	require.NoError(t, err)
	defer func() { _ = unlock(context.Background()) }()

	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestLocker_Contention(t *testing.T) {
	mr, client := newTestClient(t)
	locker1 := redis.NewLocker(client, "test:")
	locker2 := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock1, err := locker1.Lock(ctx, "shared", 5*time.Second)
	require.NoError(t, err)

	// The second holder polls until its context gives up.
	ctxTimeout, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	_, err = locker2.Lock(ctxTimeout, "shared", 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock1(ctx))

	unlock2, err := locker2.Lock(ctx, "shared", 5*time.Second)
	require.NoError(t, err)
	defer func() { _ = unlock2(ctx) }()
	assert.True(t, mr.Exists("test:lock:shared"))
}

func TestLocker_StaleUnlockDoesNotReleaseNewHolder(t *testing.T) {
	mr, client := newTestClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock1, err := locker.Lock(ctx, "shared", time.Second)
	require.NoError(t, err)

	// First holder's TTL lapses and someone else takes the lock.
	mr.FastForward(2 * time.Second)
	unlock2, err := locker.Lock(ctx, "shared", 5*time.Second)
	require.NoError(t, err)
	defer func() { _ = unlock2(ctx) }()

	// The stale unlock must leave the new holder's lock in place.
	require.NoError(t, unlock1(ctx))
	assert.True(t, mr.Exists("test:lock:shared"))
}
