package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/followup-compliance/internal/config"
	"github.com/turtacn/followup-compliance/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/followup-compliance/pkg/errors"
)

func newLockFactory(t *testing.T) (LockFactory, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewClient(config.RedisConfig{Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewLockFactory(client, "followup:", logging.NewNopLogger()), mr
}

func TestMutex_LockUnlock(t *testing.T) {
	factory, mr := newLockFactory(t)
	ctx := context.Background()

	lock := factory.NewMutex("current:pat-1")
	require.NoError(t, lock.Lock(ctx))
	assert.True(t, mr.Exists("followup:lock:current:pat-1"))

	require.NoError(t, lock.Unlock(ctx))
	assert.False(t, mr.Exists("followup:lock:current:pat-1"))
}

func TestMutex_Contention(t *testing.T) {
	factory, _ := newLockFactory(t)
	ctx := context.Background()

	first := factory.NewMutex("current:pat-1")
	second := factory.NewMutex("current:pat-1", WithRetryCount(1), WithRetryDelay(time.Millisecond))

	require.NoError(t, first.Lock(ctx))
	err := second.Lock(ctx)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeCurrentConflict))

	require.NoError(t, first.Unlock(ctx))
	assert.NoError(t, second.Lock(ctx))
}

func TestMutex_UnlockAfterExpiry(t *testing.T) {
	factory, mr := newLockFactory(t)
	ctx := context.Background()

	lock := factory.NewMutex("current:pat-1", WithLockTTL(time.Second))
	require.NoError(t, lock.Lock(ctx))
	mr.FastForward(2 * time.Second)

	other := factory.NewMutex("current:pat-1")
	ok, err := other.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, ErrLockNotHeld, lock.Unlock(ctx), "an expired lease never deletes the new holder's key")
	assert.True(t, mr.Exists("followup:lock:current:pat-1"))
}

func TestMutex_LockHonoursContext(t *testing.T) {
	factory, _ := newLockFactory(t)
	holder := factory.NewMutex("current:pat-1")
	require.NoError(t, holder.Lock(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	waiter := factory.NewMutex("current:pat-1", WithRetryDelay(time.Second))
	assert.ErrorIs(t, waiter.Lock(ctx), context.Canceled)
}
