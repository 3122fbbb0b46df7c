package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/rueidis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -- LocalLocker tests --

func TestLocalLocker_SecondAttemptRefused(t *testing.T) {
	l := NewLocalLocker()

	release, ok, err := l.TryLock(context.Background(), ArchivalJobName, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.TryLock(context.Background(), ArchivalJobName, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// Different jobs do not block each other.
	releaseOther, ok, err := l.TryLock(context.Background(), RestorationJobName, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	releaseOther()

	release()
	release()
	_, ok, err = l.TryLock(context.Background(), ArchivalJobName, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

// -- RedisLocker tests --

func newTestRedisLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:   []string{mr.Addr()},
		DisableCache:  true,
		AlwaysRESP2:   true,
		ClientSetInfo: rueidis.DisableClientSetInfo,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return NewRedisLocker(client, "lifecycle:lock:"), mr
}

func TestRedisLocker_SecondAttemptRefused(t *testing.T) {
	l, mr := newTestRedisLocker(t)

	release, ok, err := l.TryLock(context.Background(), ArchivalJobName, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, mr.Exists("lifecycle:lock:"+ArchivalJobName))

	_, ok, err = l.TryLock(context.Background(), ArchivalJobName, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	release()
	assert.False(t, mr.Exists("lifecycle:lock:"+ArchivalJobName))

	_, ok, err = l.TryLock(context.Background(), ArchivalJobName, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLocker_ExpiredLockCanBeTaken(t *testing.T) {
	l, mr := newTestRedisLocker(t)

	release, ok, err := l.TryLock(context.Background(), ArchivalJobName, time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	releaseNew, ok, err := l.TryLock(context.Background(), ArchivalJobName, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	// The stale holder must not free the new holder's lock.
	release()
	assert.True(t, mr.Exists("lifecycle:lock:"+ArchivalJobName))
	releaseNew()
	assert.False(t, mr.Exists("lifecycle:lock:"+ArchivalJobName))
}
