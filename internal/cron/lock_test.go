package cron

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedisStore struct {
	values map[string]string
	setErr error
}

func (f *fakeRedisStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if f.setErr != nil {
		return false, f.setErr
	}
	if _, ok := f.values[key]; ok {
		return false, nil
	}
	f.values[key] = value.(string)
	return true, nil
}

func (f *fakeRedisStore) DelIfValue(_ context.Context, key, value string) (bool, error) {
	if f.values[key] != value {
		return false, nil
	}
	delete(f.values, key)
	return true, nil
}

func TestRedisLockAcquireRelease(t *testing.T) {
	store := &fakeRedisStore{values: map[string]string{}}
	ctx := context.Background()
	first, err := NewRedisLock(store, "dt:lock", time.Minute, "api-1")
	require.NoError(t, err)
	second, err := NewRedisLock(store, "dt:lock", time.Minute, "api-2")
	require.NoError(t, err)

	ok, err := first.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(store.values["dt:lock"], "api-1:"))

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	// releasing a lock this holder never got must not free the other owner's key
	require.NoError(t, second.Release(ctx))
	assert.Contains(t, store.values, "dt:lock")

	require.NoError(t, first.Release(ctx))
	assert.NotContains(t, store.values, "dt:lock")

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLockReleaseAfterExpiryKeepsNewOwner(t *testing.T) {
	store := &fakeRedisStore{values: map[string]string{}}
	ctx := context.Background()
	lock, err := NewRedisLock(store, "dt:lock", time.Minute, "")
	require.NoError(t, err)

	ok, err := lock.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	// simulate TTL expiry followed by another instance taking over
	store.values["dt:lock"] = "someone-else"
	require.NoError(t, lock.Release(ctx))
	assert.Equal(t, "someone-else", store.values["dt:lock"])
}

func TestRedisLockValidation(t *testing.T) {
	_, err := NewRedisLock(nil, "k", time.Minute, "")
	require.Error(t, err)
	_, err = NewRedisLock(&fakeRedisStore{}, "", time.Minute, "")
	require.Error(t, err)

	lock, err := NewRedisLock(&fakeRedisStore{values: map[string]string{}}, "k", 0, "")
	require.NoError(t, err)
	assert.Equal(t, defaultLockTTL, lock.ttl)

	failing, err := NewRedisLock(&fakeRedisStore{setErr: errors.New("down")}, "k", time.Minute, "")
	require.NoError(t, err)
	_, err = failing.Acquire(context.Background())
	require.ErrorContains(t, err, "down")
}

func TestLocalLockExcludesConcurrentHolders(t *testing.T) {
	lock := NewLocalLock()
	ctx := context.Background()

	ok, err := lock.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = lock.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, lock.Release(ctx))
	ok, err = lock.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLocalLockReleaseWhenFree(t *testing.T) {
	lock := NewLocalLock()
	require.NoError(t, lock.Release(context.Background()))

	ok, err := lock.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}
