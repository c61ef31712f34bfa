package cron

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const defaultLockTTL = 25 * time.Hour

// Lock gives a cycle exclusive use of the jobs it runs.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

type lockStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	DelIfValue(ctx context.Context, key, value string) (bool, error)
}

// RedisLock is shared between replicas. Each acquisition writes a fresh token and
// release only deletes the key while it still holds that token, so a holder whose
// TTL lapsed cannot free a lock someone else now owns.
type RedisLock struct {
	store  lockStore
	key    string
	ttl    time.Duration
	holder string

	mu    sync.Mutex
	token string
}

// NewRedisLock builds a lock on key. holder prefixes the stored token so the key
// shows which instance owns it; a zero ttl means defaultLockTTL.
func NewRedisLock(store lockStore, key string, ttl time.Duration, holder string) (*RedisLock, error) {
	if store == nil {
		return nil, errors.New("cron: lock store required")
	}
	if key == "" {
		return nil, errors.New("cron: lock key required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLock{store: store, key: key, ttl: ttl, holder: holder}, nil
}

func (l *RedisLock) newToken() string {
	if l.holder == "" {
		return uuid.NewString()
	}
	return l.holder + ":" + uuid.NewString()
}

func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	token := l.newToken()
	won, err := l.store.SetNX(ctx, l.key, token, l.ttl)
	if err != nil {
		return false, fmt.Errorf("set %s: %w", l.key, err)
	}
	if won {
		l.mu.Lock()
		l.token = token
		l.mu.Unlock()
	}
	return won, nil
}

// Release is a no-op when this instance does not hold the lock.
func (l *RedisLock) Release(ctx context.Context) error {
	l.mu.Lock()
	token := l.token
	l.token = ""
	l.mu.Unlock()
	if token == "" {
		return nil
	}
	if _, err := l.store.DelIfValue(ctx, l.key, token); err != nil {
		return fmt.Errorf("delete %s: %w", l.key, err)
	}
	return nil
}

// LocalLock serializes cycles inside a single process.
type LocalLock struct {
	held atomic.Bool
}

func NewLocalLock() *LocalLock {
	return &LocalLock{}
}

func (l *LocalLock) Acquire(context.Context) (bool, error) {
	return l.held.CompareAndSwap(false, true), nil
}

// Release tolerates being called when the lock is free.
func (l *LocalLock) Release(context.Context) error {
	l.held.Store(false)
	return nil
}
