// Package session keeps the server-side record of issued access tokens so logout can revoke them.
package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/angelmondragon/dealtracker-backend/pkg/config"
)

var (
	ErrAccessIDRequired = errors.New("access id is required")
	errIDCollision      = errors.New("could not allocate a unique access id")
)

const createAttempts = 3

// Store is the slice of the redis client the manager needs.
type Store interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	AccessSessionKey(accessID string) string
}

// AccessSessionChecker exposes the read-only surface needed by middleware.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

// Manager maps access ids (the JWT jti) to user ids for the token's lifetime.
type Manager struct {
	store Store
	ttl   time.Duration
	newID func() string
}

// NewManager returns a manager whose sessions expire with the access token.
func NewManager(store Store, cfg config.JWTConfig) (*Manager, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	ttl := cfg.TTL()
	if ttl <= 0 {
		return nil, errors.New("session ttl must be positive")
	}
	return &Manager{store: store, ttl: ttl, newID: NewAccessID}, nil
}

// Create stores a session for userID under a fresh access id. SetNX guards against
// overwriting a live session on an id collision.
func (m *Manager) Create(ctx context.Context, userID uuid.UUID) (string, error) {
	if userID == uuid.Nil {
		return "", errors.New("user id is required")
	}
	for range createAttempts {
		accessID := m.newID()
		stored, err := m.store.SetNX(ctx, m.store.AccessSessionKey(accessID), userID.String(), m.ttl)
		if err != nil {
			return "", err
		}
		if stored {
			return accessID, nil
		}
	}
	return "", errIDCollision
}

// Revoke ends the session. Revoking an unknown id is not an error.
func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	key, err := m.key(accessID)
	if err != nil {
		return err
	}
	return m.store.Del(ctx, key)
}

func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	_, ok, err := m.Owner(ctx, accessID)
	return ok, err
}

// Owner returns the user a live session belongs to.
func (m *Manager) Owner(ctx context.Context, accessID string) (uuid.UUID, bool, error) {
	key, err := m.key(accessID)
	if err != nil {
		return uuid.Nil, false, err
	}
	raw, err := m.store.Get(ctx, key)
	switch {
	case errors.Is(err, redislib.Nil):
		return uuid.Nil, false, nil
	case err != nil:
		return uuid.Nil, false, err
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false, err
	}
	return userID, true, nil
}

func (m *Manager) key(accessID string) (string, error) {
	accessID = strings.TrimSpace(accessID)
	if accessID == "" {
		return "", ErrAccessIDRequired
	}
	return m.store.AccessSessionKey(accessID), nil
}

// NewAccessID returns a random id used as both the jti and the redis key suffix.
func NewAccessID() string {
	return uuid.NewString()
}
