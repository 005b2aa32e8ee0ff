package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/riderschoice/riderschoice-backend/pkg/redis"
)

// Store is the key-value surface sessions need. *redis.Client satisfies it.
type Store interface {
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	Lookup(ctx context.Context, key string) (string, bool, error)
	Drop(ctx context.Context, keys ...string) error
}

// AccessSessionChecker is what the auth middleware consults after the JWT
// signature checks out.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

var (
	errNoAccount  = errors.New("session: account id is required")
	errNoAccessID = errors.New("session: access id is required")
)

// Manager keeps one redis key per issued token, named by the token's jti.
// Deleting the key revokes the token before it expires.
type Manager struct {
	store Store
	ttl   time.Duration
}

func NewManager(store Store, ttl time.Duration) (*Manager, error) {
	if store == nil {
		return nil, errors.New("session: store is required")
	}
	if ttl <= 0 {
		return nil, errors.New("session: ttl must be positive")
	}
	return &Manager{store: store, ttl: ttl}, nil
}

func key(accessID string) string { return redis.Key("session", "access", accessID) }

// Generate opens a session for accountID and returns the jti to embed in
// the token.
func (m *Manager) Generate(ctx context.Context, accountID uuid.UUID) (string, error) {
	if accountID == uuid.Nil {
		return "", errNoAccount
	}
	accessID := NewAccessID()
	if err := m.store.Put(ctx, key(accessID), accountID.String(), m.ttl); err != nil {
		return "", err
	}
	return accessID, nil
}

func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return errNoAccessID
	}
	return m.store.Drop(ctx, key(accessID))
}

func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if strings.TrimSpace(accessID) == "" {
		return false, errNoAccessID
	}
	_, found, err := m.store.Lookup(ctx, key(accessID))
	return found, err
}

func (m *Manager) TTL() time.Duration { return m.ttl }

func NewAccessID() string { return uuid.NewString() }
