package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultSessionTTL = 24 * time.Hour
	SessionCookie     = "session_id"
)

// SessionStore persists session tokens server-side.
type SessionStore interface {
	// Create issues a new token bound to userID.
	Create(ctx context.Context, userID int64) (string, error)
	// Get returns the user bound to token. ok is false for unknown or
	// expired tokens.
	Get(ctx context.Context, token string) (userID int64, ok bool, err error)
	// Delete removes a session. Unknown tokens are not an error.
	Delete(ctx context.Context, token string) error
}

// Pruner is implemented by stores that need expired sessions swept.
type Pruner interface {
	Prune(ctx context.Context) (int64, error)
}

func newToken() string {
	return uuid.New().String()
}

// RedisSessionStore wraps Redis for session management. Expiry is
// delegated to key TTLs.
type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

func sessionKey(token string) string {
	return "session:" + token
}

// Create stores a new session mapping token -> userID.
func (s *RedisSessionStore) Create(ctx context.Context, userID int64) (string, error) {
	token := newToken()
	if err := s.rdb.Set(ctx, sessionKey(token), userID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("redis set session: %w", err)
	}
	return token, nil
}

func (s *RedisSessionStore) Get(ctx context.Context, token string) (int64, bool, error) {
	userID, err := s.rdb.Get(ctx, sessionKey(token)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("redis get session: %w", err)
	}
	return userID, true, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	if err := s.rdb.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}
