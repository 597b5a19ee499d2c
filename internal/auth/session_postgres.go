package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ayush/argumetrics/internal/store"
)

var sessionSchema = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		token      TEXT PRIMARY KEY,
		user_id    INTEGER NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS sessions_expires_at_idx ON sessions (expires_at)`,
}

// PostgresSessionStore keeps sessions in their own table next to the
// business data. The table is created on first use.
type PostgresSessionStore struct {
	db  store.DBTX
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	ready bool
}

func NewPostgresSessionStore(db store.DBTX, ttl time.Duration) *PostgresSessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &PostgresSessionStore{db: db, ttl: ttl, now: time.Now}
}

func (s *PostgresSessionStore) ensureTable(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}
	for _, stmt := range sessionSchema {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("provision sessions table: %w", err)
		}
	}
	s.ready = true
	return nil
}

func (s *PostgresSessionStore) Create(ctx context.Context, userID int64) (string, error) {
	if err := s.ensureTable(ctx); err != nil {
		return "", err
	}
	token := newToken()
	_, err := s.db.Exec(ctx,
		`INSERT INTO sessions (token, user_id, expires_at) VALUES ($1, $2, $3)`,
		token, userID, s.now().Add(s.ttl),
	)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return token, nil
}

func (s *PostgresSessionStore) Get(ctx context.Context, token string) (int64, bool, error) {
	if err := s.ensureTable(ctx); err != nil {
		return 0, false, err
	}
	var userID int64
	err := s.db.QueryRow(ctx,
		`SELECT user_id FROM sessions WHERE token = $1 AND expires_at > $2`,
		token, s.now(),
	).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get session: %w", err)
	}
	return userID, true, nil
}

func (s *PostgresSessionStore) Delete(ctx context.Context, token string) error {
	if err := s.ensureTable(ctx); err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Prune deletes expired sessions and reports how many were removed.
func (s *PostgresSessionStore) Prune(ctx context.Context) (int64, error) {
	if err := s.ensureTable(ctx); err != nil {
		return 0, err
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, s.now())
	if err != nil {
		return 0, fmt.Errorf("prune sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
