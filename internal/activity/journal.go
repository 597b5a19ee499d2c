// Package activity records who did what and serves the recent history.
package activity

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ayush/argumetrics/internal/models"
)

const recordTimeout = 3 * time.Second

// Store persists journal entries. store.ActivityStore (MongoDB) and
// MemoryStore implement it.
type Store interface {
	Record(ctx context.Context, a models.Activity) error
	Recent(ctx context.Context, limit int64) ([]models.Activity, error)
}

// Journal is the write side used by the handlers. A failed write is logged
// and never fails the request that triggered it.
type Journal struct {
	store Store
	log   *zap.Logger
}

// NewJournal wraps s. A nil store journals nothing.
func NewJournal(s Store, log *zap.Logger) *Journal {
	if s == nil {
		s = Nop{}
	}
	return &Journal{store: s, log: log}
}

func (j *Journal) Record(ctx context.Context, a models.Activity) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	// The entry outlives a client that hangs up right after the response.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	if err := j.store.Record(ctx, a); err != nil {
		j.log.Warn("activity record failed",
			zap.String("action", a.Action),
			zap.Int64("user_id", a.UserID),
			zap.Error(err),
		)
	}
}

func (j *Journal) Recent(ctx context.Context, limit int64) ([]models.Activity, error) {
	return j.store.Recent(ctx, limit)
}

// Nop discards entries and reports an empty history.
type Nop struct{}

func (Nop) Record(context.Context, models.Activity) error { return nil }

func (Nop) Recent(context.Context, int64) ([]models.Activity, error) {
	return []models.Activity{}, nil
}
