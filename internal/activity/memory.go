package activity

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/argumetrics/internal/models"
)

// MemoryStore keeps the journal in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	entries []models.Activity
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Record(_ context.Context, a models.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	s.entries = append(s.entries, a)
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *MemoryStore) Recent(_ context.Context, limit int64) ([]models.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Activity{}
	for i := len(s.entries) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		out = append(out, s.entries[i])
	}
	return out, nil
}
