package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ayush/argumetrics/internal/models"
)

// MemoryStore is an in-process stand-in for PostgresStore. It is used by
// tests and by STORE_BACKEND=memory for local development.
type MemoryStore struct {
	mu        sync.RWMutex
	users     map[int64]models.User
	arguments map[int64]models.Argument
	nextUser  int64
	nextArg   int64
	now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[int64]models.User),
		arguments: make(map[int64]models.Argument),
		now:       time.Now,
	}
}

func (s *MemoryStore) GetUser(_ context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *MemoryStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) CreateUser(_ context.Context, in models.InsertUser) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == in.Username {
			return nil, ErrDuplicateUsername
		}
	}
	s.nextUser++
	u := models.User{ID: s.nextUser, Username: in.Username, Password: in.Password}
	s.users[u.ID] = u
	return &u, nil
}

func (s *MemoryStore) GetArguments(_ context.Context) ([]models.Argument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	args := make([]models.Argument, 0, len(s.arguments))
	for _, a := range s.arguments {
		args = append(args, a)
	}
	sort.Slice(args, func(i, j int) bool {
		if !args[i].CreatedAt.Equal(args[j].CreatedAt) {
			return args[i].CreatedAt.Before(args[j].CreatedAt)
		}
		return args[i].ID < args[j].ID
	})
	return args, nil
}

func (s *MemoryStore) GetArgument(_ context.Context, id int64) (*models.Argument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.arguments[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *MemoryStore) CreateArgument(_ context.Context, ownerID int64, in models.InsertArgument) (*models.Argument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[ownerID]; !ok {
		return nil, ErrUnknownOwner
	}
	s.nextArg++
	a := models.Argument{
		ID:          s.nextArg,
		Title:       in.Title,
		Description: in.Description,
		Archetype:   in.Archetype,
		UserID:      ownerID,
		CreatedAt:   s.now().UTC(),
	}
	s.arguments[a.ID] = a
	return &a, nil
}

func (s *MemoryStore) DeleteArgument(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.arguments, id)
	return nil
}

func (s *MemoryStore) GetArgumentsByArchetype(_ context.Context) ([]models.ArchetypeCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[models.Archetype]int)
	for _, a := range s.arguments {
		counts[a.Archetype]++
	}
	report := make([]models.ArchetypeCount, 0, len(counts))
	for archetype, n := range counts {
		report = append(report, models.ArchetypeCount{Archetype: archetype, Count: n})
	}
	sort.Slice(report, func(i, j int) bool { return report[i].Archetype < report[j].Archetype })
	return report, nil
}
