package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/argumetrics/internal/models"
)

func seedUser(t *testing.T, s *MemoryStore, name string) *models.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), models.InsertUser{Username: name, Password: "hash"})
	require.NoError(t, err)
	return u
}

func TestMemoryStore_Users(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")
	assert.NotEqual(t, alice.ID, bob.ID)

	got, err := s.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	got, err = s.GetUserByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, got.ID)

	got, err = s.GetUser(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = s.CreateUser(ctx, models.InsertUser{Username: "alice", Password: "other"})
	assert.ErrorIs(t, err, ErrDuplicateUsername)
}

func TestMemoryStore_ArgumentsOrderedByCreation(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	owner := seedUser(t, s, "alice")

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(-tick) * time.Hour) // each insert earlier than the last
	}

	first, err := s.CreateArgument(ctx, owner.ID, models.InsertArgument{Title: "a", Description: "d", Archetype: models.Technical})
	require.NoError(t, err)
	second, err := s.CreateArgument(ctx, owner.ID, models.InsertArgument{Title: "b", Description: "d", Archetype: models.Research})
	require.NoError(t, err)

	args, err := s.GetArguments(ctx)
	require.NoError(t, err)
	require.Len(t, args, 2)
	assert.Equal(t, second.ID, args[0].ID)
	assert.Equal(t, first.ID, args[1].ID)
}

func TestMemoryStore_CreateArgumentRequiresOwner(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.CreateArgument(context.Background(), 1, models.InsertArgument{Title: "a", Description: "d", Archetype: models.Technical})
	assert.ErrorIs(t, err, ErrUnknownOwner)

	args, err := s.GetArguments(context.Background())
	require.NoError(t, err)
	assert.Empty(t, args)
}

func TestMemoryStore_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	owner := seedUser(t, s, "alice")
	a, err := s.CreateArgument(ctx, owner.ID, models.InsertArgument{Title: "a", Description: "d", Archetype: models.Business})
	require.NoError(t, err)

	require.NoError(t, s.DeleteArgument(ctx, a.ID))
	require.NoError(t, s.DeleteArgument(ctx, a.ID))

	got, err := s.GetArgument(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStore_ReportOmitsEmptyGroups(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	owner := seedUser(t, s, "alice")

	for _, a := range []models.Archetype{models.Technical, models.Technical, models.Business} {
		_, err := s.CreateArgument(ctx, owner.ID, models.InsertArgument{Title: "t", Description: "d", Archetype: a})
		require.NoError(t, err)
	}

	report, err := s.GetArgumentsByArchetype(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.ArchetypeCount{
		{Archetype: models.Technical, Count: 2},
		{Archetype: models.Business, Count: 1},
	}, report)

	args, err := s.GetArguments(ctx)
	require.NoError(t, err)
	total := 0
	for _, row := range report {
		total += row.Count
	}
	assert.Equal(t, len(args), total)
}

func TestMemoryStore_ConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	owner := seedUser(t, s, "alice")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateArgument(ctx, owner.ID, models.InsertArgument{Title: "t", Description: "d", Archetype: models.Educational})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	args, err := s.GetArguments(ctx)
	require.NoError(t, err)
	assert.Len(t, args, 50)
	seen := make(map[int64]bool)
	for _, a := range args {
		assert.False(t, seen[a.ID], "duplicate id %d", a.ID)
		seen[a.ID] = true
	}
}
