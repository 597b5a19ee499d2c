package activity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ayush/argumetrics/internal/models"
)

type failingStore struct{}

func (failingStore) Record(context.Context, models.Activity) error { return errors.New("mongo down") }

func (failingStore) Recent(context.Context, int64) ([]models.Activity, error) {
	return nil, errors.New("mongo down")
}

func TestMemoryStoreRecentNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for _, title := range []string{"first", "second", "third"} {
		require.NoError(t, s.Record(ctx, models.Activity{Action: models.ActionArgumentCreated, Title: title}))
	}

	got, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "third", got[0].Title)
	assert.Equal(t, "second", got[1].Title)
	assert.False(t, got[0].ID.IsZero())
}

func TestJournalNilStoreIsNop(t *testing.T) {
	j := NewJournal(nil, zap.NewNop())
	j.Record(context.Background(), models.Activity{Action: models.ActionUserLogin})

	got, err := j.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestJournalRecordSurvivesCancelledContext(t *testing.T) {
	s := NewMemoryStore()
	j := NewJournal(s, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	j.Record(ctx, models.Activity{Action: models.ActionUserLogout, UserID: 7})

	got, err := s.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(7), got[0].UserID)
	assert.False(t, got[0].CreatedAt.IsZero())
}

func TestJournalRecordFailureIsSwallowed(t *testing.T) {
	j := NewJournal(failingStore{}, zap.NewNop())
	assert.NotPanics(t, func() {
		j.Record(context.Background(), models.Activity{Action: models.ActionUserLogin})
	})
}

func TestHandlerList(t *testing.T) {
	s := NewMemoryStore()
	for i := 0; i < 30; i++ {
		require.NoError(t, s.Record(context.Background(), models.Activity{Action: models.ActionUserLogin}))
	}
	h := NewHandler(NewJournal(s, zap.NewNop()), zap.NewNop())

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantLen    int
	}{
		{name: "default limit", query: "", wantStatus: http.StatusOK, wantLen: DefaultLimit},
		{name: "explicit limit", query: "?limit=5", wantStatus: http.StatusOK, wantLen: 5},
		{name: "clamped", query: "?limit=1000", wantStatus: http.StatusOK, wantLen: 30},
		{name: "zero", query: "?limit=0", wantStatus: http.StatusBadRequest},
		{name: "garbage", query: "?limit=abc", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.List(rec, httptest.NewRequest(http.MethodGet, "/api/activity"+tt.query, nil))

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}
			var got []models.Activity
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Len(t, got, tt.wantLen)
		})
	}
}

func TestHandlerListStoreError(t *testing.T) {
	h := NewHandler(NewJournal(failingStore{}, zap.NewNop()), zap.NewNop())
	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/activity", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"Internal Server Error"}`, rec.Body.String())
}
