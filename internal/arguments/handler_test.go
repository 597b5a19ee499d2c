package arguments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ayush/argumetrics/internal/activity"
	"github.com/ayush/argumetrics/internal/auth"
	"github.com/ayush/argumetrics/internal/models"
	"github.com/ayush/argumetrics/internal/store"
)

type fixture struct {
	store   *store.MemoryStore
	journal *activity.MemoryStore
	router  chi.Router
	alice   *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := store.NewMemoryStore()
	alice, err := s.CreateUser(context.Background(), models.InsertUser{Username: "alice", Password: "hash"})
	require.NoError(t, err)

	journal := activity.NewMemoryStore()
	h := NewHandler(s, activity.NewJournal(journal, zap.NewNop()), zap.NewNop())

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), alice)))
		})
	})
	r.Get("/api/arguments", h.List)
	r.Post("/api/arguments", h.Create)
	r.Get("/api/arguments/{id}", h.Get)
	r.Delete("/api/arguments/{id}", h.Delete)
	r.Get("/api/reports/archetypes", h.Report)

	return &fixture{store: s, journal: journal, router: r, alice: alice}
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestListEmptyIsArray(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/api/arguments", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/api/arguments",
		`{"title":"Use Go","description":"It compiles fast","archetype":"Technical"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got models.Argument
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Use Go", got.Title)
	assert.Equal(t, models.Technical, got.Archetype)
	assert.Equal(t, f.alice.ID, got.UserID)
	assert.NotZero(t, got.ID)

	entries, err := f.journal.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActionArgumentCreated, entries[0].Action)
	assert.Equal(t, got.ID, entries[0].ArgumentID)
}

func TestCreateIgnoresClientOwner(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/api/arguments",
		`{"title":"t","description":"d","archetype":"Business","userId":999}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got models.Argument
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, f.alice.ID, got.UserID)
}

func TestCreateRejected(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{
			name:    "bad archetype",
			body:    `{"title":"t","description":"d","archetype":"Philosophical"}`,
			message: "archetype must be one of: Technical, Business, Research, Educational",
		},
		{
			name:    "missing title",
			body:    `{"description":"d","archetype":"Research"}`,
			message: "title is required",
		},
		{
			name:    "malformed",
			body:    `{"title":`,
			message: "invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			rec := f.do(http.MethodPost, "/api/arguments", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.message, body["message"])

			args, err := f.store.GetArguments(context.Background())
			require.NoError(t, err)
			assert.Empty(t, args)
		})
	}
}

func TestGet(t *testing.T) {
	f := newFixture(t)
	arg, err := f.store.CreateArgument(context.Background(), f.alice.ID,
		models.InsertArgument{Title: "t", Description: "d", Archetype: models.Research})
	require.NoError(t, err)

	rec := f.do(http.MethodGet, "/api/arguments/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got models.Argument
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, arg.ID, got.ID)

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/arguments/42", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/arguments/abc", "").Code)
}

func TestDeleteIsIdempotent(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.CreateArgument(context.Background(), f.alice.ID,
		models.InsertArgument{Title: "t", Description: "d", Archetype: models.Educational})
	require.NoError(t, err)

	rec := f.do(http.MethodDelete, "/api/arguments/1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	assert.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, "/api/arguments/1", "").Code)
	assert.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, "/api/arguments/999", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodDelete, "/api/arguments/x", "").Code)

	args, err := f.store.GetArguments(context.Background())
	require.NoError(t, err)
	assert.Empty(t, args)
}

func TestReport(t *testing.T) {
	f := newFixture(t)
	for _, a := range []models.Archetype{
		models.Technical, models.Technical, models.Business,
	} {
		_, err := f.store.CreateArgument(context.Background(), f.alice.ID,
			models.InsertArgument{Title: "t", Description: "d", Archetype: a})
		require.NoError(t, err)
	}

	rec := f.do(http.MethodGet, "/api/reports/archetypes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`[{"archetype":"Business","count":1},{"archetype":"Technical","count":2}]`,
		rec.Body.String())
}

type brokenStore struct{ Store }

func (brokenStore) GetArguments(context.Context) ([]models.Argument, error) {
	return nil, errors.New("connection reset")
}

func TestListStoreError(t *testing.T) {
	h := NewHandler(brokenStore{}, activity.NewJournal(nil, zap.NewNop()), zap.NewNop())
	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/arguments", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"Internal Server Error"}`, rec.Body.String())
}

// snapshotStore captures the response status as it stood when each entry
// was journaled.
type snapshotStore struct {
	*activity.MemoryStore
	rec   *httptest.ResponseRecorder
	codes []int
}

func (s *snapshotStore) Record(ctx context.Context, a models.Activity) error {
	s.codes = append(s.codes, s.rec.Code)
	return s.MemoryStore.Record(ctx, a)
}

func TestHandlerRespondsBeforeJournaling(t *testing.T) {
	s := store.NewMemoryStore()
	alice, err := s.CreateUser(context.Background(), models.InsertUser{Username: "alice", Password: "hash"})
	require.NoError(t, err)
	journal := &snapshotStore{MemoryStore: activity.NewMemoryStore()}
	h := NewHandler(s, activity.NewJournal(journal, zap.NewNop()), zap.NewNop())

	r := chi.NewRouter()
	r.Post("/api/arguments", h.Create)
	r.Delete("/api/arguments/{id}", h.Delete)

	serve := func(req *http.Request) {
		journal.rec = httptest.NewRecorder()
		r.ServeHTTP(journal.rec, req.WithContext(auth.WithUser(req.Context(), alice)))
	}

	serve(httptest.NewRequest(http.MethodPost, "/api/arguments",
		strings.NewReader(`{"title":"Type safety","description":"Compilers catch bugs","archetype":"Technical"}`)))
	serve(httptest.NewRequest(http.MethodDelete, "/api/arguments/1", nil))

	assert.Equal(t, []int{http.StatusCreated, http.StatusNoContent}, journal.codes)
}
