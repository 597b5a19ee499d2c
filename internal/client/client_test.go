package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ayush/argumetrics/internal/activity"
	"github.com/ayush/argumetrics/internal/auth"
	"github.com/ayush/argumetrics/internal/models"
	"github.com/ayush/argumetrics/internal/server"
	"github.com/ayush/argumetrics/internal/store"
)

type apiServer struct {
	*httptest.Server
	hits atomic.Int64
	// hold, when set, runs after the router has answered and before the
	// answer is sent.
	hold atomic.Pointer[func(*http.Request)]
}

func newAPIServer(t *testing.T) *apiServer {
	t.Helper()
	mem := store.NewMemoryStore()
	log := zap.NewNop()
	svc := auth.NewService(mem, auth.NewMemorySessionStore(time.Hour), auth.BcryptHasher{Cost: bcrypt.MinCost}, log)
	router := server.NewRouter(server.Deps{
		Log:       log,
		Auth:      svc,
		Arguments: mem,
		Journal:   activity.NewJournal(activity.NewMemoryStore(), log),
	})

	s := &apiServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		hold := s.hold.Load()
		if hold == nil {
			router.ServeHTTP(w, r)
			return
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, r)
		(*hold)(r)
		for k, v := range rec.Header() {
			w.Header()[k] = v
		}
		w.WriteHeader(rec.Code)
		_, _ = w.Write(rec.Body.Bytes())
	}))
	t.Cleanup(s.Close)
	return s
}

func newLoggedIn(t *testing.T, srv *apiServer) *Client {
	t.Helper()
	c, err := New(srv.URL)
	require.NoError(t, err)
	_, err = c.Register(context.Background(), models.InsertUser{Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	return c
}

func TestNewRejectsRelativeURL(t *testing.T) {
	_, err := New("localhost:5000")
	assert.Error(t, err)
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	srv := newAPIServer(t)
	c := newLoggedIn(t, srv)

	token := c.SessionToken()
	require.NotEmpty(t, token)

	me, err := c.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)

	restored, err := New(srv.URL)
	require.NoError(t, err)
	restored.SetSessionToken(token)
	me, err = restored.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)

	require.NoError(t, c.Logout(ctx))
	assert.Empty(t, c.SessionToken())

	_, err = restored.CurrentUser(ctx)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLoginWrongPassword(t *testing.T) {
	srv := newAPIServer(t)
	_ = newLoggedIn(t, srv)

	c, err := New(srv.URL)
	require.NoError(t, err)
	_, err = c.Login(context.Background(), models.InsertUser{Username: "alice", Password: "nope"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestRegisterDuplicateMessage(t *testing.T) {
	srv := newAPIServer(t)
	_ = newLoggedIn(t, srv)

	c, err := New(srv.URL)
	require.NoError(t, err)
	_, err = c.Register(context.Background(), models.InsertUser{Username: "alice", Password: "x"})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Username already exists", apiErr.Message)
}

func TestCreateArgumentValidatesLocally(t *testing.T) {
	srv := newAPIServer(t)
	c := newLoggedIn(t, srv)
	before := srv.hits.Load()

	_, err := c.CreateArgument(context.Background(), models.InsertArgument{
		Title: "t", Description: "d", Archetype: "Philosophical",
	})
	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "archetype", verr.Field)
	assert.Equal(t, before, srv.hits.Load())
}

func TestCacheInvalidatedOnMutation(t *testing.T) {
	ctx := context.Background()
	srv := newAPIServer(t)
	c := newLoggedIn(t, srv)

	args, err := c.Arguments(ctx)
	require.NoError(t, err)
	assert.Empty(t, args)
	report, err := c.ArchetypeReport(ctx)
	require.NoError(t, err)
	assert.Empty(t, report)

	hits := srv.hits.Load()
	_, err = c.Arguments(ctx)
	require.NoError(t, err)
	_, err = c.ArchetypeReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, hits, srv.hits.Load(), "second reads are served from cache")

	created, err := c.CreateArgument(ctx, models.InsertArgument{
		Title: "Sunk Cost", Description: "Ignore past spend", Archetype: models.Business,
	})
	require.NoError(t, err)

	args, err = c.Arguments(ctx)
	require.NoError(t, err)
	require.Len(t, args, 1)
	assert.Equal(t, created.ID, args[0].ID)
	report, err = c.ArchetypeReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.ArchetypeCount{{Archetype: models.Business, Count: 1}}, report)

	got, err := c.Argument(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sunk Cost", got.Title)

	require.NoError(t, c.DeleteArgument(ctx, created.ID))
	args, err = c.Arguments(ctx)
	require.NoError(t, err)
	assert.Empty(t, args)
}

func TestFailedMutationKeepsCache(t *testing.T) {
	ctx := context.Background()
	srv := newAPIServer(t)
	c := newLoggedIn(t, srv)

	_, err := c.CreateArgument(ctx, models.InsertArgument{Title: "a", Description: "b", Archetype: models.Research})
	require.NoError(t, err)
	args, err := c.Arguments(ctx)
	require.NoError(t, err)
	require.Len(t, args, 1)

	// A different client drops the session server-side.
	other, err := New(srv.URL)
	require.NoError(t, err)
	other.SetSessionToken(c.SessionToken())
	require.NoError(t, other.Logout(ctx))

	_, err = c.CreateArgument(ctx, models.InsertArgument{Title: "c", Description: "d", Archetype: models.Research})
	assert.ErrorIs(t, err, ErrUnauthorized)

	args, err = c.Arguments(ctx)
	require.NoError(t, err)
	assert.Len(t, args, 1)
}

func TestActivityAndExport(t *testing.T) {
	ctx := context.Background()
	srv := newAPIServer(t)
	c := newLoggedIn(t, srv)

	entries, err := c.Activity(ctx, 5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActionUserRegistered, entries[0].Action)

	_, err = c.ExportArguments(ctx)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
}

func TestSlowListDoesNotOverwriteNewerCache(t *testing.T) {
	ctx := context.Background()
	srv := newAPIServer(t)
	c := newLoggedIn(t, srv)

	answered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	hold := func(r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/arguments" {
			return
		}
		once.Do(func() {
			close(answered)
			<-release
		})
	}
	srv.hold.Store(&hold)

	type result struct {
		args []models.Argument
		err  error
	}
	done := make(chan result, 1)
	go func() {
		args, err := c.Arguments(ctx)
		done <- result{args, err}
	}()

	<-answered
	_, err := c.CreateArgument(ctx, models.InsertArgument{Title: "t", Description: "d", Archetype: models.Technical})
	require.NoError(t, err)
	close(release)

	first := <-done
	require.NoError(t, first.err)
	assert.Empty(t, first.args)

	args, err := c.Arguments(ctx)
	require.NoError(t, err)
	assert.Len(t, args, 1)
}
