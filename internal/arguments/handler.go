// Package arguments serves the argument catalog and the archetype report.
package arguments

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ayush/argumetrics/internal/activity"
	"github.com/ayush/argumetrics/internal/auth"
	"github.com/ayush/argumetrics/internal/httpx"
	"github.com/ayush/argumetrics/internal/metrics"
	"github.com/ayush/argumetrics/internal/models"
	"github.com/ayush/argumetrics/internal/store"
)

// Store defines the interface for argument persistence.
type Store interface {
	GetArguments(ctx context.Context) ([]models.Argument, error)
	GetArgument(ctx context.Context, id int64) (*models.Argument, error)
	CreateArgument(ctx context.Context, ownerID int64, in models.InsertArgument) (*models.Argument, error)
	DeleteArgument(ctx context.Context, id int64) error
	GetArgumentsByArchetype(ctx context.Context) ([]models.ArchetypeCount, error)
}

// Handler holds argument HTTP handlers. Every route sits behind
// middleware.RequireAuth.
type Handler struct {
	store   Store
	journal *activity.Journal
	log     *zap.Logger
}

func NewHandler(s Store, journal *activity.Journal, log *zap.Logger) *Handler {
	return &Handler{store: s, journal: journal, log: log}
}

// List returns every argument, oldest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	args, err := h.store.GetArguments(r.Context())
	if err != nil {
		h.log.Error("list arguments failed", zap.Error(err))
		httpx.WriteInternalError(w)
		return
	}
	if args == nil {
		args = []models.Argument{}
	}
	httpx.WriteJSON(w, http.StatusOK, args)
}

// Get returns a single argument.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	arg, err := h.store.GetArgument(r.Context(), id)
	if err != nil {
		h.log.Error("get argument failed", zap.Int64("id", id), zap.Error(err))
		httpx.WriteInternalError(w)
		return
	}
	if arg == nil {
		httpx.WriteMessage(w, http.StatusNotFound, "Argument not found")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, arg)
}

// Create stores a new argument owned by the requester.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var req models.InsertArgument
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := models.ValidateArgument(req); err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			httpx.WriteMessage(w, http.StatusBadRequest, verr.Message)
			return
		}
		h.log.Error("validate argument failed", zap.Error(err))
		httpx.WriteInternalError(w)
		return
	}

	arg, err := h.store.CreateArgument(r.Context(), user.ID, req)
	if errors.Is(err, store.ErrUnknownOwner) {
		// the session outlived its user
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if err != nil {
		h.log.Error("create argument failed", zap.Int64("user_id", user.ID), zap.Error(err))
		httpx.WriteInternalError(w)
		return
	}

	metrics.ArgumentsCreatedTotal.WithLabelValues(string(arg.Archetype)).Inc()
	httpx.WriteJSON(w, http.StatusCreated, arg)
	h.journal.Record(r.Context(), models.Activity{
		Action:     models.ActionArgumentCreated,
		UserID:     user.ID,
		Username:   user.Username,
		ArgumentID: arg.ID,
		Title:      arg.Title,
		Archetype:  arg.Archetype,
	})
}

// Delete removes an argument. Missing ids still answer 204.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteArgument(r.Context(), id); err != nil {
		h.log.Error("delete argument failed", zap.Int64("id", id), zap.Error(err))
		httpx.WriteInternalError(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
	if user, ok := auth.UserFromContext(r.Context()); ok {
		h.journal.Record(r.Context(), models.Activity{
			Action:     models.ActionArgumentDeleted,
			UserID:     user.ID,
			Username:   user.Username,
			ArgumentID: id,
		})
	}
}

// Report returns the number of arguments per archetype.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.store.GetArgumentsByArchetype(r.Context())
	if err != nil {
		h.log.Error("archetype report failed", zap.Error(err))
		httpx.WriteInternalError(w)
		return
	}
	if report == nil {
		report = []models.ArchetypeCount{}
	}
	httpx.WriteJSON(w, http.StatusOK, report)
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "Invalid argument id")
		return 0, false
	}
	return id, true
}
