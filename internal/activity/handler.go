package activity

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/ayush/argumetrics/internal/httpx"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Handler serves the activity feed.
type Handler struct {
	journal *Journal
	log     *zap.Logger
}

func NewHandler(journal *Journal, log *zap.Logger) *Handler {
	return &Handler{journal: journal, log: log}
}

// List returns the most recent entries. ?limit is clamped to [1, MaxLimit].
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit := int64(DefaultLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			httpx.WriteMessage(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, MaxLimit)
	}

	entries, err := h.journal.Recent(r.Context(), limit)
	if err != nil {
		h.log.Error("activity list failed", zap.Error(err))
		httpx.WriteInternalError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, entries)
}
