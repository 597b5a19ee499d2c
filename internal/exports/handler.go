// Package exports snapshots the argument catalog as CSV into object storage.
package exports

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ayush/argumetrics/internal/httpx"
	"github.com/ayush/argumetrics/internal/models"
	"github.com/ayush/argumetrics/internal/store"
)

const contentType = "text/csv"

var keyPattern = regexp.MustCompile(`^arguments-\d{8}T\d{6}Z-[0-9a-f]{8}\.csv$`)

// FileStore defines the interface for file storage. store.ExportStore
// (MinIO) implements it.
type FileStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, string, error)
}

// ArgumentLister supplies the rows of an export.
type ArgumentLister interface {
	GetArguments(ctx context.Context) ([]models.Argument, error)
}

// Handler holds export HTTP handlers.
type Handler struct {
	files     FileStore
	arguments ArgumentLister
	log       *zap.Logger
	now       func() time.Time
}

// NewHandler wires the export routes. A nil files answers 503 on every call.
func NewHandler(files FileStore, arguments ArgumentLister, log *zap.Logger) *Handler {
	return &Handler{files: files, arguments: arguments, log: log, now: time.Now}
}

// Create writes the current catalog to a new CSV object.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.files == nil {
		httpx.WriteMessage(w, http.StatusServiceUnavailable, "Exports are not configured")
		return
	}

	args, err := h.arguments.GetArguments(r.Context())
	if err != nil {
		h.log.Error("export list arguments failed", zap.Error(err))
		httpx.WriteInternalError(w)
		return
	}

	data, err := EncodeCSV(args)
	if err != nil {
		h.log.Error("export encode failed", zap.Error(err))
		httpx.WriteInternalError(w)
		return
	}

	key := h.newKey()
	if err := h.files.Upload(r.Context(), key, data, contentType); err != nil {
		h.log.Error("export upload failed", zap.String("key", key), zap.Error(err))
		httpx.WriteInternalError(w)
		return
	}

	h.log.Info("catalog exported", zap.String("key", key), zap.Int("rows", len(args)))
	httpx.WriteJSON(w, http.StatusCreated, models.Export{Key: key, Size: int64(len(data)), Rows: len(args)})
}

// Download streams a previous export back to the caller.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	if h.files == nil {
		httpx.WriteMessage(w, http.StatusServiceUnavailable, "Exports are not configured")
		return
	}

	key := chi.URLParam(r, "key")
	if !keyPattern.MatchString(key) {
		httpx.WriteMessage(w, http.StatusNotFound, "Export not found")
		return
	}

	data, ct, err := h.files.Download(r.Context(), key)
	if errors.Is(err, store.ErrObjectNotFound) {
		httpx.WriteMessage(w, http.StatusNotFound, "Export not found")
		return
	}
	if err != nil {
		h.log.Error("export download failed", zap.String("key", key), zap.Error(err))
		httpx.WriteInternalError(w)
		return
	}
	if ct == "" {
		ct = contentType
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", key))
	_, _ = w.Write(data)
}

func (h *Handler) newKey() string {
	suffix := uuid.New().String()[:8]
	return "arguments-" + h.now().UTC().Format("20060102T150405Z") + "-" + suffix + ".csv"
}

// EncodeCSV renders arguments with a header row.
func EncodeCSV(args []models.Argument) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write([]string{"id", "title", "description", "archetype", "userId", "createdAt"}); err != nil {
		return nil, err
	}
	for _, a := range args {
		row := []string{
			strconv.FormatInt(a.ID, 10),
			a.Title,
			a.Description,
			string(a.Archetype),
			strconv.FormatInt(a.UserID, 10),
			a.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return nil, err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
