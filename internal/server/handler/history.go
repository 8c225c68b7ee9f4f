package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/kitebird-capital/terminal/internal/domain"
)

// HistoryLister reads archived snapshots, newest first.
type HistoryLister interface {
	ListRecent(ctx context.Context, limit int) ([]domain.HistoryEntry, error)
}

// HistoryHandler serves archived snapshots from the history store.
type HistoryHandler struct {
	store  HistoryLister
	logger *slog.Logger
}

// NewHistoryHandler creates a HistoryHandler. store may be nil when the
// Postgres history store is disabled.
func NewHistoryHandler(store HistoryLister, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{store: store, logger: logger}
}

// ListHistory returns recent archived snapshots, newest first.
// Query params: limit (default 24, max 200).
// GET /api/history
func (h *HistoryHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusNotImplemented, "snapshot history is not enabled")
		return
	}

	limit := queryInt(r, "limit", 24)
	if limit > 200 {
		limit = 200
	}

	entries, err := h.store.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("history list failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(entries),
		"entries": entries,
	})
}
