package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/kitebird-capital/terminal/internal/refresh"
)

// HealthHandler serves the health-check endpoint.
type HealthHandler struct {
	cache  *refresh.Cache
	logger *slog.Logger
}

// NewHealthHandler creates a HealthHandler backed by the snapshot cache.
func NewHealthHandler(cache *refresh.Cache, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{cache: cache, logger: logger}
}

// HealthCheck reports liveness plus whether a snapshot has been published
// yet and how old it is.
// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if snap, ok := h.cache.Get(); ok {
		resp["last_cycle_id"] = snap.CycleID
		resp["last_updated"] = snap.UpdatedAt.Format(time.RFC3339)
		resp["age_seconds"] = int64(time.Since(snap.UpdatedAt).Seconds())
	} else {
		resp["status"] = "warming_up"
	}
	writeJSON(w, http.StatusOK, resp)
}
