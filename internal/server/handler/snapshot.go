package handler

import (
	"log/slog"
	"net/http"

	"github.com/kitebird-capital/terminal/internal/refresh"
)

// SnapshotHandler serves the cached snapshot and its individual sections.
type SnapshotHandler struct {
	cache  *refresh.Cache
	logger *slog.Logger
}

// NewSnapshotHandler creates a SnapshotHandler backed by the snapshot cache.
func NewSnapshotHandler(cache *refresh.Cache, logger *slog.Logger) *SnapshotHandler {
	return &SnapshotHandler{cache: cache, logger: logger}
}

// GetSnapshot returns the full current snapshot, or 503 before the first
// refresh cycle has completed.
// GET /api/snapshot
func (h *SnapshotHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.cache.Get()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no snapshot available yet")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// GetFunding returns the funding section of the current snapshot.
// GET /api/funding
func (h *SnapshotHandler) GetFunding(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.cache.Get()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no snapshot available yet")
		return
	}
	writeJSON(w, http.StatusOK, snap.Funding)
}

// GetArbitrage returns the arbitrage section of the current snapshot.
// GET /api/arbitrage
func (h *SnapshotHandler) GetArbitrage(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.cache.Get()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no snapshot available yet")
		return
	}
	writeJSON(w, http.StatusOK, snap.Arbitrage)
}

// GetVolatility returns the volatility section of the current snapshot.
// GET /api/volatility
func (h *SnapshotHandler) GetVolatility(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.cache.Get()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no snapshot available yet")
		return
	}
	writeJSON(w, http.StatusOK, snap.Volatility)
}
