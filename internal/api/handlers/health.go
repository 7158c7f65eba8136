package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jbpratt/roomshare/internal/storage"
)

// HealthHandler reports whether the daemon can reach its storage
type HealthHandler struct {
	store  storage.RoomStore
	logger *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store storage.RoomStore, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		store:  store,
		logger: logger,
	}
}

// CheckHealth handles GET /healthz
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	if _, err := h.store.ListRooms(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
