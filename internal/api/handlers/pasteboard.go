package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/jbpratt/roomshare/internal/api"
	"github.com/jbpratt/roomshare/internal/storage"
)

// PasteboardHandler handles text snippet operations
type PasteboardHandler struct {
	store         storage.PasteboardStore
	logger        *slog.Logger
	maxEntryBytes int64
}

// NewPasteboardHandler creates a new pasteboard handler
func NewPasteboardHandler(store storage.PasteboardStore, logger *slog.Logger, maxEntryBytes int64) *PasteboardHandler {
	return &PasteboardHandler{
		store:         store,
		logger:        logger,
		maxEntryBytes: maxEntryBytes,
	}
}

// ListEntries handles GET /list_pasteboard/{room}
func (h *PasteboardHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	room := api.GetParam(r, "room")

	entries, err := h.store.ListEntries(r.Context(), room)
	if err != nil {
		writeStoreError(w, r, h.logger, err, room)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// PutEntry handles POST /new_pasteboard/{room}
func (h *PasteboardHandler) PutEntry(w http.ResponseWriter, r *http.Request) {
	room := api.GetParam(r, "room")

	content, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxEntryBytes))
	if err != nil {
		writeStoreError(w, r, h.logger, err, room)
		return
	}

	entry, err := h.store.PutEntry(r.Context(), room, string(content))
	if err != nil {
		writeStoreError(w, r, h.logger, err, room)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// DeleteEntry handles DELETE /delete_pasteboard/{room}/{id}
func (h *PasteboardHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	room := api.GetParam(r, "room")
	id := api.GetParam(r, "id")

	if err := h.store.DeleteEntry(r.Context(), room, id); err != nil {
		writeStoreError(w, r, h.logger, err, id)
		return
	}
	w.WriteHeader(http.StatusOK)
}
