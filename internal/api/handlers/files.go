package handlers

import (
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/gabriel-vasile/mimetype"

	"github.com/jbpratt/roomshare/internal/api"
	"github.com/jbpratt/roomshare/internal/storage"
)

// FileHandler handles downloads, listings and deletion of room files
type FileHandler struct {
	store  storage.FileStore
	logger *slog.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(store storage.FileStore, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		store:  store,
		logger: logger,
	}
}

// ListFiles handles GET /list_files/{room}
func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	room := api.GetParam(r, "room")

	files, err := h.store.ListFiles(r.Context(), room)
	if err != nil {
		writeStoreError(w, r, h.logger, err, room)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

// GetFile handles GET and HEAD /files/{room}/{name}. Range requests are
// served by http.ServeContent.
func (h *FileHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	room := api.GetParam(r, "room")
	name := api.GetParam(r, "name")

	file, err := h.store.OpenFile(r.Context(), room, name)
	if err != nil {
		writeStoreError(w, r, h.logger, err, name)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		writeStoreError(w, r, h.logger, err, name)
		return
	}

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		writeStoreError(w, r, h.logger, err, name)
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		writeStoreError(w, r, h.logger, err, name)
		return
	}

	w.Header().Set("Content-Type", mtype.String())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": name,
	}))
	http.ServeContent(w, r, name, info.ModTime(), file)
}

// DeleteFile handles DELETE /delete_files/{room}/{name}
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	room := api.GetParam(r, "room")
	name := api.GetParam(r, "name")

	if err := h.store.DeleteFile(r.Context(), room, name); err != nil {
		writeStoreError(w, r, h.logger, err, name)
		return
	}

	h.logger.InfoContext(r.Context(), "file deleted", "room", room, "name", name)
	w.WriteHeader(http.StatusOK)
}
