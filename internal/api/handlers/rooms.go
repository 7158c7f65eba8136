package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jbpratt/roomshare/internal/api"
	"github.com/jbpratt/roomshare/internal/errors"
	"github.com/jbpratt/roomshare/internal/storage"
	"github.com/jbpratt/roomshare/pkg/types"
)

// maxRoomRequestBytes bounds the JSON body of a room creation request
const maxRoomRequestBytes = 4 << 10

// RoomHandler handles room operations
type RoomHandler struct {
	store  storage.RoomStore
	logger *slog.Logger
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(store storage.RoomStore, logger *slog.Logger) *RoomHandler {
	return &RoomHandler{
		store:  store,
		logger: logger,
	}
}

// ListRooms handles GET /list
func (h *RoomHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.store.ListRooms(r.Context())
	if err != nil {
		writeStoreError(w, r, h.logger, err, "")
		return
	}
	writeJSON(w, http.StatusOK, rooms)
}

// CreateRoom handles POST /new
func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req types.NewRoomRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRoomRequestBytes)).Decode(&req); err != nil {
		errors.WriteErrorResponse(w, http.StatusBadRequest, errors.BodyInvalid(err.Error()))
		return
	}

	if err := h.store.CreateRoom(r.Context(), req.Name); err != nil {
		writeStoreError(w, r, h.logger, err, req.Name)
		return
	}

	h.logger.InfoContext(r.Context(), "room created", "room", req.Name)
	w.WriteHeader(http.StatusOK)
}

// DeleteRoom handles DELETE /delete/{room}
func (h *RoomHandler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	room := api.GetParam(r, "room")

	if err := h.store.DeleteRoom(r.Context(), room); err != nil {
		writeStoreError(w, r, h.logger, err, room)
		return
	}

	h.logger.InfoContext(r.Context(), "room deleted", "room", room)
	w.WriteHeader(http.StatusOK)
}
