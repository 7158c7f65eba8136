package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/jbpratt/roomshare/internal/api/middleware"
	"github.com/jbpratt/roomshare/internal/errors"
	"github.com/jbpratt/roomshare/internal/storage"
)

var (
	// errBodyRead marks a failure to read the request body, usually a client
	// that went away mid-chunk
	errBodyRead = stderrors.New("failed to read request body")
	// errMalformedMultipart marks a multipart chunk body with broken framing
	errMalformedMultipart = stderrors.New("malformed multipart body")
)

// writeJSON writes v as a JSON response body
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeStoreError maps a storage error onto an HTTP error response. subject
// names the room, file or entry the request was about.
func writeStoreError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, subject string) {
	var maxBytesErr *http.MaxBytesError

	switch {
	case stderrors.Is(err, storage.ErrInvalidName):
		errors.WriteErrorResponse(w, http.StatusBadRequest, errors.NameInvalid(err.Error()))
	case stderrors.Is(err, storage.ErrInvalidOffset):
		errors.WriteErrorResponse(w, http.StatusBadRequest, errors.OffsetInvalid(err.Error()))
	case stderrors.Is(err, storage.ErrInvalidContent):
		errors.WriteErrorResponse(w, http.StatusBadRequest, errors.BodyInvalid(err.Error()))
	case stderrors.Is(err, storage.ErrRoomNotFound):
		errors.WriteErrorResponse(w, http.StatusNotFound, errors.RoomUnknown(subject))
	case stderrors.Is(err, storage.ErrFileNotFound):
		errors.WriteErrorResponse(w, http.StatusNotFound, errors.FileUnknown(subject))
	case stderrors.Is(err, storage.ErrEntryNotFound):
		errors.WriteErrorResponse(w, http.StatusNotFound, errors.EntryUnknown(subject))
	case stderrors.Is(err, storage.ErrUploadNotFound):
		errors.WriteErrorResponse(w, http.StatusNotFound, errors.UploadUnknown(subject))
	case stderrors.As(err, &maxBytesErr):
		errors.WriteErrorResponse(w, http.StatusRequestEntityTooLarge, errors.SizeInvalid(err.Error()))
	case stderrors.Is(err, errMalformedMultipart), stderrors.Is(err, errBodyRead):
		logger.WarnContext(r.Context(), "unreadable request body",
			"request_id", middleware.RequestID(r.Context()),
			"subject", subject,
			"error", err)
		errors.WriteErrorResponse(w, http.StatusBadRequest, errors.BodyInvalid(err.Error()))
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		logger.WarnContext(r.Context(), "request aborted",
			"request_id", middleware.RequestID(r.Context()),
			"subject", subject,
			"error", err)
		errors.WriteErrorResponse(w, http.StatusRequestTimeout, errors.Unknown("request aborted"))
	default:
		logger.ErrorContext(r.Context(), "request failed",
			"request_id", middleware.RequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		errors.WriteErrorResponse(w, http.StatusInternalServerError, errors.Unknown(err.Error()))
	}
}
