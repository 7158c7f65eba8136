package handlers

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/jbpratt/roomshare/internal/api"
	"github.com/jbpratt/roomshare/internal/api/middleware"
	"github.com/jbpratt/roomshare/internal/errors"
	"github.com/jbpratt/roomshare/internal/storage"
	"github.com/jbpratt/roomshare/pkg/types"
)

// UploadOptions tune the chunked upload endpoints
type UploadOptions struct {
	// MaxChunkBytes caps one chunk request body; 0 disables the limit
	MaxChunkBytes int64
	// LenientOffset maps an unparseable offset to 0 instead of rejecting it
	LenientOffset bool
}

// UploadHandler handles the resumable chunked upload protocol
type UploadHandler struct {
	store  storage.UploadManager
	logger *slog.Logger
	opts   UploadOptions
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(store storage.UploadManager, logger *slog.Logger, opts UploadOptions) *UploadHandler {
	return &UploadHandler{
		store:  store,
		logger: logger,
		opts:   opts,
	}
}

// WriteChunk handles POST /new_file/{room}/{name}/{offset}
func (h *UploadHandler) WriteChunk(w http.ResponseWriter, r *http.Request) {
	room := api.GetParam(r, "room")
	name := api.GetParam(r, "name")
	rawOffset := api.GetParam(r, "offset")

	offset, err := parseOffset(rawOffset, h.opts.LenientOffset)
	if err != nil {
		errors.WriteErrorResponse(w, http.StatusBadRequest, errors.OffsetInvalid(rawOffset))
		return
	}

	if h.opts.MaxChunkBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxChunkBytes)
	}

	chunk, err := chunkReader(r)
	if err != nil {
		writeStoreError(w, r, h.logger, err, name)
		return
	}

	written, err := h.store.WriteChunk(r.Context(), room, name, offset, chunk)
	if err != nil {
		h.logger.WarnContext(r.Context(), "chunk write failed",
			"request_id", middleware.RequestID(r.Context()),
			"room", room,
			"name", name,
			"offset", offset,
			"written", written)
		writeStoreError(w, r, h.logger, err, name)
		return
	}

	if offset == 0 {
		h.logger.InfoContext(r.Context(), "upload started", "room", room, "name", name)
	}
	h.logger.DebugContext(r.Context(), "chunk written",
		"room", room,
		"name", name,
		"offset", offset,
		"written", written)

	writeJSON(w, http.StatusOK, types.ChunkResult{
		Offset:  offset,
		Written: written,
	})
}

// CheckUpload handles GET /check_new_file/{room}/{name}
func (h *UploadHandler) CheckUpload(w http.ResponseWriter, r *http.Request) {
	room := api.GetParam(r, "room")
	name := api.GetParam(r, "name")

	status, err := h.store.UploadStatus(r.Context(), room, name)
	if err != nil {
		writeStoreError(w, r, h.logger, err, name)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// FinalizeUpload handles POST /done_new_file/{room}/{name}
func (h *UploadHandler) FinalizeUpload(w http.ResponseWriter, r *http.Request) {
	room := api.GetParam(r, "room")
	name := api.GetParam(r, "name")

	if err := h.store.FinalizeUpload(r.Context(), room, name); err != nil {
		writeStoreError(w, r, h.logger, err, name)
		return
	}

	h.logger.InfoContext(r.Context(), "upload completed", "room", room, "name", name)
	w.WriteHeader(http.StatusOK)
}

// parseOffset parses the offset path segment
func parseOffset(raw string, lenient bool) (int64, error) {
	offset, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || offset < 0 {
		if lenient {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %q", storage.ErrInvalidOffset, raw)
	}
	return offset, nil
}

// chunkReader returns the chunk bytes of a request. Multipart bodies are
// unwrapped and their parts streamed back to back; anything else is taken
// as the raw chunk. The first part is read before returning so a body with
// broken framing is rejected before the store is touched.
func chunkReader(r *http.Request) (io.Reader, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		return &bodyReader{r: r.Body}, nil
	}

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errMalformedMultipart, err)
	}

	part, err := mr.NextPart()
	if err == io.EOF {
		// Well-formed body without parts: an empty chunk
		return http.NoBody, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errMalformedMultipart, err)
	}
	return &bodyReader{r: &partsReader{mr: mr, part: part}}, nil
}

// bodyReader tags request body read failures so they are not mistaken for
// storage failures
type bodyReader struct {
	r io.Reader
}

func (b *bodyReader) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if err != nil && err != io.EOF && !stderrors.Is(err, errMalformedMultipart) {
		err = fmt.Errorf("%w: %w", errBodyRead, err)
	}
	return n, err
}

// partsReader concatenates the parts of a multipart body
type partsReader struct {
	mr   *multipart.Reader
	part *multipart.Part
}

func (p *partsReader) Read(b []byte) (int, error) {
	for {
		if p.part == nil {
			part, err := p.mr.NextPart()
			if err == io.EOF {
				return 0, io.EOF
			}
			if err != nil {
				return 0, fmt.Errorf("%w: %w", errMalformedMultipart, err)
			}
			p.part = part
		}

		n, err := p.part.Read(b)
		if err == io.EOF {
			p.part.Close()
			p.part = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		if err != nil {
			return n, fmt.Errorf("%w: %w", errMalformedMultipart, err)
		}
		return n, nil
	}
}
