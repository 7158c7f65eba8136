package metrics

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/jbpratt/roomshare/internal/storage"
	"github.com/jbpratt/roomshare/pkg/types"
)

// StorageMetrics wraps a storage.Store with Prometheus metrics
type StorageMetrics struct {
	store    storage.Store
	registry *Registry
}

// NewStorageMetrics creates a new storage wrapper with metrics
func NewStorageMetrics(store storage.Store, registry *Registry) *StorageMetrics {
	return &StorageMetrics{
		store:    store,
		registry: registry,
	}
}

// recordOperation records a storage operation with timing and error handling
func (s *StorageMetrics) recordOperation(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := statusLabel(err)
	if err != nil {
		s.registry.RecordStorageError(operation, classifyError(err))
	}
	s.registry.RecordStorageOperation(operation, status, duration)
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// classifyError categorizes errors for metrics
func classifyError(err error) string {
	switch {
	case errors.Is(err, storage.ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, storage.ErrFileNotFound):
		return "file_not_found"
	case errors.Is(err, storage.ErrEntryNotFound):
		return "entry_not_found"
	case errors.Is(err, storage.ErrUploadNotFound):
		return "upload_not_found"
	case errors.Is(err, storage.ErrInvalidName):
		return "invalid_name"
	case errors.Is(err, storage.ErrInvalidOffset):
		return "invalid_offset"
	case errors.Is(err, storage.ErrInvalidContent):
		return "invalid_content"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "unknown"
	}
}

// ListRooms implements storage.RoomStore
func (s *StorageMetrics) ListRooms(ctx context.Context) ([]string, error) {
	start := time.Now()
	rooms, err := s.store.ListRooms(ctx)
	s.recordOperation("list_rooms", start, err)
	if err == nil {
		s.registry.SetRoomsTotal(float64(len(rooms)))
	}
	return rooms, err
}

// CreateRoom implements storage.RoomStore
func (s *StorageMetrics) CreateRoom(ctx context.Context, room string) error {
	start := time.Now()
	err := s.store.CreateRoom(ctx, room)
	s.recordOperation("create_room", start, err)
	return err
}

// DeleteRoom implements storage.RoomStore
func (s *StorageMetrics) DeleteRoom(ctx context.Context, room string) error {
	start := time.Now()
	err := s.store.DeleteRoom(ctx, room)
	s.recordOperation("delete_room", start, err)
	return err
}

// ListEntries implements storage.PasteboardStore
func (s *StorageMetrics) ListEntries(ctx context.Context, room string) ([]types.PasteboardEntry, error) {
	start := time.Now()
	entries, err := s.store.ListEntries(ctx, room)
	s.recordOperation("list_entries", start, err)
	return entries, err
}

// PutEntry implements storage.PasteboardStore
func (s *StorageMetrics) PutEntry(ctx context.Context, room, content string) (*types.PasteboardEntry, error) {
	start := time.Now()
	entry, err := s.store.PutEntry(ctx, room, content)
	s.recordOperation("put_entry", start, err)
	s.registry.RecordPasteboardOperation("put", statusLabel(err))
	return entry, err
}

// DeleteEntry implements storage.PasteboardStore
func (s *StorageMetrics) DeleteEntry(ctx context.Context, room, id string) error {
	start := time.Now()
	err := s.store.DeleteEntry(ctx, room, id)
	s.recordOperation("delete_entry", start, err)
	s.registry.RecordPasteboardOperation("delete", statusLabel(err))
	return err
}

// ListFiles implements storage.FileStore
func (s *StorageMetrics) ListFiles(ctx context.Context, room string) ([]types.FileInfo, error) {
	start := time.Now()
	files, err := s.store.ListFiles(ctx, room)
	s.recordOperation("list_files", start, err)
	return files, err
}

// OpenFile implements storage.FileStore
func (s *StorageMetrics) OpenFile(ctx context.Context, room, name string) (storage.File, error) {
	start := time.Now()
	file, err := s.store.OpenFile(ctx, room, name)
	s.recordOperation("open_file", start, err)
	return file, err
}

// DeleteFile implements storage.FileStore
func (s *StorageMetrics) DeleteFile(ctx context.Context, room, name string) error {
	start := time.Now()
	err := s.store.DeleteFile(ctx, room, name)
	s.recordOperation("delete_file", start, err)
	return err
}

// WriteChunk implements storage.UploadManager. Bytes are counted even when
// the chunk fails part way, since they stay on disk.
func (s *StorageMetrics) WriteChunk(ctx context.Context, room, name string, offset int64, chunk io.Reader) (int64, error) {
	start := time.Now()
	written, err := s.store.WriteChunk(ctx, room, name, offset, chunk)
	s.recordOperation("write_chunk", start, err)
	s.registry.AddChunkBytes(written)

	operation := "chunk"
	if offset == 0 {
		operation = "start"
	}
	s.registry.RecordUploadOperation(operation, statusLabel(err))
	return written, err
}

// UploadStatus implements storage.UploadManager
func (s *StorageMetrics) UploadStatus(ctx context.Context, room, name string) (*types.UploadStatus, error) {
	start := time.Now()
	status, err := s.store.UploadStatus(ctx, room, name)
	s.recordOperation("upload_status", start, err)
	s.registry.RecordUploadOperation("status", statusLabel(err))
	return status, err
}

// FinalizeUpload implements storage.UploadManager
func (s *StorageMetrics) FinalizeUpload(ctx context.Context, room, name string) error {
	start := time.Now()
	err := s.store.FinalizeUpload(ctx, room, name)
	s.recordOperation("finalize_upload", start, err)
	s.registry.RecordUploadOperation("finalize", statusLabel(err))
	return err
}

// Verify StorageMetrics implements storage.Store interface
var _ storage.Store = (*StorageMetrics)(nil)
