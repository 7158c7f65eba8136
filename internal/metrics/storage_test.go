package metrics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/jbpratt/roomshare/internal/storage"
	"github.com/jbpratt/roomshare/internal/storage/filesystem"
)

func newTestStorage(t *testing.T) (*StorageMetrics, *Registry) {
	t.Helper()

	store, err := filesystem.New(t.TempDir())
	require.NoError(t, err)

	registry := NewRegistry()
	return NewStorageMetrics(store, registry), registry
}

func TestStorageMetrics_UploadProtocol(t *testing.T) {
	ctx := context.Background()
	s, registry := newTestStorage(t)

	written, err := s.WriteChunk(ctx, "demo", "a.bin", 0, strings.NewReader(strings.Repeat("x", 100)))
	require.NoError(t, err)
	require.Equal(t, int64(100), written)

	_, err = s.WriteChunk(ctx, "demo", "a.bin", 100, strings.NewReader(strings.Repeat("y", 50)))
	require.NoError(t, err)

	status, err := s.UploadStatus(ctx, "demo", "a.bin")
	require.NoError(t, err)
	require.Equal(t, uint64(150), status.Size)

	require.NoError(t, s.FinalizeUpload(ctx, "demo", "a.bin"))

	err = s.FinalizeUpload(ctx, "demo", "a.bin")
	require.ErrorIs(t, err, storage.ErrUploadNotFound)

	require.Equal(t, float64(150), testutil.ToFloat64(registry.uploadChunkBytesTotal))
	require.Equal(t, float64(1), testutil.ToFloat64(registry.uploadOperationsTotal.WithLabelValues("start", "success")))
	require.Equal(t, float64(1), testutil.ToFloat64(registry.uploadOperationsTotal.WithLabelValues("chunk", "success")))
	require.Equal(t, float64(1), testutil.ToFloat64(registry.uploadOperationsTotal.WithLabelValues("finalize", "success")))
	require.Equal(t, float64(1), testutil.ToFloat64(registry.uploadOperationsTotal.WithLabelValues("finalize", "error")))
	require.Equal(t, float64(1), testutil.ToFloat64(registry.storageErrorsTotal.WithLabelValues("finalize_upload", "upload_not_found")))
}

func TestStorageMetrics_Rooms(t *testing.T) {
	ctx := context.Background()
	s, registry := newTestStorage(t)

	require.NoError(t, s.CreateRoom(ctx, "one"))
	require.NoError(t, s.CreateRoom(ctx, "two"))

	rooms, err := s.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	require.Equal(t, float64(2), testutil.ToFloat64(registry.roomsTotal))

	err = s.CreateRoom(ctx, "..")
	require.ErrorIs(t, err, storage.ErrInvalidName)
	require.Equal(t, float64(1), testutil.ToFloat64(registry.storageErrorsTotal.WithLabelValues("create_room", "invalid_name")))
}

func TestStorageMetrics_Pasteboard(t *testing.T) {
	ctx := context.Background()
	s, registry := newTestStorage(t)

	entry, err := s.PutEntry(ctx, "demo", "hello")
	require.NoError(t, err)

	entries, err := s.ListEntries(ctx, "demo")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, s.DeleteEntry(ctx, "demo", entry.ID))
	require.Error(t, s.DeleteEntry(ctx, "demo", entry.ID))

	require.Equal(t, float64(1), testutil.ToFloat64(registry.pasteboardOperationsTotal.WithLabelValues("put", "success")))
	require.Equal(t, float64(1), testutil.ToFloat64(registry.pasteboardOperationsTotal.WithLabelValues("delete", "error")))
}

func TestStorageMetrics_Files(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStorage(t)

	_, err := s.WriteChunk(ctx, "demo", "a.txt", 0, strings.NewReader("abc"))
	require.NoError(t, err)

	files, err := s.ListFiles(ctx, "demo")
	require.NoError(t, err)
	require.Len(t, files, 1)

	f, err := s.OpenFile(ctx, "demo", "a.txt")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, s.DeleteFile(ctx, "demo", "a.txt"))
	require.NoError(t, s.DeleteRoom(ctx, "demo"))
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{storage.ErrRoomNotFound, "room_not_found"},
		{fmt.Errorf("wrapped: %w", storage.ErrFileNotFound), "file_not_found"},
		{storage.ErrEntryNotFound, "entry_not_found"},
		{storage.ErrUploadNotFound, "upload_not_found"},
		{storage.ErrInvalidName, "invalid_name"},
		{storage.ErrInvalidOffset, "invalid_offset"},
		{storage.ErrInvalidContent, "invalid_content"},
		{fmt.Errorf("copy: %w", context.Canceled), "canceled"},
		{errors.New("disk on fire"), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			require.Equal(t, tt.expected, classifyError(tt.err))
		})
	}
}
