package storage

import (
	"context"
	"io"
	"io/fs"

	"github.com/jbpratt/roomshare/pkg/types"
)

// Store combines all storage interfaces
type Store interface {
	RoomStore
	PasteboardStore
	FileStore
	UploadManager
}

// RoomStore handles room lifecycle
type RoomStore interface {
	// ListRooms returns the names of all rooms
	ListRooms(ctx context.Context) ([]string, error)

	// CreateRoom creates the directory tree for a room. Idempotent.
	CreateRoom(ctx context.Context, room string) error

	// DeleteRoom removes a room and everything in it
	DeleteRoom(ctx context.Context, room string) error
}

// PasteboardStore handles text snippets
type PasteboardStore interface {
	// ListEntries returns all pasteboard entries of a room
	ListEntries(ctx context.Context, room string) ([]types.PasteboardEntry, error)

	// PutEntry stores a new entry and returns it
	PutEntry(ctx context.Context, room, content string) (*types.PasteboardEntry, error)

	// DeleteEntry removes an entry by id
	DeleteEntry(ctx context.Context, room, id string) error
}

// FileStore handles uploaded files outside of the upload protocol
type FileStore interface {
	// ListFiles returns the files of a room; session markers are not listed
	ListFiles(ctx context.Context, room string) ([]types.FileInfo, error)

	// OpenFile opens a file for reading
	OpenFile(ctx context.Context, room, name string) (File, error)

	// DeleteFile removes a file together with any session marker
	DeleteFile(ctx context.Context, room, name string) error
}

// UploadManager implements the resumable chunked upload protocol.
//
// A target moves ABSENT -> UPLOADING on a chunk at offset 0, stays UPLOADING
// for chunks at any other offset, and becomes COMPLETE when finalized. A
// fresh chunk at offset 0 restarts the cycle from any state.
type UploadManager interface {
	// WriteChunk writes chunk at offset and returns the number of bytes written.
	// Offset 0 truncates the target and opens a session.
	WriteChunk(ctx context.Context, room, name string, offset int64, chunk io.Reader) (int64, error)

	// UploadStatus reports the resumable size of a target
	UploadStatus(ctx context.Context, room, name string) (*types.UploadStatus, error)

	// FinalizeUpload closes the session of a target. It fails with
	// ErrUploadNotFound when no session is open.
	FinalizeUpload(ctx context.Context, room, name string) error
}

// File is an open stored file
type File interface {
	io.ReadSeekCloser
	Stat() (fs.FileInfo, error)
}
