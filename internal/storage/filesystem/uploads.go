package filesystem

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jbpratt/roomshare/internal/storage"
	"github.com/jbpratt/roomshare/pkg/types"
)

// WriteChunk implements UploadManager.
//
// Offset 0 starts a fresh upload: the session marker is created and the
// target truncated. Any other offset opens the target without truncation,
// creating it if it vanished, and writes at offset. Bytes between the old
// end of file and offset read back as zero. Nothing is rolled back when the
// copy fails part way.
func (s *Store) WriteChunk(ctx context.Context, room, name string, offset int64, chunk io.Reader) (int64, error) {
	if offset < 0 {
		return 0, fmt.Errorf("%w: %d", storage.ErrInvalidOffset, offset)
	}

	if err := storage.ValidateFileName(name); err != nil {
		return 0, err
	}
	root, err := s.ensureRoom(room)
	if err != nil {
		return 0, err
	}
	path := filepath.Join(root, filesDir, name)

	unlock, err := s.locks.lock(ctx, lockKey(room, name))
	if err != nil {
		return 0, err
	}
	defer unlock()

	release, err := s.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	flags := os.O_WRONLY | os.O_CREATE
	if offset == 0 {
		if err := os.WriteFile(markerPath(path), nil, 0644); err != nil {
			return 0, fmt.Errorf("failed to create upload marker: %w", err)
		}
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return 0, fmt.Errorf("failed to open upload file: %w", err)
	}
	defer file.Close()

	// Seek to offset
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return 0, fmt.Errorf("failed to seek to offset: %w", err)
	}

	written, err := io.Copy(file, &ctxReader{ctx: ctx, r: chunk})
	if err != nil {
		return written, fmt.Errorf("failed to write chunk: %w", err)
	}

	if err := file.Close(); err != nil {
		return written, fmt.Errorf("failed to close upload file: %w", err)
	}
	return written, nil
}

// UploadStatus implements UploadManager
func (s *Store) UploadStatus(ctx context.Context, room, name string) (*types.UploadStatus, error) {
	path, err := s.targetPath(room, name)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locks.lock(ctx, lockKey(room, name))
	if err != nil {
		return nil, err
	}
	defer unlock()

	if _, err := os.Stat(markerPath(path)); err != nil {
		if os.IsNotExist(err) {
			// Complete or never started: nothing to resume
			return &types.UploadStatus{}, nil
		}
		return nil, fmt.Errorf("failed to stat upload marker: %w", err)
	}

	status := &types.UploadStatus{InProgress: true}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return status, nil
		}
		return nil, fmt.Errorf("failed to stat upload file: %w", err)
	}
	status.Size = uint64(info.Size())
	return status, nil
}

// FinalizeUpload implements UploadManager
func (s *Store) FinalizeUpload(ctx context.Context, room, name string) error {
	path, err := s.targetPath(room, name)
	if err != nil {
		return err
	}

	unlock, err := s.locks.lock(ctx, lockKey(room, name))
	if err != nil {
		return err
	}
	defer unlock()

	if err := os.Remove(markerPath(path)); err != nil {
		if os.IsNotExist(err) {
			return storage.ErrUploadNotFound
		}
		return fmt.Errorf("failed to remove upload marker: %w", err)
	}
	return nil
}
