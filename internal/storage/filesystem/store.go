package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/jbpratt/roomshare/internal/storage"
	"github.com/jbpratt/roomshare/pkg/types"
)

const (
	pasteboardDir = "pasteboard"
	filesDir      = "files"

	// DefaultMaxConcurrentWrites bounds filesystem writes when no option is given
	DefaultMaxConcurrentWrites = 16
)

// Store implements storage.Store using filesystem backend.
//
// Layout:
//
//	<base>/<room>/pasteboard/<id>
//	<base>/<room>/files/<name>
//	<base>/<room>/files/<name>.uploading
type Store struct {
	basePath string
	locks    *keyLocks
	io       *semaphore.Weighted
	now      func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithMaxConcurrentWrites limits how many writes may touch the disk at once
func WithMaxConcurrentWrites(n int64) Option {
	return func(s *Store) {
		if n > 0 {
			s.io = semaphore.NewWeighted(n)
		}
	}
}

// WithClock overrides the time source used for pasteboard entries
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a new filesystem store
func New(basePath string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", basePath, err)
	}

	s := &Store{
		basePath: basePath,
		locks:    newKeyLocks(),
		io:       semaphore.NewWeighted(DefaultMaxConcurrentWrites),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// BasePath returns the storage root
func (s *Store) BasePath() string {
	return s.basePath
}

func (s *Store) roomPath(room string) string {
	return filepath.Join(s.basePath, room)
}

// targetPath returns the path of an upload target without touching the disk
func (s *Store) targetPath(room, name string) (string, error) {
	if err := storage.ValidateName(room); err != nil {
		return "", err
	}
	if err := storage.ValidateFileName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.roomPath(room), filesDir, name), nil
}

func markerPath(target string) string {
	return target + storage.MarkerSuffix
}

func lockKey(room, name string) string {
	return room + "\x00" + name
}

// ensureRoom resolves a room and creates its subdirectories. It is called on
// every reference to a room and is idempotent.
func (s *Store) ensureRoom(room string) (string, error) {
	if err := storage.ValidateName(room); err != nil {
		return "", err
	}
	root := s.roomPath(room)
	for _, dir := range []string{pasteboardDir, filesDir} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0755); err != nil {
			return "", fmt.Errorf("failed to create room directory: %w", err)
		}
	}
	return root, nil
}

// acquire takes one slot of the write semaphore
func (s *Store) acquire(ctx context.Context) (func(), error) {
	if err := s.io.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { s.io.Release(1) }, nil
}

// ListRooms implements RoomStore
func (s *Store) ListRooms(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read storage directory: %w", err)
	}

	rooms := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			rooms = append(rooms, entry.Name())
		}
	}
	return rooms, nil
}

// CreateRoom implements RoomStore
func (s *Store) CreateRoom(ctx context.Context, room string) error {
	_, err := s.ensureRoom(room)
	return err
}

// DeleteRoom implements RoomStore
func (s *Store) DeleteRoom(ctx context.Context, room string) error {
	if err := storage.ValidateName(room); err != nil {
		return err
	}
	path := s.roomPath(room)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return storage.ErrRoomNotFound
		}
		return fmt.Errorf("failed to stat room %s: %w", room, err)
	}
	if !info.IsDir() {
		return storage.ErrRoomNotFound
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to delete room %s: %w", room, err)
	}
	return nil
}

// ListFiles implements FileStore
func (s *Store) ListFiles(ctx context.Context, room string) ([]types.FileInfo, error) {
	root, err := s.ensureRoom(room)
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(root, filesDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read files directory: %w", err)
	}

	markers := make(map[string]bool)
	for _, entry := range entries {
		if name, ok := strings.CutSuffix(entry.Name(), storage.MarkerSuffix); ok && !entry.IsDir() {
			markers[name] = true
		}
	}

	files := []types.FileInfo{}
	for _, entry := range entries {
		if entry.IsDir() || strings.HasSuffix(entry.Name(), storage.MarkerSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}
		files = append(files, types.FileInfo{
			Name:      entry.Name(),
			Timestamp: info.ModTime().Unix(),
			Size:      info.Size(),
			Uploading: markers[entry.Name()],
		})
	}
	return files, nil
}

// OpenFile implements FileStore
func (s *Store) OpenFile(ctx context.Context, room, name string) (storage.File, error) {
	path, err := s.targetPath(room, name)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to open file %s: %w", name, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat file %s: %w", name, err)
	}
	if info.IsDir() {
		file.Close()
		return nil, storage.ErrFileNotFound
	}
	return file, nil
}

// DeleteFile implements FileStore
func (s *Store) DeleteFile(ctx context.Context, room, name string) error {
	path, err := s.targetPath(room, name)
	if err != nil {
		return err
	}

	unlock, err := s.locks.lock(ctx, lockKey(room, name))
	if err != nil {
		return err
	}
	defer unlock()

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return storage.ErrFileNotFound
		}
		return fmt.Errorf("failed to delete file %s: %w", name, err)
	}

	if err := os.Remove(markerPath(path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete upload marker for %s: %w", name, err)
	}
	return nil
}

// ctxReader stops a copy once the request context is done
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// Verify Store implements storage.Store interface
var _ storage.Store = (*Store)(nil)
