package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/opencontainers/go-digest"

	"github.com/jbpratt/roomshare/internal/storage"
	"github.com/jbpratt/roomshare/pkg/types"
)

const tempSuffix = ".tmp"

// entryID names an entry after its creation time and content digest
func entryID(unix int64, content string) string {
	return fmt.Sprintf("%d_%s", unix, digest.FromString(content).Encoded())
}

// ListEntries implements PasteboardStore
func (s *Store) ListEntries(ctx context.Context, room string) ([]types.PasteboardEntry, error) {
	root, err := s.ensureRoom(room)
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(root, pasteboardDir)
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read pasteboard directory: %w", err)
	}

	entries := []types.PasteboardEntry{}
	for _, de := range dirEntries {
		if de.IsDir() || strings.HasSuffix(de.Name(), tempSuffix) {
			continue
		}

		path := filepath.Join(dir, de.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			// Skip entries deleted while listing
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read entry %s: %w", de.Name(), err)
		}

		var timestamp int64
		if info, err := de.Info(); err == nil {
			timestamp = info.ModTime().Unix()
		}

		entries = append(entries, types.PasteboardEntry{
			ID:        de.Name(),
			Content:   string(data),
			Timestamp: timestamp,
		})
	}
	return entries, nil
}

// PutEntry implements PasteboardStore
func (s *Store) PutEntry(ctx context.Context, room, content string) (*types.PasteboardEntry, error) {
	if !utf8.ValidString(content) {
		return nil, fmt.Errorf("%w: not valid UTF-8", storage.ErrInvalidContent)
	}

	root, err := s.ensureRoom(room)
	if err != nil {
		return nil, err
	}

	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	now := s.now()
	id := entryID(now.Unix(), content)
	path := filepath.Join(root, pasteboardDir, id)

	// Write to temporary file first
	tempPath := path + tempSuffix
	if err := os.WriteFile(tempPath, []byte(content), 0644); err != nil {
		return nil, fmt.Errorf("failed to write temporary entry: %w", err)
	}
	if err := os.Chtimes(tempPath, now, now); err != nil {
		os.Remove(tempPath)
		return nil, fmt.Errorf("failed to set entry time: %w", err)
	}

	// Atomic move
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return nil, fmt.Errorf("failed to move entry to final location: %w", err)
	}

	return &types.PasteboardEntry{
		ID:        id,
		Content:   content,
		Timestamp: now.Unix(),
	}, nil
}

// DeleteEntry implements PasteboardStore
func (s *Store) DeleteEntry(ctx context.Context, room, id string) error {
	if err := storage.ValidateName(room); err != nil {
		return err
	}
	if err := storage.ValidateName(id); err != nil {
		return err
	}

	path := filepath.Join(s.roomPath(room), pasteboardDir, id)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return storage.ErrEntryNotFound
		}
		return fmt.Errorf("failed to delete entry %s: %w", id, err)
	}
	return nil
}
