package storage

import "errors"

// Common storage errors
var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrFileNotFound   = errors.New("file not found")
	ErrEntryNotFound  = errors.New("pasteboard entry not found")
	ErrUploadNotFound = errors.New("upload not found")
	ErrInvalidName    = errors.New("invalid name")
	ErrInvalidOffset  = errors.New("invalid offset")
	ErrInvalidContent = errors.New("invalid content")
)

// IsNotFound reports whether err is one of the not-found errors
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRoomNotFound) ||
		errors.Is(err, ErrFileNotFound) ||
		errors.Is(err, ErrEntryNotFound) ||
		errors.Is(err, ErrUploadNotFound)
}
