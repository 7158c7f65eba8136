package storage

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// MaxNameLength bounds room names, file names and entry ids
	MaxNameLength = 255

	// MarkerSuffix is appended to a target name to form its session marker
	MarkerSuffix = ".uploading"
)

// ValidateName checks that name is usable as a single path segment below the
// storage root.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidName, MaxNameLength)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	}
	if !filepath.IsLocal(name) {
		return fmt.Errorf("%w: %q is not a local path", ErrInvalidName, name)
	}
	return nil
}

// ValidateFileName is ValidateName plus the rule that a file may not shadow
// another file's session marker.
func ValidateFileName(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if strings.HasSuffix(name, MarkerSuffix) {
		return fmt.Errorf("%w: %q uses the reserved suffix %s", ErrInvalidName, name, MarkerSuffix)
	}
	return nil
}
