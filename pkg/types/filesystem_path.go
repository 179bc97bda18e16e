// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrInvalidFilesystemPath is the sentinel error wrapped by InvalidFilesystemPathError.
var ErrInvalidFilesystemPath = errors.New("invalid filesystem path")

type (
	// FilesystemPath is a path to a project directory, config file or archive.
	// A valid path must be non-empty and not whitespace-only.
	FilesystemPath string

	// InvalidFilesystemPathError is returned when a FilesystemPath value is
	// empty or whitespace-only.
	InvalidFilesystemPathError struct {
		Value FilesystemPath
	}
)

// String returns the string representation of the FilesystemPath.
func (p FilesystemPath) String() string { return string(p) }

// IsValid returns whether the FilesystemPath is valid.
func (p FilesystemPath) IsValid() (bool, []error) {
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidFilesystemPathError{Value: p}}
	}
	return true, nil
}

// Abs validates the path and resolves it against the working directory.
func (p FilesystemPath) Abs() (FilesystemPath, error) {
	if ok, errs := p.IsValid(); !ok {
		return "", errs[0]
	}
	abs, err := filepath.Abs(string(p))
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", p, err)
	}
	return FilesystemPath(abs), nil
}

// Join appends path elements using the platform separator.
func (p FilesystemPath) Join(elem ...string) FilesystemPath {
	return FilesystemPath(filepath.Join(append([]string{string(p)}, elem...)...))
}

// Error implements the error interface for InvalidFilesystemPathError.
func (e *InvalidFilesystemPathError) Error() string {
	return fmt.Sprintf("invalid filesystem path %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidFilesystemPath for errors.Is() compatibility.
func (e *InvalidFilesystemPathError) Unwrap() error { return ErrInvalidFilesystemPath }
