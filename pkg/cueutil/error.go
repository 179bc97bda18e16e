// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
)

// ErrFileTooLarge is the sentinel error wrapped by FileTooLargeError.
var ErrFileTooLarge = errors.New("file too large")

// FileTooLargeError is returned by CheckFileSize when input exceeds the limit.
type FileTooLargeError struct {
	Filename string
	Size     int64
	Max      int64
}

// Error implements the error interface.
func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("%s: file size %d bytes exceeds maximum %d bytes", e.Filename, e.Size, e.Max)
}

// Unwrap returns ErrFileTooLarge for errors.Is() compatibility.
func (e *FileTooLargeError) Unwrap() error { return ErrFileTooLarge }

// FormatError formats a CUE error with JSON path prefixes.
//
// Error format: <file-path>: <json-path>: <message>
//
// Examples:
//   - config.cue: api.base_url: invalid value "ftp://x" (does not match =~"^https?://")
//   - config.cue: upload.max_attempts: conflicting values 0 and >=1
func FormatError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	// cueerrors.Errors promotes plain errors to a one-element list, so
	// only errors carrying a CUE error keep the path-prefixed format.
	var cueErr cueerrors.Error
	if !errors.As(err, &cueErr) {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	cueErrs := cueerrors.Errors(err)

	lines := make([]string, 0, len(cueErrs))
	for _, e := range cueErrs {
		pathStr := formatPath(e.Path())
		msg := e.Error()

		// CUE sometimes repeats the path at the start of the message.
		if pathStr != "" && strings.HasPrefix(msg, pathStr) {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, pathStr), ":"))
		}

		if pathStr != "" {
			lines = append(lines, pathStr+": "+msg)
		} else {
			lines = append(lines, msg)
		}
	}

	if len(lines) == 1 {
		return fmt.Errorf("%s: %s", filePath, lines[0])
	}
	return fmt.Errorf("%s: validation failed:\n  %s", filePath, strings.Join(lines, "\n  "))
}

// formatPath converts a CUE error path (["upload", "0", "x"]) to JSON-path
// notation ("upload[0].x").
func formatPath(path []string) string {
	var result strings.Builder
	for i, part := range path {
		if i > 0 && isIndex(part) {
			result.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			result.WriteString(".")
		}
		result.WriteString(part)
	}
	return result.String()
}

func isIndex(part string) bool {
	if part == "" {
		return false
	}
	for _, c := range part {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// CheckFileSize verifies that data does not exceed maxSize bytes.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return &FileTooLargeError{Filename: filename, Size: int64(len(data)), Max: maxSize}
	}
	return nil
}
