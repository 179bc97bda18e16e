// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/flate"

	"github.com/pipestore/pipectl/internal/project"
)

// ErrArchiveIO is the sentinel error wrapped by ArchiveIOError.
var ErrArchiveIO = errors.New("archive I/O failure")

// ArchiveIOError reports a read or write failure while producing the archive.
type ArchiveIOError struct {
	Path  string
	Cause error
}

// Error implements the error interface for ArchiveIOError.
func (e *ArchiveIOError) Error() string {
	return fmt.Sprintf("failed to create archive (%s): %v", e.Path, e.Cause)
}

// Unwrap exposes ErrArchiveIO and the underlying cause.
func (e *ArchiveIOError) Unwrap() []error { return []error{ErrArchiveIO, e.Cause} }

// ArchiveFileName returns "{name}-{version}.zip" with scoped package names
// flattened ("@scope/pkg" becomes "scope-pkg").
func ArchiveFileName(name, version string) string {
	clean := strings.TrimPrefix(name, "@")
	clean = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, clean)
	return fmt.Sprintf("%s-%s.zip", clean, version)
}

// Build writes files into a new zip archive at dest.
//
// dest must not exist. When it does, Build returns an ArchiveIOError and a nil
// Guard so the existing file is left alone. Any later failure returns the
// error together with a Guard that owns the partial file.
func Build(files project.FileSet, dest string) (_ *Guard, err error) {
	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, &ArchiveIOError{Path: dest, Cause: err}
	}
	guard := newGuard(dest)

	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = &ArchiveIOError{Path: dest, Cause: closeErr}
		}
	}()

	zw := zip.NewWriter(f)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.BestCompression)
	})

	for _, entry := range files {
		if addErr := addEntry(zw, entry); addErr != nil {
			_ = zw.Close()
			return guard, addErr
		}
	}

	if closeErr := zw.Close(); closeErr != nil {
		return guard, &ArchiveIOError{Path: dest, Cause: closeErr}
	}
	return guard, nil
}

func addEntry(zw *zip.Writer, entry project.Entry) error {
	info, err := os.Stat(entry.SourcePath)
	if err != nil {
		return &ArchiveIOError{Path: entry.SourcePath, Cause: err}
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return &ArchiveIOError{Path: entry.SourcePath, Cause: err}
	}
	header.Name = filepath.ToSlash(entry.ArchiveName)

	if entry.IsDir {
		header.Name = strings.TrimSuffix(header.Name, "/") + "/"
		header.Method = zip.Store
		if _, err := zw.CreateHeader(header); err != nil {
			return &ArchiveIOError{Path: entry.SourcePath, Cause: err}
		}
		return nil
	}

	header.Method = zip.Deflate
	w, err := zw.CreateHeader(header)
	if err != nil {
		return &ArchiveIOError{Path: entry.SourcePath, Cause: err}
	}

	src, err := os.Open(entry.SourcePath)
	if err != nil {
		return &ArchiveIOError{Path: entry.SourcePath, Cause: err}
	}
	defer func() { _ = src.Close() }()

	if _, err := io.Copy(w, src); err != nil {
		return &ArchiveIOError{Path: entry.SourcePath, Cause: err}
	}
	return nil
}
