// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pipestore/pipectl/pkg/types"
)

var (
	// ErrArtifactTooLarge is the sentinel error wrapped by ArtifactTooLargeError.
	ErrArtifactTooLarge = errors.New("package too large")
	// ErrArtifactModified indicates the archive changed after it was hashed.
	ErrArtifactModified = errors.New("archive modified after hashing")
)

type (
	// Metadata describes the archive that is about to be uploaded.
	Metadata struct {
		// ContentHash is the lowercase hex SHA-256 of the archive bytes.
		ContentHash string
		// SizeBytes is the archive length in bytes.
		SizeBytes int64
		// ModTime is the archive modification time when it was hashed.
		ModTime time.Time
		// Description is the readme content sent with the publish request.
		Description types.DescriptionText
	}

	// ArtifactTooLargeError is returned when the archive exceeds the limit.
	ArtifactTooLargeError struct {
		Actual types.ByteSize
		Limit  types.ByteSize
	}

	// ArtifactModifiedError reports which property changed.
	ArtifactModifiedError struct {
		Path   string
		Reason string
	}
)

// Error implements the error interface for ArtifactTooLargeError.
func (e *ArtifactTooLargeError) Error() string {
	return fmt.Sprintf("package size %.2fMB exceeds maximum allowed size (%.0fMB)",
		e.Actual.MiBValue(), e.Limit.MiBValue())
}

// Unwrap returns ErrArtifactTooLarge for errors.Is() compatibility.
func (e *ArtifactTooLargeError) Unwrap() error { return ErrArtifactTooLarge }

// Error implements the error interface for ArtifactModifiedError.
func (e *ArtifactModifiedError) Error() string {
	return fmt.Sprintf("archive %s modified after hashing: %s", e.Path, e.Reason)
}

// Unwrap returns ErrArtifactModified for errors.Is() compatibility.
func (e *ArtifactModifiedError) Unwrap() error { return ErrArtifactModified }

// Inspect checks the archive at path against limit, then reads it once and
// hashes it. The returned bytes are exactly the bytes the hash covers.
//
// Oversized archives are rejected from their on-disk size without being
// read. Deleting the file is left to the caller's Guard.
func Inspect(path string, limit types.ByteSize) (Metadata, []byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Metadata{}, nil, &ArchiveIOError{Path: path, Cause: err}
	}

	if size := types.ByteSize(info.Size()); size > limit {
		return Metadata{}, nil, &ArtifactTooLargeError{Actual: size, Limit: limit}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, nil, &ArchiveIOError{Path: path, Cause: err}
	}
	if int64(len(data)) != info.Size() {
		return Metadata{}, nil, &ArtifactModifiedError{
			Path:   path,
			Reason: fmt.Sprintf("read %d bytes, expected %d", len(data), info.Size()),
		}
	}

	return Metadata{
		ContentHash: HashBytes(data),
		SizeBytes:   int64(len(data)),
		ModTime:     info.ModTime(),
	}, data, nil
}

// HashBytes returns the lowercase hex-encoded SHA-256 digest of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// VerifyUnchanged returns an ArtifactModifiedError when the file at path no
// longer has the size and modification time recorded in m.
func (m Metadata) VerifyUnchanged(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &ArtifactModifiedError{Path: path, Reason: err.Error()}
	}
	if info.Size() != m.SizeBytes {
		return &ArtifactModifiedError{
			Path:   path,
			Reason: fmt.Sprintf("size changed from %d to %d bytes", m.SizeBytes, info.Size()),
		}
	}
	if !info.ModTime().Equal(m.ModTime) {
		return &ArtifactModifiedError{Path: path, Reason: "modification time changed"}
	}
	return nil
}
