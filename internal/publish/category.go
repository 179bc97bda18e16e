// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"errors"

	"github.com/pipestore/pipectl/internal/artifact"
	"github.com/pipestore/pipectl/internal/credential"
	"github.com/pipestore/pipectl/internal/project"
	"github.com/pipestore/pipectl/internal/registry"
)

const (
	// CategoryInternal covers failures outside the other categories.
	CategoryInternal Category = iota
	// CategoryValidation covers problems the user fixes in the project or login.
	CategoryValidation
	// CategoryTooLarge is an archive over the size limit.
	CategoryTooLarge
	// CategoryArchiveIO is a read or write failure while building the archive.
	CategoryArchiveIO
	// CategoryNetwork is a failed slot request, upload or finalize.
	CategoryNetwork
)

// Category groups failures by who can fix them.
type Category int

// String returns the string representation of the Category.
func (c Category) String() string {
	switch c {
	case CategoryValidation:
		return "validation"
	case CategoryTooLarge:
		return "too-large"
	case CategoryArchiveIO:
		return "archive-io"
	case CategoryNetwork:
		return "network"
	default:
		return "internal"
	}
}

// Classify maps err to its Category.
func Classify(err error) Category {
	switch {
	case err == nil:
		return CategoryInternal
	case errors.Is(err, credential.ErrNotLoggedIn),
		errors.Is(err, ErrMissingName),
		errors.Is(err, project.ErrInvalidManifest),
		errors.Is(err, project.ErrMissingManifestFields),
		errors.Is(err, project.ErrInvalidVersion),
		errors.Is(err, project.ErrMissingDescription),
		errors.Is(err, project.ErrDescriptionTooLarge),
		errors.Is(err, project.ErrMissingRequiredFiles):
		return CategoryValidation
	case errors.Is(err, artifact.ErrArtifactTooLarge):
		return CategoryTooLarge
	case errors.Is(err, artifact.ErrArchiveIO),
		errors.Is(err, artifact.ErrArtifactModified):
		return CategoryArchiveIO
	case errors.Is(err, registry.ErrSlotRequestFailed),
		errors.Is(err, registry.ErrUploadFailed),
		errors.Is(err, registry.ErrFinalizeFailed):
		return CategoryNetwork
	default:
		return CategoryInternal
	}
}
