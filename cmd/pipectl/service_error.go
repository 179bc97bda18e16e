// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/pipestore/pipectl/internal/artifact"
	"github.com/pipestore/pipectl/internal/credential"
	"github.com/pipestore/pipectl/internal/issue"
	"github.com/pipestore/pipectl/internal/project"
	"github.com/pipestore/pipectl/internal/registry"
)

// ServiceError is an error that carries optional rendering information for
// the CLI layer. When the CLI layer receives a ServiceError, it renders the
// styled error message (if present) before formatting the underlying error.
// Always create via newServiceError to enforce the Err-must-be-non-nil invariant.
type ServiceError struct {
	// Err is the underlying error (must not be nil).
	Err error
	// IssueID is the optional issue catalog ID for rendering help text.
	IssueID issue.Id
	// StyledMessage is the optional pre-rendered styled error text.
	StyledMessage string
}

// newServiceError creates a ServiceError with a nil-Err panic guard.
// All construction sites must use this instead of struct literals.
func newServiceError(err error, issueID issue.Id, styledMessage string) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{
		Err:           err,
		IssueID:       issueID,
		StyledMessage: styledMessage,
	}
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// renderServiceError renders a ServiceError in the CLI layer.
// It prints any styled message first, then the optional issue help section
// rendered with the given glamour style.
func renderServiceError(stderr io.Writer, svcErr *ServiceError, style string) {
	if svcErr == nil {
		return
	}

	if svcErr.StyledMessage != "" {
		fmt.Fprint(stderr, svcErr.StyledMessage)
	}

	if svcErr.IssueID == 0 {
		return
	}

	if catalogEntry := issue.Get(svcErr.IssueID); catalogEntry != nil {
		rendered, renderErr := catalogEntry.Render(style)
		if renderErr != nil {
			slog.Warn("failed to render issue catalog entry", "issueID", svcErr.IssueID, "error", renderErr)
		} else {
			fmt.Fprint(stderr, rendered)
		}
	}
}

// issueForError picks the catalog page that helps with err. Zero means no
// page applies.
func issueForError(err error) issue.Id {
	if id := issue.IssueOf(err); id != 0 {
		return id
	}

	switch {
	case errors.Is(err, credential.ErrNotLoggedIn):
		return issue.NotLoggedInId
	case errors.Is(err, project.ErrInvalidManifest),
		errors.Is(err, project.ErrMissingManifestFields),
		errors.Is(err, project.ErrInvalidVersion):
		return issue.ManifestInvalidId
	case errors.Is(err, project.ErrMissingDescription):
		return issue.DescriptionMissingId
	case errors.Is(err, project.ErrMissingRequiredFiles):
		return issue.RequiredFilesMissingId
	case errors.Is(err, artifact.ErrArtifactTooLarge):
		return issue.ArtifactTooLargeId
	case errors.Is(err, artifact.ErrArchiveIO),
		errors.Is(err, artifact.ErrArtifactModified):
		return issue.ArchiveFailedId
	case errors.Is(err, registry.ErrSlotRequestFailed):
		return issue.SlotRequestFailedId
	case errors.Is(err, registry.ErrUploadFailed):
		return issue.UploadFailedId
	case errors.Is(err, registry.ErrFinalizeFailed):
		return issue.FinalizeFailedId
	default:
		return 0
	}
}
