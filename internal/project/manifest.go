// SPDX-License-Identifier: MPL-2.0

package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pipestore/pipectl/pkg/types"

	"golang.org/x/mod/semver"
)

const (
	// ManifestFileName is the package manifest read for name and version.
	ManifestFileName = "package.json"
	// ReadmeFileName is the readme used as the package description.
	ReadmeFileName = "README.md"

	// maxManifestBytes bounds the manifest read.
	maxManifestBytes = 4 << 20
	// maxReadmeBytes bounds the readme; longer readmes are rejected.
	maxReadmeBytes = 1 << 20
)

var (
	// ErrInvalidManifest is the sentinel error wrapped by ManifestError.
	ErrInvalidManifest = errors.New("invalid package manifest")
	// ErrMissingManifestFields is the sentinel error wrapped by MissingManifestFieldsError.
	ErrMissingManifestFields = errors.New("missing package manifest fields")
	// ErrInvalidVersion is the sentinel error wrapped by InvalidVersionError.
	ErrInvalidVersion = errors.New("invalid package version")
	// ErrMissingDescription is returned when README.md is absent or blank.
	ErrMissingDescription = errors.New("missing description: README.md is required")
	// ErrDescriptionTooLarge is the sentinel error wrapped by DescriptionTooLargeError.
	ErrDescriptionTooLarge = errors.New("description too large")
)

type (
	// Manifest holds the package.json fields used for publishing.
	Manifest struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}

	// ManifestError is returned when package.json cannot be read or parsed.
	ManifestError struct {
		Path  string
		Cause error
	}

	// MissingManifestFieldsError lists the absent or empty manifest fields.
	MissingManifestFieldsError struct {
		Fields []string
	}

	// InvalidVersionError is returned when the version is not semantic.
	InvalidVersionError struct {
		Version string
	}

	// DescriptionTooLargeError is returned when README.md exceeds the
	// description limit.
	DescriptionTooLargeError struct {
		Limit types.ByteSize
	}
)

// Error implements the error interface for ManifestError.
func (e *ManifestError) Error() string {
	return fmt.Sprintf("invalid package manifest %s: %v", e.Path, e.Cause)
}

// Unwrap exposes ErrInvalidManifest and the underlying cause.
func (e *ManifestError) Unwrap() []error { return []error{ErrInvalidManifest, e.Cause} }

// Error implements the error interface for MissingManifestFieldsError.
func (e *MissingManifestFieldsError) Error() string {
	return fmt.Sprintf("package.json must have %s", strings.Join(e.Fields, " and "))
}

// Unwrap returns ErrMissingManifestFields for errors.Is() compatibility.
func (e *MissingManifestFieldsError) Unwrap() error { return ErrMissingManifestFields }

// Error implements the error interface for InvalidVersionError.
func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid package version %q: must be a semantic version like 1.0.0", e.Version)
}

// Unwrap returns ErrInvalidVersion for errors.Is() compatibility.
func (e *InvalidVersionError) Unwrap() error { return ErrInvalidVersion }

// Error implements the error interface for DescriptionTooLargeError.
func (e *DescriptionTooLargeError) Error() string {
	return fmt.Sprintf("%s is larger than %s; shorten it to publish", ReadmeFileName, e.Limit)
}

// Unwrap returns ErrDescriptionTooLarge for errors.Is() compatibility.
func (e *DescriptionTooLargeError) Unwrap() error { return ErrDescriptionTooLarge }

// ReadManifest reads name and version from package.json in root.
func ReadManifest(root string) (Manifest, error) {
	path := filepath.Join(root, ManifestFileName)

	f, err := os.Open(path)
	if err != nil {
		return Manifest{}, &ManifestError{Path: path, Cause: err}
	}
	defer func() { _ = f.Close() }()

	var m Manifest
	if err := json.NewDecoder(io.LimitReader(f, maxManifestBytes)).Decode(&m); err != nil {
		return Manifest{}, &ManifestError{Path: path, Cause: err}
	}
	m.Name = strings.TrimSpace(m.Name)
	m.Version = strings.TrimSpace(m.Version)

	if err := m.Validate(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

// Validate checks that name and version are present and the version is semantic.
func (m Manifest) Validate() error {
	var missing []string
	if m.Name == "" {
		missing = append(missing, "name")
	}
	if m.Version == "" {
		missing = append(missing, "version")
	}
	if len(missing) > 0 {
		return &MissingManifestFieldsError{Fields: missing}
	}
	return ValidateVersion(m.Version)
}

// ValidateVersion accepts full major.minor.patch versions with or without a
// leading "v". Shorthands like "1.2" are rejected.
func ValidateVersion(version string) error {
	v := "v" + strings.TrimPrefix(version, "v")
	core, _, _ := strings.Cut(v, "+")
	if !semver.IsValid(v) || semver.Canonical(v) != core {
		return &InvalidVersionError{Version: version}
	}
	return nil
}

// ReadDescription returns the contents of README.md in root. A readme over
// 1 MiB is rejected with a DescriptionTooLargeError.
func ReadDescription(root string) (types.DescriptionText, error) {
	f, err := os.Open(filepath.Join(root, ReadmeFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrMissingDescription
		}
		return "", fmt.Errorf("failed to read %s: %w", ReadmeFileName, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, maxReadmeBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", ReadmeFileName, err)
	}
	if len(data) > maxReadmeBytes {
		return "", &DescriptionTooLargeError{Limit: maxReadmeBytes}
	}

	desc := types.DescriptionText(data)
	if ok, _ := desc.IsValid(); !ok {
		return "", ErrMissingDescription
	}
	return desc, nil
}
