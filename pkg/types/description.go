// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDescriptionText is the sentinel error wrapped by InvalidDescriptionTextError.
var ErrInvalidDescriptionText = errors.New("invalid description text")

type (
	// DescriptionText is the human-readable description sent with a publish
	// request. It is taken verbatim from the project readme. A publishable
	// description must contain at least one non-whitespace character.
	DescriptionText string

	// InvalidDescriptionTextError is returned when a DescriptionText value is
	// empty or whitespace-only.
	InvalidDescriptionTextError struct {
		Value DescriptionText
	}
)

// String returns the string representation of the DescriptionText.
func (d DescriptionText) String() string { return string(d) }

// IsBlank reports whether the description has no visible content.
func (d DescriptionText) IsBlank() bool { return strings.TrimSpace(string(d)) == "" }

// IsValid returns whether the DescriptionText can be published.
func (d DescriptionText) IsValid() (bool, []error) {
	if d.IsBlank() {
		return false, []error{&InvalidDescriptionTextError{Value: d}}
	}
	return true, nil
}

// Error implements the error interface for InvalidDescriptionTextError.
func (e *InvalidDescriptionTextError) Error() string {
	return fmt.Sprintf("invalid description text: must contain non-whitespace content (got %q)", e.Value)
}

// Unwrap returns ErrInvalidDescriptionText for errors.Is() compatibility.
func (e *InvalidDescriptionTextError) Unwrap() error { return ErrInvalidDescriptionText }
