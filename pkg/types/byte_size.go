// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
)

const (
	// KiB is one kibibyte.
	KiB ByteSize = 1 << 10
	// MiB is one mebibyte.
	MiB ByteSize = 1 << 20
	// GiB is one gibibyte.
	GiB ByteSize = 1 << 30
)

// ErrInvalidByteSize is the sentinel error wrapped by InvalidByteSizeError.
var ErrInvalidByteSize = errors.New("invalid byte size")

type (
	// ByteSize is a length in bytes, used for archive sizes and size limits.
	ByteSize int64

	// InvalidByteSizeError is returned when a ByteSize used as a limit is not positive.
	InvalidByteSizeError struct {
		Value ByteSize
	}
)

// Error implements the error interface for InvalidByteSizeError.
func (e *InvalidByteSizeError) Error() string {
	return fmt.Sprintf("invalid byte size %d: must be positive", int64(e.Value))
}

// Unwrap returns ErrInvalidByteSize for errors.Is() compatibility.
func (e *InvalidByteSizeError) Unwrap() error { return ErrInvalidByteSize }

// Validate returns an error if the size is zero or negative.
func (s ByteSize) Validate() error {
	if s <= 0 {
		return &InvalidByteSizeError{Value: s}
	}
	return nil
}

// MiBValue returns the size in mebibytes as a float for display.
func (s ByteSize) MiBValue() float64 { return float64(s) / float64(MiB) }

// String formats the size for humans, e.g. "12.50 KB" or "500.00 MB".
func (s ByteSize) String() string {
	switch {
	case s >= GiB:
		return fmt.Sprintf("%.2f GB", float64(s)/float64(GiB))
	case s >= MiB:
		return fmt.Sprintf("%.2f MB", float64(s)/float64(MiB))
	case s >= KiB:
		return fmt.Sprintf("%.2f KB", float64(s)/float64(KiB))
	default:
		return fmt.Sprintf("%d bytes", int64(s))
	}
}
