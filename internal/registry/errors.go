// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrSlotRequestFailed is the sentinel error wrapped by SlotRequestFailedError.
	ErrSlotRequestFailed = errors.New("upload slot request failed")
	// ErrUploadFailed is the sentinel error wrapped by UploadFailedError.
	ErrUploadFailed = errors.New("upload failed")
	// ErrFinalizeFailed is the sentinel error wrapped by FinalizeFailedError.
	ErrFinalizeFailed = errors.New("finalize failed")
	// ErrInvalidTransition is the sentinel error wrapped by InvalidTransitionError.
	ErrInvalidTransition = errors.New("invalid publish state transition")
)

type (
	// SlotRequestFailedError is returned when the store refuses or cannot be
	// reached for an upload slot. Either Cause or Status is set.
	SlotRequestFailedError struct {
		Status  int
		Message string
		Cause   error
	}

	// UploadFailedError describes the last failed PUT attempt.
	UploadFailedError struct {
		Attempts int
		Status   int
		Message  string
		Cause    error
	}

	// FinalizeFailedError is returned when the store rejects the finalize call.
	FinalizeFailedError struct {
		Status  int
		Message string
		Cause   error
	}

	// InvalidTransitionError reports an illegal state change.
	InvalidTransitionError struct {
		From State
		To   State
	}
)

// Error implements the error interface for SlotRequestFailedError.
func (e *SlotRequestFailedError) Error() string {
	return phaseMessage("failed to get upload URL", e.Status, e.Message, e.Cause)
}

// Unwrap exposes ErrSlotRequestFailed and the transport cause, if any.
func (e *SlotRequestFailedError) Unwrap() []error { return unwrapPair(ErrSlotRequestFailed, e.Cause) }

// Error implements the error interface for UploadFailedError.
func (e *UploadFailedError) Error() string {
	prefix := fmt.Sprintf("failed to upload file to storage after %d attempt(s)", e.Attempts)
	return phaseMessage(prefix, e.Status, e.Message, e.Cause)
}

// Unwrap exposes ErrUploadFailed and the transport cause, if any.
func (e *UploadFailedError) Unwrap() []error { return unwrapPair(ErrUploadFailed, e.Cause) }

// Error implements the error interface for FinalizeFailedError.
func (e *FinalizeFailedError) Error() string {
	return phaseMessage("failed to finalize upload", e.Status, e.Message, e.Cause)
}

// Unwrap exposes ErrFinalizeFailed and the transport cause, if any.
func (e *FinalizeFailedError) Unwrap() []error { return unwrapPair(ErrFinalizeFailed, e.Cause) }

// Error implements the error interface for InvalidTransitionError.
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid publish state transition %s -> %s", e.From, e.To)
}

// Unwrap returns ErrInvalidTransition for errors.Is() compatibility.
func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

func phaseMessage(prefix string, status int, message string, cause error) string {
	switch {
	case cause != nil:
		return fmt.Sprintf("%s: %v", prefix, cause)
	case message != "":
		return fmt.Sprintf("%s: %s (HTTP %d)", prefix, message, status)
	default:
		return fmt.Sprintf("%s: HTTP %d", prefix, status)
	}
}

func unwrapPair(sentinel, cause error) []error {
	if cause == nil {
		return []error{sentinel}
	}
	return []error{sentinel, cause}
}
