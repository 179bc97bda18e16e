// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

func TestFormatError(t *testing.T) {
	t.Parallel()

	t.Run("nil error returns nil", func(t *testing.T) {
		t.Parallel()

		if err := FormatError(nil, "config.cue"); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("non-CUE error is wrapped with filepath", func(t *testing.T) {
		t.Parallel()

		original := errors.New("some error")
		err := FormatError(original, "config.cue")
		if !errors.Is(err, original) {
			t.Errorf("error should wrap the original, got: %v", err)
		}
		if !strings.Contains(err.Error(), "config.cue") {
			t.Errorf("error should contain filepath, got: %v", err)
		}
	})

	t.Run("CUE error is flattened with filepath prefix", func(t *testing.T) {
		t.Parallel()

		err := FormatError(cueerrors.Newf(token.NoPos, "conflicting values 0 and >=1"), "config.cue")
		if got, want := err.Error(), "config.cue: conflicting values 0 and >=1"; got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("wrapped CUE error is still formatted", func(t *testing.T) {
		t.Parallel()

		wrapped := fmt.Errorf("decode: %w", cueerrors.Newf(token.NoPos, "incomplete value"))
		err := FormatError(wrapped, "config.cue")
		if !strings.HasPrefix(err.Error(), "config.cue: ") || !strings.Contains(err.Error(), "incomplete value") {
			t.Errorf("unexpected format: %q", err)
		}
	})
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     []string
		expected string
	}{
		{"empty path", nil, ""},
		{"single element", []string{"api"}, "api"},
		{"nested path", []string{"upload", "max_attempts"}, "upload.max_attempts"},
		{"array index", []string{"items", "0", "name"}, "items[0].name"},
		{"leading digits are a field", []string{"0", "name"}, "0.name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := formatPath(tt.path); got != tt.expected {
				t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.expected)
			}
		})
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	if err := CheckFileSize(make([]byte, 100), 100, "config.cue"); err != nil {
		t.Errorf("data at exact limit should pass, got %v", err)
	}

	err := CheckFileSize(make([]byte, 101), 100, "config.cue")
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
	var tooLarge *FileTooLargeError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("expected *FileTooLargeError, got %T", err)
	}
	if tooLarge.Size != 101 || tooLarge.Max != 100 {
		t.Errorf("got size=%d max=%d, want 101/100", tooLarge.Size, tooLarge.Max)
	}
}
