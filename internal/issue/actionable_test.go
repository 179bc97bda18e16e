// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "read manifest"},
			expected: "failed to read manifest",
		},
		{
			name:     "operation with resource",
			err:      &ActionableError{Operation: "read manifest", Resource: "./package.json"},
			expected: "failed to read manifest: ./package.json",
		},
		{
			name:     "operation with cause",
			err:      &ActionableError{Operation: "load configuration", Cause: errors.New("syntax error at line 5")},
			expected: "failed to load configuration: syntax error at line 5",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "read manifest",
				Resource:  "./package.json",
				Cause:     errors.New("file not found"),
			},
			expected: "failed to read manifest: ./package.json: file not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &ActionableError{Operation: "upload archive", Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if (&ActionableError{Operation: "x"}).Unwrap() != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestActionableError_Format(t *testing.T) {
	inner := errors.New("connection reset")
	err := &ActionableError{
		Operation:   "upload archive",
		Suggestions: []string{"Check your network", "Retry later"},
		Cause:       &ActionableError{Operation: "send request", Cause: inner},
	}

	short := err.Format(false)
	if !strings.Contains(short, "• Check your network") || !strings.Contains(short, "• Retry later") {
		t.Errorf("Format(false) should list suggestions, got:\n%s", short)
	}
	if strings.Contains(short, "Error chain") {
		t.Errorf("Format(false) should not include the error chain, got:\n%s", short)
	}

	long := err.Format(true)
	if !strings.Contains(long, "Error chain:") || !strings.Contains(long, "2. connection reset") {
		t.Errorf("Format(true) should include the numbered chain, got:\n%s", long)
	}
}

func TestErrorContext_Build(t *testing.T) {
	if NewErrorContext().WithResource("x").Build() != nil {
		t.Error("Build() without operation should return nil")
	}
	if NewErrorContext().BuildError() != nil {
		t.Error("BuildError() without operation should return a nil interface")
	}

	cause := errors.New("boom")
	got := NewErrorContext().
		WithOperation("load configuration").
		WithResource("config.cue").
		WithSuggestion("Check the syntax").
		Wrap(cause).
		Build()
	if got == nil {
		t.Fatal("Build() returned nil")
	}
	if got.Operation != "load configuration" || got.Resource != "config.cue" {
		t.Errorf("unexpected fields: %+v", got)
	}
	if len(got.Suggestions) != 1 || !errors.Is(got, cause) {
		t.Errorf("suggestions/cause not carried: %+v", got)
	}
}

func TestIssueOf(t *testing.T) {
	t.Parallel()

	if IssueOf(errors.New("plain")) != 0 {
		t.Error("IssueOf(plain) should be zero")
	}

	linked := NewErrorContext().
		WithOperation("load configuration").
		WithIssue(ConfigLoadFailedId).
		Wrap(errors.New("bad syntax")).
		BuildError()
	if got := IssueOf(fmt.Errorf("startup: %w", linked)); got != ConfigLoadFailedId {
		t.Errorf("IssueOf(wrapped) = %d, want %d", got, ConfigLoadFailedId)
	}
}
