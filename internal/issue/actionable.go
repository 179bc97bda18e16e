// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// ActionableError tells the user what pipectl was doing when it failed,
	// on which file or endpoint, and what to try next. Issue optionally points
	// at the catalog page the CLI renders below the message.
	//
	//	err := issue.NewErrorContext().
	//		WithOperation("load configuration").
	//		WithResource(path).
	//		WithSuggestion("Run 'pipectl config init'").
	//		WithIssue(issue.ConfigLoadFailedId).
	//		Wrap(cause).
	//		BuildError()
	ActionableError struct {
		Operation   string
		Resource    string
		Suggestions []string
		Issue       Id
		Cause       error
	}

	// ErrorContext accumulates the parts of an ActionableError.
	ErrorContext struct {
		err ActionableError
	}
)

// NewErrorContext starts an empty ErrorContext.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// Error renders "failed to <operation>[: <resource>][: <cause>]".
func (e *ActionableError) Error() string {
	parts := []string{"failed to " + e.Operation}
	if e.Resource != "" {
		parts = append(parts, e.Resource)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

// Unwrap returns the cause.
func (e *ActionableError) Unwrap() error { return e.Cause }

// Format renders the message followed by one bulleted line per suggestion.
// Verbose output also lists the cause chain, outermost first.
func (e *ActionableError) Format(verbose bool) string {
	var b strings.Builder
	b.WriteString(e.Error())

	if len(e.Suggestions) > 0 {
		b.WriteString("\n")
		for _, s := range e.Suggestions {
			b.WriteString("\n  • " + s)
		}
	}

	if !verbose || e.Cause == nil {
		return b.String()
	}

	b.WriteString("\n\nError chain:")
	for depth, err := 1, e.Cause; err != nil; depth, err = depth+1, errors.Unwrap(err) {
		fmt.Fprintf(&b, "\n  %d. %s", depth, err)
	}
	return b.String()
}

// IssueOf returns the catalog page attached to the first ActionableError in
// err's chain, or zero.
func IssueOf(err error) Id {
	var ae *ActionableError
	if errors.As(err, &ae) {
		return ae.Issue
	}
	return 0
}

// WithOperation sets the verb phrase, e.g. "read manifest".
func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.err.Operation = op
	return c
}

// WithResource names the file, URL or entity involved.
func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.err.Resource = res
	return c
}

// WithSuggestion appends a remediation hint.
func (c *ErrorContext) WithSuggestion(sug string) *ErrorContext {
	c.err.Suggestions = append(c.err.Suggestions, sug)
	return c
}

// WithIssue links a catalog page.
func (c *ErrorContext) WithIssue(id Id) *ErrorContext {
	c.err.Issue = id
	return c
}

// Wrap sets the cause.
func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.err.Cause = err
	return c
}

// Build returns the ActionableError, or nil when no operation was set.
func (c *ErrorContext) Build() *ActionableError {
	if c.err.Operation == "" {
		return nil
	}
	out := c.err
	out.Suggestions = append([]string(nil), c.err.Suggestions...)
	return &out
}

// BuildError is Build returning a plain error; it returns an untyped nil
// when no operation was set.
func (c *ErrorContext) BuildError() error {
	if ae := c.Build(); ae != nil {
		return ae
	}
	return nil
}
