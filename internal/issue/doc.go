// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// remediation hints. The issue catalog holds Markdown help pages, keyed by Id,
// that the CLI renders with glamour after a publish failure.
package issue
