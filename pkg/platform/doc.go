// SPDX-License-Identifier: MPL-2.0

// Package platform holds the runtime.GOOS names that select platform-specific
// behavior, such as where the configuration directory lives.
package platform
