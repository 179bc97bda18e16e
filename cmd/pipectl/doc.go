// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for pipectl.
//
// The App type is the composition root: it owns the configuration provider,
// the credential store and the publisher factory, and every Cobra handler
// reaches those services through it.
package cmd
