// SPDX-License-Identifier: MPL-2.0

// Package project inspects a local project directory before it is published:
// it classifies the project, selects the files that go into the archive and
// resolves the package name, version and description.
package project
