// SPDX-License-Identifier: MPL-2.0

// Package publish runs one publish attempt end to end: credential check,
// manifest, file selection, archive, integrity gate, description and the
// three-phase upload. The temporary archive is removed on every exit path.
package publish
