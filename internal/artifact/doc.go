// SPDX-License-Identifier: MPL-2.0

// Package artifact builds the zip archive that gets published, computes its
// integrity metadata and owns its lifetime on disk.
//
// Build creates the archive and returns a Guard; every code path that follows
// must call Guard.Release so the temporary file never outlives the attempt.
package artifact
