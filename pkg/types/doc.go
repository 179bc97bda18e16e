// SPDX-License-Identifier: MPL-2.0

// Package types defines small value types shared by the publish pipeline
// packages (project, artifact, registry, publish) and the CLI layer.
//
// This package is a leaf dependency: it imports only the standard library.
// Domain packages import it; it never imports domain packages.
package types
