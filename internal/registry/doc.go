// SPDX-License-Identifier: MPL-2.0

// Package registry talks to the package store's publish API.
//
// A publish is three calls: request an upload slot, PUT the archive bytes to
// the signed URL the slot returned (retried with exponential backoff), then
// finalize the publish. Orchestrator drives the calls through a small state
// machine; Client exposes each call on its own.
package registry
