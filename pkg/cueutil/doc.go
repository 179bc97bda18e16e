// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides the CUE parsing helpers used to validate
// configuration files against an embedded schema.
//
// The flow is always the same three steps:
//
//  1. Compile the embedded schema
//  2. Compile user data and unify with the schema definition
//  3. Validate and decode
//
// Errors are reformatted with JSON-path prefixes so users can find the
// offending field quickly:
//
//	config.cue: upload.max_attempts: invalid value 0 (out of bound >=1)
package cueutil
