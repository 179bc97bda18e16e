// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Common helpers include project tree setup (WriteTree, TempTree),
// incompressible payloads (RandomBytes) and a recording stand-in for the
// upload backoff sleep (SleepRecorder).
package testutil
