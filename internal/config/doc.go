// SPDX-License-Identifier: MPL-2.0

// Package config handles pipectl configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/pipectl/config.cue (or the XDG equivalent on
// Linux, ~/Library/Application Support/pipectl/config.cue on macOS,
// %APPDATA%\pipectl\config.cue on Windows). Every key can be overridden from the
// environment with the PIPECTL_ prefix, dots replaced by underscores
// (api.base_url -> PIPECTL_API_BASE_URL).
//
// The file is validated against the embedded CUE schema (config_schema.cue) before
// it is merged over the defaults.
package config
