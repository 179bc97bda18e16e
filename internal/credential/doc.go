// SPDX-License-Identifier: MPL-2.0

// Package credential resolves the API key used to authorize publish requests.
//
// Keys are looked up in order from the PIPECTL_API_KEY environment variable, the
// OS keyring and finally the credentials.toml file in the config directory.
package credential
