// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/pipestore/pipectl/pkg/types"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultBaseURL is the publish API used when api.base_url is unset.
	DefaultBaseURL = "https://screenpi.pe"
	// DefaultMaxArchiveSize is the largest archive the store accepts.
	DefaultMaxArchiveSize = 500 * types.MiB
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrInvalidLoadOptions is the sentinel error wrapped by InvalidLoadOptionsError.
	ErrInvalidLoadOptions = errors.New("invalid load options")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sections.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// InvalidLoadOptionsError is returned when LoadOptions carries blank paths.
	InvalidLoadOptionsError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// API configures the publish API endpoints.
		API APIConfig `json:"api" mapstructure:"api"`
		// Upload configures the byte-transfer phase.
		Upload UploadConfig `json:"upload" mapstructure:"upload"`
		// Publish configures archive limits.
		Publish PublishConfig `json:"publish" mapstructure:"publish"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// APIConfig configures the slot-request and finalize calls.
	APIConfig struct {
		// BaseURL is the scheme+host of the publish API.
		BaseURL string `json:"base_url" mapstructure:"base_url"`
		// Timeout bounds each slot-request and finalize round trip.
		Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
	}

	// UploadConfig configures the retried PUT to the signed URL.
	UploadConfig struct {
		// MaxAttempts is the total number of PUT attempts (not retries).
		MaxAttempts int `json:"max_attempts" mapstructure:"max_attempts"`
		// InitialBackoff is the delay before the first retry; it doubles each retry.
		InitialBackoff time.Duration `json:"initial_backoff" mapstructure:"initial_backoff"`
		// Timeout bounds a single PUT attempt.
		Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
	}

	// PublishConfig configures archive validation.
	PublishConfig struct {
		// MaxArchiveSize is the inclusive archive size limit in bytes.
		MaxArchiveSize types.ByteSize `json:"max_archive_size" mapstructure:"max_archive_size"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme selects the style used to render issue help pages
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// DefaultConfig returns the configuration used when no file or environment
// override is present.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: DefaultBaseURL,
			Timeout: 30 * time.Second,
		},
		Upload: UploadConfig{
			MaxAttempts:    3,
			InitialBackoff: time.Second,
			Timeout:        10 * time.Minute,
		},
		Publish: PublishConfig{
			MaxArchiveSize: DefaultMaxArchiveSize,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}

// String returns the string representation of the ColorScheme.
func (c ColorScheme) String() string { return string(c) }

// Validate returns an error if the ColorScheme is not one of the defined schemes.
func (c ColorScheme) Validate() error {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return &InvalidColorSchemeError{Value: c}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// Validate checks constraints that environment overrides can break after the
// CUE schema has already accepted the file.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("api.base_url: %q is not an http(s) URL", c.API.BaseURL))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("api.timeout: must be positive, got %s", c.API.Timeout))
	}
	if c.Upload.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("upload.max_attempts: must be at least 1, got %d", c.Upload.MaxAttempts))
	}
	if c.Upload.InitialBackoff < 0 {
		errs = append(errs, fmt.Errorf("upload.initial_backoff: must not be negative, got %s", c.Upload.InitialBackoff))
	}
	if c.Upload.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("upload.timeout: must be positive, got %s", c.Upload.Timeout))
	}
	if err := c.Publish.MaxArchiveSize.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("publish.max_archive_size: %w", err))
	}
	if err := c.UI.ColorScheme.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("ui.color_scheme: %w", err))
	}

	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %v", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// Error implements the error interface for InvalidLoadOptionsError.
func (e *InvalidLoadOptionsError) Error() string {
	return fmt.Sprintf("invalid load options: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidLoadOptions for errors.Is() compatibility.
func (e *InvalidLoadOptionsError) Unwrap() error { return ErrInvalidLoadOptions }
