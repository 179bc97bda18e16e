// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"

	"github.com/pipestore/pipectl/pkg/types"
)

// LoadOptions defines explicit configuration loading inputs.
type LoadOptions struct {
	// ConfigFilePath forces loading from a specific config file when set.
	ConfigFilePath types.FilesystemPath
	// ConfigDirPath overrides the config directory lookup when set.
	ConfigDirPath types.FilesystemPath
}

// Provider loads configuration from explicit options.
type Provider interface {
	Load(ctx context.Context, opts LoadOptions) (*Config, error)
}

type fileProvider struct{}

// NewProvider creates a configuration provider backed by the config file,
// the environment and the built-in defaults.
func NewProvider() Provider {
	return &fileProvider{}
}

// Validate rejects whitespace-only paths. Zero values mean "use the default".
func (o LoadOptions) Validate() error {
	var errs []error
	if o.ConfigFilePath != "" {
		if ok, fieldErrs := o.ConfigFilePath.IsValid(); !ok {
			errs = append(errs, fieldErrs...)
		}
	}
	if o.ConfigDirPath != "" {
		if ok, fieldErrs := o.ConfigDirPath.IsValid(); !ok {
			errs = append(errs, fieldErrs...)
		}
	}
	if len(errs) > 0 {
		return &InvalidLoadOptionsError{FieldErrors: errs}
	}
	return nil
}

// Load reads configuration from the requested source.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	cfg, _, err := loadWithOptions(ctx, opts)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
