// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/pipestore/pipectl/internal/issue"
	"github.com/pipestore/pipectl/pkg/cueutil"
	"github.com/pipestore/pipectl/pkg/platform"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "pipectl"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes every environment override (PIPECTL_API_BASE_URL, ...).
	EnvPrefix = "PIPECTL"
)

//go:embed config_schema.cue
var configSchema []byte

// ConfigDir returns the pipectl configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case platform.Windows:
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case platform.Darwin:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// FilePath returns the default config file location.
func FilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}

// loadWithOptions performs option-driven config loading. It returns the
// decoded config and the path of the file that was merged ("" for defaults).
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := newViper()

	resolvedPath := ""

	if opts.ConfigFilePath != "" {
		path := string(opts.ConfigFilePath)
		if !fileExists(path) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'pipectl config init' to create a default configuration").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(fmt.Errorf("config file not found: %s", path)).
				BuildError()
		}
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, "", invalidFileError(path, err)
		}
		resolvedPath = path
	} else {
		cfgDir := string(opts.ConfigDirPath)
		if cfgDir == "" {
			var err error
			if cfgDir, err = ConfigDir(); err != nil {
				return nil, "", err
			}
		}

		cuePath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
		if fileExists(cuePath) {
			if err := loadCUEIntoViper(v, cuePath); err != nil {
				return nil, "", invalidFileError(cuePath, err)
			}
			resolvedPath = cuePath
		}
		// No config file: defaults plus environment.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Check PIPECTL_* environment variables for typos").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(err).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// newViper returns a viper instance seeded with defaults and wired to the
// PIPECTL_ environment namespace.
func newViper() *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("api.base_url", defaults.API.BaseURL)
	v.SetDefault("api.timeout", defaults.API.Timeout)
	v.SetDefault("upload.max_attempts", defaults.Upload.MaxAttempts)
	v.SetDefault("upload.initial_backoff", defaults.Upload.InitialBackoff)
	v.SetDefault("upload.timeout", defaults.Upload.Timeout)
	v.SetDefault("publish.max_archive_size", int64(defaults.Publish.MaxArchiveSize))
	v.SetDefault("ui.color_scheme", string(defaults.UI.ColorScheme))
	v.SetDefault("ui.verbose", defaults.UI.Verbose)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

func invalidFileError(path string, err error) error {
	return issue.NewErrorContext().
		WithOperation("load configuration").
		WithResource(path).
		WithSuggestion("Check that the file contains valid CUE syntax").
		WithSuggestion("See 'pipectl config --help' for configuration options").
		WithIssue(issue.ConfigLoadFailedId).
		Wrap(err).
		BuildError()
}

// loadCUEIntoViper validates a CUE file against the #Config schema and merges
// its contents into Viper, preserving defaults for unset keys.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	configMap, err := cueutil.DecodeMap(configSchema, data, "#Config", path)
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes a default config file unless one already exists.
// It returns the path of the config file.
func CreateDefaultConfig() (string, error) {
	cfgPath, err := FilePath()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	if fileExists(cfgPath) {
		return cfgPath, nil
	}

	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return cfgPath, nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// pipectl configuration file\n\n")

	sb.WriteString("api: {\n")
	fmt.Fprintf(&sb, "\tbase_url: %q\n", cfg.API.BaseURL)
	fmt.Fprintf(&sb, "\ttimeout: %q\n", formatDuration(cfg.API.Timeout))
	sb.WriteString("}\n")

	sb.WriteString("\nupload: {\n")
	fmt.Fprintf(&sb, "\tmax_attempts: %d\n", cfg.Upload.MaxAttempts)
	fmt.Fprintf(&sb, "\tinitial_backoff: %q\n", formatDuration(cfg.Upload.InitialBackoff))
	fmt.Fprintf(&sb, "\ttimeout: %q\n", formatDuration(cfg.Upload.Timeout))
	sb.WriteString("}\n")

	sb.WriteString("\npublish: {\n")
	fmt.Fprintf(&sb, "\tmax_archive_size: %d\n", int64(cfg.Publish.MaxArchiveSize))
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String()
}

// formatDuration renders d in the compact form accepted by the schema
// ("10m0s" becomes "10m").
func formatDuration(d time.Duration) string {
	s := d.String()
	if strings.HasSuffix(s, "m0s") {
		s = strings.TrimSuffix(s, "0s")
	}
	if strings.HasSuffix(s, "h0m") {
		s = strings.TrimSuffix(s, "0m")
	}
	return s
}
