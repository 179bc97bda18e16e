// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pipestore/pipectl/internal/issue"
	"github.com/pipestore/pipectl/pkg/types"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("expected default base URL %q, got %q", DefaultBaseURL, cfg.API.BaseURL)
	}
	if cfg.Upload.MaxAttempts != 3 {
		t.Errorf("expected 3 upload attempts, got %d", cfg.Upload.MaxAttempts)
	}
	if cfg.Upload.InitialBackoff != time.Second {
		t.Errorf("expected 1s initial backoff, got %s", cfg.Upload.InitialBackoff)
	}
	if cfg.Publish.MaxArchiveSize != 500*types.MiB {
		t.Errorf("expected 500 MiB limit, got %d", cfg.Publish.MaxArchiveSize)
	}
	if cfg.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("expected auto color scheme, got %s", cfg.UI.ColorScheme)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestConfigDir_Override(t *testing.T) {
	dir := t.TempDir()
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)

	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}
	if got != dir {
		t.Errorf("ConfigDir() = %q, want %q", got, dir)
	}

	path, err := FilePath()
	if err != nil {
		t.Fatalf("FilePath() error = %v", err)
	}
	if path != filepath.Join(dir, "config.cue") {
		t.Errorf("FilePath() = %q", path)
	}
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, path, err := loadWithOptions(context.Background(), LoadOptions{
		ConfigDirPath: types.FilesystemPath(t.TempDir()),
	})
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if path != "" {
		t.Errorf("expected no resolved path, got %q", path)
	}
	if cfg.API.Timeout != 30*time.Second {
		t.Errorf("expected 30s api timeout, got %s", cfg.API.Timeout)
	}
}

func TestLoad_CUEFileOverridesDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	content := `
api: {
	base_url: "http://localhost:8080"
	timeout:  "5s"
}
upload: {
	max_attempts: 5
	initial_backoff: "250ms"
}
publish: max_archive_size: 1048576
ui: color_scheme: "dark"
`
	if err := os.WriteFile(filepath.Join(dir, "config.cue"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, path, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: types.FilesystemPath(dir)})
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if path != filepath.Join(dir, "config.cue") {
		t.Errorf("resolved path = %q", path)
	}

	if cfg.API.BaseURL != "http://localhost:8080" {
		t.Errorf("base_url = %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 5*time.Second {
		t.Errorf("api.timeout = %s", cfg.API.Timeout)
	}
	if cfg.Upload.MaxAttempts != 5 {
		t.Errorf("upload.max_attempts = %d", cfg.Upload.MaxAttempts)
	}
	if cfg.Upload.InitialBackoff != 250*time.Millisecond {
		t.Errorf("upload.initial_backoff = %s", cfg.Upload.InitialBackoff)
	}
	// Unset keys keep their defaults.
	if cfg.Upload.Timeout != 10*time.Minute {
		t.Errorf("upload.timeout = %s", cfg.Upload.Timeout)
	}
	if cfg.Publish.MaxArchiveSize != types.MiB {
		t.Errorf("publish.max_archive_size = %d", cfg.Publish.MaxArchiveSize)
	}
	if cfg.UI.ColorScheme != ColorSchemeDark {
		t.Errorf("ui.color_scheme = %s", cfg.UI.ColorScheme)
	}
}

func TestLoad_SchemaViolation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"unknown key", `unknown_key: true`},
		{"bad url scheme", `api: base_url: "ftp://example.com"`},
		{"too many attempts", `upload: max_attempts: 50`},
		{"bad duration", `api: timeout: "soon"`},
		{"bad color scheme", `ui: color_scheme: "purple"`},
		{"syntax error", `api: {`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			path := filepath.Join(dir, "config.cue")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}

			_, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigFilePath: types.FilesystemPath(path)})
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var actionable *issue.ActionableError
			if !errors.As(err, &actionable) {
				t.Fatalf("expected ActionableError, got %T: %v", err, err)
			}
			if actionable.Resource != path {
				t.Errorf("Resource = %q, want %q", actionable.Resource, path)
			}
		})
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "nope.cue")
	_, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigFilePath: types.FilesystemPath(missing)})
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
	if !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("PIPECTL_API_BASE_URL", "http://127.0.0.1:9999")
	t.Setenv("PIPECTL_UPLOAD_MAX_ATTEMPTS", "7")
	t.Setenv("PIPECTL_UPLOAD_INITIAL_BACKOFF", "10ms")

	cfg, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: types.FilesystemPath(t.TempDir())})
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if cfg.API.BaseURL != "http://127.0.0.1:9999" {
		t.Errorf("base_url = %q", cfg.API.BaseURL)
	}
	if cfg.Upload.MaxAttempts != 7 {
		t.Errorf("max_attempts = %d", cfg.Upload.MaxAttempts)
	}
	if cfg.Upload.InitialBackoff != 10*time.Millisecond {
		t.Errorf("initial_backoff = %s", cfg.Upload.InitialBackoff)
	}
}

func TestLoad_EnvOverrideValidated(t *testing.T) {
	t.Setenv("PIPECTL_UPLOAD_MAX_ATTEMPTS", "0")

	_, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: types.FilesystemPath(t.TempDir())})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoad_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := loadWithOptions(ctx, LoadOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestGenerateCUE_RoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.cue")
	if err := os.WriteFile(path, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigFilePath: types.FilesystemPath(path)})
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if *cfg != *DefaultConfig() {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", *cfg, *DefaultConfig())
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	SetConfigDirOverride(filepath.Join(dir, "pipectl"))
	t.Cleanup(Reset)

	path, err := CreateDefaultConfig()
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}
	if !fileExists(path) {
		t.Fatalf("config file %q was not written", path)
	}

	// A second call must not overwrite user edits.
	if err := os.WriteFile(path, []byte("ui: verbose: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := CreateDefaultConfig(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "ui: verbose: true\n" {
		t.Errorf("existing config was overwritten: %q", data)
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{10 * time.Minute, "10m"},
		{2 * time.Hour, "2h"},
		{1500 * time.Millisecond, "1.5s"},
		{90 * time.Second, "1m30s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
