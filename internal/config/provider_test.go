// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pipestore/pipectl/pkg/types"
)

func TestLoadOptions_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    LoadOptions
		wantErr bool
	}{
		{"zero value", LoadOptions{}, false},
		{"explicit file", LoadOptions{ConfigFilePath: "/etc/pipectl/config.cue"}, false},
		{"explicit dir", LoadOptions{ConfigDirPath: "/etc/pipectl"}, false},
		{"blank file path", LoadOptions{ConfigFilePath: "   "}, true},
		{"blank dir path", LoadOptions{ConfigDirPath: "\t"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidLoadOptions) {
				t.Errorf("expected ErrInvalidLoadOptions, got %v", err)
			}
		})
	}
}

func TestProvider_Load(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.cue"), []byte(`ui: verbose: true`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: types.FilesystemPath(dir)})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.UI.Verbose {
		t.Error("expected ui.verbose from file")
	}
}

func TestProvider_LoadRejectsInvalidOptions(t *testing.T) {
	t.Parallel()

	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: " "})
	if !errors.Is(err, ErrInvalidLoadOptions) {
		t.Fatalf("expected ErrInvalidLoadOptions, got %v", err)
	}
}
