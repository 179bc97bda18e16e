// SPDX-License-Identifier: MPL-2.0

package credential

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/zalando/go-keyring"
)

const (
	// EnvAPIKey overrides every stored credential.
	EnvAPIKey = "PIPECTL_API_KEY"
	// KeyringService is the keyring service name credentials are stored under.
	KeyringService = "pipectl"
	// KeyringUser is the keyring account name for the API key.
	KeyringUser = "api-key"
	// FileName is the credentials file name inside the config directory.
	FileName = "credentials.toml"
)

var (
	// ErrNotLoggedIn is returned when no API key is available from any source.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrEmptyAPIKey is returned when Save is called with a blank key.
	ErrEmptyAPIKey = errors.New("api key must not be empty")
)

type (
	// Store resolves and persists the API key.
	Store interface {
		// APIKey returns the key and whether one was found. A missing key is
		// not an error.
		APIKey(ctx context.Context) (string, bool, error)
		// Save persists key and reports where it was written.
		Save(ctx context.Context, key string) (Source, error)
		// Delete removes every persisted key.
		Delete(ctx context.Context) error
	}

	// Source names where a key came from or was written to.
	Source string

	// ChainStore checks the environment, the OS keyring and the credentials
	// file in that order.
	ChainStore struct {
		getenv  func(string) string
		dir     string
		keyring keyringBackend
	}

	// Option configures a ChainStore.
	Option func(*ChainStore)

	keyringBackend interface {
		Get(service, user string) (string, error)
		Set(service, user, password string) error
		Delete(service, user string) error
	}

	systemKeyring struct{}

	credentialsFile struct {
		APIKey string `toml:"api_key"`
	}
)

const (
	SourceEnv     Source = "environment"
	SourceKeyring Source = "keyring"
	SourceFile    Source = "file"
)

// String returns the string representation of the Source.
func (s Source) String() string { return string(s) }

// WithGetenv replaces the environment lookup.
func WithGetenv(fn func(string) string) Option {
	return func(s *ChainStore) {
		s.getenv = fn
	}
}

// WithoutKeyring disables the keyring backend (headless CI, containers).
func WithoutKeyring() Option {
	return func(s *ChainStore) {
		s.keyring = nil
	}
}

// NewChainStore creates a Store that keeps its credentials file in configDir.
func NewChainStore(configDir string, opts ...Option) *ChainStore {
	s := &ChainStore{
		getenv:  os.Getenv,
		dir:     configDir,
		keyring: systemKeyring{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FilePath returns the credentials file location.
func (s *ChainStore) FilePath() string {
	return filepath.Join(s.dir, FileName)
}

// APIKey implements Store.
func (s *ChainStore) APIKey(ctx context.Context) (string, bool, error) {
	key, _, ok, err := s.Lookup(ctx)
	return key, ok, err
}

// Lookup is APIKey that also reports the source of the key.
func (s *ChainStore) Lookup(ctx context.Context) (string, Source, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", "", false, err
	}

	if key := strings.TrimSpace(s.getenv(EnvAPIKey)); key != "" {
		return key, SourceEnv, true, nil
	}

	if s.keyring != nil {
		key, err := s.keyring.Get(KeyringService, KeyringUser)
		switch {
		case err == nil && strings.TrimSpace(key) != "":
			return strings.TrimSpace(key), SourceKeyring, true, nil
		case err != nil && !errors.Is(err, keyring.ErrNotFound):
			// No secret service (headless Linux, CI): fall through to the file.
			slog.Debug("keyring unavailable", "error", err)
		}
	}

	key, err := s.readFile()
	if err != nil {
		return "", "", false, err
	}
	if key == "" {
		return "", "", false, nil
	}
	return key, SourceFile, true, nil
}

// Save implements Store. The keyring is preferred; the credentials file is
// used when no keyring is reachable.
func (s *ChainStore) Save(ctx context.Context, key string) (Source, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrEmptyAPIKey
	}

	if s.keyring != nil {
		err := s.keyring.Set(KeyringService, KeyringUser, key)
		if err == nil {
			return SourceKeyring, nil
		}
		slog.Debug("keyring unavailable, writing credentials file", "error", err)
	}

	if err := s.writeFile(key); err != nil {
		return "", err
	}
	return SourceFile, nil
}

// Delete implements Store. Missing entries are not an error; a key the
// keyring still returns after a failed delete is.
func (s *ChainStore) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var errs []error
	if s.keyring != nil {
		if err := s.keyring.Delete(KeyringService, KeyringUser); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			// An unreachable keyring holds nothing Lookup could return; a
			// key that still reads back was not removed.
			if key, getErr := s.keyring.Get(KeyringService, KeyringUser); getErr == nil && strings.TrimSpace(key) != "" {
				errs = append(errs, fmt.Errorf("failed to remove API key from keyring: %w", err))
			} else {
				slog.Debug("keyring delete failed", "error", err)
			}
		}
	}
	if err := os.Remove(s.FilePath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		errs = append(errs, fmt.Errorf("failed to remove credentials file: %w", err))
	}
	return errors.Join(errs...)
}

func (s *ChainStore) readFile() (string, error) {
	data, err := os.ReadFile(s.FilePath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read credentials file: %w", err)
	}

	var f credentialsFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", s.FilePath(), err)
	}
	return strings.TrimSpace(f.APIKey), nil
}

func (s *ChainStore) writeFile(key string) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(credentialsFile{APIKey: key})
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	// Write-then-rename so a crash never leaves a truncated file behind.
	tmp, err := os.CreateTemp(s.dir, ".credentials-*.toml")
	if err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	if err := os.Rename(tmpName, s.FilePath()); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	return nil
}

func (systemKeyring) Get(service, user string) (string, error) {
	return keyring.Get(service, user)
}

func (systemKeyring) Set(service, user, password string) error {
	return keyring.Set(service, user, password)
}

func (systemKeyring) Delete(service, user string) error {
	return keyring.Delete(service, user)
}
