// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/pipestore/pipectl/internal/config"
	"github.com/pipestore/pipectl/internal/credential"
	"github.com/pipestore/pipectl/internal/publish"
	"github.com/pipestore/pipectl/pkg/types"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root for
	// the CLI layer; Cobra handlers delegate through its service interfaces.
	App struct {
		Config       ConfigProvider
		Credentials  CredentialStore
		NewPublisher PublisherFactory
		stdout       io.Writer
		stderr       io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config       ConfigProvider
		Credentials  CredentialStore
		NewPublisher PublisherFactory
		Stdout       io.Writer
		Stderr       io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// CredentialStore resolves, saves and deletes the API key.
	CredentialStore interface {
		credential.Store
	}

	// PublishService runs one publish attempt.
	PublishService interface {
		Publish(ctx context.Context, req publish.Request) (publish.Result, error)
	}

	// PublisherFactory builds a PublishService once configuration is loaded.
	PublisherFactory func(keys publish.KeySource, cfg *config.Config, logger *log.Logger) PublishService
)

// NewApp creates an App, filling nil dependencies with production defaults.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Credentials == nil {
		dir, err := config.ConfigDir()
		if err != nil {
			return nil, err
		}
		deps.Credentials = credential.NewChainStore(dir)
	}
	if deps.NewPublisher == nil {
		deps.NewPublisher = defaultPublisherFactory
	}

	return &App{
		Config:       deps.Config,
		Credentials:  deps.Credentials,
		NewPublisher: deps.NewPublisher,
		stdout:       deps.Stdout,
		stderr:       deps.Stderr,
	}, nil
}

func defaultPublisherFactory(keys publish.KeySource, cfg *config.Config, logger *log.Logger) PublishService {
	return publish.New(keys, cfg,
		publish.WithLogger(logger),
		publish.WithUserAgent("pipectl/"+Version),
	)
}

// loadConfig loads configuration honoring the --config flag.
func (a *App) loadConfig(ctx context.Context, configPath string) (*config.Config, error) {
	return a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: types.FilesystemPath(configPath)})
}

// newLogger builds the progress logger. Progress goes to stdout; debug
// detail is shown only when verbose.
func (a *App) newLogger(verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(a.stdout, log.Options{Level: level})
}
