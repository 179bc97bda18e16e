// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/pipestore/pipectl/internal/artifact"
	"github.com/pipestore/pipectl/internal/config"
	"github.com/pipestore/pipectl/internal/credential"
	"github.com/pipestore/pipectl/internal/project"
	"github.com/pipestore/pipectl/internal/registry"
	"github.com/pipestore/pipectl/pkg/types"
)

// ErrMissingName is returned when Request.Name is blank.
var ErrMissingName = errors.New("publish name is required")

type (
	// Request describes one publish attempt.
	Request struct {
		// ProjectDir is the project root; empty means the working directory.
		ProjectDir types.FilesystemPath
		// Name is the name the package is published under.
		Name string
		// Version overrides the manifest version when set.
		Version string
		// Verbose enables debug output.
		Verbose bool
	}

	// Result summarizes a successful publish.
	Result struct {
		Name          string
		PackageName   string
		Version       string
		SizeBytes     int64
		ContentHash   string
		StoragePath   string
		ServerMessage string
		Attempts      int
		Classified    project.Classification
		FileCount     int
	}

	// KeySource yields the API key.
	KeySource interface {
		APIKey(ctx context.Context) (string, bool, error)
	}

	// Publisher runs publish attempts. It holds no per-attempt state and may be
	// reused.
	Publisher struct {
		keys       KeySource
		cfg        *config.Config
		logger     *log.Logger
		userAgent  string
		clientOpts []registry.ClientOption
	}

	// Option configures a Publisher.
	Option func(*Publisher)
)

// WithLogger sets the progress logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(p *Publisher) {
		p.logger = l
	}
}

// WithUserAgent sets the User-Agent sent to the store.
func WithUserAgent(ua string) Option {
	return func(p *Publisher) {
		p.userAgent = ua
	}
}

// WithClientOptions appends registry client options, applied after the
// options derived from the configuration.
func WithClientOptions(opts ...registry.ClientOption) Option {
	return func(p *Publisher) {
		p.clientOpts = append(p.clientOpts, opts...)
	}
}

// New creates a Publisher. A nil cfg uses config.DefaultConfig().
func New(keys KeySource, cfg *config.Config, opts ...Option) *Publisher {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	p := &Publisher{
		keys:      keys,
		cfg:       cfg,
		logger:    log.New(io.Discard),
		userAgent: "pipectl/dev",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Validate checks the request fields that do not need the filesystem.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrMissingName
	}
	if r.Version != "" {
		if err := project.ValidateVersion(r.Version); err != nil {
			return err
		}
	}
	return nil
}

// Publish runs one attempt. Every error is returned after the temporary
// archive, if one was created, has been removed.
func (p *Publisher) Publish(ctx context.Context, req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	logger := p.logger
	if req.Verbose {
		logger = logger.With()
		logger.SetLevel(log.DebugLevel)
	}

	apiKey, ok, err := p.keys.APIKey(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("reading credentials: %w", err)
	}
	if !ok {
		return Result{}, credential.ErrNotLoggedIn
	}

	root, err := resolveRoot(req.ProjectDir)
	if err != nil {
		return Result{}, err
	}

	manifest, err := project.ReadManifest(root)
	if err != nil {
		return Result{}, err
	}
	version := manifest.Version
	if req.Version != "" {
		version = req.Version
	}
	logger.Debug("read package manifest", "package", manifest.Name, "version", version)

	logger.Info("creating package archive...")

	kind, err := project.Classify(root)
	if err != nil {
		return Result{}, err
	}
	logger.Debug("classified project", "kind", kind)

	dest := filepath.Join(root, artifact.ArchiveFileName(manifest.Name, version))
	files, err := project.Select(root, kind, project.SelectOptions{ExcludePaths: []string{dest}})
	if err != nil {
		return Result{}, err
	}
	logger.Debug("selected files", "files", files.FileCount(), "entries", len(files))

	guard, err := artifact.Build(files, dest)
	if guard != nil {
		defer func() {
			if releaseErr := guard.Release(); releaseErr != nil {
				logger.Warn("failed to remove temporary archive", "path", guard.Path(), "error", releaseErr)
			}
		}()
	}
	if err != nil {
		return Result{}, err
	}

	meta, data, err := artifact.Inspect(dest, p.cfg.Publish.MaxArchiveSize)
	if err != nil {
		return Result{}, err
	}
	logger.Debug("package archive ready", "size", types.ByteSize(meta.SizeBytes), "sha256", meta.ContentHash)

	meta.Description, err = project.ReadDescription(root)
	if err != nil {
		return Result{}, err
	}

	orch := registry.NewOrchestrator(p.newClient(apiKey), registry.WithTransitionFunc(progressLogger(logger)))
	out, err := orch.Run(ctx, registry.Package{
		Name:         req.Name,
		Version:      version,
		SizeBytes:    meta.SizeBytes,
		ContentHash:  meta.ContentHash,
		Description:  meta.Description.String(),
		Data:         data,
		BeforeUpload: func() error { return meta.VerifyUnchanged(dest) },
	})
	if err != nil {
		return Result{}, err
	}

	return Result{
		Name:          req.Name,
		PackageName:   manifest.Name,
		Version:       version,
		SizeBytes:     meta.SizeBytes,
		ContentHash:   meta.ContentHash,
		StoragePath:   out.StoragePath,
		ServerMessage: out.Message,
		Attempts:      out.Attempts,
		Classified:    kind,
		FileCount:     files.FileCount(),
	}, nil
}

func (p *Publisher) newClient(apiKey string) *registry.Client {
	opts := []registry.ClientOption{
		registry.WithBaseURL(p.cfg.API.BaseURL),
		registry.WithAPIKey(apiKey),
		registry.WithUserAgent(p.userAgent),
		registry.WithTimeouts(p.cfg.API.Timeout, p.cfg.Upload.Timeout),
		registry.WithRetry(p.cfg.Upload.MaxAttempts, p.cfg.Upload.InitialBackoff),
	}
	opts = append(opts, p.clientOpts...)
	return registry.NewClient(opts...)
}

// progressLogger reports protocol phases on the progress logger.
func progressLogger(logger *log.Logger) registry.TransitionFunc {
	return func(from, to registry.State) {
		switch {
		case to == registry.StateSlotRequested:
			logger.Debug("requesting upload slot...")
		case to == registry.StateUploading && from != registry.StateUploading:
			logger.Info("uploading to storage...")
		case to == registry.StateUploading:
			logger.Info("retrying upload...")
		case to == registry.StateFinalizing:
			logger.Info("finalizing upload...")
		case to == registry.StateFailed:
			logger.Debug("publish failed", "phase", from)
		}
	}
}

func resolveRoot(dir types.FilesystemPath) (string, error) {
	if dir == "" {
		dir = "."
	}
	abs, err := dir.Abs()
	if err != nil {
		return "", err
	}
	return abs.String(), nil
}
