// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/pipestore/pipectl/internal/config"
	"github.com/pipestore/pipectl/internal/credential"
	"github.com/pipestore/pipectl/internal/publish"
)

type (
	fakeConfigProvider struct {
		mu    sync.Mutex
		cfg   *config.Config
		err   error
		calls []config.LoadOptions
	}

	fakeCredentials struct {
		mu         sync.Mutex
		key        string
		saveErr    error
		saveSource credential.Source
		deleteErr  error
		saved      []string
		deleted    int
	}

	fakePublisher struct {
		mu       sync.Mutex
		result   publish.Result
		err      error
		requests []publish.Request
		cfg      *config.Config
		keys     publish.KeySource
	}

	testAppOptions struct {
		cfg       *config.Config
		cfgErr    error
		publisher *fakePublisher
		creds     *fakeCredentials
	}

	testApp struct {
		*App
		stdout    *bytes.Buffer
		stderr    *bytes.Buffer
		configs   *fakeConfigProvider
		publisher *fakePublisher
		creds     *fakeCredentials
	}
)

func (f *fakeConfigProvider) Load(_ context.Context, opts config.LoadOptions) (*config.Config, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, opts)
	if f.err != nil {
		return nil, f.err
	}
	return f.cfg, nil
}

func (f *fakeCredentials) APIKey(context.Context) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.key, f.key != "", nil
}

func (f *fakeCredentials) Save(_ context.Context, key string) (credential.Source, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.saved = append(f.saved, key)
	f.key = key
	if f.saveSource != "" {
		return f.saveSource, nil
	}
	return credential.SourceKeyring, nil
}

func (f *fakeCredentials) Delete(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted++
	f.key = ""
	return nil
}

func (f *fakePublisher) Publish(_ context.Context, req publish.Request) (publish.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.result, f.err
}

func (f *fakePublisher) lastRequest(t *testing.T) publish.Request {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) != 1 {
		t.Fatalf("Publish called %d times, want 1", len(f.requests))
	}
	return f.requests[0]
}

// newTestApp builds an App wired to in-memory fakes.
func newTestApp(t *testing.T, opts testAppOptions) *testApp {
	t.Helper()

	if opts.cfg == nil {
		opts.cfg = config.DefaultConfig()
	}
	if opts.publisher == nil {
		opts.publisher = &fakePublisher{}
	}
	if opts.creds == nil {
		opts.creds = &fakeCredentials{key: "sk_test"}
	}

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	configs := &fakeConfigProvider{cfg: opts.cfg, err: opts.cfgErr}
	pub := opts.publisher

	app, err := NewApp(Dependencies{
		Config:      configs,
		Credentials: opts.creds,
		NewPublisher: func(keys publish.KeySource, cfg *config.Config, _ *log.Logger) PublishService {
			pub.mu.Lock()
			defer pub.mu.Unlock()
			pub.keys = keys
			pub.cfg = cfg
			return pub
		},
		Stdout: stdout,
		Stderr: stderr,
	})
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}

	return &testApp{
		App:       app,
		stdout:    stdout,
		stderr:    stderr,
		configs:   configs,
		publisher: pub,
		creds:     opts.creds,
	}
}

func (a *testApp) run(args ...string) int {
	return execute(context.Background(), a.App, args)
}

func TestNewApp_Defaults(t *testing.T) {
	t.Parallel()

	app, err := NewApp(Dependencies{Credentials: &fakeCredentials{}})
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	if app.Config == nil || app.NewPublisher == nil || app.stdout == nil || app.stderr == nil {
		t.Errorf("NewApp left defaults unset: %+v", app)
	}
}

func TestApp_NewLogger(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, testAppOptions{})

	app.newLogger(false).Debug("hidden detail")
	app.newLogger(false).Info("shown progress")
	app.newLogger(true).Debug("verbose detail")

	out := app.stdout.String()
	if bytes.Contains([]byte(out), []byte("hidden detail")) {
		t.Errorf("debug output leaked without verbose: %q", out)
	}
	for _, want := range []string{"shown progress", "verbose detail"} {
		if !bytes.Contains([]byte(out), []byte(want)) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}
