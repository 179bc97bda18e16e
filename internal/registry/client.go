// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	// DefaultBaseURL is the production publish API.
	DefaultBaseURL = "https://screenpi.pe"

	publishPath  = "/api/plugins/publish"
	finalizePath = "/api/plugins/publish/finalize"

	// maxResponseBytes bounds every response body read (1 MiB).
	maxResponseBytes = 1 << 20
	// maxMessageLen bounds server error text echoed to the user.
	maxMessageLen = 512

	defaultAPITimeout     = 30 * time.Second
	defaultUploadTimeout  = 10 * time.Minute
	defaultMaxAttempts    = 3
	defaultInitialBackoff = time.Second
)

type (
	// SlotRequest is the body of the upload-slot call.
	SlotRequest struct {
		Name        string `json:"name"`
		Version     string `json:"version"`
		FileSize    int64  `json:"fileSize"`
		FileHash    string `json:"fileHash"`
		Description string `json:"description"`
	}

	// Session is the upload slot granted by the store. It is valid for a
	// single attempt and is never persisted.
	Session struct {
		UploadURL   string `json:"uploadUrl"`
		StoragePath string `json:"path"`
	}

	// FinalizeRequest is the body of the finalize call.
	FinalizeRequest struct {
		Name        string `json:"name"`
		Version     string `json:"version"`
		FileHash    string `json:"fileHash"`
		StoragePath string `json:"storagePath"`
		Description string `json:"description"`
		FileSize    int64  `json:"fileSize"`
	}

	// FinalizeResponse is the store's answer to a successful finalize.
	FinalizeResponse struct {
		Message string `json:"message"`
	}

	// SleepFunc waits for d or until ctx is done.
	SleepFunc func(ctx context.Context, d time.Duration) error

	// Client calls the publish API.
	Client struct {
		httpClient     *http.Client
		baseURL        string
		apiKey         string
		userAgent      string
		apiTimeout     time.Duration
		uploadTimeout  time.Duration
		maxAttempts    int
		initialBackoff time.Duration
		sleep          SleepFunc
		newRequestID   func() string
	}

	// ClientOption configures a Client during construction.
	ClientOption func(*Client)

	errorBody struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}

	requestIDKey struct{}
)

// WithHTTPClient sets a custom HTTP client, useful for tests or proxy configurations.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithBaseURL overrides the publish API base URL.
func WithBaseURL(base string) ClientOption {
	return func(cl *Client) {
		cl.baseURL = strings.TrimRight(base, "/")
	}
}

// WithAPIKey sets the bearer token sent to the publish API. It is never sent
// to the signed upload URL.
func WithAPIKey(key string) ClientOption {
	return func(cl *Client) {
		cl.apiKey = key
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(cl *Client) {
		cl.userAgent = ua
	}
}

// WithTimeouts bounds each API call and each PUT attempt. Zero keeps the default.
func WithTimeouts(api, upload time.Duration) ClientOption {
	return func(cl *Client) {
		if api > 0 {
			cl.apiTimeout = api
		}
		if upload > 0 {
			cl.uploadTimeout = upload
		}
	}
}

// WithRetry sets the total number of PUT attempts and the delay before the
// first retry. The delay doubles on every further retry.
func WithRetry(maxAttempts int, initialBackoff time.Duration) ClientOption {
	return func(cl *Client) {
		if maxAttempts > 0 {
			cl.maxAttempts = maxAttempts
		}
		if initialBackoff >= 0 {
			cl.initialBackoff = initialBackoff
		}
	}
}

// WithSleep replaces the backoff wait, letting tests observe delays without
// spending them.
func WithSleep(fn SleepFunc) ClientOption {
	return func(cl *Client) {
		cl.sleep = fn
	}
}

// WithRequestIDFunc replaces the request ID generator.
func WithRequestIDFunc(fn func() string) ClientOption {
	return func(cl *Client) {
		cl.newRequestID = fn
	}
}

// NewClient creates a Client with the production defaults: 30s API timeout,
// 10m per upload attempt, 3 attempts with 1s initial backoff.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient:     http.DefaultClient,
		baseURL:        DefaultBaseURL,
		userAgent:      "pipectl/dev",
		apiTimeout:     defaultAPITimeout,
		uploadTimeout:  defaultUploadTimeout,
		maxAttempts:    defaultMaxAttempts,
		initialBackoff: defaultInitialBackoff,
		sleep:          sleepContext,
		newRequestID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ContextWithRequestID tags every call made with ctx with the given
// X-Request-Id so the store can correlate the calls of one publish.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestSlot asks the store for a signed upload URL. It is not retried.
func (c *Client) RequestSlot(ctx context.Context, req SlotRequest) (Session, error) {
	ctx, cancel := context.WithTimeout(ctx, c.apiTimeout)
	defer cancel()

	resp, err := c.doJSON(ctx, http.MethodPost, c.baseURL+publishPath, req)
	if err != nil {
		return Session{}, &SlotRequestFailedError{Cause: err}
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Session{}, &SlotRequestFailedError{Cause: fmt.Errorf("reading response: %w", err)}
	}

	if !isSuccess(resp.StatusCode) {
		return Session{}, &SlotRequestFailedError{Status: resp.StatusCode, Message: errorMessage(body)}
	}

	var s Session
	if err := json.Unmarshal(body, &s); err != nil {
		return Session{}, &SlotRequestFailedError{Cause: fmt.Errorf("decoding response: %w", err)}
	}
	if s.UploadURL == "" || s.StoragePath == "" {
		return Session{}, &SlotRequestFailedError{
			Status:  resp.StatusCode,
			Message: "response is missing uploadUrl or path",
		}
	}
	if _, err := url.ParseRequestURI(s.UploadURL); err != nil {
		return Session{}, &SlotRequestFailedError{Cause: fmt.Errorf("invalid upload URL: %w", err)}
	}
	return s, nil
}

// Upload PUTs data to the signed URL, retrying any failure with exponential
// backoff until the configured attempts are spent.
func (c *Client) Upload(ctx context.Context, uploadURL string, data []byte) error {
	return c.upload(ctx, uploadURL, data, nil)
}

// upload is Upload with a hook invoked before every attempt (1-based).
func (c *Client) upload(ctx context.Context, uploadURL string, data []byte, beforeAttempt func(attempt int) error) error {
	var lastErr *UploadFailedError
	for attempt := range c.maxAttempts {
		if attempt > 0 {
			delay := c.initialBackoff * time.Duration(1<<(attempt-1))
			slog.Debug("upload failed, retrying",
				"attempt", attempt+1,
				"max_attempts", c.maxAttempts,
				"backoff", delay,
				"error", lastErr)
			if err := c.sleep(ctx, delay); err != nil {
				return &UploadFailedError{Attempts: attempt, Cause: err}
			}
		}

		if beforeAttempt != nil {
			if err := beforeAttempt(attempt + 1); err != nil {
				return err
			}
		}

		status, message, err := c.putOnce(ctx, uploadURL, data)
		if err == nil && isSuccess(status) {
			return nil
		}
		lastErr = &UploadFailedError{Attempts: attempt + 1, Status: status, Message: message, Cause: err}
	}
	return lastErr
}

func (c *Client) putOnce(ctx context.Context, uploadURL string, data []byte) (status int, message string, err error) {
	ctx, cancel := context.WithTimeout(ctx, c.uploadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(data))
	if err != nil {
		return 0, "", fmt.Errorf("creating request: %w", err)
	}
	req.ContentLength = int64(len(data))
	req.Header.Set("Content-Type", "application/zip")
	c.setCommonHeaders(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = redactURL(urlErr.URL)
		}
		return 0, "", fmt.Errorf("uploading to %s: %w", redactURL(uploadURL), err)
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes)) //nolint:errcheck // Best-effort error text.
	if isSuccess(resp.StatusCode) {
		return resp.StatusCode, "", nil
	}
	return resp.StatusCode, errorMessage(body), nil
}

// Finalize asks the store to register the uploaded archive. It is not retried.
func (c *Client) Finalize(ctx context.Context, req FinalizeRequest) (FinalizeResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.apiTimeout)
	defer cancel()

	resp, err := c.doJSON(ctx, http.MethodPost, c.baseURL+finalizePath, req)
	if err != nil {
		return FinalizeResponse{}, &FinalizeFailedError{Cause: err}
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return FinalizeResponse{}, &FinalizeFailedError{Cause: fmt.Errorf("reading response: %w", err)}
	}

	if !isSuccess(resp.StatusCode) {
		return FinalizeResponse{}, &FinalizeFailedError{Status: resp.StatusCode, Message: errorMessage(body)}
	}

	var out FinalizeResponse
	if len(bytes.TrimSpace(body)) > 0 {
		// A non-JSON success body still means the publish went through.
		if err := json.Unmarshal(body, &out); err != nil {
			slog.Debug("ignoring undecodable finalize response", "error", err)
		}
	}
	return out, nil
}

// doJSON sends payload as JSON with the API headers.
func (c *Client) doJSON(ctx context.Context, method, reqURL string, payload any) (*http.Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	c.setCommonHeaders(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	return resp, nil
}

func (c *Client) setCommonHeaders(ctx context.Context, req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	id, ok := ctx.Value(requestIDKey{}).(string)
	if !ok || id == "" {
		id = c.newRequestID()
	}
	req.Header.Set("X-Request-Id", id)
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// errorMessage extracts a human-readable message from an error response:
// the "error" or "message" JSON field, else the trimmed body text.
func errorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		if eb.Error != "" {
			return truncate(eb.Error)
		}
		if eb.Message != "" {
			return truncate(eb.Message)
		}
	}
	return truncate(strings.TrimSpace(string(body)))
}

func truncate(s string) string {
	if len(s) <= maxMessageLen {
		return s
	}
	cut := maxMessageLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}

// sleepContext waits for d unless ctx is done first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// redactURL strips query parameters and fragments from a URL so signed
// upload credentials never reach logs or error messages.
func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid-url>"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
