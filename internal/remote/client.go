// Package remote talks to the console server: the apply-ignore and run-main
// endpoints, plus URL resolution for the static catalog and ignore files.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultApplyPath = "/api/add-ignore"
	DefaultRunPath   = "/api/run-main"

	requestIDHeader = "X-Request-ID"
	maxResponse     = 16 << 20
)

// HTTPError is a non-2xx endpoint response
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Client is a console server client
type Client struct {
	base      *url.URL
	http      *http.Client
	logger    *zap.Logger
	applyPath string
	runPath   string
}

// Option configures a Client
type Option func(*Client)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithApplyPath overrides the apply-ignore endpoint path
func WithApplyPath(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.applyPath = path
		}
	}
}

// WithRunPath overrides the run-main endpoint path
func WithRunPath(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.runPath = path
		}
	}
}

// NewClient creates a client for the server at baseURL
func NewClient(baseURL string, httpClient *http.Client, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse server url: %w", err)
	}
	if base.Scheme == "" {
		return nil, fmt.Errorf("failed to parse server url %q: missing scheme", baseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	c := &Client{
		base:      base,
		http:      httpClient,
		logger:    zap.NewNop(),
		applyPath: DefaultApplyPath,
		runPath:   DefaultRunPath,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("remote")
	return c, nil
}

// NewHTTPClient returns an http.Client with the given timeout that also
// understands file:// URLs, so a local checkout of the data directories can
// stand in for the server's static files.
func NewHTTPClient(timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.RegisterProtocol("file", http.NewFileTransport(http.Dir("/")))
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// HTTPClient returns the underlying http.Client
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// Resolve turns a server-relative path into an absolute URL
func (c *Client) Resolve(path string) string {
	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return c.base.String() + strings.TrimPrefix(path, "/")
	}
	if ref.IsAbs() {
		return ref.String()
	}
	return c.base.ResolveReference(ref).String()
}

// ApplySelection is one entry sent to the apply-ignore endpoint
type ApplySelection struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ApplyRequest is the apply-ignore request body
type ApplyRequest struct {
	Overwrite  bool             `json:"overwrite"`
	Selections []ApplySelection `json:"selections"`
}

// Result statuses of the apply-ignore endpoint
const (
	StatusAdded   = "added"
	StatusUpdated = "updated"
	StatusExists  = "exists"
	StatusError   = "error"
)

// ApplyResult is the per-entry outcome of an apply
type ApplyResult struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ApplyResponse is the apply-ignore response body. IgnoreKeys is nil when the
// server did not send the field and non-nil (possibly empty) when it did.
type ApplyResponse struct {
	Results    []ApplyResult `json:"results"`
	IgnoreKeys []string      `json:"ignore_keys,omitempty"`
}

// ApplyIgnore submits a batch of selections to the ignore list
func (c *Client) ApplyIgnore(ctx context.Context, req ApplyRequest) (*ApplyResponse, error) {
	var resp ApplyResponse
	if err := c.post(ctx, c.applyPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RunRequest is the run-main request body
type RunRequest struct {
	LogLevel string   `json:"log_level"`
	Steps    []string `json:"steps,omitempty"`
	Skip     []string `json:"skip,omitempty"`
}

// RunResponse is the run-main response body
type RunResponse struct {
	ReturnCode int    `json:"returncode"`
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	Command    string `json:"command,omitempty"`
}

// RunScript asks the server to run the pipeline
func (c *Client) RunScript(ctx context.Context, req RunRequest) (*RunResponse, error) {
	var resp RunResponse
	if err := c.post(ctx, c.runPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	target := c.Resolve(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestID)

	log := c.logger.With(zap.String("url", target), zap.String("request_id", requestID))
	log.Debug("sending request")
	started := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("request failed", zap.Error(err))
		return fmt.Errorf("failed to reach server: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponse))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	log.Debug("response received",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := &HTTPError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, data)}
		log.Warn("server returned error", zap.Error(httpErr))
		return httpErr
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// errorMessage picks the most specific message in an error body
func errorMessage(status int, body []byte) string {
	var payload struct {
		Error   string        `json:"error"`
		Message string        `json:"message"`
		Results []ApplyResult `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Error != "":
			return payload.Error
		case payload.Message != "":
			return payload.Message
		}
		for _, r := range payload.Results {
			if r.Message != "" {
				return r.Message
			}
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 200 && !strings.HasPrefix(text, "<") {
		return text
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "unknown error"
}

// IsHTTPError reports whether err is an endpoint error and returns it
func IsHTTPError(err error) (*HTTPError, bool) {
	var httpErr *HTTPError
	ok := errors.As(err, &httpErr)
	return httpErr, ok
}
