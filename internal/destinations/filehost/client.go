// Package filehost implements the DestinationStore interface against the
// public file-hosting service that receives mirrored bytes.
//
// The service exposes a small JSON-over-HTTP API: an authenticated listing
// of hosted files and a multipart upload endpoint. Authentication is a
// Basic-style header derived from a single API credential.
package filehost

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/mirrorpool/mirrorpool/internal/core/ports/driven"
)

// DefaultUploadTimeout is the overall wall-clock ceiling for one upload,
// independent of per-attempt timeouts elsewhere in the pipeline.
const DefaultUploadTimeout = 10 * time.Minute

// Ensure Client implements the interface.
var _ driven.DestinationStore = (*Client)(nil)

// Config holds the destination service configuration.
type Config struct {
	// BaseURL is the API root, e.g. "https://api.example-host.io".
	BaseURL string

	// APIKey is the fixed credential for the Basic-style authorization header.
	APIKey string

	// PublicURLTemplate builds the public URL for a file identifier.
	// Must contain one %s verb, e.g. "https://example-host.io/f/%s".
	PublicURLTemplate string

	// UploadTimeout overrides the wall-clock upload ceiling when positive.
	UploadTimeout time.Duration
}

// Client talks to the destination file-hosting service.
type Client struct {
	cfg        Config
	httpClient *http.Client

	// progress, when set, receives the cumulative byte count as the upload
	// advances. Observability only; never used for control flow.
	progress func(total int64)

	// apiKeySource, when set, is consulted on every request so a rotated
	// credential applies without rebuilding the client.
	apiKeySource func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client. Used by tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithProgress registers a callback observing cumulative relayed bytes.
func WithProgress(fn func(total int64)) Option {
	return func(c *Client) { c.progress = fn }
}

// WithAPIKeySource makes authorization consult fn per request instead of the
// fixed Config.APIKey. An empty value from fn falls back to Config.APIKey.
func WithAPIKeySource(fn func() string) Option {
	return func(c *Client) { c.apiKeySource = fn }
}

// New creates a destination client.
func New(cfg Config, opts ...Option) *Client {
	if cfg.UploadTimeout <= 0 {
		cfg.UploadTimeout = DefaultUploadTimeout
	}
	c := &Client{
		cfg: cfg,
		httpClient: &http.Client{
			// Connection and response-header budget; the streamed body is
			// governed by the upload's own wall-clock ceiling.
			Timeout: 0,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FileURL builds the public URL for a destination file identifier.
func (c *Client) FileURL(id string) string {
	return fmt.Sprintf(c.cfg.PublicURLTemplate, id)
}

// authHeader derives the Basic-style authorization value from the API key.
func (c *Client) authHeader() string {
	key := c.cfg.APIKey
	if c.apiKeySource != nil {
		if k := c.apiKeySource(); k != "" {
			key = k
		}
	}
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(key+":"))
}
