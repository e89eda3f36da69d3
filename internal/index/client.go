// SPDX-License-Identifier: MPL-2.0

// Package index fetches the raw PyTorch wheel index listing document.
package index

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	// defaultBaseURL is the public PyTorch wheel index.
	defaultBaseURL = "https://download.pytorch.org"

	// listingPath is the stable-wheel listing document under the base URL.
	listingPath = "/whl/torch_stable.html"

	// maxListingBytes bounds the listing document size (64 MB). The full
	// listing is a few megabytes today; the bound guards against a
	// misbehaving mirror, not normal growth.
	maxListingBytes = 64 << 20
)

// FetchError reports a failed or unusable index fetch. It wraps the
// underlying transport or status error.
type FetchError struct {
	URL   string
	Cause error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching package index %s: %v", e.URL, e.Cause)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Client fetches the wheel index listing over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// Option configures a Client during construction.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client, useful for tests or proxies.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithBaseURL overrides the index base URL, primarily for test servers.
func WithBaseURL(base string) Option {
	return func(cl *Client) {
		cl.baseURL = strings.TrimRight(base, "/")
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(cl *Client) {
		cl.userAgent = ua
	}
}

// NewClient creates a Client with sensible defaults.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		baseURL:    defaultBaseURL,
		userAgent:  "torchkiln/dev",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchIndex retrieves the whole listing document in one request. The
// listing is line-oriented markup; callers split and parse it themselves.
func (c *Client) FetchIndex(ctx context.Context) (string, error) {
	docURL := c.baseURL + listingPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, docURL, http.NoBody)
	if err != nil {
		return "", &FetchError{URL: docURL, Cause: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &FetchError{URL: docURL, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	if resp.StatusCode != http.StatusOK {
		return "", &FetchError{URL: docURL, Cause: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxListingBytes))
	if err != nil {
		return "", &FetchError{URL: docURL, Cause: fmt.Errorf("reading body: %w", err)}
	}

	return string(body), nil
}
