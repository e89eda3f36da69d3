// SPDX-License-Identifier: MPL-2.0

// Package registry queries a Docker Hub style tag registry for image tags
// matching a name prefix.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	// defaultBaseURL is the public Docker Hub API endpoint.
	defaultBaseURL = "https://hub.docker.com"

	// defaultRepository is the image repository queried for CUDA base images.
	defaultRepository = "nvidia/cuda"

	// pageSize is the number of tags requested per query. One page is enough:
	// the server-side name filter narrows the result set well below this.
	pageSize = 100

	// maxJSONResponseBytes bounds the tag listing response size (10 MB).
	maxJSONResponseBytes = 10 << 20
)

// Tag is one image tag entry from the registry.
type Tag struct {
	Name string
}

// FetchError reports a failed or unusable tag registry fetch.
type FetchError struct {
	URL   string
	Cause error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching image tags %s: %v", e.URL, e.Cause)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

type (
	// tagsResponse is the JSON wire format of a Docker Hub tag listing page.
	tagsResponse struct {
		Count   int        `json:"count"`
		Results []tagEntry `json:"results"`
	}

	// tagEntry is the JSON wire format of a single tag entry.
	tagEntry struct {
		Name string `json:"name"`
	}
)

// Client queries the tag registry over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	repository string
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

// WithBaseURL overrides the registry base URL, primarily for test servers.
func WithBaseURL(base string) Option {
	return func(cl *Client) {
		cl.baseURL = strings.TrimRight(base, "/")
	}
}

// WithRepository overrides the image repository queried for tags.
func WithRepository(repo string) Option {
	return func(cl *Client) {
		cl.repository = repo
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
		repository: defaultRepository,
		userAgent:  "torchkiln/dev",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Repository returns the image repository this client queries.
func (c *Client) Repository() string {
	return c.repository
}

// FetchTags retrieves one page of tags whose names match the given prefix.
// The prefix filter is applied server-side via the name query parameter.
func (c *Client) FetchTags(ctx context.Context, prefix string) ([]Tag, error) {
	tagsURL := fmt.Sprintf("%s/v2/repositories/%s/tags/?page_size=%d&name=%s",
		c.baseURL, c.repository, pageSize, url.QueryEscape(prefix))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tagsURL, http.NoBody)
	if err != nil {
		return nil, &FetchError{URL: tagsURL, Cause: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: tagsURL, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: tagsURL, Cause: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var page tagsResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJSONResponseBytes)).Decode(&page); err != nil {
		return nil, &FetchError{URL: tagsURL, Cause: fmt.Errorf("decoding response: %w", err)}
	}

	tags := make([]Tag, 0, len(page.Results))
	for _, entry := range page.Results {
		tags = append(tags, Tag(entry))
	}
	return tags, nil
}
