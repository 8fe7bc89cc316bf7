package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Fetch defaults.
const (
	DefaultRequestTimeout = 15 * time.Second
	// MaxDocumentSize bounds the size of a downloaded catalog.
	MaxDocumentSize = 8 << 20
)

type fetchConfig struct {
	client *http.Client
	format *Format
}

// FetchOption configures Fetch.
type FetchOption func(*fetchConfig)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) FetchOption {
	return func(c *fetchConfig) {
		c.client = client
	}
}

// WithTimeout sets the request timeout.
// Zero or negative values fall back to DefaultRequestTimeout.
func WithTimeout(timeout time.Duration) FetchOption {
	return func(c *fetchConfig) {
		if timeout <= 0 {
			timeout = DefaultRequestTimeout
		}
		c.client = &http.Client{Timeout: timeout, Transport: c.client.Transport}
	}
}

// WithFormat overrides format detection.
func WithFormat(format Format) FetchOption {
	return func(c *fetchConfig) {
		c.format = &format
	}
}

// Fetch downloads and parses a catalog. The format is taken from WithFormat,
// then from a YAML Content-Type, then from the URL path extension.
func Fetch(ctx context.Context, rawURL string, opts ...FetchOption) (*Catalog, error) {
	cfg := &fetchConfig{client: &http.Client{Timeout: DefaultRequestTimeout}}
	for _, opt := range opts {
		opt(cfg)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid catalog URL %q: scheme must be http or https", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9")

	resp, err := cfg.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch catalog: HTTP %d: %s", resp.StatusCode, rawURL)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	if len(data) > MaxDocumentSize {
		return nil, fmt.Errorf("catalog at %s exceeds %d bytes", rawURL, MaxDocumentSize)
	}

	format := FormatFor(u.Path)
	if strings.Contains(resp.Header.Get("Content-Type"), "yaml") {
		format = FormatYAML
	}
	if cfg.format != nil {
		format = *cfg.format
	}

	c, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rawURL, err)
	}
	return c, nil
}
