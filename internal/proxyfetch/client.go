package proxyfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Resource is the normalized result of one proxied fetch. Status carries the
// upstream HTTP status so callers can tell a blocked target apart from an
// unreachable proxy (the latter surfaces as an error instead).
type Resource struct {
	Status      int
	ContentType string
	Body        []byte
}

// Fetcher retrieves a remote resource through the cross-origin indirection
// layer. Implementations must return an error only when the indirection
// service itself could not be reached; upstream failures are reported via
// Resource.Status.
type Fetcher interface {
	Fetch(ctx context.Context, targetURL string) (*Resource, error)
}

// Options controls how the proxy client is configured.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Client implements Fetcher against a raw-passthrough CORS proxy: the target
// URL is query-escaped and appended to the configured base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

const (
	defaultTimeout  = 30 * time.Second
	userAgent       = "VisualAuditBot/1.0"
	maxResponseBody = 10 << 20
)

// NewClient constructs a proxy client with sane defaults. Callers may provide
// a nil HTTP client; a reusable one with a sensible timeout will be created.
func NewClient(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	baseURL := strings.TrimSpace(opts.BaseURL)
	if baseURL == "" {
		baseURL = "https://api.allorigins.win/raw?url="
	}
	return &Client{baseURL: baseURL, httpClient: client}
}

// Fetch retrieves targetURL through the proxy. The response body is capped to
// guard against unbounded payloads.
func (c *Client) Fetch(ctx context.Context, targetURL string) (*Resource, error) {
	endpoint := c.baseURL + url.QueryEscape(targetURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create proxy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("proxy unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read proxy response: %w", err)
	}

	return &Resource{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
