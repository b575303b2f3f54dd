package upstream

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ferrylane/river-conditions/internal/observability"
)

const maxBodySize = 8 << 20 // 8MB

// StatusError is returned when an upstream responds with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s: status %d: %s", e.URL, e.StatusCode, e.Body)
}

// Client fetches pages and API payloads from the river-condition sources.
type Client struct {
	httpClient *http.Client
	userAgent  string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an upstream client. Every request is bounded by timeout.
func NewClient(timeout time.Duration, userAgent string, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
		metrics:   metrics,
		logger:    logger,
	}
}

// FetchPage GETs an HTML document. The body is treated as UTF-8 whatever the
// declared charset; invalid sequences are replaced.
func (c *Client) FetchPage(ctx context.Context, pageURL string) (string, error) {
	body, err := c.Get(ctx, pageURL, map[string]string{
		"Accept": "text/html,application/xhtml+xml",
	})
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(body), "\uFFFD"), nil
}

// Get performs a GET with the given extra headers and returns the body,
// limited to 8MB. Non-2xx responses return a *StatusError.
func (c *Client) Get(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	host := hostOf(rawURL)
	start := time.Now()
	defer func() {
		c.metrics.UpstreamDuration.WithLabelValues(host).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(host, "error").Inc()
		return nil, fmt.Errorf("get %s: %w", host, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(host, "error").Inc()
		return nil, fmt.Errorf("read %s body: %w", host, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.UpstreamRequests.WithLabelValues(host, "status").Inc()
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode, Body: truncate(string(body), 200)}
	}

	c.metrics.UpstreamRequests.WithLabelValues(host, "success").Inc()
	c.logger.Debug("upstream fetch", "url", rawURL, "status", resp.StatusCode, "bytes", len(body))
	return body, nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "invalid"
	}
	return u.Host
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
