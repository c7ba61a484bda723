// Package fetch is the shared page fetcher used by both scraping pipelines.
// It applies a custom user agent, follows redirects, enforces a per-request
// timeout, and retries transient failures with linearly increasing backoff.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/gabriel-vasile/mimetype"
)

var (
	// ErrFetchFailed wraps any HTTP-level failure so callers can treat
	// "target unreachable" as a distinct, typed condition.
	ErrFetchFailed = errors.New("page fetch failed")
	// ErrNotHTML is returned when the response body is not an HTML document.
	ErrNotHTML = errors.New("response is not html")
)

const (
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
	defaultTimeout   = 30 * time.Second
	maxBodyBytes     = 8 << 20 // 8 MiB is plenty for any list or article page
)

// Client fetches HTML pages with retry and backoff.
type Client struct {
	httpc      *http.Client
	userAgent  string
	maxRetries uint
	retryDelay time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithUserAgent overrides the default browser user agent.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if strings.TrimSpace(ua) != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpc.Timeout = d
		}
	}
}

// WithRetries sets the attempt ceiling and the base backoff delay. The
// backoff grows linearly: delay, 2*delay, 3*delay, ...
func WithRetries(attempts uint, delay time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.maxRetries = attempts
		}
		if delay > 0 {
			c.retryDelay = delay
		}
	}
}

// NewClient constructs a fetcher. Redirects are followed (up to the
// net/http default of 10), which is how short links resolve to their
// canonical URLs.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpc:      &http.Client{Timeout: defaultTimeout},
		userAgent:  defaultUserAgent,
		maxRetries: 3,
		retryDelay: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get fetches url and returns the HTML body.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	body, _, err := c.GetFollow(ctx, url)
	return body, err
}

// GetFollow fetches url and returns the HTML body along with the final URL
// after redirects, so callers can resolve short links.
func (c *Client) GetFollow(ctx context.Context, url string) ([]byte, string, error) {
	var (
		body     []byte
		finalURL = url
	)

	err := retry.Do(
		func() error {
			b, f, err := c.getOnce(ctx, url)
			if err != nil {
				return err
			}
			body, finalURL = b, f
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.maxRetries),
		// Linear backoff: delay, 2*delay, 3*delay, ...
		retry.DelayType(func(n uint, _ error, _ *retry.Config) time.Duration {
			return time.Duration(n+1) * c.retryDelay
		}),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, ErrNotHTML) && !errors.Is(err, context.Canceled)
		}),
		retry.OnRetry(func(attempt uint, err error) {
			log.Printf("[fetch] retrying %s (attempt %d/%d): %v", url, attempt+1, c.maxRetries, err)
		}),
	)
	if err != nil {
		if errors.Is(err, ErrNotHTML) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("%w: %s: %v", ErrFetchFailed, url, err)
	}

	return body, finalURL, nil
}

func (c *Client) getOnce(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,pt-BR;q=0.8,es;q=0.7")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, "", fmt.Errorf("status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, "", err
	}

	// Sniff the payload rather than trusting Content-Type; some wikis serve
	// odd headers and some error pages serve JSON with a 200.
	if mt := mimetype.Detect(body); !mt.Is("text/html") && !mt.Is("application/xhtml+xml") && !mt.Is("text/xml") {
		return nil, "", fmt.Errorf("%w: got %s", ErrNotHTML, mt.String())
	}

	finalURL := url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return body, finalURL, nil
}
