// Package catalog is the HTTP base shared by the upstream metadata clients.
package catalog

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/narwhalmedia/wrongopinions/pkg/errors"
	"github.com/narwhalmedia/wrongopinions/pkg/interfaces"
	"github.com/narwhalmedia/wrongopinions/pkg/logger"
)

// maxErrorBody bounds how much of an error response is kept in messages.
const maxErrorBody = 512

// HeaderProvider supplies the headers sent with every request to a catalog.
type HeaderProvider interface {
	DefaultHeaders() map[string]string
}

// Client performs JSON GET requests against one upstream catalog and maps
// failures onto the application error taxonomy.
type Client struct {
	name       string
	baseURL    string
	headers    HeaderProvider
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     interfaces.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient shares a connection pool across catalogs.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithMinInterval spaces consecutive requests of this client at least d apart.
func WithMinInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l interfaces.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewHTTPClient returns the pooled client shared by all catalogs.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// New creates a catalog client. name is used in error messages, e.g. "TMDB".
func New(name, baseURL string, headers HeaderProvider, opts ...Option) *Client {
	c := &Client{
		name:       name,
		baseURL:    strings.TrimRight(baseURL, "/"),
		headers:    headers,
		httpClient: NewHTTPClient(30 * time.Second),
		logger:     logger.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the catalog name.
func (c *Client) Name() string {
	return c.name
}

// HTTPClient returns the underlying pooled client.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// Get issues GET baseURL+path with params and decodes the JSON body into out.
func (c *Client) Get(ctx context.Context, path string, params url.Values, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return errors.Upstream(fmt.Sprintf("%s request cancelled", c.name), 0, err)
		}
	}

	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	for k, v := range c.headers.DefaultHeaders() {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return errors.Upstream(fmt.Sprintf("%s request timed out", c.name), 0, err)
		}
		return errors.Upstream(fmt.Sprintf("%s request failed", c.name), 0, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Upstream request",
		interfaces.String("catalog", c.name),
		interfaces.String("path", path),
		interfaces.Int("status", resp.StatusCode),
		interfaces.Duration("duration", time.Since(start)))

	if err := c.checkStatus(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Upstream(fmt.Sprintf("%s returned invalid JSON", c.name), resp.StatusCode, err)
	}
	return nil
}

// Exists sends a HEAD request to rawURL without going through the rate
// limiter. Any 2xx or 3xx answer counts as present.
func (c *Client) Exists(ctx context.Context, rawURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false
	}
	for k, v := range c.headers.DefaultHeaders() {
		req.Header.Set(k, v)
	}

	probe := *c.httpClient
	probe.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	resp, err := probe.Do(req)
	if err != nil {
		c.logger.Debug("Existence probe failed",
			interfaces.String("url", rawURL),
			interfaces.Error(err))
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 400
}

func (c *Client) checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errors.NotFound(fmt.Sprintf("%s resource not found", c.name))
	case resp.StatusCode == http.StatusTooManyRequests:
		return errors.RateLimited(fmt.Sprintf("%s rate limit exceeded", c.name), parseRetryAfter(resp.Header.Get("Retry-After")))
	case resp.StatusCode >= http.StatusBadRequest:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return errors.Upstream(fmt.Sprintf("%s API error: %s", c.name, strings.TrimSpace(string(body))), resp.StatusCode, nil)
	}
	return nil
}

func parseRetryAfter(v string) int {
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}
