package fantia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/kitsumori/fanvault/internal/logger"
)

const (
	// DefaultBaseURL is the production API host.
	DefaultBaseURL = "https://fantia.jp"

	// DefaultUserAgent mimics a browser; the API rejects obvious bots.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:120.0) Gecko/20100101 Firefox/120.0"

	// DefaultTimeout is the HTTP request timeout for API calls.
	// Binary downloads use no timeout; they are bounded by the context.
	DefaultTimeout = 30 * time.Second

	// sessionCookie is the cookie carrying the authenticated session.
	sessionCookie = "_session_id"

	// requestRate is the proactive throttle (requests per second).
	requestRate = 1.0
)

// Client is the cookie-authenticated Fantia API client. All calls are
// synchronous; non-success statuses return *APIError. Retries and
// backoff are intentionally absent at this layer.
type Client struct {
	http      *http.Client
	download  *http.Client
	baseURL   string
	sessionID string
	userAgent string
	limiter   *rate.Limiter
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API host, mainly for tests.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithHTTPClient overrides the underlying HTTP client for API calls
// and downloads.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
		c.download = hc
	}
}

// NewClient creates a client authenticated with the given session
// cookie value.
func NewClient(sessionID string, opts ...ClientOption) *Client {
	c := &Client{
		http:      &http.Client{Timeout: DefaultTimeout},
		download:  &http.Client{},
		baseURL:   DefaultBaseURL,
		sessionID: sessionID,
		userAgent: DefaultUserAgent,
		limiter:   rate.NewLimiter(rate.Limit(requestRate), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetPost fetches a single record by id.
func (c *Client) GetPost(ctx context.Context, id int64) (*RemotePost, error) {
	var envelope postEnvelope
	if err := c.getJSON(ctx, fmt.Sprintf("/api/v1/posts/%d", id), &envelope); err != nil {
		return nil, err
	}
	return &envelope.Post, nil
}

// GetFanclub fetches a creator summary by id, including the recent
// post listing used for cursor seeding.
func (c *Client) GetFanclub(ctx context.Context, id int64) (*Fanclub, error) {
	var envelope fanclubEnvelope
	if err := c.getJSON(ctx, fmt.Sprintf("/api/v1/fanclubs/%d", id), &envelope); err != nil {
		return nil, err
	}
	return &envelope.Fanclub, nil
}

// FileURL turns a download URI into an absolute URL. Some fields are
// absolute already, others are paths relative to the API host.
func (c *Client) FileURL(uri string) string {
	if uri == "" || strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://") {
		return uri
	}
	if !strings.HasPrefix(uri, "/") {
		uri = "/" + uri
	}
	return c.baseURL + uri
}

// DownloadFile streams a binary to a private temp file and returns its
// path. The caller (ultimately the import pipeline) takes ownership.
// The remembered filename, when known, is kept as the temp file suffix
// so the importer can preserve the extension.
func (c *Client) DownloadFile(ctx context.Context, rawurl, filename string) (string, error) {
	logger.Debug("downloading %s", rawurl)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
	if err != nil {
		return "", fmt.Errorf("build download request: %w", err)
	}
	c.decorate(req)

	resp, err := c.download.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", rawurl, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &APIError{StatusCode: resp.StatusCode, URL: rawurl}
	}

	tmp, err := os.CreateTemp("", "fanvault-*"+tempSuffix(rawurl, filename))
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close %s: %w", tmp.Name(), err)
	}

	return tmp.Name(), nil
}

// getJSON performs a throttled GET against the API and decodes the
// response body.
func (c *Client) getJSON(ctx context.Context, apiPath string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	fullURL := c.baseURL + apiPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.decorate(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", fullURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, URL: fullURL}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", fullURL, err)
	}
	return nil
}

// decorate applies the browser-like headers and session cookie.
func (c *Client) decorate(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Origin", c.baseURL+"/")
	req.Header.Set("Referer", c.baseURL+"/")
	if c.sessionID != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: c.sessionID})
	}
}

// tempSuffix picks the temp file suffix: the remembered filename when
// known, otherwise the URL path extension.
func tempSuffix(rawurl, filename string) string {
	if filename != "" {
		return "-" + filename
	}
	u, err := url.Parse(rawurl)
	if err != nil {
		return ""
	}
	if ext := path.Ext(u.Path); strings.HasPrefix(ext, ".") {
		return ext
	}
	return ""
}
