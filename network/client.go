// Package network fetches remote resources for windows: an HTTP client with
// cookie support and a response cache honoring Cache-Control max-age.
package network

import (
	"compress/gzip"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
)

// Client is an HTTP client with cookie support and an optional response cache.
type Client struct {
	httpClient   *http.Client
	cookieJar    http.CookieJar
	cache        *Cache
	timeout      time.Duration
	maxRedirects int
	userAgent    string

	mu sync.RWMutex
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithMaxRedirects sets the maximum number of redirects to follow.
func WithMaxRedirects(n int) ClientOption {
	return func(c *Client) {
		c.maxRedirects = n
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithCache installs a response cache consulted by GET requests.
func WithCache(cache *Cache) ClientOption {
	return func(c *Client) {
		c.cache = cache
	}
}

// NewClient creates a new HTTP client with the given options.
func NewClient(opts ...ClientOption) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{
		PublicSuffixList: publicsuffix.List,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c := &Client{
		cookieJar:    jar,
		timeout:      30 * time.Second,
		maxRedirects: 10,
		userAgent:    "HollowDOM/1.0",
	}

	for _, opt := range opts {
		opt(c)
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}

	c.httpClient = &http.Client{
		Transport: transport,
		Jar:       jar,
		Timeout:   c.timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= c.maxRedirects {
				return fmt.Errorf("stopped after %d redirects", c.maxRedirects)
			}
			return nil
		},
	}

	return c, nil
}

// Response represents a fetched resource.
type Response struct {
	StatusCode  int
	Status      string
	Headers     http.Header
	Body        []byte
	ContentType string
	URL         *url.URL // final URL after redirects
	Cached      bool     // served from cache
}

// Get fetches a URL, serving from the cache when a fresh entry exists.
func (c *Client) Get(ctx context.Context, urlStr string) (*Response, error) {
	if c.cache != nil {
		if entry, ok := c.cache.Get(urlStr); ok {
			resp := entry.Response
			resp.Cached = true
			return &resp, nil
		}
	}

	resp, err := c.do(ctx, http.MethodGet, urlStr, nil, nil)
	if err != nil {
		return nil, err
	}

	if c.cache != nil && resp.StatusCode == http.StatusOK {
		c.cache.Set(urlStr, resp)
	}
	return resp, nil
}

// Post sends a POST request with the given body.
func (c *Client) Post(ctx context.Context, urlStr, contentType string, body io.Reader) (*Response, error) {
	return c.do(ctx, http.MethodPost, urlStr, body, map[string]string{
		"Content-Type": contentType,
	})
}

func (c *Client) do(ctx context.Context, method, urlStr string, body io.Reader, headers map[string]string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, urlStr, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Encoding", "gzip")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzReader.Close()
		reader = gzReader
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		Status:      resp.Status,
		Headers:     resp.Header,
		Body:        data,
		ContentType: resp.Header.Get("Content-Type"),
		URL:         resp.Request.URL,
	}, nil
}

// SetCookies sets cookies for a URL.
func (c *Client) SetCookies(u *url.URL, cookies []*http.Cookie) {
	c.cookieJar.SetCookies(u, cookies)
}

// Cookies returns the cookies for a URL.
func (c *Client) Cookies(u *url.URL) []*http.Cookie {
	return c.cookieJar.Cookies(u)
}

// ParseContentType parses a Content-Type header into media type and charset.
func ParseContentType(contentType string) (mediaType, charset string) {
	if contentType == "" {
		return "application/octet-stream", ""
	}

	parts := strings.Split(contentType, ";")
	mediaType = strings.TrimSpace(parts[0])

	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(strings.ToLower(part), "charset=") {
			charset = strings.Trim(part[8:], "\"")
			charset = strings.ToLower(charset)
			break
		}
	}

	return mediaType, charset
}

// IsHTMLContentType returns true if the content type indicates HTML.
func IsHTMLContentType(contentType string) bool {
	mediaType, _ := ParseContentType(contentType)
	mediaType = strings.ToLower(mediaType)
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}
