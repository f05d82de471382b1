// Package fetch retrieves feeds and article pages over HTTP with retries,
// a request-rate limit, a concurrency cap and an optional revalidating disk
// cache.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/hyperifyio/sciencedigest/internal/cache"
)

// ErrBlocked is returned when Deny rejects a URL before any request.
var ErrBlocked = errors.New("url is on the deny list")

// DefaultUserAgent identifies the digest builder to publishers.
const DefaultUserAgent = "sciencedigest/1.0 (+https://github.com/hyperifyio/sciencedigest)"

// maxBody caps how much of a response is read.
const maxBody = 8 << 20

// Client wraps http.Client with timeouts and bounded retry on transient
// failures. The zero value is usable.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// MaxAttempts includes the initial attempt. Minimum 1.
	MaxAttempts int
	// PerRequestTimeout bounds each attempt.
	PerRequestTimeout time.Duration
	// Cache stores bodies with their validators for conditional requests.
	Cache *cache.HTTPCache
	// BypassCache skips revalidation but still refreshes the cache.
	BypassCache bool
	// RedirectMaxHops caps redirects. Zero means 5.
	RedirectMaxHops int
	// MaxConcurrent caps in-flight requests. Zero means unlimited.
	MaxConcurrent int
	// Limiter is waited on before every attempt, retries included.
	Limiter *rate.Limiter
	// Deny is consulted before any network or cache access.
	Deny func(rawURL string) bool

	gate     chan struct{}
	gateOnce sync.Once
}

// statusError carries an HTTP status that ended an attempt.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	if e.code >= 500 {
		return fmt.Sprintf("server error: %d", e.code)
	}
	return fmt.Sprintf("unexpected status: %d", e.code)
}

// response is the outcome of one attempt.
type response struct {
	body         []byte
	contentType  string
	etag         string
	lastModified string
	status       int
}

// Get fetches rawURL and returns the body and its content type. A 304
// answer is served from the cache.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, string, error) {
	if c.Deny != nil && c.Deny(rawURL) {
		return nil, "", fmt.Errorf("%s: %w", rawURL, ErrBlocked)
	}
	var etag, lastMod string
	if c.Cache != nil && !c.BypassCache {
		if e, err := c.Cache.Lookup(ctx, rawURL); err == nil && e.Conditional() {
			etag, lastMod = e.ETag, e.LastModified
		}
	}
	attempts := max(1, c.MaxAttempts)
	var lastErr error
	for i := range attempts {
		if c.Limiter != nil {
			if err := c.Limiter.Wait(ctx); err != nil {
				return nil, "", fmt.Errorf("rate limit: %w", err)
			}
		}
		resp, err := c.attempt(ctx, rawURL, etag, lastMod)
		if err == nil {
			return c.finish(ctx, rawURL, resp)
		}
		lastErr = err
		if !isTransient(err) || i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, "", ctx.Err()
		case <-time.After(time.Duration(i+1) * 200 * time.Millisecond):
		}
	}
	return nil, "", lastErr
}

func (c *Client) finish(ctx context.Context, rawURL string, r response) ([]byte, string, error) {
	if r.status == http.StatusNotModified {
		if c.Cache == nil {
			return nil, "", &statusError{code: r.status}
		}
		body, err := c.Cache.Body(ctx, rawURL)
		if err != nil {
			return nil, "", fmt.Errorf("not modified but cache is empty: %w", err)
		}
		ct := r.contentType
		if e, err := c.Cache.Lookup(ctx, rawURL); err == nil && e.ContentType != "" {
			ct = e.ContentType
		}
		return body, ct, nil
	}
	if c.Cache != nil {
		e := cache.Entry{URL: rawURL, ContentType: r.contentType, ETag: r.etag, LastModified: r.lastModified}
		if err := c.Cache.Store(ctx, e, r.body); err != nil {
			log.Debug().Err(err).Str("url", rawURL).Msg("cache store failed")
		}
	}
	return r.body, r.contentType, nil
}

func (c *Client) attempt(ctx context.Context, rawURL, etag, lastMod string) (response, error) {
	c.acquire()
	defer c.release()

	if c.PerRequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.PerRequestTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return response{}, fmt.Errorf("new request: %w", err)
	}
	if !isHTTPScheme(req.URL) {
		return response{}, fmt.Errorf("unsupported URL scheme: %q", req.URL.Scheme)
	}
	ua := c.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastMod != "" {
		req.Header.Set("If-Modified-Since", lastMod)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return response{}, err
	}
	defer resp.Body.Close()

	out := response{
		contentType:  resp.Header.Get("Content-Type"),
		etag:         resp.Header.Get("ETag"),
		lastModified: resp.Header.Get("Last-Modified"),
		status:       resp.StatusCode,
	}
	switch {
	case resp.StatusCode == http.StatusNotModified:
		return out, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return response{}, &statusError{code: resp.StatusCode}
	case !isAllowedContentType(out.contentType):
		return response{}, fmt.Errorf("unsupported content type: %s", out.contentType)
	}
	out.body, err = io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return response{}, fmt.Errorf("read body: %w", err)
	}
	return out, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirect()
		return &base
	}
	return &http.Client{CheckRedirect: c.checkRedirect()}
}

// StatusCode returns the HTTP status that ended a failed Get, or 0 when
// the failure was not an HTTP status.
func StatusCode(err error) int {
	var se *statusError
	if errors.As(err, &se) {
		return se.code
	}
	return 0
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500 || se.code == http.StatusTooManyRequests
	}
	return false
}

func (c *Client) checkRedirect() func(req *http.Request, via []*http.Request) error {
	hops := c.RedirectMaxHops
	if hops <= 0 {
		hops = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= hops {
			return errors.New("too many redirects")
		}
		if !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		if c.Deny != nil && c.Deny(req.URL.String()) {
			return fmt.Errorf("redirect to %s: %w", req.URL.Host, ErrBlocked)
		}
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

// allowedTypes are the media types of pages, feeds and robots.txt.
var allowedTypes = []string{
	"text/plain",
	"text/html",
	"application/xhtml+xml",
	"application/rss+xml",
	"application/atom+xml",
	"application/xml",
	"text/xml",
	"application/feed+json",
	"application/json",
}

func isAllowedContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	for _, t := range allowedTypes {
		if strings.HasPrefix(ct, t) {
			return true
		}
	}
	return false
}

func (c *Client) acquire() {
	if c.MaxConcurrent <= 0 {
		return
	}
	c.gateOnce.Do(func() {
		c.gate = make(chan struct{}, c.MaxConcurrent)
	})
	c.gate <- struct{}{}
}

func (c *Client) release() {
	if c.MaxConcurrent <= 0 || c.gate == nil {
		return
	}
	<-c.gate
}
