package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/hyperifyio/gridscrape/internal/cache"
)

// ErrFetch matches every error returned by Client.Get.
var ErrFetch = errors.New("fetch failed")

// StatusError is returned for a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
	// Reason is the response's reason phrase, e.g. "Not Found".
	Reason string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch failed: %d %s", e.StatusCode, e.Reason)
}

func (e *StatusError) Is(target error) bool { return target == ErrFetch }

type transportError struct{ err error }

func (e *transportError) Error() string        { return "fetch failed: " + e.err.Error() }
func (e *transportError) Unwrap() error        { return e.err }
func (e *transportError) Is(target error) bool { return target == ErrFetch }

// Document is a fetched page decoded to UTF-8.
type Document struct {
	URL         string
	ContentType string
	Body        string
	// FromCache is set when a 304 response was served from the cache.
	FromCache bool
}

// Client fetches a single document. The zero value makes one attempt with
// no timeout; retries and timeouts are opt-in.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// MaxAttempts includes the initial attempt. Minimum 1. Only 5xx
	// responses and deadline errors are retried.
	MaxAttempts int
	// PerRequestTimeout bounds each attempt. Zero means no timeout.
	PerRequestTimeout time.Duration
	// Optional on-disk cache used for conditional revalidation.
	Cache *cache.DocumentCache
	// BypassCache skips conditional headers but still saves fresh responses.
	BypassCache bool
	// RedirectMaxHops caps redirects. Zero means 5.
	RedirectMaxHops int
}

func (c *Client) getHTTPClient() *http.Client {
	if c.HTTPClient != nil {
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{CheckRedirect: c.checkRedirectFunc()}
}

// Get fetches rawURL and returns its body as UTF-8 text. Non-2xx responses
// yield a *StatusError; transport failures are wrapped. Both match ErrFetch.
func (c *Client) Get(ctx context.Context, rawURL string) (Document, error) {
	var etag, lastMod string
	if c.Cache != nil && !c.BypassCache {
		if meta, err := c.Cache.LoadMeta(ctx, rawURL); err == nil && meta != nil {
			etag = meta.ETag
			lastMod = meta.LastModified
		}
	}
	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	for i := 0; ; i++ {
		doc, err := c.tryOnce(ctx, rawURL, etag, lastMod)
		if err == nil {
			return doc, nil
		}
		if !isTransient(err) || i == attempts-1 {
			return Document{}, err
		}
		select {
		case <-ctx.Done():
			return Document{}, &transportError{ctx.Err()}
		case <-time.After(time.Duration(i+1) * 200 * time.Millisecond):
		}
	}
}

func (c *Client) tryOnce(ctx context.Context, rawURL, etag, lastMod string) (Document, error) {
	if c.PerRequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.PerRequestTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Document{}, &transportError{fmt.Errorf("new request: %w", err)}
	}
	if !isHTTPScheme(req.URL) {
		return Document{}, &transportError{fmt.Errorf("unsupported URL scheme: %q", req.URL.Scheme)}
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastMod != "" {
		req.Header.Set("If-Modified-Since", lastMod)
	}

	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return Document{}, &transportError{err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified && c.Cache != nil {
		if cached, err := c.Cache.LoadBody(ctx, rawURL); err == nil {
			ct := resp.Header.Get("Content-Type")
			if meta, err := c.Cache.LoadMeta(ctx, rawURL); err == nil && meta.ContentType != "" {
				ct = meta.ContentType
			}
			body, err := decode(cached, ct)
			if err != nil {
				return Document{}, &transportError{err}
			}
			return Document{URL: rawURL, ContentType: ct, Body: body, FromCache: true}, nil
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Document{}, &StatusError{URL: rawURL, StatusCode: resp.StatusCode, Reason: reasonPhrase(resp)}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Document{}, &transportError{fmt.Errorf("read body: %w", err)}
	}
	ct := resp.Header.Get("Content-Type")
	if c.Cache != nil {
		_ = c.Cache.Save(ctx, cache.Entry{
			URL:          rawURL,
			ContentType:  ct,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
		}, raw)
	}
	body, err := decode(raw, ct)
	if err != nil {
		return Document{}, &transportError{err}
	}
	return Document{URL: rawURL, ContentType: ct, Body: body}, nil
}

// ReadFile loads a document from disk with the same charset handling as Get.
func ReadFile(path string) (Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	body, err := decode(raw, "")
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return Document{URL: path, Body: body}, nil
}

// decode converts raw to UTF-8 using the Content-Type charset, a BOM or a
// <meta charset> declaration, in that order.
func decode(raw []byte, contentType string) (string, error) {
	r, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return "", fmt.Errorf("decode charset: %w", err)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("decode charset: %w", err)
	}
	return string(b), nil
}

func reasonPhrase(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	return reason
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode >= 500
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		if !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
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
