package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperifyio/gridscrape/internal/cache"
)

func TestGet_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "gridscrape-test" {
			t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<table><tr><td>█</td></tr></table>"))
	}))
	defer srv.Close()

	c := &Client{UserAgent: "gridscrape-test"}
	doc, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Body != "<table><tr><td>█</td></tr></table>" || doc.FromCache {
		t.Fatalf("unexpected document %+v", doc)
	}
}

func TestGet_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := &Client{}
	_, err := c.Get(context.Background(), srv.URL)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StatusError, got %T %v", err, err)
	}
	if se.StatusCode != 404 || se.Reason != "Not Found" {
		t.Fatalf("unexpected status error %+v", se)
	}
	if err.Error() != "fetch failed: 404 Not Found" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("expected errors.Is(err, ErrFetch)")
	}
}

func TestGet_NoRetryByDefault(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := &Client{}
	if _, err := c.Get(context.Background(), srv.URL); err == nil {
		t.Fatalf("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}

func TestGet_RetryOn5xx(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := &Client{MaxAttempts: 2, PerRequestTimeout: 2 * time.Second}
	if _, err := c.Get(context.Background(), srv.URL); err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
}

func TestGet_Conditional304_UsesCache(t *testing.T) {
	var calls int
	etag := `"abc123"`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "text/html")
		if calls == 1 {
			w.Header().Set("ETag", etag)
			_, _ = w.Write([]byte("first"))
			return
		}
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		fmt.Fprintln(w, "unexpected")
	}))
	defer srv.Close()

	c := &Client{Cache: &cache.DocumentCache{Dir: t.TempDir()}}
	d1, err := c.Get(context.Background(), srv.URL)
	if err != nil || d1.Body != "first" {
		t.Fatalf("first get: %q %v", d1.Body, err)
	}
	d2, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("second get error: %v", err)
	}
	if d2.Body != "first" || !d2.FromCache {
		t.Fatalf("expected cached body, got %+v", d2)
	}
}

func TestGet_BypassCacheSendsNoConditionals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") != "" {
			t.Errorf("conditional header sent while bypassing cache")
		}
		w.Header().Set("ETag", `"x"`)
		_, _ = w.Write([]byte("fresh"))
	}))
	defer srv.Close()

	c := &Client{Cache: &cache.DocumentCache{Dir: t.TempDir()}, BypassCache: true}
	for i := 0; i < 2; i++ {
		if _, err := c.Get(context.Background(), srv.URL); err != nil {
			t.Fatalf("get %d: %v", i, err)
		}
	}
}

func TestGet_RejectsNonHTTP(t *testing.T) {
	c := &Client{}
	_, err := c.Get(context.Background(), "file:///etc/hosts")
	if err == nil || !errors.Is(err, ErrFetch) {
		t.Fatalf("expected fetch error for non-http scheme, got %v", err)
	}
}

func TestGet_RedirectLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.Redirect(w, r, "/next", http.StatusFound)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := &Client{RedirectMaxHops: 1}
	if _, err := c.Get(context.Background(), srv.URL); err == nil {
		t.Fatalf("expected redirect limit error")
	}
}

func TestGet_DecodesDeclaredCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte{'<', 'p', '>', 0xE9, '<', '/', 'p', '>'})
	}))
	defer srv.Close()

	doc, err := (&Client{}).Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Body != "<p>é</p>" {
		t.Fatalf("unexpected body %q", doc.Body)
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.html")
	if err := os.WriteFile(path, []byte("<table></table>"), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := ReadFile(path)
	if err != nil || doc.Body != "<table></table>" {
		t.Fatalf("unexpected %+v %v", doc, err)
	}
	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.html")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
