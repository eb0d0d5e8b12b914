package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDocumentCache_SaveLoad(t *testing.T) {
	t.Parallel()
	c := &DocumentCache{Dir: t.TempDir()}
	ctx := context.Background()
	e := Entry{URL: "https://docs.example/pub", ContentType: "text/html", ETag: `"v1"`}
	if err := c.Save(ctx, e, []byte("<table></table>")); err != nil {
		t.Fatalf("save: %v", err)
	}
	meta, err := c.LoadMeta(ctx, e.URL)
	if err != nil {
		t.Fatalf("load meta: %v", err)
	}
	if meta.ETag != `"v1"` || meta.SavedAt.IsZero() {
		t.Fatalf("unexpected meta %+v", meta)
	}
	body, err := c.LoadBody(ctx, e.URL)
	if err != nil || string(body) != "<table></table>" {
		t.Fatalf("unexpected body %q err=%v", body, err)
	}
}

func TestDocumentCache_Unconfigured(t *testing.T) {
	var c *DocumentCache
	if _, err := c.LoadBody(context.Background(), "https://x"); err == nil {
		t.Fatalf("expected error for nil cache")
	}
}

func TestPurgeByAge(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	c := &DocumentCache{Dir: dir}
	ctx := context.Background()
	old := Entry{URL: "https://a/old", SavedAt: time.Now().Add(-48 * time.Hour)}
	fresh := Entry{URL: "https://a/fresh"}
	if err := c.Save(ctx, old, []byte("old")); err != nil {
		t.Fatalf("save old: %v", err)
	}
	if err := c.Save(ctx, fresh, []byte("fresh")); err != nil {
		t.Fatalf("save fresh: %v", err)
	}
	removed, err := PurgeByAge(dir, 24*time.Hour)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if _, err := c.LoadBody(ctx, old.URL); err == nil {
		t.Fatalf("expected old body purged")
	}
	if _, err := c.LoadBody(ctx, fresh.URL); err != nil {
		t.Fatalf("fresh body should survive: %v", err)
	}
}

func TestPurgeByAge_MissingDir(t *testing.T) {
	removed, err := PurgeByAge(filepath.Join(t.TempDir(), "nope"), time.Hour)
	if err != nil || removed != 0 {
		t.Fatalf("expected no-op, got %d %v", removed, err)
	}
}

func TestClearDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "x.body"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ClearDir(dir); err != nil {
		t.Fatalf("clear: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected empty dir, got %d entries err=%v", len(entries), err)
	}
	if err := ClearDir("  "); err == nil {
		t.Fatalf("expected error for blank dir")
	}
}
