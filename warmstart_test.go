package mirrorcache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/unkn0wn-root/mirrorcache/store/bolt"
)

// TestBoltWarmStart runs the full lifecycle against a real file store: write,
// close, reopen, hydrate.
func TestBoltWarmStart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "app.db")

	st, err := bolt.Open(ctx, path, bolt.Config{Bucket: "responses"})
	if err != nil {
		t.Fatalf("bolt.Open: %v", err)
	}
	cc, err := New[user](ctx, Options[user]{Store: st})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	v := user{ID: "1", Name: "a"}
	cc.Set("user:1", v)
	if got, ok := cc.Get("user:1"); !ok || got != v {
		t.Fatalf("Get after Set: ok=%v got=%v", ok, got)
	}
	if err := cc.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// simulated restart
	st2, err := bolt.Open(ctx, path, bolt.Config{Bucket: "responses"})
	if err != nil {
		t.Fatalf("bolt.Open (reopen): %v", err)
	}
	cc2, err := New[user](ctx, Options[user]{Store: st2})
	if err != nil {
		t.Fatalf("New (reopen): %v", err)
	}
	defer cc2.Close(ctx)

	if got, ok := cc2.Get("user:1"); !ok || got != v {
		t.Fatalf("warm start missed user:1: ok=%v got=%v", ok, got)
	}
}

// TestBoltVersionUpgradeEmptyMirror: bumping the schema version wipes the
// store, so the next hydration yields an empty mirror.
func TestBoltVersionUpgradeEmptyMirror(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "app.db")

	st, err := bolt.Open(ctx, path, bolt.Config{Bucket: "responses", Version: 1})
	if err != nil {
		t.Fatalf("bolt.Open: %v", err)
	}
	cc, err := New[user](ctx, Options[user]{Store: st})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cc.Set("user:1", user{ID: "1"})
	if err := cc.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}

	st2, err := bolt.Open(ctx, path, bolt.Config{Bucket: "responses", Version: 2})
	if err != nil {
		t.Fatalf("bolt.Open v2: %v", err)
	}
	cc2, err := New[user](ctx, Options[user]{Store: st2})
	if err != nil {
		t.Fatalf("New v2: %v", err)
	}
	defer cc2.Close(ctx)

	if cc2.Len() != 0 {
		t.Fatalf("mirror should be empty after destructive upgrade, has %d", cc2.Len())
	}
	if _, ok := cc2.Get("user:1"); ok {
		t.Fatalf("old entry resurrected across version bump")
	}
}
