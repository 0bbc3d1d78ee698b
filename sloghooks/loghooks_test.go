package sloghooks

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/unkn0wn-root/mirrorcache"
)

func newBufLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return l, &buf
}

func TestSamplingPrunes(t *testing.T) {
	l, buf := newBufLogger()
	h := New(l, Options{PruneEvery: 5})

	for i := 0; i < 10; i++ {
		h.StalePruned("user:1")
	}

	n := strings.Count(buf.String(), "mirrorcache.stale_pruned")
	if n != 2 {
		t.Fatalf("expected 2 sampled log lines, got %d", n)
	}
}

func TestFailuresAlwaysLogged(t *testing.T) {
	l, buf := newBufLogger()
	h := New(l, Options{})

	h.PersistFailed(mirrorcache.OpPut, "user:1", errors.New("disk full"))
	h.PersistDropped(mirrorcache.OpDelete, "user:2")

	out := buf.String()
	if !strings.Contains(out, "mirrorcache.persist_failed") {
		t.Fatalf("persist_failed not logged: %s", out)
	}
	if !strings.Contains(out, "mirrorcache.persist_dropped") {
		t.Fatalf("persist_dropped not logged: %s", out)
	}
	if strings.Contains(out, "user:1") {
		t.Fatalf("raw key leaked into logs: %s", out)
	}
}

func TestRedactOverride(t *testing.T) {
	l, buf := newBufLogger()
	h := New(l, Options{Redact: func(k string) string { return "<" + k + ">" }})

	h.CorruptPruned("user:1")
	if !strings.Contains(buf.String(), "<user:1>") {
		t.Fatalf("custom redactor not applied: %s", buf.String())
	}
}
