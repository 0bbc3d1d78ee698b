package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/mirrorcache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	PruneEvery   uint64
	SkippedEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	pruneCtr   atomic.Uint64
	skippedCtr atomic.Uint64
}

var _ mirrorcache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) PersistFailed(op mirrorcache.Op, key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("mirrorcache.persist_failed",
		"op", string(op),
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) PersistDropped(op mirrorcache.Op, key string) {
	if h.l == nil {
		return
	}
	h.l.Warn("mirrorcache.persist_dropped",
		"op", string(op),
		"key", h.redact(key))
}

func (h *Hooks) PersistSkipped(key string) {
	if h.l == nil || !sample(h.opts.SkippedEvery, &h.skippedCtr) {
		return
	}
	h.l.Debug("mirrorcache.persist_skipped",
		"key", h.redact(key))
}

func (h *Hooks) StalePruned(key string) {
	if h.l == nil || !sample(h.opts.PruneEvery, &h.pruneCtr) {
		return
	}
	h.l.Debug("mirrorcache.stale_pruned",
		"key", h.redact(key))
}

func (h *Hooks) CorruptPruned(key string) {
	if h.l == nil {
		return
	}
	h.l.Info("mirrorcache.corrupt_pruned",
		"key", h.redact(key))
}
