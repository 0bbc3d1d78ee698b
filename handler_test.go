package mirrorcache

import (
	"context"
	"errors"
	"testing"

	c "github.com/unkn0wn-root/mirrorcache/codec"
	"github.com/unkn0wn-root/mirrorcache/store"
)

func TestPlainHandlerRoundTrip(t *testing.T) {
	h := NewPlainHandler[user](c.JSON[user]{})
	v := user{ID: "1", Name: "a"}

	raw, ok, err := h.Replace("k", v)
	if err != nil || !ok {
		t.Fatalf("Replace: ok=%v err=%v", ok, err)
	}
	got, ok, err := h.Revive("k", raw)
	if err != nil || !ok || got != v {
		t.Fatalf("Revive: ok=%v err=%v got=%v", ok, err, got)
	}
}

func TestPlainHandlerUndecodableIsStale(t *testing.T) {
	h := NewPlainHandler[user](c.JSON[user]{})
	if _, ok, err := h.Revive("k", []byte("{broken")); ok || err != nil {
		t.Fatalf("undecodable record should be stale, not fatal: ok=%v err=%v", ok, err)
	}
}

func TestStateHandlerEligibility(t *testing.T) {
	h := NewStateHandler[user](c.JSON[user]{})

	transient := []State[user]{
		{IsLoading: true},
		{IsValidating: true},
		{Data: user{ID: "1"}, IsValidating: true},
		{Err: errors.New("boom")},
	}
	for i, s := range transient {
		if _, ok, err := h.Replace("k", s); ok || err != nil {
			t.Fatalf("case %d: transient state must be ineligible: ok=%v err=%v", i, ok, err)
		}
	}

	settled := State[user]{Data: user{ID: "1", Name: "a"}}
	raw, ok, err := h.Replace("k", settled)
	if err != nil || !ok {
		t.Fatalf("settled Replace: ok=%v err=%v", ok, err)
	}
	got, ok, err := h.Revive("k", raw)
	if err != nil || !ok {
		t.Fatalf("Revive: ok=%v err=%v", ok, err)
	}
	if got.Data != settled.Data || got.IsLoading || got.IsValidating || got.Err != nil {
		t.Fatalf("revived state carries transient fields: %+v", got)
	}
}

type upgradingHandler struct {
	PlainHandler[user]
	called int
}

func (h *upgradingHandler) UpgradeStore(_ context.Context, _ store.Schema, _ int) error {
	h.called++
	return nil
}

func TestUpgradeHook(t *testing.T) {
	if fn := UpgradeHook[user](NewPlainHandler[user](c.JSON[user]{})); fn != nil {
		t.Fatalf("plain handler should not expose an upgrade hook")
	}

	h := &upgradingHandler{PlainHandler: NewPlainHandler[user](c.JSON[user]{})}
	fn := UpgradeHook[user](h)
	if fn == nil {
		t.Fatalf("upgrading handler should expose a hook")
	}
	if err := fn(context.Background(), nil, 0); err != nil {
		t.Fatalf("hook: %v", err)
	}
	if h.called != 1 {
		t.Fatalf("hook not routed to the handler")
	}
}
