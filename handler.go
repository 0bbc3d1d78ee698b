package mirrorcache

import (
	"context"

	"github.com/unkn0wn-root/mirrorcache/codec"
	"github.com/unkn0wn-root/mirrorcache/store"
)

// Handler decides persistence eligibility and (de)serializes entries.
// Implement as a strategy object (two methods, one optional capability)
// and pass it via Options.
type Handler[V any] interface {
	// Revive decodes a persisted record back into an entry. ok=false marks
	// the record stale: hydration deletes it from the durable store and does
	// not add it to the mirror. A non-nil error aborts construction.
	Revive(key string, raw []byte) (v V, ok bool, err error)

	// Replace encodes an entry for persistence. ok=false means "do not
	// persist this write"; the mirror keeps the entry regardless. A non-nil
	// error is a genuine serialization failure, routed to the error sink.
	Replace(key string, entry V) (raw []byte, ok bool, err error)
}

// SchemaUpgrader is an optional Handler capability, invoked once during a
// store version upgrade (before hydration) to extend the durable schema.
type SchemaUpgrader interface {
	UpgradeStore(ctx context.Context, schema store.Schema, oldVersion int) error
}

// UpgradeHook extracts h's schema-upgrade hook for a store driver config.
// Returns nil when h does not implement SchemaUpgrader.
func UpgradeHook[V any](h Handler[V]) store.UpgradeFunc {
	u, ok := h.(SchemaUpgrader)
	if !ok {
		return nil
	}
	return u.UpgradeStore
}

// PlainHandler persists every entry through a codec. It never signals stale
// or ineligible on its own; exclusion of bookkeeping keys stays with the
// reserved-prefix guard. A record the codec cannot decode is treated as
// stale and pruned rather than failing construction.
type PlainHandler[V any] struct {
	c codec.Codec[V]
}

var _ Handler[struct{}] = PlainHandler[struct{}]{}

func NewPlainHandler[V any](c codec.Codec[V]) PlainHandler[V] {
	return PlainHandler[V]{c: c}
}

func (h PlainHandler[V]) Revive(_ string, raw []byte) (V, bool, error) {
	v, err := h.c.Decode(raw)
	if err != nil {
		var zero V
		return zero, false, nil
	}
	return v, true, nil
}

func (h PlainHandler[V]) Replace(_ string, entry V) ([]byte, bool, error) {
	raw, err := h.c.Encode(entry)
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}
