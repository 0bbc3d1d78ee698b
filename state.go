package mirrorcache

import "github.com/unkn0wn-root/mirrorcache/codec"

// State is the in-flight-aware entry shape: a result or error plus transient
// flags describing an operation still running.
type State[V any] struct {
	Data         V
	Err          error
	IsValidating bool
	IsLoading    bool
}

// StateHandler persists State entries. Only the Data projection is written:
// transient flags are meaningless after a reload (a persisted "loading"
// entry would load forever), and error values are not plain data, so entries
// that are mid-flight or hold an error are excluded from persistence.
type StateHandler[V any] struct {
	c codec.Codec[V]
}

var _ Handler[State[struct{}]] = StateHandler[struct{}]{}

func NewStateHandler[V any](c codec.Codec[V]) StateHandler[V] {
	return StateHandler[V]{c: c}
}

func (h StateHandler[V]) Revive(_ string, raw []byte) (State[V], bool, error) {
	v, err := h.c.Decode(raw)
	if err != nil {
		return State[V]{}, false, nil
	}
	return State[V]{Data: v}, true, nil
}

func (h StateHandler[V]) Replace(_ string, entry State[V]) ([]byte, bool, error) {
	if entry.IsLoading || entry.IsValidating || entry.Err != nil {
		return nil, false, nil
	}
	raw, err := h.c.Encode(entry.Data)
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}
