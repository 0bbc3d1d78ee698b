package mirrorcache

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them on hot paths.
type Hooks interface {
	// A durable put/delete/clear failed after the mirror was updated,
	// or Replace returned a genuine encode error on a Set.
	PersistFailed(op Op, key string, err error)

	// The write-behind queue was full and the operation was dropped.
	PersistDropped(op Op, key string)

	// Replace declined to persist a Set (do-not-persist sentinel).
	PersistSkipped(key string)

	// A persisted record was pruned during hydration (stale per Revive).
	StalePruned(key string)

	// A persisted record had a corrupt envelope and was pruned during hydration.
	CorruptPruned(key string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) PersistFailed(Op, string, error) {}
func (NopHooks) PersistDropped(Op, string)       {}
func (NopHooks) PersistSkipped(string)           {}
func (NopHooks) StalePruned(string)              {}
func (NopHooks) CorruptPruned(string)            {}
