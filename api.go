package mirrorcache

import (
	"context"

	"github.com/unkn0wn-root/mirrorcache/store"
)

// Cache is the synchronous surface handed to the cache consumer. Reads never
// block on I/O; mutations update the mirror before they return and propagate
// to the durable store in the background, best-effort.
type Cache[V any] interface {
	// Keys returns a snapshot of the mirror's keys in insertion order.
	Keys() []string
	// Get returns the mirror's entry for key. Never blocks, never fails.
	Get(key string) (V, bool)
	// Set stores the entry in the mirror and schedules a durable write.
	Set(key string, value V)
	// Delete removes the entry; an existing key schedules a durable delete.
	Delete(key string)
	// Clear empties the mirror and schedules a durable clear.
	Clear()
	// Len returns the number of entries in the mirror.
	Len() int
	// Close drains pending durable operations and closes the store.
	Close(ctx context.Context) error
}

// FallbackReader is a read-only view of a consumer's pre-existing cache.
// After hydration, entries the durable store did not know about are copied
// in through the normal Set path; hydrated entries win on conflict.
type FallbackReader[V any] interface {
	Keys() []string
	Get(key string) (V, bool)
}

// Options tune the cache. Only Store is required; others have sensible defaults.
type Options[V any] struct {
	// Required. An opened, versioned durable store (see store/bolt,
	// store/redis). The cache owns the handle and closes it on Close.
	Store store.Store

	Handler   Handler[V]        // nil => PlainHandler over codec.JSON
	OnError   func(error)       // sink for async durable failures; nil => discard
	Logger    Logger            // if nil, NopLogger is used
	Hooks     Hooks             // if nil, NopHooks is used
	QueueSize int               // pending durable ops; 0 => 1024
	Fallback  FallbackReader[V] // optional seed for keys the store lacks
}

// New hydrates the mirror from opts.Store and returns the composed cache.
// It blocks until every persisted record has been revived or pruned; the
// consumer never observes a partially hydrated mirror. A store scan error or
// a Revive error fails construction outright - there is no degraded mode.
func New[V any](ctx context.Context, opts Options[V]) (Cache[V], error) {
	c, err := newCache[V](ctx, opts)
	if err != nil {
		return nil, err // avoid a typed-nil *cache inside the interface
	}
	return c, nil
}
