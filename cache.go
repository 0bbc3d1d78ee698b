package mirrorcache

import (
	"context"
	"fmt"
	"sync"

	"github.com/unkn0wn-root/mirrorcache/codec"
	"github.com/unkn0wn-root/mirrorcache/internal/keys"
	"github.com/unkn0wn-root/mirrorcache/internal/wire"
	"github.com/unkn0wn-root/mirrorcache/store"
)

const defaultQueueSize = 1024

type durableOp struct {
	op  Op
	key string
	raw []byte
}

type cache[V any] struct {
	mirror  *mirror[V]
	store   store.Store
	handler Handler[V]
	log     Logger
	hooks   Hooks
	onError func(error)

	q  chan durableOp
	wg sync.WaitGroup

	mu        sync.Mutex // guards closed
	closed    bool
	closeOnce sync.Once
}

func newCache[V any](ctx context.Context, opts Options[V]) (*cache[V], error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("mirrorcache: store is required")
	}

	c := &cache[V]{
		mirror: newMirror[V](),
		store:  opts.Store,
	}

	// defaults
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	if opts.Handler != nil {
		c.handler = opts.Handler
	} else {
		c.handler = NewPlainHandler[V](codec.JSON[V]{})
	}
	if opts.OnError != nil {
		c.onError = opts.OnError
	} else {
		c.onError = func(error) {}
	}
	qlen := opts.QueueSize
	if qlen <= 0 {
		qlen = defaultQueueSize
	}
	c.q = make(chan durableOp, qlen)

	if err := c.hydrate(ctx); err != nil {
		return nil, err
	}

	c.wg.Add(1)
	go c.worker()

	if opts.Fallback != nil {
		c.seed(opts.Fallback)
	}
	return c, nil
}

// hydrate drains the durable store into the mirror, pruning records the
// handler marks stale and records with a corrupt envelope. It returns only
// after the cursor is exhausted and committed.
func (c *cache[V]) hydrate(ctx context.Context) error {
	cur, err := c.store.Scan(ctx)
	if err != nil {
		return fmt.Errorf("mirrorcache: scan: %w", err)
	}
	defer func() {
		if cur != nil {
			_ = cur.Close()
		}
	}()

	for {
		key, raw, ok, err := cur.Next(ctx)
		if err != nil {
			return fmt.Errorf("mirrorcache: cursor: %w", err)
		}
		if !ok {
			break
		}

		payload, err := wire.DecodeRecord(raw)
		if err != nil {
			// foreign or corrupt bytes; prune like a stale record
			if derr := cur.Delete(); derr != nil {
				c.log.Warn("prune corrupt record failed", Fields{"key": key, "err": derr})
			}
			c.hooks.CorruptPruned(key)
			continue
		}

		v, live, err := c.handler.Revive(key, payload)
		if err != nil {
			return fmt.Errorf("mirrorcache: revive %q: %w", key, err)
		}
		if !live {
			if derr := cur.Delete(); derr != nil {
				c.log.Warn("prune stale record failed", Fields{"key": key, "err": derr})
			}
			c.hooks.StalePruned(key)
			continue
		}
		c.mirror.set(key, v)
	}

	err = cur.Close()
	cur = nil
	if err != nil {
		return fmt.Errorf("mirrorcache: close cursor: %w", err)
	}
	return nil
}

// seed copies fallback entries the durable store did not know about, through
// the normal Set path so eligible ones get persisted for the next start.
func (c *cache[V]) seed(fb FallbackReader[V]) {
	for _, k := range fb.Keys() {
		if _, ok := c.mirror.get(k); ok {
			continue // mirror wins
		}
		if v, ok := fb.Get(k); ok {
			c.Set(k, v)
		}
	}
}

func (c *cache[V]) Keys() []string { return c.mirror.keys() }

func (c *cache[V]) Get(key string) (V, bool) { return c.mirror.get(key) }

func (c *cache[V]) Len() int { return c.mirror.len() }

func (c *cache[V]) Set(key string, value V) {
	c.mirror.set(key, value)

	if keys.IsInternal(key) {
		return // bookkeeping entries never reach the durable store
	}
	raw, ok, err := c.handler.Replace(key, value)
	if err != nil {
		c.report(OpPut, key, err)
		return
	}
	if !ok {
		c.hooks.PersistSkipped(key)
		return
	}
	c.enqueue(durableOp{op: OpPut, key: key, raw: wire.EncodeRecord(raw)})
}

func (c *cache[V]) Delete(key string) {
	if !c.mirror.delete(key) {
		return // absent key: no durable op
	}
	if keys.IsInternal(key) {
		return
	}
	c.enqueue(durableOp{op: OpDelete, key: key})
}

func (c *cache[V]) Clear() {
	c.mirror.clear()
	c.enqueue(durableOp{op: OpClear})
}

// Close stops accepting durable work, waits for the queue to drain, then
// closes the store. Mirror reads keep working after Close; only the durable
// side is torn down.
func (c *cache[V]) Close(ctx context.Context) error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.q)
		c.wg.Wait()
		err = c.store.Close(ctx)
	})
	return err
}

// enqueue hands a durable operation to the worker without ever blocking the
// caller: when the queue is full the operation is dropped and reported.
func (c *cache[V]) enqueue(op durableOp) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.q <- op:
	default:
		c.log.Warn("durable queue full; dropping", Fields{"op": string(op.op), "key": op.key})
		c.hooks.PersistDropped(op.op, op.key)
		c.onError(&PersistError{Op: op.op, Key: op.key, Err: ErrQueueFull})
	}
}

func (c *cache[V]) worker() {
	defer c.wg.Done()
	// durable writes are fire-and-forget; no deadline governs them
	ctx := context.Background()
	for op := range c.q {
		var err error
		switch op.op {
		case OpPut:
			err = c.store.Put(ctx, op.key, op.raw)
		case OpDelete:
			err = c.store.Delete(ctx, op.key)
		case OpClear:
			err = c.store.Clear(ctx)
		}
		if err != nil {
			c.report(op.op, op.key, err)
		}
	}
}

// report routes an async durable failure to the logger, hooks, and the error
// sink. The mirror state is authoritative regardless of the outcome.
func (c *cache[V]) report(op Op, key string, err error) {
	c.log.Error("durable operation failed", Fields{"op": string(op), "key": key, "err": err})
	c.hooks.PersistFailed(op, key, err)
	c.onError(&PersistError{Op: op, Key: key, Err: err})
}
