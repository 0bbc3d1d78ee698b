// Package mirrorcache implements a write-through cache layer: an in-memory,
// insertion-ordered mirror backed by a durable key/value store. All reads are
// synchronous and served from the mirror; every write updates the mirror
// first and is then propagated to the durable store by a background worker,
// best-effort. At construction the mirror is hydrated from the store via a
// forward cursor; records the handler marks stale are pruned on the way in.
//
// Components:
//   - store.Store: durable key/value backend (bbolt file or Redis).
//   - Handler[V]: persistence eligibility + (de)serialization for V.
//   - Hooks / Logger / OnError: observability for the async durable path.
//
// Guarantees:
//
//	Get/Keys never block on I/O and always reflect the latest Set/Delete.
//	The durable store is a lagging, best-effort subset of the mirror.
//	Keys prefixed $req$ or $sub$ are bookkeeping and are never persisted.
//
// Warm start:
//
//	st, _ := bolt.Open(ctx, "app.db", bolt.Config{Bucket: "responses"})
//	cc, _ := mirrorcache.New[Response](ctx, mirrorcache.Options[Response]{Store: st})
//	cc.Set("user:1", resp) // mirror now, durable soon
package mirrorcache
