// usage:
//
// import (
//
//	"log/slog"
//
//	"github.com/unkn0wn-root/mirrorcache"
//	"github.com/unkn0wn-root/mirrorcache/hooks/async"
//	"github.com/unkn0wn-root/mirrorcache/sloghooks"
//
// )
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    PruneEvery: 10, // sample logs: ~every 10th prune
//	})
//
// hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
// defer hooks.Close()
//
//	cc, _ := mirrorcache.New[User](ctx, mirrorcache.Options[User]{
//	    Store: st,
//	    Hooks: hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/mirrorcache"
)

type Hooks struct {
	inner mirrorcache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ mirrorcache.Hooks = (*Hooks)(nil)

func New(inner mirrorcache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) PersistFailed(op mirrorcache.Op, k string, err error) {
	h.try(func() { h.inner.PersistFailed(op, k, err) })
}
func (h *Hooks) PersistDropped(op mirrorcache.Op, k string) {
	h.try(func() { h.inner.PersistDropped(op, k) })
}
func (h *Hooks) PersistSkipped(k string) { h.try(func() { h.inner.PersistSkipped(k) }) }
func (h *Hooks) StalePruned(k string)    { h.try(func() { h.inner.StalePruned(k) }) }
func (h *Hooks) CorruptPruned(k string)  { h.try(func() { h.inner.CorruptPruned(k) }) }
