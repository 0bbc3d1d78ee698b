package mirrorcache

import (
	"container/list"
	"sync"
)

type mirrorItem[V any] struct {
	key   string
	value V
}

// mirror is the authoritative in-memory map. Insertion order is preserved so
// Keys() iterates oldest-first, matching hydration order across restarts.
type mirror[V any] struct {
	mu    sync.RWMutex
	elems map[string]*list.Element
	order *list.List
}

func newMirror[V any]() *mirror[V] {
	return &mirror[V]{
		elems: make(map[string]*list.Element),
		order: list.New(),
	}
}

func (m *mirror[V]) get(key string) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	el, ok := m.elems[key]
	if !ok {
		var zero V
		return zero, false
	}
	return el.Value.(*mirrorItem[V]).value, true
}

// set returns true when the key was not present before.
func (m *mirror[V]) set(key string, value V) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if el, ok := m.elems[key]; ok {
		el.Value.(*mirrorItem[V]).value = value
		return false
	}
	m.elems[key] = m.order.PushBack(&mirrorItem[V]{key: key, value: value})
	return true
}

// delete returns true when the key existed.
func (m *mirror[V]) delete(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	el, ok := m.elems[key]
	if !ok {
		return false
	}
	m.order.Remove(el)
	delete(m.elems, key)
	return true
}

// keys returns a snapshot in insertion order; iteration over the snapshot is
// restartable and unaffected by later mutations.
func (m *mirror[V]) keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, m.order.Len())
	for el := m.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*mirrorItem[V]).key)
	}
	return out
}

func (m *mirror[V]) clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.elems = make(map[string]*list.Element)
	m.order.Init()
}

func (m *mirror[V]) len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.order.Len()
}
