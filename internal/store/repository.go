// Package store implements the keyed repository abstraction of spec.md §3,
// generalizing zexfrost/repository.py's RepositoryProtocol[_VALUET] into a
// Go generic interface. The node's DKG, key and nonce repositories are all
// instances of this one generic store (spec.md §9: "no hidden singletons" —
// each repository is an explicit struct, constructed and passed in, never a
// package-level global).
package store

import (
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Repository is a keyed store of values of type V. Pop is the
// security-critical operation: it must atomically retrieve and delete in a
// single critical section, never get-then-delete as two steps, because the
// nonce store uses Pop to enforce one-time nonce use (spec.md §9 design
// note, fixing the original's inconsistent get-then-delete pattern in
// zexfrost/node/sign.py).
type Repository[V any] interface {
	Get(key string) (V, bool)
	Set(key string, value V)
	Pop(key string) (V, bool)
	Delete(key string)
	Keys() []string
}

// memRepository is an in-memory Repository backed by a map and a mutex. It
// is the only backend frostd ships; spec.md §5 treats persistence beyond
// process lifetime as out of scope.
type memRepository[V any] struct {
	mu   sync.Mutex
	data map[string]V
}

// NewMemRepository constructs an empty in-memory repository.
func NewMemRepository[V any]() Repository[V] {
	return &memRepository[V]{data: make(map[string]V)}
}

func (r *memRepository[V]) Get(key string) (V, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.data[key]
	return v, ok
}

func (r *memRepository[V]) Set(key string, value V) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[key] = value
}

// Pop retrieves and deletes key in one locked critical section. Two callers
// racing on the same key will never both observe a hit: exactly one Pop
// succeeds, which is the invariant the nonce store depends on to reject
// nonce reuse (spec.md §4.6, §9).
func (r *memRepository[V]) Pop(key string) (V, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.data[key]
	if ok {
		delete(r.data, key)
	}
	return v, ok
}

func (r *memRepository[V]) Delete(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, key)
}

// Keys returns every key in sorted order, so callers that serialize a
// snapshot of the store (e.g. stable-key-order JSON, spec.md §6) get
// deterministic output across calls.
func (r *memRepository[V]) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := maps.Keys(r.data)
	slices.Sort(keys)
	return keys
}
