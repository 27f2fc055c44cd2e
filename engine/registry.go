/*
Package engine injection registry.

KEY CONCEPTS IN THIS FILE (registry.go):
  - Registry: An ordered arena of injections addressed by stable ID

Callers that drive the engine interactively update injections by
replacing whole records keyed by ID. A Snapshot hands the engine an
independent slice, so a calculation in flight never observes a partial
update.

SEE ALSO:
  - types.go: The Injection record the registry stores
*/
package engine

import "sync"

// Registry holds injections in insertion order with replace-by-ID
// update semantics. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	order   []InjectionID
	records map[InjectionID]Injection
}

func NewRegistry() *Registry {
	return &Registry{records: make(map[InjectionID]Injection)}
}

// Put inserts the injection, or replaces the existing record with the
// same ID while keeping its position in the order.
func (r *Registry) Put(in Injection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[in.ID]; !ok {
		r.order = append(r.order, in.ID)
	}
	r.records[in.ID] = in
}

func (r *Registry) Get(id InjectionID) (Injection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	in, ok := r.records[id]
	return in, ok
}

func (r *Registry) Remove(id InjectionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return false
	}
	delete(r.records, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Snapshot returns the injections in insertion order as a fresh slice.
func (r *Registry) Snapshot() []Injection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Injection, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.records[id])
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
