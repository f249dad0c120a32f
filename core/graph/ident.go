// Package graph models a git history as interned commit nodes linked in both directions.
package graph

import "sync"

// DefaultShow is the display length given to a newly registered identifier.
const DefaultShow = 4

// ID is an interned content hash. A single instance exists per value, so a
// display length changed by Recalibrate is observed by every holder.
type ID struct {
	value string
	show  int
}

// String returns the full hash.
func (id *ID) String() string {
	return id.value
}

// Short returns the hash truncated to its display length.
func (id *ID) Short() string {
	if id.show >= len(id.value) {
		return id.value
	}
	return id.value[:id.show]
}

// Show returns the current display length.
func (id *ID) Show() int {
	return min(id.show, len(id.value))
}

// Registry owns the identifiers of one analysis run.
type Registry struct {
	mu    sync.Mutex
	ids   map[string]*ID
	order []*ID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{ids: make(map[string]*ID)}
}

// Register returns the canonical identifier for value, creating it if unseen.
func (r *Registry) Register(value string) *ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.ids[value]; ok {
		return id
	}
	id := &ID{value: value, show: DefaultShow}
	r.ids[value] = id
	r.order = append(r.order, id)
	return id
}

// Get returns the identifier for value if it was registered.
func (r *Registry) Get(value string) (*ID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.ids[value]
	return id, ok
}

// Len returns the number of registered identifiers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// Recalibrate grows display lengths until every identifier has a unique
// display form. Every member of a colliding group grows by one per pass.
// Display lengths never shrink and never exceed the hash length.
func (r *Registry) Recalibrate() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		groups := make(map[string][]*ID, len(r.order))
		for _, id := range r.order {
			short := id.Short()
			groups[short] = append(groups[short], id)
		}

		grew := false
		for _, group := range groups {
			if len(group) < 2 {
				continue
			}
			for _, id := range group {
				if id.show < len(id.value) {
					id.show++
					grew = true
				}
			}
		}
		if !grew {
			return
		}
	}
}
