package katachi

import "reflect"

// Resources is a typed store for world-global singletons such as tuning
// tables, a seeded random source or asset handles: data systems share but no
// single entity owns. At most one value per Go type may be present at a time.
// Freed slots are reused so the store stays compact.
type Resources struct {
	items   []any
	types   map[reflect.Type]int
	freeIDs []int
}

// Add stores a resource and returns its slot ID. It panics if the resource is
// nil or a resource of the same type is already present; both are programmer
// errors at startup, not runtime conditions.
func (r *Resources) Add(res any) int {
	if res == nil {
		panic("katachi: cannot add nil resource")
	}
	t := reflect.TypeOf(res)
	if r.types == nil {
		r.types = make(map[reflect.Type]int)
	}
	if _, ok := r.types[t]; ok {
		panic("katachi: resource of type " + t.String() + " already present")
	}
	var id int
	if n := len(r.freeIDs); n > 0 {
		id = r.freeIDs[n-1]
		r.freeIDs = r.freeIDs[:n-1]
		r.items[id] = res
	} else {
		r.items = append(r.items, res)
		id = len(r.items) - 1
	}
	r.types[t] = id
	return id
}

// Remove frees the slot with the given ID, if occupied.
func (r *Resources) Remove(id int) {
	if id < 0 || id >= len(r.items) || r.items[id] == nil {
		return
	}
	delete(r.types, reflect.TypeOf(r.items[id]))
	r.items[id] = nil
	r.freeIDs = append(r.freeIDs, id)
}

// Clear removes every resource and resets the free list.
func (r *Resources) Clear() {
	for i := range r.items {
		r.items[i] = nil
	}
	r.items = r.items[:0]
	clear(r.types)
	r.freeIDs = r.freeIDs[:0]
}

// AddResource stores a pointer-typed resource and returns its slot ID.
func AddResource[T any](r *Resources, res *T) int {
	return r.Add(res)
}

// GetResource retrieves the resource of type *T, or nil and -1 when absent.
func GetResource[T any](r *Resources) (*T, int) {
	if id, ok := r.types[reflect.TypeFor[*T]()]; ok {
		return r.items[id].(*T), id
	}
	return nil, -1
}

// HasResource reports whether a resource of type *T is present, and its slot.
func HasResource[T any](r *Resources) (bool, int) {
	if id, ok := r.types[reflect.TypeFor[*T]()]; ok {
		return true, id
	}
	return false, -1
}
