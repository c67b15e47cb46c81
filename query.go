package katachi

import "sort"

// queryCache memoizes the resolution of a component-ID tuple to its store
// references. The store list for a tuple never changes once the components
// are registered, so it is safe to cache; the membership of each store
// changes every tick and is deliberately never cached. Caching result sets
// across ticks is the bug this split exists to rule out.
type queryCache struct {
	stores map[string][]componentStore
}

func (qc *queryCache) init() {
	qc.stores = make(map[string][]componentStore)
}

// resolve returns the stores for the given ID tuple, or false if any ID is
// unbound.
func (qc *queryCache) resolve(w *World, ids []ComponentID) ([]componentStore, bool) {
	key := make([]byte, len(ids))
	for i, id := range ids {
		key[i] = byte(id)
	}
	if stores, ok := qc.stores[string(key)]; ok {
		return stores, true
	}
	stores := make([]componentStore, 0, len(ids))
	for _, id := range ids {
		if int(id) >= len(w.components.bindings) {
			return nil, false
		}
		stores = append(stores, w.components.bindings[id].store)
	}
	qc.stores[string(key)] = stores
	return stores, true
}

// Query returns the entities that currently have a value in every one of the
// given component stores, in ascending handle order. The intersection is
// computed smallest store first to keep intermediate sets small. An empty
// tuple or an unbound ID yields an empty result, not an error.
//
// The result is computed fresh on every call; it is a derived view of the
// stores, never a second source of truth.
func (w *World) Query(ids ...ComponentID) []Entity {
	stores, ok := w.queries.resolve(w, ids)
	if !ok || len(stores) == 0 {
		return nil
	}
	ordered := make([]componentStore, len(stores))
	copy(ordered, stores)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Len() < ordered[j].Len()
	})
	if ordered[0].Len() == 0 {
		return nil
	}
	result := make([]Entity, 0, ordered[0].Len())
	ordered[0].eachIndex(func(i int) bool {
		for _, s := range ordered[1:] {
			if !s.Contains(i) {
				return true
			}
		}
		result = append(result, Entity{ID: uint32(i), Version: w.entities.metas[i].version})
		return true
	})
	return result
}

// QueryNames is Query keyed by registered component names. Names that were
// never bound yield an empty result.
func (w *World) QueryNames(names ...string) []Entity {
	ids := make([]ComponentID, 0, len(names))
	for _, name := range names {
		id, ok := w.components.byName[name]
		if !ok {
			return nil
		}
		ids = append(ids, id)
	}
	return w.Query(ids...)
}
