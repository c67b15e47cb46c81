// Package katachi provides an entity/component storage and query engine with
// a table-driven state machine as its control-flow companion. Entities are
// integer handles, components live in per-type sparse stores, systems iterate
// the intersection of several stores, and state machines report transitions
// through subscriber channels so collaborators (audio, UI, screen selection)
// can react without the core knowing about them.
package katachi

import (
	"errors"
	"reflect"
)

// MaxComponentTypes defines the maximum number of unique component types that
// can be registered in a World. This value is fixed at 256.
const MaxComponentTypes = 256

// ComponentID is the compact identifier a registered component type resolves
// to. IDs are assigned in registration order.
type ComponentID uint8

// ErrInvalidEntity is returned when operating on a destroyed or never-allocated
// entity handle. Rejecting the operation keeps a stale handle from silently
// creating phantom component data.
var ErrInvalidEntity = errors.New("katachi: invalid entity")

// componentStore is the type-erased view of a SparseStore the World uses to
// purge destroyed entities and to size query intersections.
type componentStore interface {
	Contains(i int) bool
	Len() int
	Clear()
	discard(i int)
	eachIndex(yield func(int) bool)
}

// binding associates a registered component type with its store.
type binding struct {
	name  string
	typ   reflect.Type
	store componentStore
}

// componentRegistry maps component names and types to their shared stores.
// Two bindings with the same name always resolve to the same backing store.
type componentRegistry struct {
	byName   map[string]ComponentID
	byType   map[reflect.Type]ComponentID
	bindings []binding
}

// entityRegistry allocates and recycles entity handles.
type entityRegistry struct {
	freeIDs []uint32     // stack of recycled entity IDs
	metas   []entityMeta // slot state, indexed by entity ID
	nextVer uint32       // version for the next created entity
}

// EntityCreated is published on the world's event bus after CreateEntity.
type EntityCreated struct {
	Entity Entity
}

// EntityRemoved is published on the world's event bus after RemoveEntity has
// purged the entity from every component store.
type EntityRemoved struct {
	Entity Entity
}

// World owns the entity registry, the component stores, the registered
// systems, an event bus and a resource store. It has explicit init and
// teardown so independent instances can coexist; nothing in the package is
// process-global.
type World struct {
	entities   entityRegistry
	components componentRegistry
	systems    []systemEntry
	queries    queryCache
	events     *EventBus
	resources  *Resources
	capacity   int
}

// NewWorld creates and initializes a new World. The initial capacity sizes the
// entity slot table and every component store created by RegisterComponent;
// choosing a suitable capacity prevents re-allocations during runtime.
func NewWorld(initialCapacity int) *World {
	if initialCapacity <= 0 {
		initialCapacity = DefaultStoreCapacity
	}
	w := &World{
		components: componentRegistry{
			byName: make(map[string]ComponentID, 16),
			byType: make(map[reflect.Type]ComponentID, 16),
		},
		entities: entityRegistry{
			freeIDs: make([]uint32, initialCapacity),
			metas:   make([]entityMeta, initialCapacity),
			nextVer: 1,
		},
		events:    &EventBus{},
		resources: &Resources{},
		capacity:  initialCapacity,
	}
	for i := range w.entities.freeIDs {
		w.entities.freeIDs[i] = uint32(initialCapacity - 1 - i)
	}
	w.queries.init()
	return w
}

// CreateEntity allocates a new entity with no components. Recycled IDs are
// reused with a bumped version so stale handles to the previous owner fail
// IsValid checks.
func (w *World) CreateEntity() Entity {
	if len(w.entities.freeIDs) == 0 {
		w.expand(1)
	}
	last := len(w.entities.freeIDs) - 1
	id := w.entities.freeIDs[last]
	w.entities.freeIDs = w.entities.freeIDs[:last]
	meta := &w.entities.metas[id]
	meta.version = w.entities.nextVer
	w.entities.nextVer++
	e := Entity{ID: id, Version: meta.version}
	Publish(w.events, EntityCreated{Entity: e})
	return e
}

// RemoveEntity destroys an entity: its handle is purged from every component
// store, invalidated, and pushed onto the free list for reuse. Removing an
// invalid entity does nothing.
func (w *World) RemoveEntity(e Entity) {
	if !w.IsValid(e) {
		return
	}
	i := int(e.ID)
	for _, b := range w.components.bindings {
		b.store.discard(i)
	}
	w.entities.metas[e.ID].version = 0
	w.entities.freeIDs = append(w.entities.freeIDs, e.ID)
	Publish(w.events, EntityRemoved{Entity: e})
}

// IsValid checks if the entity is currently alive in the world. An entity is
// valid if its ID is within bounds and its version matches the world's current
// version for that ID. This prevents stale entity references from accessing
// incorrect data after an entity has been deleted and its ID recycled.
func (w *World) IsValid(e Entity) bool {
	if int(e.ID) >= len(w.entities.metas) {
		return false
	}
	meta := w.entities.metas[e.ID]
	return meta.version != 0 && meta.version == e.Version
}

// ClearEntities removes all entities from the world, recycling their IDs and
// clearing every component store. This is an efficient way to reset the world
// state without deallocating memory. Component bindings, systems, subscribers
// and resources survive.
func (w *World) ClearEntities() {
	for i := range w.entities.metas {
		w.entities.metas[i].version = 0
	}
	w.entities.freeIDs = w.entities.freeIDs[:0]
	capacity := len(w.entities.metas)
	for i := range capacity {
		w.entities.freeIDs = append(w.entities.freeIDs, uint32(capacity-1-i))
	}
	for _, b := range w.components.bindings {
		b.store.Clear()
	}
}

// EntityCount returns the number of live entities.
func (w *World) EntityCount() int {
	return len(w.entities.metas) - len(w.entities.freeIDs)
}

// Events returns the world's event bus. Collaborators subscribe here for
// lifecycle and system notifications without the core depending on them.
func (w *World) Events() *EventBus {
	return w.events
}

// Resources returns the world's resource store, a typed key-value store for
// frame-global data shared between systems, such as tuning tables or a seeded
// random source.
func (w *World) Resources() *Resources {
	return w.resources
}

// expand grows the entity slot table when the free list runs dry.
func (w *World) expand(additional int) {
	oldCap := len(w.entities.metas)
	newCap := max(oldCap*2, oldCap+additional)
	if newCap == 0 {
		newCap = 1
	}
	delta := newCap - oldCap
	w.entities.metas = append(w.entities.metas, make([]entityMeta, delta)...)
	for i := range delta {
		w.entities.freeIDs = append(w.entities.freeIDs, uint32(newCap-1-i))
	}
}
