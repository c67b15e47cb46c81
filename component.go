package katachi

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrTypeConflict is returned when a component name is re-bound to a different
// value type, or a type is re-bound under a different name. A name must always
// resolve to the same backing store.
var ErrTypeConflict = errors.New("katachi: component binding conflict")

// RegisterComponent declares a named component of type `T` on the world and
// returns its ID. Declaring the same (name, type) pair again is idempotent and
// returns the existing ID; the first declaration creates the backing store and
// subsequent ones reuse it. Binding a name to a second type, or a type to a
// second name, fails with ErrTypeConflict at bind time rather than producing
// undefined lookups later.
func RegisterComponent[T any](w *World, name string) (ComponentID, error) {
	typ := reflect.TypeFor[T]()
	byNameID, nameBound := w.components.byName[name]
	byTypeID, typeBound := w.components.byType[typ]
	if nameBound && typeBound && byNameID == byTypeID {
		return byNameID, nil
	}
	if nameBound {
		return 0, fmt.Errorf("%w: %q is already bound to %s",
			ErrTypeConflict, name, w.components.bindings[byNameID].typ)
	}
	if typeBound {
		return 0, fmt.Errorf("%w: %s is already bound as %q",
			ErrTypeConflict, typ, w.components.bindings[byTypeID].name)
	}
	if len(w.components.bindings) >= MaxComponentTypes {
		panic("katachi: too many component types")
	}
	id := ComponentID(len(w.components.bindings))
	w.components.byName[name] = id
	w.components.byType[typ] = id
	w.components.bindings = append(w.components.bindings, binding{
		name:  name,
		typ:   typ,
		store: NewSparseStore[T](w.capacity),
	})
	return id, nil
}

// MustRegisterComponent is RegisterComponent that panics on a binding
// conflict. Intended for the one-time registration pass at startup.
func MustRegisterComponent[T any](w *World, name string) ComponentID {
	id, err := RegisterComponent[T](w, name)
	if err != nil {
		panic(err)
	}
	return id
}

// ComponentIDFor resolves a component type to its ID.
func ComponentIDFor[T any](w *World) (ComponentID, bool) {
	id, ok := w.components.byType[reflect.TypeFor[T]()]
	return id, ok
}

// ComponentIDByName resolves a component name to its ID.
func (w *World) ComponentIDByName(name string) (ComponentID, bool) {
	id, ok := w.components.byName[name]
	return id, ok
}

// ComponentName returns the name a component ID was registered under.
func (w *World) ComponentName(id ComponentID) string {
	if int(id) >= len(w.components.bindings) {
		return ""
	}
	return w.components.bindings[id].name
}

// GetStore returns the shared SparseStore backing component type `T`. All
// entities of any kind read and write the same store. The second return is
// false if the type was never registered.
//
// Store indices are entity IDs; prefer GetComponent/SetComponent, which also
// validate the handle's version.
func GetStore[T any](w *World) (*SparseStore[T], bool) {
	id, ok := w.components.byType[reflect.TypeFor[T]()]
	if !ok {
		return nil, false
	}
	return w.components.bindings[id].store.(*SparseStore[T]), true
}

// GetComponent retrieves a pointer to the component of type `T` for the given
// entity. The second return is false if the entity is invalid, the type is
// not registered, or the entity does not currently have the component. An
// absent component is reported, never defaulted.
func GetComponent[T any](w *World, e Entity) (*T, bool) {
	if !w.IsValid(e) {
		return nil, false
	}
	s, ok := GetStore[T](w)
	if !ok || !s.Contains(int(e.ID)) {
		return nil, false
	}
	return s.ref(int(e.ID)), true
}

// SetComponent adds a component of type `T` with the given value to an entity,
// or overwrites it if the entity already has one. It returns ErrInvalidEntity
// for a stale or destroyed handle and ErrNotPresent if the type was never
// registered.
func SetComponent[T any](w *World, e Entity, value T) error {
	if !w.IsValid(e) {
		return ErrInvalidEntity
	}
	s, ok := GetStore[T](w)
	if !ok {
		return fmt.Errorf("%w: component type %s not registered",
			ErrNotPresent, reflect.TypeFor[T]())
	}
	return s.Set(int(e.ID), value)
}

// RemoveComponent removes the component of type `T` from the entity. Removing
// a component the entity does not have returns ErrNotPresent; the caller
// decides whether that is routine or a bug.
func RemoveComponent[T any](w *World, e Entity) error {
	if !w.IsValid(e) {
		return ErrInvalidEntity
	}
	s, ok := GetStore[T](w)
	if !ok {
		return fmt.Errorf("%w: component type %s not registered",
			ErrNotPresent, reflect.TypeFor[T]())
	}
	return s.Remove(int(e.ID))
}

// HasComponent reports whether the entity currently has a component of type `T`.
func HasComponent[T any](w *World, e Entity) bool {
	if !w.IsValid(e) {
		return false
	}
	s, ok := GetStore[T](w)
	return ok && s.Contains(int(e.ID))
}
