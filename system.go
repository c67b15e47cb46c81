package katachi

// Frame carries the per-tick context passed to every system: the elapsed time
// since the previous tick plus whatever keyword state the caller threads
// through (a paused flag, input snapshots, and so on).
type Frame struct {
	// Delta is the elapsed time for this tick, in seconds.
	Delta float64
	// Paused signals that time-driven systems should hold still this tick.
	Paused bool
	// Values holds arbitrary caller-supplied frame state.
	Values map[string]any
}

// System is a unit of per-frame logic. It typically iterates one of the
// Each helpers over the component tuple it requires.
type System func(*World, Frame)

type systemEntry struct {
	name string
	fn   System
}

// AddSystem registers a system under a name. Systems run once per Update call
// in registration order; that order is part of the contract, because later
// systems may observe component values written by earlier systems in the same
// frame (physics before collision detection). Registering a name twice
// replaces the earlier system in place, keeping its slot in the order.
func (w *World) AddSystem(name string, fn System) {
	for i := range w.systems {
		if w.systems[i].name == name {
			w.systems[i].fn = fn
			return
		}
	}
	w.systems = append(w.systems, systemEntry{name: name, fn: fn})
}

// RemoveSystem unregisters a system by name. The remaining systems keep their
// relative order.
func (w *World) RemoveSystem(name string) {
	for i := range w.systems {
		if w.systems[i].name == name {
			w.systems = append(w.systems[:i], w.systems[i+1:]...)
			return
		}
	}
}

// SystemNames returns the registered system names in execution order.
func (w *World) SystemNames() []string {
	names := make([]string, len(w.systems))
	for i, s := range w.systems {
		names[i] = s.name
	}
	return names
}

// Update runs every registered system once, in registration order, passing the
// frame context through. All mutation is synchronous within this call; there
// is no parallel execution.
func (w *World) Update(frame Frame) {
	for _, s := range w.systems {
		s.fn(w, frame)
	}
}

// EachEntity calls fn for every entity that has a component of type `A`, in
// ascending handle order. An unregistered type runs fn zero times.
func EachEntity[A any](w *World, fn func(e Entity, a *A)) {
	id, ok := ComponentIDFor[A](w)
	if !ok {
		return
	}
	s := w.components.bindings[id].store.(*SparseStore[A])
	for _, e := range w.Query(id) {
		fn(e, s.ref(int(e.ID)))
	}
}

// Each2 calls fn for every entity that has components of both type `A` and
// type `B`, in ascending handle order.
func Each2[A, B any](w *World, fn func(e Entity, a *A, b *B)) {
	idA, okA := ComponentIDFor[A](w)
	idB, okB := ComponentIDFor[B](w)
	if !okA || !okB {
		return
	}
	sa := w.components.bindings[idA].store.(*SparseStore[A])
	sb := w.components.bindings[idB].store.(*SparseStore[B])
	for _, e := range w.Query(idA, idB) {
		fn(e, sa.ref(int(e.ID)), sb.ref(int(e.ID)))
	}
}

// Each3 calls fn for every entity that has components of types `A`, `B` and
// `C`, in ascending handle order.
func Each3[A, B, C any](w *World, fn func(e Entity, a *A, b *B, c *C)) {
	idA, okA := ComponentIDFor[A](w)
	idB, okB := ComponentIDFor[B](w)
	idC, okC := ComponentIDFor[C](w)
	if !okA || !okB || !okC {
		return
	}
	sa := w.components.bindings[idA].store.(*SparseStore[A])
	sb := w.components.bindings[idB].store.(*SparseStore[B])
	sc := w.components.bindings[idC].store.(*SparseStore[C])
	for _, e := range w.Query(idA, idB, idC) {
		fn(e, sa.ref(int(e.ID)), sb.ref(int(e.ID)), sc.ref(int(e.ID)))
	}
}

// System1 wraps a typed per-entity update into a System bound to component
// type `A`.
func System1[A any](fn func(f Frame, e Entity, a *A)) System {
	return func(w *World, f Frame) {
		EachEntity(w, func(e Entity, a *A) {
			fn(f, e, a)
		})
	}
}

// System2 wraps a typed per-entity update into a System bound to the
// component tuple (`A`, `B`).
func System2[A, B any](fn func(f Frame, e Entity, a *A, b *B)) System {
	return func(w *World, f Frame) {
		Each2(w, func(e Entity, a *A, b *B) {
			fn(f, e, a, b)
		})
	}
}

// System3 wraps a typed per-entity update into a System bound to the
// component tuple (`A`, `B`, `C`).
func System3[A, B, C any](fn func(f Frame, e Entity, a *A, b *B, c *C)) System {
	return func(w *World, f Frame) {
		Each3(w, func(e Entity, a *A, b *B, c *C) {
			fn(f, e, a, b, c)
		})
	}
}
