package katachi_test

import (
	"errors"
	"testing"

	"github.com/edwinsyarief/katachi"
)

// --- Test Components ---
type Position struct{ X, Y float64 }
type Velocity struct{ VX, VY float64 }
type Health struct{ Current, Max int }
type Tag struct{}
type Unregistered struct{}

// --- Test Suite Setup ---
func setupWorld(t *testing.T) *katachi.World {
	t.Helper()
	w := katachi.NewWorld(64)
	katachi.MustRegisterComponent[Position](w, "Position")
	katachi.MustRegisterComponent[Velocity](w, "Velocity")
	katachi.MustRegisterComponent[Health](w, "Health")
	katachi.MustRegisterComponent[Tag](w, "Tag")
	return w
}

func TestCreateEntity(t *testing.T) {
	w := setupWorld(t)
	e1 := w.CreateEntity()
	e2 := w.CreateEntity()

	if e1.ID != 0 {
		t.Errorf("Expected first entity ID to be 0, got %d", e1.ID)
	}
	if e1.Version != 1 {
		t.Errorf("Expected first entity version to be 1, got %d", e1.Version)
	}
	if e2.ID != 1 {
		t.Errorf("Expected second entity ID to be 1, got %d", e2.ID)
	}
	if !w.IsValid(e1) || !w.IsValid(e2) {
		t.Error("freshly created entities should be valid")
	}
}

func TestNoDuplicateLiveHandles(t *testing.T) {
	w := setupWorld(t)
	live := map[uint32]bool{}
	entities := []katachi.Entity{}
	for i := range 200 {
		e := w.CreateEntity()
		if live[e.ID] {
			t.Fatalf("handle %d issued twice while live", e.ID)
		}
		live[e.ID] = true
		entities = append(entities, e)
		// Churn: destroy every third entity as we go.
		if i%3 == 0 {
			victim := entities[len(entities)/2]
			if w.IsValid(victim) {
				w.RemoveEntity(victim)
				delete(live, victim.ID)
			}
		}
	}
}

func TestRemoveEntityPurgesComponents(t *testing.T) {
	w := setupWorld(t)
	e := w.CreateEntity()
	if err := katachi.SetComponent(w, e, Position{X: 1}); err != nil {
		t.Fatalf("SetComponent failed: %v", err)
	}
	if err := katachi.SetComponent(w, e, Velocity{VX: 2}); err != nil {
		t.Fatalf("SetComponent failed: %v", err)
	}

	w.RemoveEntity(e)

	if w.IsValid(e) {
		t.Error("entity still valid after RemoveEntity")
	}
	if katachi.HasComponent[Position](w, e) || katachi.HasComponent[Velocity](w, e) {
		t.Error("component data survived entity removal")
	}
	// The raw stores report the handle absent too.
	posStore, _ := katachi.GetStore[Position](w)
	velStore, _ := katachi.GetStore[Velocity](w)
	if posStore.Contains(int(e.ID)) || velStore.Contains(int(e.ID)) {
		t.Error("stores still contain destroyed handle")
	}
	if got := w.Query(mustID[Position](t, w)); len(got) != 0 {
		t.Errorf("query still returns destroyed entity: %v", got)
	}
}

func TestHandleReuseBumpsVersion(t *testing.T) {
	w := setupWorld(t)
	e1 := w.CreateEntity()
	_ = katachi.SetComponent(w, e1, Position{X: 5})
	w.RemoveEntity(e1)

	e2 := w.CreateEntity()
	if e2.ID != e1.ID {
		t.Fatalf("expected handle reuse, got ID %d (was %d)", e2.ID, e1.ID)
	}
	if e2.Version == e1.Version {
		t.Error("recycled handle kept its old version")
	}

	// The stale handle must not alias the new entity.
	if w.IsValid(e1) {
		t.Error("stale handle still valid after reuse")
	}
	if _, ok := katachi.GetComponent[Position](w, e1); ok {
		t.Error("stale handle read a component")
	}
	if err := katachi.SetComponent(w, e1, Position{X: 9}); !errors.Is(err, katachi.ErrInvalidEntity) {
		t.Errorf("expected ErrInvalidEntity for stale write, got %v", err)
	}
	// And the rejected write created nothing for the new owner.
	if _, ok := katachi.GetComponent[Position](w, e2); ok {
		t.Error("stale write leaked data onto the recycled handle")
	}
}

func TestGetComponentAbsent(t *testing.T) {
	w := setupWorld(t)
	e := w.CreateEntity()
	// Never set: typed absent result, not a zero value.
	if p, ok := katachi.GetComponent[Position](w, e); ok || p != nil {
		t.Errorf("expected absent component, got %+v (ok=%v)", p, ok)
	}
	if katachi.HasComponent[Position](w, e) {
		t.Error("HasComponent true for unset component")
	}
}

func TestSetGetComponent(t *testing.T) {
	w := setupWorld(t)
	e := w.CreateEntity()

	if err := katachi.SetComponent(w, e, Position{X: 100, Y: 200}); err != nil {
		t.Fatalf("SetComponent failed: %v", err)
	}
	p, ok := katachi.GetComponent[Position](w, e)
	if !ok {
		t.Fatal("GetComponent failed after SetComponent")
	}
	if p.X != 100 || p.Y != 200 {
		t.Errorf("component data incorrect, got %+v", p)
	}

	// Mutation through the pointer sticks.
	p.X = 555
	p2, _ := katachi.GetComponent[Position](w, e)
	if p2.X != 555 {
		t.Errorf("expected in-place mutation to stick, got %+v", p2)
	}

	// Overwrite leaves other components alone.
	_ = katachi.SetComponent(w, e, Velocity{VX: 1, VY: 2})
	_ = katachi.SetComponent(w, e, Position{X: 7, Y: 8})
	v, ok := katachi.GetComponent[Velocity](w, e)
	if !ok || v.VX != 1 || v.VY != 2 {
		t.Errorf("velocity corrupted by position overwrite: %+v", v)
	}
}

func TestSetComponentUnregistered(t *testing.T) {
	w := setupWorld(t)
	e := w.CreateEntity()
	if err := katachi.SetComponent(w, e, Unregistered{}); !errors.Is(err, katachi.ErrNotPresent) {
		t.Errorf("expected ErrNotPresent for unregistered type, got %v", err)
	}
}

func TestRemoveComponent(t *testing.T) {
	w := setupWorld(t)
	e := w.CreateEntity()
	_ = katachi.SetComponent(w, e, Position{})
	_ = katachi.SetComponent(w, e, Velocity{})

	if err := katachi.RemoveComponent[Position](w, e); err != nil {
		t.Fatalf("RemoveComponent failed: %v", err)
	}
	if katachi.HasComponent[Position](w, e) {
		t.Error("component not actually removed")
	}
	if !katachi.HasComponent[Velocity](w, e) {
		t.Error("unrelated component removed")
	}
	// Removing again distinguishes "explicitly cleared" as not present.
	if err := katachi.RemoveComponent[Position](w, e); !errors.Is(err, katachi.ErrNotPresent) {
		t.Errorf("expected ErrNotPresent on double remove, got %v", err)
	}
}

func TestRegisterComponentIdempotent(t *testing.T) {
	w := katachi.NewWorld(8)
	id1, err := katachi.RegisterComponent[Position](w, "Position")
	if err != nil {
		t.Fatalf("RegisterComponent failed: %v", err)
	}
	id2, err := katachi.RegisterComponent[Position](w, "Position")
	if err != nil {
		t.Fatalf("re-registration failed: %v", err)
	}
	if id1 != id2 {
		t.Errorf("same binding resolved to different IDs: %d vs %d", id1, id2)
	}
}

func TestRegisterComponentConflicts(t *testing.T) {
	w := katachi.NewWorld(8)
	if _, err := katachi.RegisterComponent[Position](w, "Position"); err != nil {
		t.Fatalf("RegisterComponent failed: %v", err)
	}
	// Same name, different type.
	if _, err := katachi.RegisterComponent[Velocity](w, "Position"); !errors.Is(err, katachi.ErrTypeConflict) {
		t.Errorf("expected ErrTypeConflict rebinding name, got %v", err)
	}
	// Same type, different name.
	if _, err := katachi.RegisterComponent[Position](w, "Pos2"); !errors.Is(err, katachi.ErrTypeConflict) {
		t.Errorf("expected ErrTypeConflict rebinding type, got %v", err)
	}
}

func TestClearEntities(t *testing.T) {
	w := setupWorld(t)
	for range 10 {
		e := w.CreateEntity()
		_ = katachi.SetComponent(w, e, Position{X: 1})
	}
	if w.EntityCount() != 10 {
		t.Fatalf("expected 10 entities, got %d", w.EntityCount())
	}
	w.ClearEntities()
	if w.EntityCount() != 0 {
		t.Errorf("expected 0 entities after clear, got %d", w.EntityCount())
	}
	if got := w.QueryNames("Position"); len(got) != 0 {
		t.Errorf("query non-empty after clear: %v", got)
	}
	// World stays usable; IDs get reissued from scratch.
	e := w.CreateEntity()
	if !w.IsValid(e) {
		t.Error("entity created after clear is invalid")
	}
}

func TestLifecycleEvents(t *testing.T) {
	w := setupWorld(t)
	var created, removed []katachi.Entity
	katachi.Subscribe(w.Events(), func(ev katachi.EntityCreated) {
		created = append(created, ev.Entity)
	})
	katachi.Subscribe(w.Events(), func(ev katachi.EntityRemoved) {
		removed = append(removed, ev.Entity)
	})
	e := w.CreateEntity()
	w.RemoveEntity(e)
	if len(created) != 1 || created[0] != e {
		t.Errorf("expected one EntityCreated for %v, got %v", e, created)
	}
	if len(removed) != 1 || removed[0] != e {
		t.Errorf("expected one EntityRemoved for %v, got %v", e, removed)
	}
}

func mustID[T any](t *testing.T, w *katachi.World) katachi.ComponentID {
	t.Helper()
	id, ok := katachi.ComponentIDFor[T](w)
	if !ok {
		t.Fatal("component not registered")
	}
	return id
}
