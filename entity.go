package katachi

// Entity represents a unique identifier for an object in the World. It
// combines a 32-bit ID with a 32-bit version to ensure that recycled IDs are
// not confused with new entities.
type Entity struct {
	// ID is the unique, recyclable identifier for the entity. It doubles as
	// the index into every component store.
	ID uint32
	// Version is a generation counter to protect against stale entity
	// references. It is incremented each time an entity ID is reused.
	Version uint32
}

// entityMeta holds the internal state of an entity slot.
type entityMeta struct {
	version uint32 // current version, 0 if the slot is dead
}
