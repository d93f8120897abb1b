// Package entity defines the component records the combat engine borrows
// from the external entity directory, the directory contract itself, and an
// in-memory directory for tests and the development harness.
package entity

// Kind names a component type an entity may expose.
type Kind int

const (
	KindStats Kind = iota
	KindCombat
	KindInventory
	KindMovement
)

// String returns the component name.
func (k Kind) String() string {
	switch k {
	case KindStats:
		return "stats"
	case KindCombat:
		return "combat"
	case KindInventory:
		return "inventory"
	case KindMovement:
		return "movement"
	default:
		return "unknown"
	}
}

// Entity is a handle to something in the world.
type Entity interface {
	ID() string
	// Component returns the record for kind, or (nil, false) when absent.
	Component(kind Kind) (any, bool)
}

// Directory resolves entity ids to handles.
// Implementations must be safe for concurrent use.
type Directory interface {
	Lookup(id string) (Entity, bool)
	// Range calls fn for every entity until fn returns false.
	Range(fn func(Entity) bool)
}

// StatsOf returns e's stats component.
func StatsOf(e Entity) (*StatsProfile, bool) {
	return componentOf[*StatsProfile](e, KindStats)
}

// CombatOf returns e's combat component.
func CombatOf(e Entity) (*CombatProfile, bool) {
	return componentOf[*CombatProfile](e, KindCombat)
}

// InventoryOf returns e's inventory component.
func InventoryOf(e Entity) (*Inventory, bool) {
	return componentOf[*Inventory](e, KindInventory)
}

// MovementOf returns e's movement component.
func MovementOf(e Entity) (*Movement, bool) {
	return componentOf[*Movement](e, KindMovement)
}

func componentOf[T comparable](e Entity, kind Kind) (T, bool) {
	var zero T
	if e == nil {
		return zero, false
	}
	c, ok := e.Component(kind)
	if !ok {
		return zero, false
	}
	v, ok := c.(T)
	if !ok || v == zero {
		return zero, false
	}
	return v, true
}
