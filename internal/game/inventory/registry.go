package inventory

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds all loaded weapon and armor definitions indexed by ID.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	weapons map[string]*WeaponDef
	armor   map[string]*ArmorDef
}

// NewRegistry returns an empty Registry.
//
// Postcondition: all internal maps are initialised.
func NewRegistry() *Registry {
	return &Registry{weapons: make(map[string]*WeaponDef), armor: make(map[string]*ArmorDef)}
}

// RegisterWeapon adds w to the registry.
//
// Precondition:  w must not be nil.
// Postcondition: Weapon(w.ID) returns w; returns error if w.ID already registered.
func (r *Registry) RegisterWeapon(w *WeaponDef) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.weapons[w.ID]; exists {
		return fmt.Errorf("inventory: Registry.RegisterWeapon: weapon ID %q already registered", w.ID)
	}
	r.weapons[w.ID] = w
	return nil
}

// Weapon returns the WeaponDef for the given id, or nil if not found.
func (r *Registry) Weapon(id string) *WeaponDef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.weapons[id]
}

// AllWeapons returns all registered WeaponDefs sorted by ID.
//
// Postcondition: len(result) == number of registered weapons.
func (r *Registry) AllWeapons() []*WeaponDef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*WeaponDef, 0, len(r.weapons))
	for _, w := range r.weapons {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// RegisterArmor adds a to the registry.
//
// Precondition:  a must not be nil.
// Postcondition: Armor(a.ID) returns a; returns error if a.ID already registered.
func (r *Registry) RegisterArmor(a *ArmorDef) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.armor[a.ID]; exists {
		return fmt.Errorf("inventory: Registry.RegisterArmor: armor ID %q already registered", a.ID)
	}
	r.armor[a.ID] = a
	return nil
}

// Armor returns the ArmorDef for the given id, or nil if not found.
func (r *Registry) Armor(id string) *ArmorDef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.armor[id]
}

// ArmorCount returns the number of registered armor pieces.
func (r *Registry) ArmorCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.armor)
}
