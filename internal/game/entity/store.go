package entity

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cory-johannsen/skirmish/internal/game/zone"
)

// Record is a plain Entity whose components are held in fields.
// A nil field means the component is absent.
type Record struct {
	EntityID  string
	Stats     *StatsProfile
	Combat    *CombatProfile
	Inventory *Inventory
	Movement  *Movement

	// Home is the seeded position the entity respawns at.
	Home zone.Position
	// RespawnDelay is how long after being killed the entity returns.
	// Zero means it stays dead.
	RespawnDelay time.Duration
}

// ID returns the entity id.
func (r *Record) ID() string { return r.EntityID }

// Component returns the record for kind.
func (r *Record) Component(kind Kind) (any, bool) {
	switch kind {
	case KindStats:
		return r.Stats, r.Stats != nil
	case KindCombat:
		return r.Combat, r.Combat != nil
	case KindInventory:
		return r.Inventory, r.Inventory != nil
	case KindMovement:
		return r.Movement, r.Movement != nil
	default:
		return nil, false
	}
}

// Store is an in-memory Directory.
// All methods are safe for concurrent use; the records themselves are not
// locked and belong to whichever goroutine drives the combat engine.
type Store struct {
	mu       sync.RWMutex
	entities map[string]*Record
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{entities: make(map[string]*Record)}
}

// Add registers r.
//
// Precondition: r must be non-nil with a non-empty EntityID.
// Postcondition: Returns an error if the id is already registered.
func (s *Store) Add(r *Record) error {
	if r == nil || r.EntityID == "" {
		return fmt.Errorf("entity record must have an id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entities[r.EntityID]; exists {
		return fmt.Errorf("entity %q already registered", r.EntityID)
	}
	s.entities[r.EntityID] = r
	return nil
}

// Remove deletes the entity with id.
//
// Postcondition: Returns an error if the id is not registered.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entities[id]; !exists {
		return fmt.Errorf("entity %q not found", id)
	}
	delete(s.entities, id)
	return nil
}

// Get returns the concrete record for id.
func (s *Store) Get(id string) (*Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.entities[id]
	return r, ok
}

// Lookup implements Directory.
func (s *Store) Lookup(id string) (Entity, bool) {
	r, ok := s.Get(id)
	if !ok {
		return nil, false
	}
	return r, true
}

// Range implements Directory. Entities are visited in id order over a
// snapshot, so fn may add or remove entities.
func (s *Store) Range(fn func(Entity) bool) {
	s.mu.RLock()
	snapshot := make([]*Record, 0, len(s.entities))
	for _, r := range s.entities {
		snapshot = append(snapshot, r)
	}
	s.mu.RUnlock()
	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].EntityID < snapshot[j].EntityID })
	for _, r := range snapshot {
		if !fn(r) {
			return
		}
	}
}

// Len returns the number of registered entities.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities)
}
