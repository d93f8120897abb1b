package combat

import (
	"sync"
	"time"
)

// EventKind identifies an event type on the wire and in logs.
type EventKind string

const (
	KindCombatStart      EventKind = "combat-start"
	KindCombatHit        EventKind = "combat-hit"
	KindCombatEnd        EventKind = "combat-end"
	KindCombatSpecialHit EventKind = "combat-special-hit"
	KindEntityDeath      EventKind = "entity-death"
	KindCombatDenied     EventKind = "combat-denied"
)

// Event is one of the typed engine notifications below.
type Event interface {
	Kind() EventKind
}

// CombatStart is published when a session begins.
type CombatStart struct {
	Session SessionSnapshot
	At      time.Time
}

// CombatHit is published for every resolved regular attack, hit or miss.
type CombatHit struct {
	Session         SessionSnapshot
	Hit             HitResult
	TargetHitpoints int
}

// CombatEnd is published when a session is removed.
type CombatEnd struct {
	Session SessionSnapshot
	Reason  EndReason
	At      time.Time
}

// CombatSpecialHit is published for every special attack performed.
type CombatSpecialHit struct {
	Hit             HitResult
	TargetHitpoints int
	// EnergyLeft is the attacker's special energy after the cost was paid.
	EnergyLeft int
}

// DeathCause distinguishes a kill from a removal.
type DeathCause string

const (
	CauseKilled    DeathCause = "killed"
	CauseDespawned DeathCause = "despawned"
)

// EntityDeath is published once per death or despawn, before the
// CombatEnd events of the sessions it terminates.
type EntityDeath struct {
	EntityID string
	// KillerID is empty when the cause is not a kill or the killer is unknown.
	KillerID string
	Cause    DeathCause
	At       time.Time
}

// CombatDenied is published when an engagement request is refused.
type CombatDenied struct {
	AttackerID string
	TargetID   string
	Reason     DenyReason
	At         time.Time
}

func (CombatStart) Kind() EventKind      { return KindCombatStart }
func (CombatHit) Kind() EventKind        { return KindCombatHit }
func (CombatEnd) Kind() EventKind        { return KindCombatEnd }
func (CombatSpecialHit) Kind() EventKind { return KindCombatSpecialHit }
func (EntityDeath) Kind() EventKind      { return KindEntityDeath }
func (CombatDenied) Kind() EventKind     { return KindCombatDenied }

// Publisher receives engine events. Publish must not block.
type Publisher interface {
	Publish(ev Event)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ev Event)

// Publish calls f(ev).
func (f PublisherFunc) Publish(ev Event) { f(ev) }

// Recorder is a Publisher that keeps every event in order.
// It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Publish appends ev.
func (r *Recorder) Publish(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Kinds returns the kinds of the recorded events in order.
func (r *Recorder) Kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventKind, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Kind()
	}
	return out
}

// Reset discards all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
