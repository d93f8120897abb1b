package combat

import (
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/skirmish/internal/game/inventory"
)

// Outcome classifies a resolved attack.
type Outcome int

const (
	OutcomeNormal Outcome = iota
	OutcomeMiss
	OutcomeCritical
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeNormal:
		return "normal"
	case OutcomeMiss:
		return "miss"
	case OutcomeCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// HitResult is the record of one resolved attack.
type HitResult struct {
	AttackerID string
	TargetID   string
	// Damage is the damage removed from the target; 0 on a miss.
	Damage     int
	MaxHit     int
	Outcome    Outcome
	AttackType inventory.AttackType
	Special    bool
	Timestamp  time.Time
}

// EndReason names why a session ended.
type EndReason string

const (
	EndStopped       EndReason = "stopped"
	EndRetarget      EndReason = "retarget"
	EndTimeout       EndReason = "timeout"
	EndDeath         EndReason = "death"
	EndDespawn       EndReason = "despawn"
	EndEntityMissing EndReason = "entity_missing"
)

// Session is one attacker's ongoing engagement with a single target.
// Sessions are owned by the Manager and never escape it; callers see
// SessionSnapshot copies.
type Session struct {
	ID           uuid.UUID
	AttackerID   string
	TargetID     string
	StartedAt    time.Time
	LastAttackAt time.Time
	LastActivity time.Time

	// history is a ring buffer of the most recent hits.
	history []HitResult
	head    int
	count   int
}

func newSession(attackerID, targetID string, now time.Time, historySize int) *Session {
	return &Session{
		ID:           uuid.New(),
		AttackerID:   attackerID,
		TargetID:     targetID,
		StartedAt:    now,
		LastActivity: now,
		history:      make([]HitResult, max(historySize, 1)),
	}
}

// record appends hr to the log, overwriting the oldest entry when full.
func (s *Session) record(hr HitResult) {
	s.history[(s.head+s.count)%len(s.history)] = hr
	if s.count < len(s.history) {
		s.count++
		return
	}
	s.head = (s.head + 1) % len(s.history)
}

// History returns the logged hits, oldest first.
func (s *Session) History() []HitResult {
	out := make([]HitResult, s.count)
	for i := range s.count {
		out[i] = s.history[(s.head+i)%len(s.history)]
	}
	return out
}

// live reports whether the session has had activity within timeout of now.
func (s *Session) live(now time.Time, timeout time.Duration) bool {
	return now.Sub(s.LastActivity) <= timeout
}

// SessionSnapshot is an immutable copy of a Session.
type SessionSnapshot struct {
	ID           uuid.UUID
	AttackerID   string
	TargetID     string
	StartedAt    time.Time
	LastAttackAt time.Time
	LastActivity time.Time
	History      []HitResult
}

// Snapshot returns a deep copy of s.
func (s *Session) Snapshot() SessionSnapshot {
	return SessionSnapshot{
		ID:           s.ID,
		AttackerID:   s.AttackerID,
		TargetID:     s.TargetID,
		StartedAt:    s.StartedAt,
		LastAttackAt: s.LastAttackAt,
		LastActivity: s.LastActivity,
		History:      s.History(),
	}
}
