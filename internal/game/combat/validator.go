package combat

import (
	"time"

	"github.com/cory-johannsen/skirmish/internal/game/entity"
	"github.com/cory-johannsen/skirmish/internal/game/zone"
)

// DenyReason names why an engagement is illegal. The empty reason means
// the engagement is allowed.
type DenyReason string

const (
	DenyNone            DenyReason = ""
	DenyDead            DenyReason = "dead"
	DenyInvalidTarget   DenyReason = "invalid_target"
	DenySafeZone        DenyReason = "safe_zone"
	DenyWildernessLevel DenyReason = "wilderness_level"
	DenyRange           DenyReason = "range"
	DenySingleCombat    DenyReason = "single_combat"
)

// EngagementSource reports which live engagements an entity takes part in.
// A live engagement is a session whose last activity is within the session
// timeout of now.
type EngagementSource interface {
	// TargetOf returns the target of attackerID's live session.
	TargetOf(attackerID string, now time.Time) (string, bool)
	// AttackersOf returns the attackers of every live session targeting targetID.
	AttackersOf(targetID string, now time.Time) []string
}

// Validator decides whether one entity may engage another.
// It never mutates state.
type Validator struct {
	dir         entity.Directory
	zones       *zone.Authority
	engagements EngagementSource
}

// NewValidator creates a Validator. A nil zones behaves as an authority
// with no zones; a nil engagements disables the single-combat rule.
//
// Precondition: dir must be non-nil.
func NewValidator(dir entity.Directory, zones *zone.Authority, engagements EngagementSource) *Validator {
	if dir == nil {
		panic("combat.NewValidator: dir must be non-nil")
	}
	if zones == nil {
		zones = &zone.Authority{}
	}
	return &Validator{dir: dir, zones: zones, engagements: engagements}
}

// CanEngage reports whether attackerID may engage defenderID at now.
func (v *Validator) CanEngage(attackerID, defenderID string, now time.Time) bool {
	return v.Check(attackerID, defenderID, now) == DenyNone
}

// Check returns the first rule attackerID engaging defenderID violates.
//
// Postcondition: Returns DenyNone iff CanEngage would return true.
func (v *Validator) Check(attackerID, defenderID string, now time.Time) DenyReason {
	att, ok := resolve(v.dir, attackerID)
	if !ok {
		return DenyDead
	}
	def, ok := resolve(v.dir, defenderID)
	if !ok {
		return DenyDead
	}
	return v.check(att, def, now)
}

func (v *Validator) check(att, def Combatant, now time.Time) DenyReason {
	if !att.Stats.IsAlive() || !def.Stats.IsAlive() {
		return DenyDead
	}
	if att.ID == def.ID {
		return DenyInvalidTarget
	}
	ap, dp := att.Movement.Position, def.Movement.Position
	if v.zones.InSafeZone(ap) || v.zones.InSafeZone(dp) {
		return DenySafeZone
	}
	aw, dw := v.zones.WildernessLevel(ap), v.zones.WildernessLevel(dp)
	if aw > 0 && dw > 0 {
		diff := CombatLevel(att.Stats) - CombatLevel(def.Stats)
		if diff < 0 {
			diff = -diff
		}
		if diff > min(aw, dw) {
			return DenyWildernessLevel
		}
	}
	if ap.Plane != dp.Plane || zone.ChebyshevDistance(ap, dp) > att.Weapon.AttackRange() {
		return DenyRange
	}
	if v.engagements != nil && !(v.zones.InMultiCombat(ap) && v.zones.InMultiCombat(dp)) {
		if v.engagedElsewhere(att.ID, def.ID, now, false) || v.engagedElsewhere(def.ID, att.ID, now, true) {
			return DenySingleCombat
		}
	}
	return DenyNone
}

// engagedElsewhere reports whether id is in a live engagement with anyone
// other than counterpart. The attacker's own outgoing session is ignored
// because engaging a new target replaces it.
func (v *Validator) engagedElsewhere(id, counterpart string, now time.Time, includeOwnTarget bool) bool {
	if includeOwnTarget {
		if t, ok := v.engagements.TargetOf(id, now); ok && t != counterpart {
			return true
		}
	}
	for _, a := range v.engagements.AttackersOf(id, now) {
		if a != counterpart {
			return true
		}
	}
	return false
}
