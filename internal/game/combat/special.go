package combat

import (
	"github.com/cory-johannsen/skirmish/internal/game/entity"
)

// PerformSpecial spends special energy on one enhanced attack from
// attackerID on targetID.
//
// Postcondition: Returns false and leaves energy unchanged when the
// attacker has less than the special cost or the engagement is illegal.
// Otherwise the cost is deducted, CombatSpecialHit is published and a
// lethal hit is handed to the death coordinator.
func (m *Manager) PerformSpecial(attackerID, targetID string) bool {
	now := m.now()
	att, ok := resolve(m.dir, attackerID)
	if !ok || att.Combat.SpecialEnergy < m.settings.SpecialCost {
		return false
	}
	def, ok := resolve(m.dir, targetID)
	reason := DenyDead
	if ok {
		reason = m.validator.check(att, def, now)
	}
	if reason != DenyNone {
		m.pub.Publish(CombatDenied{AttackerID: attackerID, TargetID: targetID, Reason: reason, At: now})
		return false
	}

	att.Combat.AddSpecialEnergy(-m.settings.SpecialCost)
	hr := m.attack(att, def, now, true)
	if i, ok := m.index[attackerID]; ok && m.sessions[i].TargetID == targetID {
		s := m.sessions[i]
		s.record(hr)
		s.LastAttackAt = now
		s.LastActivity = now
	}
	m.pub.Publish(CombatSpecialHit{Hit: hr, TargetHitpoints: def.Stats.Hitpoints, EnergyLeft: att.Combat.SpecialEnergy})

	if !def.Stats.IsAlive() {
		m.die(def.ID, att.ID, CauseKilled, now)
	}
	return true
}

// RegenerateEnergy restores special energy to every entity with a combat
// profile, capped at entity.MaxSpecialEnergy.
func (m *Manager) RegenerateEnergy() {
	m.dir.Range(func(e entity.Entity) bool {
		if cp, ok := entity.CombatOf(e); ok {
			cp.AddSpecialEnergy(m.settings.SpecialRegenAmount)
		}
		return true
	})
}
