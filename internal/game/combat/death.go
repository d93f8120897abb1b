package combat

import (
	"slices"
	"time"

	"go.uber.org/zap"
)

// HandleDeath records entityID's death at the hands of killerID and ends
// every session it takes part in.
//
// Postcondition: Returns false without side effects when the death was
// already handled and entityID has not respawned since. Otherwise
// EntityDeath is published before any CombatEnd{death}.
func (m *Manager) HandleDeath(entityID, killerID string) bool {
	return m.die(entityID, killerID, CauseKilled, m.now())
}

// HandleDespawn removes entityID from combat as if it had died, with cause
// despawned and end reason despawn.
//
// Postcondition: Same idempotence and ordering as HandleDeath.
func (m *Manager) HandleDespawn(entityID string) bool {
	return m.die(entityID, "", CauseDespawned, m.now())
}

// Respawned clears entityID's death mark so a later death is handled again.
func (m *Manager) Respawned(entityID string) {
	delete(m.dead, entityID)
}

// observeAlive clears a stale death mark on an entity seen with hitpoints.
func (m *Manager) observeAlive(c Combatant) {
	if m.dead[c.ID] && c.Stats.IsAlive() {
		delete(m.dead, c.ID)
	}
}

func (m *Manager) die(entityID, killerID string, cause DeathCause, now time.Time) bool {
	if entityID == "" || m.dead[entityID] {
		return false
	}
	m.dead[entityID] = true
	m.logger.Info("entity death",
		zap.String("entity", entityID),
		zap.String("killer", killerID),
		zap.String("cause", string(cause)),
	)
	m.pub.Publish(EntityDeath{EntityID: entityID, KillerID: killerID, Cause: cause, At: now})

	reason := EndDeath
	if cause == CauseDespawned {
		reason = EndDespawn
	}
	if i, ok := m.index[entityID]; ok {
		m.end(m.sessions[i], reason, now, true)
	}
	attackers := make([]string, 0, len(m.byTarget[entityID]))
	for a := range m.byTarget[entityID] {
		attackers = append(attackers, a)
	}
	slices.Sort(attackers)
	for _, a := range attackers {
		if i, ok := m.index[a]; ok {
			m.end(m.sessions[i], reason, now, true)
		}
	}
	return true
}
