// Package combat resolves attacks between entities and manages the
// tick-driven engagement sessions that connect them.
package combat

import (
	"github.com/cory-johannsen/skirmish/internal/game/entity"
	"github.com/cory-johannsen/skirmish/internal/game/inventory"
)

// Source is the subset of dice.Source the resolvers draw from.
type Source interface {
	Intn(n int) int
	Float64() float64
}

// Combatant is a borrowed view of the components one entity exposes to
// combat. Stats and Combat point into the directory's records; writes
// through them are visible to every other reader.
type Combatant struct {
	ID       string
	Stats    *entity.StatsProfile
	Combat   *entity.CombatProfile
	Weapon   *inventory.WeaponDef
	Movement *entity.Movement
}

// AttackType returns the attack type of the equipped weapon.
func (c Combatant) AttackType() inventory.AttackType {
	return c.Weapon.AttackType()
}

// resolve builds a Combatant for id from dir.
//
// Postcondition: ok is true iff the entity exists and exposes stats,
// combat and movement components. A missing inventory yields Unarmed.
func resolve(dir entity.Directory, id string) (Combatant, bool) {
	e, ok := dir.Lookup(id)
	if !ok {
		return Combatant{}, false
	}
	stats, ok := entity.StatsOf(e)
	if !ok {
		return Combatant{}, false
	}
	cp, ok := entity.CombatOf(e)
	if !ok {
		return Combatant{}, false
	}
	mv, ok := entity.MovementOf(e)
	if !ok {
		return Combatant{}, false
	}
	inv, _ := entity.InventoryOf(e)
	return Combatant{
		ID:       id,
		Stats:    stats,
		Combat:   cp,
		Weapon:   inv.EquippedWeapon(),
		Movement: mv,
	}, true
}
