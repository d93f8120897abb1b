package combat

import (
	"github.com/cory-johannsen/skirmish/internal/game/entity"
	"github.com/cory-johannsen/skirmish/internal/game/inventory"
)

// HitResolver decides whether an attack lands.
type HitResolver struct {
	formula  Formula
	settings Settings
	src      Source
}

// NewHitResolver creates a HitResolver.
//
// Precondition: formula and src must be non-nil.
func NewHitResolver(formula Formula, settings Settings, src Source) *HitResolver {
	if formula == nil || src == nil {
		panic("combat.NewHitResolver: formula and src must be non-nil")
	}
	return &HitResolver{formula: formula, settings: settings, src: src}
}

// offensiveSkill maps an attack type to the skill that drives its accuracy.
func offensiveSkill(at inventory.AttackType) entity.Skill {
	switch at {
	case inventory.AttackRanged:
		return entity.SkillRanged
	case inventory.AttackMagic:
		return entity.SkillMagic
	default:
		return entity.SkillAttack
	}
}

// bonusKindFor returns the equipment bonus slot an attack of type at uses.
// The weapon's own kind wins when it matches at.
func bonusKindFor(w *inventory.WeaponDef, at inventory.AttackType) inventory.BonusKind {
	if w != nil && w.AttackType() == at {
		return w.BonusKind()
	}
	switch at {
	case inventory.AttackRanged:
		return inventory.BonusRanged
	case inventory.AttackMagic:
		return inventory.BonusMagic
	default:
		return inventory.BonusCrush
	}
}

// AttackRating returns the attacker's accuracy rating for an attack of type
// at in stance.
//
// Postcondition: Returns >= 0.
func (h *HitResolver) AttackRating(att Combatant, at inventory.AttackType, stance entity.Stance) int {
	lvl := boostedLevel(att.Stats, att.Combat, offensiveSkill(at)) + OffensiveStanceBonus(stance)
	bonus := att.Stats.Bonuses.Attack[bonusKindFor(att.Weapon, at)]
	return max(lvl*(bonus+64), 0)
}

// DefenceRating returns the defender's rating against an attack of type at
// using attackWeapon.
//
// Postcondition: Returns >= 0.
func (h *HitResolver) DefenceRating(def Combatant, at inventory.AttackType, attackWeapon *inventory.WeaponDef) int {
	stance := entity.StanceAccurate
	if def.Combat != nil {
		stance = def.Combat.Stance
	}
	lvl := boostedLevel(def.Stats, def.Combat, entity.SkillDefence) + DefensiveStanceBonus(stance)
	bonus := def.Stats.Bonuses.Defence[bonusKindFor(attackWeapon, at)]
	rating := max(lvl*(bonus+64), 0)
	if def.Combat != nil && def.Combat.Protection.Protects(at) {
		rating = int(float64(rating) * h.settings.ProtectionDefenceMultiplier)
	}
	return rating
}

// HitChance returns the capped probability that att lands an attack of
// type at in stance on def.
//
// Postcondition: Returns a value in [0, Settings.MaxHitChance].
func (h *HitResolver) HitChance(att, def Combatant, at inventory.AttackType, stance entity.Stance) float64 {
	return h.hitChance(att, def, at, stance, 1)
}

func (h *HitResolver) hitChance(att, def Combatant, at inventory.AttackType, stance entity.Stance, accuracy float64) float64 {
	a := int(float64(h.AttackRating(att, at, stance)) * accuracy)
	d := h.DefenceRating(def, at, att.Weapon)
	return clampChance(h.formula.HitChance(a, d), h.settings.MaxHitChance)
}

// RollHit draws once against HitChance.
//
// Postcondition: Returns true with probability HitChance(att, def, at, stance).
func (h *HitResolver) RollHit(att, def Combatant, at inventory.AttackType, stance entity.Stance) bool {
	return h.rollHit(att, def, at, stance, 1)
}

func (h *HitResolver) rollHit(att, def Combatant, at inventory.AttackType, stance entity.Stance, accuracy float64) bool {
	p := h.hitChance(att, def, at, stance, accuracy)
	return h.src.Float64() < p
}
