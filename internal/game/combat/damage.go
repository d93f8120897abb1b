package combat

import (
	"github.com/cory-johannsen/skirmish/internal/game/entity"
	"github.com/cory-johannsen/skirmish/internal/game/inventory"
)

// DamageResolver rolls damage and applies the defender's reductions.
type DamageResolver struct {
	formula  Formula
	settings Settings
	src      Source
}

// NewDamageResolver creates a DamageResolver.
//
// Precondition: formula and src must be non-nil.
func NewDamageResolver(formula Formula, settings Settings, src Source) *DamageResolver {
	if formula == nil || src == nil {
		panic("combat.NewDamageResolver: formula and src must be non-nil")
	}
	return &DamageResolver{formula: formula, settings: settings, src: src}
}

// MaxHit returns the largest damage att can roll with an attack of type at
// in stance.
//
// Postcondition: Returns >= 0.
func (d *DamageResolver) MaxHit(att Combatant, stance entity.Stance, at inventory.AttackType) int {
	in := MaxHitInput{AttackType: at}
	b := att.Stats.Bonuses
	switch at {
	case inventory.AttackMelee:
		in.EffectiveLevel = boostedLevel(att.Stats, att.Combat, entity.SkillStrength) + StrengthStanceBonus(stance)
		in.StrengthBonus = b.MeleeStrength
	case inventory.AttackRanged:
		in.EffectiveLevel = boostedLevel(att.Stats, att.Combat, entity.SkillRanged)
		if stance == entity.StanceAccurate {
			in.EffectiveLevel += 3
		}
		in.StrengthBonus = b.RangedStrength
	case inventory.AttackMagic:
		if att.Weapon != nil && att.Weapon.SpellDamage > 0 {
			in.BaseDamage = att.Weapon.SpellDamage
		} else {
			in.BaseDamage = 2 + boostedLevel(att.Stats, att.Combat, entity.SkillMagic)/10
		}
		in.DamagePercent = b.MagicDamagePercent
	}
	return max(d.formula.MaxHit(in), 0)
}

// RollDamage draws uniformly from [0, MaxHit].
//
// Postcondition: 0 <= result <= MaxHit(att, stance, at).
func (d *DamageResolver) RollDamage(att Combatant, stance entity.Stance, at inventory.AttackType) int {
	m := d.MaxHit(att, stance, at)
	if m <= 0 {
		return 0
	}
	return d.src.Intn(m + 1)
}

// Reduce applies def's protection then equipment reductions to dmg.
//
// Postcondition: 0 <= result <= max(dmg, 0).
func (d *DamageResolver) Reduce(def Combatant, at inventory.AttackType, dmg int) int {
	if dmg <= 0 {
		return 0
	}
	if def.Combat != nil && def.Combat.Protection.Protects(at) {
		dmg = int(float64(dmg) * d.settings.ProtectionDamageMultiplier)
	}
	if def.Stats != nil {
		pct := min(max(def.Stats.Bonuses.ReductionPercent, 0), 100)
		dmg -= dmg * pct / 100
		dmg -= max(def.Stats.Bonuses.ReductionFlat, 0)
	}
	return max(dmg, 0)
}

// scaleSpecial applies the special-attack damage multiplier to a roll.
func (d *DamageResolver) scaleSpecial(dmg int) int {
	return max(int(float64(dmg)*d.settings.SpecialDamageMultiplier), 0)
}
