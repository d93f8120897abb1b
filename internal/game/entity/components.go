package entity

import (
	"time"

	"github.com/cory-johannsen/skirmish/internal/game/inventory"
	"github.com/cory-johannsen/skirmish/internal/game/zone"
)

// Skill identifies one of the five combat skills.
type Skill int

const (
	SkillAttack Skill = iota
	SkillStrength
	SkillDefence
	SkillRanged
	SkillMagic
	// NumSkills is the number of combat skills.
	NumSkills
)

// String returns the lowercase skill name.
func (s Skill) String() string {
	switch s {
	case SkillAttack:
		return "attack"
	case SkillStrength:
		return "strength"
	case SkillDefence:
		return "defence"
	case SkillRanged:
		return "ranged"
	case SkillMagic:
		return "magic"
	default:
		return "unknown"
	}
}

// SkillLevel is one skill's level, the experience it was derived from, and
// any temporary potion boost (negative for drains).
type SkillLevel struct {
	Level      int
	Experience int
	Boost      int
}

// Effective returns Level+Boost floored at zero.
func (s SkillLevel) Effective() int {
	if v := s.Level + s.Boost; v > 0 {
		return v
	}
	return 0
}

// EquipmentBonuses aggregates the bonuses of everything an entity wears.
type EquipmentBonuses struct {
	Attack             [inventory.NumBonusKinds]int
	Defence            [inventory.NumBonusKinds]int
	MeleeStrength      int
	RangedStrength     int
	MagicDamagePercent int
	Prayer             int
	// ReductionFlat is subtracted from every incoming hit after protection.
	ReductionFlat int
	// ReductionPercent scales every incoming hit after protection.
	ReductionPercent int
}

// wear adds the bonuses of a to b.
func (b *EquipmentBonuses) wear(a *inventory.ArmorDef) {
	for k := range b.Attack {
		b.Attack[k] += a.Attack[k]
		b.Defence[k] += a.Defence[k]
	}
	b.MeleeStrength += a.MeleeStrength
	b.RangedStrength += a.RangedStrength
	b.MagicDamagePercent += a.MagicDamagePercent
	b.Prayer += a.Prayer
}

// StatsProfile holds hitpoints, skills and equipment bonuses. The combat
// engine writes only Hitpoints.
type StatsProfile struct {
	Hitpoints    int
	MaxHitpoints int
	Skills       [NumSkills]SkillLevel
	Bonuses      EquipmentBonuses
}

// Skill returns the level record for s.
func (s *StatsProfile) Skill(sk Skill) SkillLevel {
	if sk < 0 || sk >= NumSkills {
		return SkillLevel{}
	}
	return s.Skills[sk]
}

// IsAlive reports whether Hitpoints > 0.
func (s *StatsProfile) IsAlive() bool { return s.Hitpoints > 0 }

// ApplyDamage reduces Hitpoints by amount, flooring at zero.
// Precondition: amount must be >= 0.
// Postcondition: Hitpoints >= 0; returns the damage actually removed.
func (s *StatsProfile) ApplyDamage(amount int) int {
	if amount <= 0 {
		return 0
	}
	if amount > s.Hitpoints {
		amount = s.Hitpoints
	}
	s.Hitpoints -= amount
	return amount
}

// Stance is the selected combat style.
type Stance int

const (
	StanceAccurate Stance = iota
	StanceAggressive
	StanceDefensive
	StanceControlled
	StanceRapid
	StanceLongrange
)

// String returns the lowercase stance name.
func (s Stance) String() string {
	switch s {
	case StanceAccurate:
		return "accurate"
	case StanceAggressive:
		return "aggressive"
	case StanceDefensive:
		return "defensive"
	case StanceControlled:
		return "controlled"
	case StanceRapid:
		return "rapid"
	case StanceLongrange:
		return "longrange"
	default:
		return "unknown"
	}
}

// Protection holds the active protection-prayer flags.
type Protection struct {
	Melee  bool
	Ranged bool
	Magic  bool
}

// Protects reports whether the flag matching at is set.
func (p Protection) Protects(at inventory.AttackType) bool {
	switch at {
	case inventory.AttackMelee:
		return p.Melee
	case inventory.AttackRanged:
		return p.Ranged
	case inventory.AttackMagic:
		return p.Magic
	default:
		return false
	}
}

// Prayers holds active percentage boosts to effective skill levels.
type Prayers struct {
	Attack   int
	Strength int
	Defence  int
	Ranged   int
	Magic    int
}

// Percent returns the boost for sk.
func (p Prayers) Percent(sk Skill) int {
	switch sk {
	case SkillAttack:
		return p.Attack
	case SkillStrength:
		return p.Strength
	case SkillDefence:
		return p.Defence
	case SkillRanged:
		return p.Ranged
	case SkillMagic:
		return p.Magic
	default:
		return 0
	}
}

// SplatKind distinguishes hit-splat visuals.
type SplatKind int

const (
	SplatHit SplatKind = iota
	SplatMiss
	SplatCritical
)

// HitSplat is one queued damage number awaiting display.
type HitSplat struct {
	Damage int
	Kind   SplatKind
	At     time.Time
}

// MaxSpecialEnergy is the special-attack energy cap.
const MaxSpecialEnergy = 100

// CombatProfile is the per-entity combat state read and written by the engine.
type CombatProfile struct {
	InCombat       bool
	TargetID       string
	LastAttackAt   time.Time
	AttackInterval time.Duration
	Stance         Stance
	AutoRetaliate  bool
	// SpecialEnergy is in [0, MaxSpecialEnergy].
	SpecialEnergy int
	HitSplats     []HitSplat
	Protection    Protection
	Prayers       Prayers
}

// QueueHitSplat appends s, discarding the oldest splats beyond max.
// A max <= 0 keeps every splat.
//
// Postcondition: len(HitSplats) <= max when max > 0.
func (c *CombatProfile) QueueHitSplat(s HitSplat, max int) {
	c.HitSplats = append(c.HitSplats, s)
	if max > 0 && len(c.HitSplats) > max {
		c.HitSplats = append([]HitSplat(nil), c.HitSplats[len(c.HitSplats)-max:]...)
	}
}

// DrainHitSplats returns and clears the queued splats.
func (c *CombatProfile) DrainHitSplats() []HitSplat {
	out := c.HitSplats
	c.HitSplats = nil
	return out
}

// AddSpecialEnergy adds amount, clamping the result to [0, MaxSpecialEnergy].
func (c *CombatProfile) AddSpecialEnergy(amount int) {
	c.SpecialEnergy += amount
	if c.SpecialEnergy > MaxSpecialEnergy {
		c.SpecialEnergy = MaxSpecialEnergy
	}
	if c.SpecialEnergy < 0 {
		c.SpecialEnergy = 0
	}
}

// Inventory exposes what the entity holds that matters to combat.
type Inventory struct {
	// Weapon is the equipped weapon; nil means unarmed.
	Weapon *inventory.WeaponDef
	// Armor lists worn pieces. Their bonuses are already folded into
	// StatsProfile.Bonuses.
	Armor []*inventory.ArmorDef
}

// EquippedWeapon returns the equipped weapon or inventory.Unarmed.
func (i *Inventory) EquippedWeapon() *inventory.WeaponDef {
	if i == nil || i.Weapon == nil {
		return inventory.Unarmed
	}
	return i.Weapon
}

// Movement exposes the entity's current position.
type Movement struct {
	Position zone.Position
}
