package combat

import (
	"math"

	"github.com/cory-johannsen/skirmish/internal/game/entity"
)

// OffensiveStanceBonus returns the accuracy level bonus granted by stance.
func OffensiveStanceBonus(s entity.Stance) int {
	switch s {
	case entity.StanceAccurate, entity.StanceAggressive, entity.StanceDefensive:
		return 3
	case entity.StanceControlled:
		return 1
	default:
		return 0
	}
}

// DefensiveStanceBonus returns the defence level bonus granted by stance.
func DefensiveStanceBonus(s entity.Stance) int {
	switch s {
	case entity.StanceDefensive, entity.StanceLongrange:
		return 3
	case entity.StanceControlled:
		return 1
	default:
		return 0
	}
}

// StrengthStanceBonus returns the strength level bonus used for max hits.
func StrengthStanceBonus(s entity.Stance) int {
	switch s {
	case entity.StanceAggressive:
		return 3
	case entity.StanceControlled:
		return 1
	default:
		return 0
	}
}

// boostedLevel returns the skill's potion-boosted level scaled by the
// active prayer percentage.
//
// Postcondition: Returns >= 0.
func boostedLevel(stats *entity.StatsProfile, cp *entity.CombatProfile, sk entity.Skill) int {
	lvl := stats.Skill(sk).Effective()
	pct := 100
	if cp != nil {
		pct += cp.Prayers.Percent(sk)
	}
	if pct < 0 {
		pct = 0
	}
	return lvl * pct / 100
}

// CombatLevel derives an entity's combat level from its skills.
//
// Postcondition: Returns >= 1.
func CombatLevel(stats *entity.StatsProfile) int {
	if stats == nil {
		return 1
	}
	lvl := func(sk entity.Skill) float64 { return float64(stats.Skill(sk).Level) }
	base := 0.25 * (lvl(entity.SkillDefence) + float64(stats.MaxHitpoints))
	offence := max(
		lvl(entity.SkillAttack)+lvl(entity.SkillStrength),
		1.5*lvl(entity.SkillRanged),
		1.5*lvl(entity.SkillMagic),
	)
	return max(int(math.Floor(base+0.325*offence)), 1)
}
