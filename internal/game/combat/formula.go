package combat

import (
	"math"

	"github.com/cory-johannsen/skirmish/internal/game/inventory"
)

// MaxHitInput carries everything a Formula needs to compute a max hit.
type MaxHitInput struct {
	AttackType inventory.AttackType
	// EffectiveLevel is the stance- and prayer-adjusted strength level for
	// melee, ranged level for ranged. Unused for magic.
	EffectiveLevel int
	// StrengthBonus is the melee or ranged strength equipment bonus.
	StrengthBonus int
	// BaseDamage is the spell base damage for magic. Unused otherwise.
	BaseDamage int
	// DamagePercent is the magic damage equipment bonus in percent.
	DamagePercent int
}

// Formula computes hit chances and max hits from precomputed ratings.
// Implementations must be deterministic and free of side effects.
type Formula interface {
	// HitChance returns the raw probability in [0, 1] that an attack with
	// attackRating lands against defenceRating, before any cap.
	HitChance(attackRating, defenceRating int) float64
	// MaxHit returns the largest damage one attack can roll, >= 0.
	MaxHit(in MaxHitInput) int
}

// ClassicFormula is the stock accuracy and max-hit model.
type ClassicFormula struct{}

// HitChance implements Formula.
//
// Postcondition: Returns a value in [0, 1].
func (ClassicFormula) HitChance(attackRating, defenceRating int) float64 {
	a := float64(max(attackRating, 0))
	d := float64(max(defenceRating, 0))
	if a >= d {
		return 1 - (d+2)/(2*(a+1))
	}
	return a / (2 * (d + 1))
}

// MaxHit implements Formula.
//
// Postcondition: Returns >= 0.
func (ClassicFormula) MaxHit(in MaxHitInput) int {
	switch in.AttackType {
	case inventory.AttackMagic:
		v := in.BaseDamage * (100 + in.DamagePercent) / 100
		return max(v, 0)
	case inventory.AttackMelee, inventory.AttackRanged:
		v := math.Floor(0.5 + float64(in.EffectiveLevel+8)*float64(in.StrengthBonus+64)/640)
		return max(int(v), 0)
	default:
		return 0
	}
}

// clampChance bounds p to [0, ceiling].
func clampChance(p, ceiling float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	return min(p, ceiling)
}
