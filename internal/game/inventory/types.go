package inventory

import "fmt"

// AttackType is the broad class of an attack. It selects which skills,
// bonuses and protection prayers apply.
type AttackType int

const (
	AttackMelee AttackType = iota
	AttackRanged
	AttackMagic
)

// String returns the lowercase name of the attack type.
func (a AttackType) String() string {
	switch a {
	case AttackMelee:
		return "melee"
	case AttackRanged:
		return "ranged"
	case AttackMagic:
		return "magic"
	default:
		return "unknown"
	}
}

// BonusKind indexes the directional attack and defence equipment bonuses.
type BonusKind int

const (
	BonusStab BonusKind = iota
	BonusSlash
	BonusCrush
	BonusMagic
	BonusRanged
	// NumBonusKinds is the number of directional bonus slots.
	NumBonusKinds
)

// String returns the lowercase name of the bonus kind.
func (b BonusKind) String() string {
	switch b {
	case BonusStab:
		return "stab"
	case BonusSlash:
		return "slash"
	case BonusCrush:
		return "crush"
	case BonusMagic:
		return "magic"
	case BonusRanged:
		return "ranged"
	default:
		return "unknown"
	}
}

// WeaponType is the closed set of weapon families. Every family fixes the
// attack type, the bonus kind it draws on, and default speed and reach.
type WeaponType int

const (
	WeaponUnarmed WeaponType = iota
	WeaponDagger
	WeaponSword
	WeaponScimitar
	WeaponLongsword
	WeaponMace
	WeaponWarhammer
	WeaponSpear
	WeaponHalberd
	WeaponShortbow
	WeaponLongbow
	WeaponCrossbow
	WeaponThrown
	WeaponStaff
	WeaponWand
)

// weaponTypeNames maps each WeaponType to its YAML name.
var weaponTypeNames = map[WeaponType]string{
	WeaponUnarmed:   "unarmed",
	WeaponDagger:    "dagger",
	WeaponSword:     "sword",
	WeaponScimitar:  "scimitar",
	WeaponLongsword: "longsword",
	WeaponMace:      "mace",
	WeaponWarhammer: "warhammer",
	WeaponSpear:     "spear",
	WeaponHalberd:   "halberd",
	WeaponShortbow:  "shortbow",
	WeaponLongbow:   "longbow",
	WeaponCrossbow:  "crossbow",
	WeaponThrown:    "thrown",
	WeaponStaff:     "staff",
	WeaponWand:      "wand",
}

// String returns the YAML name of the weapon type.
func (w WeaponType) String() string {
	if name, ok := weaponTypeNames[w]; ok {
		return name
	}
	return "unknown"
}

// ParseWeaponType converts a YAML name into a WeaponType.
//
// Postcondition: Returns the matching WeaponType or an error for unknown names.
func ParseWeaponType(s string) (WeaponType, error) {
	for wt, name := range weaponTypeNames {
		if name == s {
			return wt, nil
		}
	}
	return WeaponUnarmed, fmt.Errorf("unknown weapon type %q", s)
}

// AttackType returns the attack type every weapon of this family uses.
func (w WeaponType) AttackType() AttackType {
	switch w {
	case WeaponUnarmed, WeaponDagger, WeaponSword, WeaponScimitar, WeaponLongsword,
		WeaponMace, WeaponWarhammer, WeaponSpear, WeaponHalberd:
		return AttackMelee
	case WeaponShortbow, WeaponLongbow, WeaponCrossbow, WeaponThrown:
		return AttackRanged
	case WeaponStaff, WeaponWand:
		return AttackMagic
	default:
		return AttackMelee
	}
}

// BonusKind returns the equipment bonus slot this family attacks with.
func (w WeaponType) BonusKind() BonusKind {
	switch w {
	case WeaponDagger, WeaponSword, WeaponSpear:
		return BonusStab
	case WeaponScimitar, WeaponLongsword, WeaponHalberd:
		return BonusSlash
	case WeaponUnarmed, WeaponMace, WeaponWarhammer:
		return BonusCrush
	case WeaponShortbow, WeaponLongbow, WeaponCrossbow, WeaponThrown:
		return BonusRanged
	case WeaponStaff, WeaponWand:
		return BonusMagic
	default:
		return BonusCrush
	}
}

// DefaultSpeedTicks returns the family's attack speed in combat ticks.
func (w WeaponType) DefaultSpeedTicks() int {
	switch w {
	case WeaponThrown:
		return 3
	case WeaponUnarmed, WeaponDagger, WeaponSword, WeaponScimitar, WeaponShortbow, WeaponWand:
		return 4
	case WeaponLongsword, WeaponMace, WeaponSpear, WeaponStaff:
		return 5
	case WeaponWarhammer, WeaponLongbow, WeaponCrossbow:
		return 6
	case WeaponHalberd:
		return 7
	default:
		return 4
	}
}

// DefaultRange returns the family's reach in tiles.
func (w WeaponType) DefaultRange() int {
	switch w {
	case WeaponUnarmed, WeaponDagger, WeaponSword, WeaponScimitar, WeaponLongsword,
		WeaponMace, WeaponWarhammer, WeaponSpear:
		return 1
	case WeaponHalberd:
		return 2
	case WeaponThrown:
		return 4
	case WeaponShortbow:
		return 7
	case WeaponCrossbow:
		return 8
	case WeaponLongbow, WeaponStaff, WeaponWand:
		return 10
	default:
		return 1
	}
}
