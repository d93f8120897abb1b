// Package inventory provides the weapon and armor catalogue consumed by the combat
// engine: weapon families, their attack types, worn bonuses, and YAML loading.
package inventory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// WeaponDef defines the static properties of a weapon.
// Zero SpeedTicks or Range fall back to the family defaults.
type WeaponDef struct {
	ID   string
	Name string
	Type WeaponType
	// SpeedTicks is the number of combat ticks between attacks.
	SpeedTicks int
	// Range is the maximum Chebyshev distance in tiles.
	Range int
	// SpellDamage is the base damage of magic weapons; 0 derives it from the magic level.
	SpellDamage int
}

// Unarmed is the weapon used by entities with nothing equipped.
var Unarmed = &WeaponDef{ID: "unarmed", Name: "Fists", Type: WeaponUnarmed}

// yamlWeapon is the YAML representation of a weapon file.
type yamlWeapon struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	SpeedTicks  int    `yaml:"speed_ticks"`
	Range       int    `yaml:"range"`
	SpellDamage int    `yaml:"spell_damage"`
}

// AttackType returns the attack type of the weapon's family.
func (w *WeaponDef) AttackType() AttackType { return w.Type.AttackType() }

// BonusKind returns the equipment bonus slot the weapon attacks with.
func (w *WeaponDef) BonusKind() BonusKind { return w.Type.BonusKind() }

// Speed returns the attack speed in ticks.
//
// Postcondition: Returns >= 1.
func (w *WeaponDef) Speed() int {
	if w.SpeedTicks > 0 {
		return w.SpeedTicks
	}
	return w.Type.DefaultSpeedTicks()
}

// AttackRange returns the reach in tiles.
//
// Postcondition: Returns >= 1.
func (w *WeaponDef) AttackRange() int {
	if w.Range > 0 {
		return w.Range
	}
	return w.Type.DefaultRange()
}

// Validate checks that the WeaponDef satisfies its invariants.
// Precondition: w is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (w *WeaponDef) Validate() error {
	var errs []error
	if w.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if w.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if w.SpeedTicks < 0 {
		errs = append(errs, errors.New("SpeedTicks must be >= 0"))
	}
	if w.Range < 0 {
		errs = append(errs, errors.New("Range must be >= 0"))
	}
	if w.SpellDamage < 0 {
		errs = append(errs, errors.New("SpellDamage must be >= 0"))
	}
	if w.SpellDamage > 0 && w.AttackType() != AttackMagic {
		errs = append(errs, errors.New("SpellDamage is only valid on magic weapons"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("weapon validation failed: %v", errs)
	}
	return nil
}

// ParseWeapon decodes and validates a single weapon from YAML bytes.
//
// Postcondition: Returns a valid WeaponDef or a non-nil error.
func ParseWeapon(data []byte) (*WeaponDef, error) {
	var yw yamlWeapon
	if err := yaml.Unmarshal(data, &yw); err != nil {
		return nil, fmt.Errorf("parsing weapon YAML: %w", err)
	}
	wt := WeaponUnarmed
	if yw.Type != "" {
		var err error
		wt, err = ParseWeaponType(yw.Type)
		if err != nil {
			return nil, fmt.Errorf("weapon %q: %w", yw.ID, err)
		}
	}
	w := &WeaponDef{
		ID:          yw.ID,
		Name:        yw.Name,
		Type:        wt,
		SpeedTicks:  yw.SpeedTicks,
		Range:       yw.Range,
		SpellDamage: yw.SpellDamage,
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

// LoadWeapons reads all *.yaml files from dir, parses each as a WeaponDef,
// validates it, and returns the collected slice.
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid WeaponDefs or the first encountered error.
func LoadWeapons(dir string) ([]*WeaponDef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadWeapons: cannot read directory %q: %w", dir, err)
	}

	var weapons []*WeaponDef
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadWeapons: cannot read file %q: %w", path, err)
		}
		w, err := ParseWeapon(data)
		if err != nil {
			return nil, fmt.Errorf("LoadWeapons: invalid weapon in %q: %w", path, err)
		}
		weapons = append(weapons, w)
	}
	return weapons, nil
}
