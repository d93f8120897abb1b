package inventory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ArmorSlot names the body slot a piece of armor occupies.
type ArmorSlot string

const (
	SlotHead   ArmorSlot = "head"
	SlotCape   ArmorSlot = "cape"
	SlotNeck   ArmorSlot = "neck"
	SlotBody   ArmorSlot = "body"
	SlotLegs   ArmorSlot = "legs"
	SlotHands  ArmorSlot = "hands"
	SlotFeet   ArmorSlot = "feet"
	SlotShield ArmorSlot = "shield"
	SlotRing   ArmorSlot = "ring"
)

// validArmorSlots is the set of all legal ArmorSlot values.
var validArmorSlots = map[ArmorSlot]struct{}{
	SlotHead:   {},
	SlotCape:   {},
	SlotNeck:   {},
	SlotBody:   {},
	SlotLegs:   {},
	SlotHands:  {},
	SlotFeet:   {},
	SlotShield: {},
	SlotRing:   {},
}

// ValidArmorSlots returns the set of all legal ArmorSlot values.
func ValidArmorSlots() map[ArmorSlot]struct{} { return validArmorSlots }

// ArmorDef defines a worn item and the combat bonuses it grants.
type ArmorDef struct {
	ID                 string
	Name               string
	Slot               ArmorSlot
	Attack             [NumBonusKinds]int
	Defence            [NumBonusKinds]int
	MeleeStrength      int
	RangedStrength     int
	MagicDamagePercent int
	Prayer             int
}

// yamlArmor is the YAML representation of an armor file.
type yamlArmor struct {
	ID                 string         `yaml:"id"`
	Name               string         `yaml:"name"`
	Slot               string         `yaml:"slot"`
	Attack             map[string]int `yaml:"attack"`
	Defence            map[string]int `yaml:"defence"`
	MeleeStrength      int            `yaml:"melee_strength"`
	RangedStrength     int            `yaml:"ranged_strength"`
	MagicDamagePercent int            `yaml:"magic_damage_percent"`
	Prayer             int            `yaml:"prayer"`
}

// Validate reports an error if the ArmorDef is missing required fields or contains illegal values.
// Attack bonuses may be negative; heavy armor commonly penalises magic and ranged accuracy.
// Precondition: a is non-nil.
// Postcondition: Returns nil iff the def is well-formed.
func (a *ArmorDef) Validate() error {
	var errs []error
	if a.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if a.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if _, ok := validArmorSlots[a.Slot]; !ok {
		errs = append(errs, fmt.Errorf("slot %q is not a valid armor slot", a.Slot))
	}
	if a.MagicDamagePercent < 0 {
		errs = append(errs, errors.New("magic_damage_percent must be >= 0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("armor validation failed: %v", errs)
	}
	return nil
}

// ParseBonusKind converts a YAML name such as "slash" into a BonusKind.
//
// Postcondition: Returns the matching BonusKind or an error for unknown names.
func ParseBonusKind(s string) (BonusKind, error) {
	for k := BonusStab; k < NumBonusKinds; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown bonus kind %q", s)
}

// ParseArmor decodes and validates a single armor piece from YAML bytes.
//
// Postcondition: Returns a valid ArmorDef or a non-nil error.
func ParseArmor(data []byte) (*ArmorDef, error) {
	var ya yamlArmor
	if err := yaml.Unmarshal(data, &ya); err != nil {
		return nil, fmt.Errorf("parsing armor YAML: %w", err)
	}
	a := &ArmorDef{
		ID:                 ya.ID,
		Name:               ya.Name,
		Slot:               ArmorSlot(ya.Slot),
		MeleeStrength:      ya.MeleeStrength,
		RangedStrength:     ya.RangedStrength,
		MagicDamagePercent: ya.MagicDamagePercent,
		Prayer:             ya.Prayer,
	}
	for name, v := range ya.Attack {
		k, err := ParseBonusKind(name)
		if err != nil {
			return nil, fmt.Errorf("armor %q attack: %w", ya.ID, err)
		}
		a.Attack[k] = v
	}
	for name, v := range ya.Defence {
		k, err := ParseBonusKind(name)
		if err != nil {
			return nil, fmt.Errorf("armor %q defence: %w", ya.ID, err)
		}
		a.Defence[k] = v
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// LoadArmors reads all .yaml files in dir and returns the parsed ArmorDefs.
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil slice on success; all returned defs pass Validate.
func LoadArmors(dir string) ([]*ArmorDef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadArmors: cannot read directory %q: %w", dir, err)
	}

	armors := []*ArmorDef{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadArmors: cannot read file %q: %w", path, err)
		}
		a, err := ParseArmor(data)
		if err != nil {
			return nil, fmt.Errorf("LoadArmors: invalid armor in %q: %w", path, err)
		}
		armors = append(armors, a)
	}
	return armors, nil
}
