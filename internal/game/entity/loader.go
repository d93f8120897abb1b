package entity

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/inventory"
	"github.com/cory-johannsen/skirmish/internal/game/zone"
)

// yamlSeedFile is the top-level YAML structure for entity seed files.
type yamlSeedFile struct {
	Entities []yamlEntity `yaml:"entities"`
}

type yamlEntity struct {
	ID            string         `yaml:"id"`
	Hitpoints     int            `yaml:"hitpoints"`
	Position      zone.Position  `yaml:"position"`
	Skills        map[string]int `yaml:"skills"`
	Bonuses       yamlBonuses    `yaml:"bonuses"`
	Weapon        string         `yaml:"weapon"`
	Armor         []string       `yaml:"armor"`
	Stance        string         `yaml:"stance"`
	AutoRetaliate bool           `yaml:"auto_retaliate"`
	SpecialEnergy *int           `yaml:"special_energy"`
	Protection    []string       `yaml:"protection"`
	RespawnAfter  string         `yaml:"respawn_after"`
}

type yamlBonuses struct {
	Attack             map[string]int `yaml:"attack"`
	Defence            map[string]int `yaml:"defence"`
	MeleeStrength      int            `yaml:"melee_strength"`
	RangedStrength     int            `yaml:"ranged_strength"`
	MagicDamagePercent int            `yaml:"magic_damage_percent"`
	Prayer             int            `yaml:"prayer"`
	ReductionFlat      int            `yaml:"reduction_flat"`
	ReductionPercent   int            `yaml:"reduction_percent"`
}

// LoadSeedFile reads entity records from a YAML seed file, resolving weapon
// and armor ids against weapons. Worn armor bonuses are added to the
// entity's own bonuses.
//
// Precondition: weapons must be non-nil.
// Postcondition: Returns fully populated records or the first error encountered.
func LoadSeedFile(path string, weapons *inventory.Registry) ([]*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading entity seed file %s: %w", path, err)
	}
	return LoadSeedBytes(data, weapons)
}

// LoadSeedBytes parses entity records from YAML bytes.
//
// Precondition: weapons must be non-nil.
// Postcondition: Returns fully populated records or the first error encountered.
func LoadSeedBytes(data []byte, weapons *inventory.Registry) ([]*Record, error) {
	var file yamlSeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing entity seed YAML: %w", err)
	}
	records := make([]*Record, 0, len(file.Entities))
	for _, ye := range file.Entities {
		r, err := convertYAMLEntity(ye, weapons)
		if err != nil {
			return nil, fmt.Errorf("entity %q: %w", ye.ID, err)
		}
		records = append(records, r)
	}
	return records, nil
}

func convertYAMLEntity(ye yamlEntity, weapons *inventory.Registry) (*Record, error) {
	if ye.ID == "" {
		return nil, fmt.Errorf("id must not be empty")
	}
	if ye.Hitpoints <= 0 {
		return nil, fmt.Errorf("hitpoints must be > 0, got %d", ye.Hitpoints)
	}

	stats := &StatsProfile{Hitpoints: ye.Hitpoints, MaxHitpoints: ye.Hitpoints}
	for sk := SkillAttack; sk < NumSkills; sk++ {
		stats.Skills[sk] = SkillLevel{Level: 1}
	}
	for name, lvl := range ye.Skills {
		sk, err := parseSkill(name)
		if err != nil {
			return nil, err
		}
		stats.Skills[sk] = SkillLevel{Level: lvl}
	}
	b, err := convertYAMLBonuses(ye.Bonuses)
	if err != nil {
		return nil, err
	}
	stats.Bonuses = b

	stance, err := parseStance(ye.Stance)
	if err != nil {
		return nil, err
	}
	cp := &CombatProfile{
		Stance:        stance,
		AutoRetaliate: ye.AutoRetaliate,
		SpecialEnergy: MaxSpecialEnergy,
	}
	if ye.SpecialEnergy != nil {
		cp.SpecialEnergy = 0
		cp.AddSpecialEnergy(*ye.SpecialEnergy)
	}
	for _, p := range ye.Protection {
		switch p {
		case "melee":
			cp.Protection.Melee = true
		case "ranged":
			cp.Protection.Ranged = true
		case "magic":
			cp.Protection.Magic = true
		default:
			return nil, fmt.Errorf("unknown protection %q", p)
		}
	}

	inv := &Inventory{}
	if ye.Weapon != "" {
		w := weapons.Weapon(ye.Weapon)
		if w == nil {
			return nil, fmt.Errorf("unknown weapon %q", ye.Weapon)
		}
		inv.Weapon = w
	}
	worn := make(map[inventory.ArmorSlot]string, len(ye.Armor))
	for _, id := range ye.Armor {
		a := weapons.Armor(id)
		if a == nil {
			return nil, fmt.Errorf("unknown armor %q", id)
		}
		if prev, taken := worn[a.Slot]; taken {
			return nil, fmt.Errorf("armor %q and %q both occupy slot %s", prev, id, a.Slot)
		}
		worn[a.Slot] = id
		inv.Armor = append(inv.Armor, a)
		stats.Bonuses.wear(a)
	}

	var delay time.Duration
	if ye.RespawnAfter != "" {
		d, err := time.ParseDuration(ye.RespawnAfter)
		if err != nil {
			return nil, fmt.Errorf("invalid respawn_after %q: %w", ye.RespawnAfter, err)
		}
		if d < 0 {
			return nil, fmt.Errorf("respawn_after must be >= 0, got %s", d)
		}
		delay = d
	}

	return &Record{
		EntityID:     ye.ID,
		Stats:        stats,
		Combat:       cp,
		Inventory:    inv,
		Movement:     &Movement{Position: ye.Position},
		Home:         ye.Position,
		RespawnDelay: delay,
	}, nil
}

func convertYAMLBonuses(yb yamlBonuses) (EquipmentBonuses, error) {
	b := EquipmentBonuses{
		MeleeStrength:      yb.MeleeStrength,
		RangedStrength:     yb.RangedStrength,
		MagicDamagePercent: yb.MagicDamagePercent,
		Prayer:             yb.Prayer,
		ReductionFlat:      yb.ReductionFlat,
		ReductionPercent:   yb.ReductionPercent,
	}
	for name, v := range yb.Attack {
		k, err := inventory.ParseBonusKind(name)
		if err != nil {
			return b, err
		}
		b.Attack[k] = v
	}
	for name, v := range yb.Defence {
		k, err := inventory.ParseBonusKind(name)
		if err != nil {
			return b, err
		}
		b.Defence[k] = v
	}
	return b, nil
}

func parseSkill(s string) (Skill, error) {
	for sk := SkillAttack; sk < NumSkills; sk++ {
		if sk.String() == s {
			return sk, nil
		}
	}
	return 0, fmt.Errorf("unknown skill %q", s)
}

func parseStance(s string) (Stance, error) {
	if s == "" {
		return StanceAccurate, nil
	}
	for st := StanceAccurate; st <= StanceLongrange; st++ {
		if st.String() == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown stance %q", s)
}
