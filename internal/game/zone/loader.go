package zone

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlAuthorityFile is the top-level YAML structure for the zone authority file.
type yamlAuthorityFile struct {
	SafeZones   []yamlZone      `yaml:"safe_zones"`
	MultiCombat []yamlZone      `yaml:"multi_combat"`
	Wilderness  *yamlWilderness `yaml:"wilderness"`
}

// yamlZone is the YAML representation of a zone. Exactly one of Rect or Circle must be set.
type yamlZone struct {
	ID     string      `yaml:"id"`
	Rect   *yamlRect   `yaml:"rect"`
	Circle *yamlCircle `yaml:"circle"`
}

type yamlRect struct {
	MinX  int `yaml:"min_x"`
	MinY  int `yaml:"min_y"`
	MaxX  int `yaml:"max_x"`
	MaxY  int `yaml:"max_y"`
	Plane int `yaml:"plane"`
}

type yamlCircle struct {
	Center Position `yaml:"center"`
	Radius int      `yaml:"radius"`
}

type yamlWilderness struct {
	Start      Position `yaml:"start"`
	LevelDepth int      `yaml:"level_depth"`
}

// LoadAuthorityFromFile reads and validates a zone authority YAML file.
//
// Precondition: path must point to a valid YAML zone authority file.
// Postcondition: Returns a validated Authority or a non-nil error.
func LoadAuthorityFromFile(path string) (*Authority, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading zone authority file %s: %w", path, err)
	}
	return LoadAuthorityFromBytes(data)
}

// LoadAuthorityFromBytes parses and validates a zone authority from YAML bytes.
//
// Postcondition: Returns a validated Authority or a non-nil error.
func LoadAuthorityFromBytes(data []byte) (*Authority, error) {
	var file yamlAuthorityFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing zone authority YAML: %w", err)
	}

	auth, err := convertYAMLAuthority(file)
	if err != nil {
		return nil, err
	}
	if err := auth.Validate(); err != nil {
		return nil, fmt.Errorf("validating zone authority: %w", err)
	}
	return auth, nil
}

func convertYAMLAuthority(f yamlAuthorityFile) (*Authority, error) {
	auth := &Authority{}
	for _, yz := range f.SafeZones {
		z, err := convertYAMLZone(yz)
		if err != nil {
			return nil, err
		}
		auth.SafeZones = append(auth.SafeZones, z)
	}
	for _, yz := range f.MultiCombat {
		z, err := convertYAMLZone(yz)
		if err != nil {
			return nil, err
		}
		auth.MultiCombat = append(auth.MultiCombat, z)
	}
	if f.Wilderness != nil {
		auth.Wilderness = Wilderness{
			Enabled:    true,
			Start:      f.Wilderness.Start,
			LevelDepth: f.Wilderness.LevelDepth,
		}
	}
	return auth, nil
}

func convertYAMLZone(yz yamlZone) (Zone, error) {
	switch {
	case yz.Rect != nil && yz.Circle != nil:
		return Zone{}, fmt.Errorf("zone %q: rect and circle are mutually exclusive", yz.ID)
	case yz.Rect != nil:
		r := yz.Rect
		return Zone{ID: yz.ID, Shape: Rect{MinX: r.MinX, MinY: r.MinY, MaxX: r.MaxX, MaxY: r.MaxY, Plane: r.Plane}}, nil
	case yz.Circle != nil:
		return Zone{ID: yz.ID, Shape: Circle{Center: yz.Circle.Center, Radius: yz.Circle.Radius}}, nil
	default:
		return Zone{}, fmt.Errorf("zone %q: one of rect or circle is required", yz.ID)
	}
}
