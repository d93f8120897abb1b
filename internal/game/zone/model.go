// Package zone provides the spatial policy model for combat: positions,
// zone shapes, safe zones, multi-combat areas and wilderness depth.
package zone

import "fmt"

// Position is a tile coordinate on a plane.
type Position struct {
	X     int `yaml:"x"`
	Y     int `yaml:"y"`
	Plane int `yaml:"plane"`
}

// ChebyshevDistance returns the grid distance between a and b, ignoring plane.
//
// Postcondition: Returns max(|a.X-b.X|, |a.Y-b.Y|) >= 0.
func ChebyshevDistance(a, b Position) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	if dx > dy {
		return dx
	}
	return dy
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Shape is a region a position can be tested against.
type Shape interface {
	// Contains reports whether p lies inside the shape, edges inclusive.
	Contains(p Position) bool
}

// Rect is an axis-aligned rectangle on a single plane, bounds inclusive.
type Rect struct {
	MinX, MinY int
	MaxX, MaxY int
	Plane      int
}

// Contains reports whether p lies within the rectangle on the same plane.
func (r Rect) Contains(p Position) bool {
	return p.Plane == r.Plane &&
		p.X >= r.MinX && p.X <= r.MaxX &&
		p.Y >= r.MinY && p.Y <= r.MaxY
}

// Circle is a Euclidean disc on a single plane, edge inclusive.
type Circle struct {
	Center Position
	Radius int
}

// Contains reports whether p lies within Radius of Center on the same plane.
func (c Circle) Contains(p Position) bool {
	if p.Plane != c.Center.Plane {
		return false
	}
	dx := p.X - c.Center.X
	dy := p.Y - c.Center.Y
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

// Zone is a named region.
type Zone struct {
	ID    string
	Shape Shape
}

// Wilderness describes the open-PvP terrain. Positions on Plane with
// Y >= Start.Y are wilderness; the level grows by one every LevelDepth rows.
type Wilderness struct {
	Enabled    bool
	Start      Position
	LevelDepth int
}

// DefaultLevelDepth is the number of rows per wilderness level.
const DefaultLevelDepth = 8

// Authority answers spatial policy questions for the combat engine.
// It is immutable after construction and safe for concurrent use.
type Authority struct {
	SafeZones   []Zone
	MultiCombat []Zone
	Wilderness  Wilderness
}

// InSafeZone reports whether p falls inside any safe zone.
func (a *Authority) InSafeZone(p Position) bool {
	return anyContains(a.SafeZones, p)
}

// InMultiCombat reports whether p falls inside any multi-combat zone.
func (a *Authority) InMultiCombat(p Position) bool {
	return anyContains(a.MultiCombat, p)
}

// WildernessLevel returns the wilderness depth at p, or 0 outside the wilderness.
//
// Postcondition: Returns 0 when wilderness is disabled or p is outside it; >= 1 otherwise.
func (a *Authority) WildernessLevel(p Position) int {
	w := a.Wilderness
	if !w.Enabled || p.Plane != w.Start.Plane || p.Y < w.Start.Y {
		return 0
	}
	depth := w.LevelDepth
	if depth <= 0 {
		depth = DefaultLevelDepth
	}
	return (p.Y-w.Start.Y)/depth + 1
}

// Validate checks authority invariants.
//
// Postcondition: Returns nil if valid, or an error describing the first violation.
func (a *Authority) Validate() error {
	seen := make(map[string]bool)
	for _, group := range [][]Zone{a.SafeZones, a.MultiCombat} {
		for _, z := range group {
			if z.ID == "" {
				return fmt.Errorf("zone ID must not be empty")
			}
			if seen[z.ID] {
				return fmt.Errorf("duplicate zone ID %q", z.ID)
			}
			seen[z.ID] = true
			if z.Shape == nil {
				return fmt.Errorf("zone %q: shape must be a rect or a circle", z.ID)
			}
			switch s := z.Shape.(type) {
			case Rect:
				if s.MinX > s.MaxX || s.MinY > s.MaxY {
					return fmt.Errorf("zone %q: rect min must not exceed max", z.ID)
				}
			case Circle:
				if s.Radius < 0 {
					return fmt.Errorf("zone %q: circle radius must be >= 0", z.ID)
				}
			}
		}
	}
	if a.Wilderness.LevelDepth < 0 {
		return fmt.Errorf("wilderness level_depth must be >= 0, got %d", a.Wilderness.LevelDepth)
	}
	return nil
}

func anyContains(zones []Zone, p Position) bool {
	for _, z := range zones {
		if z.Shape != nil && z.Shape.Contains(p) {
			return true
		}
	}
	return false
}
