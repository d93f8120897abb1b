package zone_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/zone"
)

const authorityYAML = `
safe_zones:
  - id: bank
    rect: {min_x: 10, min_y: 10, max_x: 20, max_y: 20, plane: 0}
  - id: shrine
    circle:
      center: {x: 100, y: 100, plane: 1}
      radius: 5
multi_combat:
  - id: arena
    rect: {min_x: 50, min_y: 50, max_x: 60, max_y: 60}
wilderness:
  start: {x: 0, y: 3520, plane: 0}
  level_depth: 8
`

func TestChebyshevDistance(t *testing.T) {
	tests := []struct {
		a, b zone.Position
		want int
	}{
		{zone.Position{X: 0, Y: 0}, zone.Position{X: 0, Y: 0}, 0},
		{zone.Position{X: 0, Y: 0}, zone.Position{X: 1, Y: 1}, 1},
		{zone.Position{X: 0, Y: 0}, zone.Position{X: 3, Y: -7}, 7},
		{zone.Position{X: -4, Y: 2}, zone.Position{X: 4, Y: 2}, 8},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, zone.ChebyshevDistance(tc.a, tc.b), "%v -> %v", tc.a, tc.b)
	}
}

func TestChebyshevDistance_Property_Symmetric(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := zone.Position{X: rapid.IntRange(-1000, 1000).Draw(rt, "ax"), Y: rapid.IntRange(-1000, 1000).Draw(rt, "ay")}
		b := zone.Position{X: rapid.IntRange(-1000, 1000).Draw(rt, "bx"), Y: rapid.IntRange(-1000, 1000).Draw(rt, "by")}
		d := zone.ChebyshevDistance(a, b)
		assert.Equal(rt, d, zone.ChebyshevDistance(b, a))
		assert.GreaterOrEqual(rt, d, 0)
	})
}

func TestRect_Contains(t *testing.T) {
	r := zone.Rect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 5}
	assert.True(t, r.Contains(zone.Position{X: 0, Y: 0}))
	assert.True(t, r.Contains(zone.Position{X: 10, Y: 5}))
	assert.False(t, r.Contains(zone.Position{X: 11, Y: 5}))
	assert.False(t, r.Contains(zone.Position{X: 5, Y: 3, Plane: 1}))
}

func TestCircle_Contains(t *testing.T) {
	c := zone.Circle{Center: zone.Position{X: 0, Y: 0}, Radius: 5}
	assert.True(t, c.Contains(zone.Position{X: 3, Y: 4}))
	assert.False(t, c.Contains(zone.Position{X: 4, Y: 4}))
	assert.False(t, c.Contains(zone.Position{X: 0, Y: 0, Plane: 2}))
}

func TestAuthority_WildernessLevel(t *testing.T) {
	a := &zone.Authority{Wilderness: zone.Wilderness{Enabled: true, Start: zone.Position{Y: 100}, LevelDepth: 8}}
	assert.Equal(t, 0, a.WildernessLevel(zone.Position{Y: 99}))
	assert.Equal(t, 1, a.WildernessLevel(zone.Position{Y: 100}))
	assert.Equal(t, 1, a.WildernessLevel(zone.Position{Y: 107}))
	assert.Equal(t, 2, a.WildernessLevel(zone.Position{Y: 108}))
	assert.Equal(t, 0, a.WildernessLevel(zone.Position{Y: 200, Plane: 1}))

	disabled := &zone.Authority{}
	assert.Equal(t, 0, disabled.WildernessLevel(zone.Position{Y: 5000}))
}

func TestLoadAuthorityFromBytes_Valid(t *testing.T) {
	a, err := zone.LoadAuthorityFromBytes([]byte(authorityYAML))
	require.NoError(t, err)
	require.Len(t, a.SafeZones, 2)
	require.Len(t, a.MultiCombat, 1)

	assert.True(t, a.InSafeZone(zone.Position{X: 15, Y: 15}))
	assert.True(t, a.InSafeZone(zone.Position{X: 102, Y: 101, Plane: 1}))
	assert.False(t, a.InSafeZone(zone.Position{X: 102, Y: 101}))
	assert.True(t, a.InMultiCombat(zone.Position{X: 55, Y: 55}))
	assert.False(t, a.InMultiCombat(zone.Position{X: 15, Y: 15}))
	assert.Equal(t, 3, a.WildernessLevel(zone.Position{X: 0, Y: 3520 + 17}))
}

func TestLoadAuthorityFromBytes_InvalidYAML(t *testing.T) {
	_, err := zone.LoadAuthorityFromBytes([]byte("safe_zones: [[["))
	assert.Error(t, err)
}

func TestLoadAuthorityFromBytes_MissingShape(t *testing.T) {
	_, err := zone.LoadAuthorityFromBytes([]byte("safe_zones:\n  - id: nowhere\n"))
	assert.ErrorContains(t, err, "one of rect or circle")
}

func TestLoadAuthorityFromBytes_BothShapes(t *testing.T) {
	data := `
safe_zones:
  - id: both
    rect: {min_x: 0, min_y: 0, max_x: 1, max_y: 1}
    circle: {center: {x: 0, y: 0}, radius: 1}
`
	_, err := zone.LoadAuthorityFromBytes([]byte(data))
	assert.ErrorContains(t, err, "mutually exclusive")
}

func TestLoadAuthorityFromBytes_DuplicateID(t *testing.T) {
	data := `
safe_zones:
  - id: dup
    rect: {min_x: 0, min_y: 0, max_x: 1, max_y: 1}
multi_combat:
  - id: dup
    rect: {min_x: 0, min_y: 0, max_x: 1, max_y: 1}
`
	_, err := zone.LoadAuthorityFromBytes([]byte(data))
	assert.ErrorContains(t, err, "duplicate zone ID")
}

func TestLoadAuthorityFromBytes_InvertedRect(t *testing.T) {
	data := `
safe_zones:
  - id: bad
    rect: {min_x: 5, min_y: 0, max_x: 1, max_y: 1}
`
	_, err := zone.LoadAuthorityFromBytes([]byte(data))
	assert.Error(t, err)
}

func TestLoadAuthorityFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zones.yaml")
	require.NoError(t, os.WriteFile(path, []byte(authorityYAML), 0o644))

	a, err := zone.LoadAuthorityFromFile(path)
	require.NoError(t, err)
	assert.True(t, a.Wilderness.Enabled)
}

func TestLoadAuthorityFromFile_NotFound(t *testing.T) {
	_, err := zone.LoadAuthorityFromFile("/nonexistent/zones.yaml")
	assert.Error(t, err)
}
