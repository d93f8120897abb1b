package combat_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/entity"
	"github.com/cory-johannsen/skirmish/internal/game/inventory"
	"github.com/cory-johannsen/skirmish/internal/game/zone"
)

// fixedSource always draws the same value: draw for Float64, and either
// the lowest or the highest value for Intn.
type fixedSource struct {
	draw    float64
	highest bool
}

func (f fixedSource) Intn(n int) int {
	if f.highest {
		return n - 1
	}
	return 0
}

func (f fixedSource) Float64() float64 { return f.draw }

// alwaysHit lands every attack for max damage.
var alwaysHit = fixedSource{draw: 0, highest: true}

// alwaysMiss fails every hit roll.
var alwaysMiss = fixedSource{draw: 0.999999}

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

// testZones has a safe zone around the origin, a multi-combat area east of
// it, and wilderness from row 3520 on plane 0.
func testZones() *zone.Authority {
	return &zone.Authority{
		SafeZones: []zone.Zone{
			{ID: "bank", Shape: zone.Rect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}},
		},
		MultiCombat: []zone.Zone{
			{ID: "arena", Shape: zone.Rect{MinX: 100, MinY: 100, MaxX: 200, MaxY: 200}},
		},
		Wilderness: zone.Wilderness{Enabled: true, Start: zone.Position{X: 0, Y: 3520}, LevelDepth: 8},
	}
}

// fighter builds a combat-capable record at (x, y) with every skill at level.
func fighter(id string, x, y, level int) *entity.Record {
	stats := &entity.StatsProfile{Hitpoints: 10 * level, MaxHitpoints: 10 * level}
	for sk := entity.SkillAttack; sk < entity.NumSkills; sk++ {
		stats.Skills[sk] = entity.SkillLevel{Level: level}
	}
	return &entity.Record{
		EntityID:  id,
		Stats:     stats,
		Combat:    &entity.CombatProfile{SpecialEnergy: entity.MaxSpecialEnergy},
		Inventory: &entity.Inventory{},
		Movement:  &entity.Movement{Position: zone.Position{X: x, Y: y}},
	}
}

func combatant(r *entity.Record) combat.Combatant {
	return combat.Combatant{
		ID:       r.EntityID,
		Stats:    r.Stats,
		Combat:   r.Combat,
		Weapon:   r.Inventory.EquippedWeapon(),
		Movement: r.Movement,
	}
}

// clock is a manually advanced time source.
type clock struct{ now time.Time }

func (c *clock) Now() time.Time                    { return c.now }
func (c *clock) Advance(d time.Duration) time.Time { c.now = c.now.Add(d); return c.now }

type harness struct {
	store *entity.Store
	rec   *combat.Recorder
	clock *clock
	mgr   *combat.Manager
}

func newHarness(t *testing.T, src combat.Source, records ...*entity.Record) *harness {
	t.Helper()
	store := entity.NewStore()
	for _, r := range records {
		require.NoError(t, store.Add(r))
	}
	h := &harness{store: store, rec: &combat.Recorder{}, clock: &clock{now: t0}}
	h.mgr = combat.NewManager(store, testZones(), combat.DefaultSettings(), src, h.rec, zap.NewNop(),
		combat.WithClock(h.clock.Now))
	return h
}

// eventsOf returns the recorded events of kind k.
func eventsOf[T combat.Event](rec *combat.Recorder) []T {
	var out []T
	for _, ev := range rec.Events() {
		if v, ok := ev.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func scimitar() *inventory.WeaponDef {
	return &inventory.WeaponDef{ID: "scimitar", Name: "Scimitar", Type: inventory.WeaponScimitar}
}

func longbow() *inventory.WeaponDef {
	return &inventory.WeaponDef{ID: "longbow", Name: "Longbow", Type: inventory.WeaponLongbow}
}
