package combat_test

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/entity"
	"github.com/cory-johannsen/skirmish/internal/game/inventory"
)

func TestNewManager_PanicsOnNilCollaborators(t *testing.T) {
	assert.Panics(t, func() {
		combat.NewManager(nil, nil, combat.DefaultSettings(), alwaysHit, &combat.Recorder{}, zap.NewNop())
	})
	bad := combat.DefaultSettings()
	bad.TickInterval = 0
	assert.Panics(t, func() {
		combat.NewManager(entity.NewStore(), nil, bad, alwaysHit, &combat.Recorder{}, zap.NewNop())
	})
}

func TestInitiateAttack_StartsSession(t *testing.T) {
	a, b := fighter("a", 50, 50, 10), fighter("b", 51, 50, 10)
	h := newHarness(t, alwaysMiss, a, b)

	require.True(t, h.mgr.InitiateAttack("a", "b"))
	s, ok := h.mgr.Session("a")
	require.True(t, ok)
	assert.Equal(t, "b", s.TargetID)
	assert.Equal(t, t0, s.StartedAt)
	assert.True(t, a.Combat.InCombat)
	assert.Equal(t, "b", a.Combat.TargetID)
	assert.Equal(t, 4*combat.DefaultSettings().TickInterval, a.Combat.AttackInterval)

	starts := eventsOf[combat.CombatStart](h.rec)
	require.Len(t, starts, 1)
	assert.Equal(t, s.ID, starts[0].Session.ID)
}

func TestInitiateAttack_TwiceDoesNotDuplicate(t *testing.T) {
	h := newHarness(t, alwaysMiss, fighter("a", 50, 50, 10), fighter("b", 51, 50, 10))
	require.True(t, h.mgr.InitiateAttack("a", "b"))
	first, _ := h.mgr.Session("a")
	require.True(t, h.mgr.InitiateAttack("a", "b"))
	second, _ := h.mgr.Session("a")

	assert.Equal(t, 1, h.mgr.Len())
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, eventsOf[combat.CombatStart](h.rec), 1)
}

func TestInitiateAttack_RetargetEndsOldSession(t *testing.T) {
	a := fighter("a", 50, 50, 10)
	h := newHarness(t, alwaysMiss, a, fighter("b", 51, 50, 10), fighter("c", 50, 51, 10))
	require.True(t, h.mgr.InitiateAttack("a", "b"))
	require.True(t, h.mgr.InitiateAttack("a", "c"))

	assert.Equal(t, []combat.EventKind{combat.KindCombatStart, combat.KindCombatEnd, combat.KindCombatStart}, h.rec.Kinds())
	ends := eventsOf[combat.CombatEnd](h.rec)
	assert.Equal(t, combat.EndRetarget, ends[0].Reason)
	assert.Equal(t, "b", ends[0].Session.TargetID)
	assert.Equal(t, 1, h.mgr.Len())
	assert.Equal(t, "c", a.Combat.TargetID)
	assert.True(t, a.Combat.InCombat)
}

func TestInitiateAttack_SafeZoneDenied(t *testing.T) {
	a := fighter("a", 11, 5, 10)
	h := newHarness(t, alwaysHit, a, fighter("b", 10, 5, 10))

	assert.False(t, h.mgr.InitiateAttack("a", "b"))
	assert.Equal(t, 0, h.mgr.Len())
	assert.False(t, a.Combat.InCombat)
	denied := eventsOf[combat.CombatDenied](h.rec)
	require.Len(t, denied, 1)
	assert.Equal(t, combat.DenySafeZone, denied[0].Reason)
	assert.Equal(t, "a", denied[0].AttackerID)
}

func TestInitiateAttack_Property_SafeZoneNeverEngages(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		x := rapid.IntRange(0, 10).Draw(rt, "x")
		y := rapid.IntRange(0, 10).Draw(rt, "y")
		dx := rapid.IntRange(-1, 1).Draw(rt, "dx")
		dy := rapid.IntRange(-1, 1).Draw(rt, "dy")
		if dx == 0 && dy == 0 {
			dx = 1
		}
		h := newHarness(t, alwaysHit, fighter("in", x, y, 10), fighter("out", x+dx, y+dy, 10))
		assert.False(rt, h.mgr.InitiateAttack("out", "in"))
		assert.False(rt, h.mgr.InitiateAttack("in", "out"))
		assert.Equal(rt, 0, h.mgr.Len())
		for _, d := range eventsOf[combat.CombatDenied](h.rec) {
			assert.Equal(rt, combat.DenySafeZone, d.Reason)
		}
	})
}

func TestInitiateAttack_AutoRetaliate(t *testing.T) {
	b := fighter("b", 51, 50, 10)
	b.Combat.AutoRetaliate = true
	h := newHarness(t, alwaysMiss, fighter("a", 50, 50, 10), b)

	require.True(t, h.mgr.InitiateAttack("a", "b"))
	assert.Equal(t, 2, h.mgr.Len())
	s, ok := h.mgr.Session("b")
	require.True(t, ok)
	assert.Equal(t, "a", s.TargetID)
	assert.Len(t, eventsOf[combat.CombatStart](h.rec), 2)
}

func TestInitiateAttack_UnknownEntity(t *testing.T) {
	h := newHarness(t, alwaysHit, fighter("a", 50, 50, 10))
	assert.False(t, h.mgr.InitiateAttack("a", "ghost"))
	denied := eventsOf[combat.CombatDenied](h.rec)
	require.Len(t, denied, 1)
	assert.Equal(t, combat.DenyDead, denied[0].Reason)
}

func TestTick_AttacksOnInterval(t *testing.T) {
	b := fighter("b", 51, 50, 10)
	h := newHarness(t, alwaysHit, fighter("a", 50, 50, 10), b)
	require.True(t, h.mgr.InitiateAttack("a", "b"))

	h.mgr.Tick(t0)
	hits := eventsOf[combat.CombatHit](h.rec)
	require.Len(t, hits, 1)
	assert.Equal(t, 2, hits[0].Hit.Damage)
	assert.Equal(t, combat.OutcomeNormal, hits[0].Hit.Outcome)
	assert.Equal(t, 98, b.Stats.Hitpoints)
	assert.Equal(t, 98, hits[0].TargetHitpoints)
	require.Len(t, b.Combat.HitSplats, 1)
	assert.Equal(t, entity.SplatHit, b.Combat.HitSplats[0].Kind)

	tick := combat.DefaultSettings().TickInterval
	h.mgr.Tick(t0.Add(tick))
	assert.Len(t, eventsOf[combat.CombatHit](h.rec), 1, "interval not yet elapsed")

	h.mgr.Tick(t0.Add(4 * tick))
	assert.Len(t, eventsOf[combat.CombatHit](h.rec), 2)
	s, _ := h.mgr.Session("a")
	assert.Len(t, s.History, 2)
	assert.Equal(t, t0.Add(4*tick), s.LastAttackAt)
}

func TestTick_HistoryAndSplatsBounded(t *testing.T) {
	b := fighter("b", 51, 50, 10)
	h := newHarness(t, alwaysMiss, fighter("a", 50, 50, 10), b)
	require.True(t, h.mgr.InitiateAttack("a", "b"))

	interval := h.mgr.AttackInterval(inventory.Unarmed, entity.StanceAccurate)
	now := t0
	for range 15 {
		h.mgr.Tick(now)
		now = now.Add(interval)
	}
	s, ok := h.mgr.Session("a")
	require.True(t, ok)
	require.Len(t, s.History, combat.DefaultSettings().HistorySize)
	assert.Equal(t, t0.Add(5*interval), s.History[0].Timestamp, "oldest entries are dropped")
	for _, hr := range s.History {
		assert.Equal(t, combat.OutcomeMiss, hr.Outcome)
		assert.Zero(t, hr.Damage)
	}
	assert.Equal(t, 100, b.Stats.Hitpoints)
	assert.Len(t, b.Combat.HitSplats, combat.DefaultSettings().MaxHitSplats)
}

func TestTick_IdleSessionTimesOutOnce(t *testing.T) {
	b := fighter("b", 51, 50, 10)
	h := newHarness(t, alwaysHit, fighter("a", 50, 50, 10), b)
	require.True(t, h.mgr.InitiateAttack("a", "b"))
	b.Movement.Position.X = 60

	timeout := combat.DefaultSettings().SessionTimeout
	h.mgr.Tick(t0)
	h.mgr.Tick(t0.Add(timeout))
	assert.Equal(t, 1, h.mgr.Len(), "range denial only skips the attack")
	assert.Empty(t, eventsOf[combat.CombatHit](h.rec))

	h.mgr.Tick(t0.Add(timeout + time.Millisecond))
	h.mgr.Tick(t0.Add(2 * timeout))
	assert.Equal(t, 0, h.mgr.Len())
	ends := eventsOf[combat.CombatEnd](h.rec)
	require.Len(t, ends, 1)
	assert.Equal(t, combat.EndTimeout, ends[0].Reason)
}

func TestTick_LethalHitEndsSessionSameTick(t *testing.T) {
	b := fighter("b", 51, 50, 10)
	b.Stats.Hitpoints = 1
	b.Combat.AutoRetaliate = true
	h := newHarness(t, alwaysHit, fighter("a", 50, 50, 10), b)
	require.True(t, h.mgr.InitiateAttack("a", "b"))
	h.rec.Reset()

	h.mgr.Tick(t0)

	kinds := h.rec.Kinds()
	deathAt := slices.Index(kinds, combat.KindEntityDeath)
	firstEnd := slices.Index(kinds, combat.KindCombatEnd)
	require.GreaterOrEqual(t, deathAt, 0)
	require.GreaterOrEqual(t, firstEnd, 0)
	assert.Less(t, deathAt, firstEnd)
	assert.Equal(t, 0, h.mgr.Len())

	deaths := eventsOf[combat.EntityDeath](h.rec)
	require.Len(t, deaths, 1)
	assert.Equal(t, "b", deaths[0].EntityID)
	assert.Equal(t, "a", deaths[0].KillerID)
	assert.Equal(t, combat.CauseKilled, deaths[0].Cause)
	for _, e := range eventsOf[combat.CombatEnd](h.rec) {
		assert.Equal(t, combat.EndDeath, e.Reason)
	}
	assert.Len(t, eventsOf[combat.CombatEnd](h.rec), 2)
}

func TestTick_ExternallyZeroedTargetDiesBeforeSessionEnds(t *testing.T) {
	b := fighter("b", 51, 50, 10)
	h := newHarness(t, alwaysMiss, fighter("a", 50, 50, 10), b)
	require.True(t, h.mgr.InitiateAttack("a", "b"))
	h.rec.Reset()

	b.Stats.Hitpoints = 0
	h.mgr.Tick(t0)

	assert.Equal(t, []combat.EventKind{combat.KindEntityDeath, combat.KindCombatEnd}, h.rec.Kinds())
	deaths := eventsOf[combat.EntityDeath](h.rec)
	require.Len(t, deaths, 1)
	assert.Equal(t, "b", deaths[0].EntityID)
	assert.Equal(t, "a", deaths[0].KillerID)
	ends := eventsOf[combat.CombatEnd](h.rec)
	require.Len(t, ends, 1)
	assert.Equal(t, combat.EndDeath, ends[0].Reason)
	assert.Equal(t, 0, h.mgr.Len())
}

func TestTick_ExternallyZeroedAttackerDiesWithoutKiller(t *testing.T) {
	a := fighter("a", 50, 50, 10)
	h := newHarness(t, alwaysHit, a, fighter("b", 51, 50, 10))
	require.True(t, h.mgr.InitiateAttack("a", "b"))
	h.rec.Reset()

	a.Stats.Hitpoints = 0
	h.mgr.Tick(t0)

	assert.Equal(t, []combat.EventKind{combat.KindEntityDeath, combat.KindCombatEnd}, h.rec.Kinds())
	deaths := eventsOf[combat.EntityDeath](h.rec)
	require.Len(t, deaths, 1)
	assert.Equal(t, "a", deaths[0].EntityID)
	assert.Empty(t, deaths[0].KillerID)
	assert.Equal(t, 0, h.mgr.Len())
}

func TestTick_MissingEntityEndsSilently(t *testing.T) {
	h := newHarness(t, alwaysHit, fighter("a", 50, 50, 10), fighter("b", 51, 50, 10))
	require.True(t, h.mgr.InitiateAttack("a", "b"))
	require.NoError(t, h.store.Remove("b"))
	h.rec.Reset()

	h.mgr.Tick(t0)
	assert.Equal(t, 0, h.mgr.Len())
	assert.Empty(t, h.rec.Events())
}

func TestTick_SafeZoneEntryEndsSession(t *testing.T) {
	b := fighter("b", 51, 50, 10)
	h := newHarness(t, alwaysHit, fighter("a", 50, 50, 10), b)
	require.True(t, h.mgr.InitiateAttack("a", "b"))
	b.Movement.Position.X, b.Movement.Position.Y = 5, 5

	h.mgr.Tick(t0)
	ends := eventsOf[combat.CombatEnd](h.rec)
	require.Len(t, ends, 1)
	assert.Equal(t, combat.EndReason(combat.DenySafeZone), ends[0].Reason)
}

func TestStopCombat_Idempotent(t *testing.T) {
	a := fighter("a", 50, 50, 10)
	h := newHarness(t, alwaysHit, a, fighter("b", 51, 50, 10))
	require.True(t, h.mgr.InitiateAttack("a", "b"))

	assert.True(t, h.mgr.StopCombat("a"))
	assert.False(t, h.mgr.StopCombat("a"))
	assert.False(t, a.Combat.InCombat)
	assert.Empty(t, a.Combat.TargetID)
	ends := eventsOf[combat.CombatEnd](h.rec)
	require.Len(t, ends, 1)
	assert.Equal(t, combat.EndStopped, ends[0].Reason)
}

func TestAttackInterval(t *testing.T) {
	h := newHarness(t, alwaysHit)
	tick := combat.DefaultSettings().TickInterval
	assert.Equal(t, 4*tick, h.mgr.AttackInterval(inventory.Unarmed, entity.StanceAccurate))
	assert.Equal(t, 3*tick, h.mgr.AttackInterval(inventory.Unarmed, entity.StanceRapid))
	fast := &inventory.WeaponDef{ID: "f", Name: "F", Type: inventory.WeaponDagger, SpeedTicks: 1}
	assert.Equal(t, tick, h.mgr.AttackInterval(fast, entity.StanceRapid))
}

func TestManager_Property_OneSessionPerAttacker(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ids := []string{"a", "b", "c", "d"}
		records := []*entity.Record{
			fighter("a", 150, 150, 10), fighter("b", 151, 150, 10),
			fighter("c", 150, 151, 10), fighter("d", 151, 151, 10),
		}
		for _, r := range records {
			r.Combat.AutoRetaliate = rapid.Bool().Draw(rt, "retaliate")
			r.Stats.Hitpoints = 10_000
		}
		h := newHarness(t, dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed")), records...)
		now := t0
		steps := rapid.IntRange(1, 40).Draw(rt, "steps")
		for range steps {
			att := rapid.SampledFrom(ids).Draw(rt, "attacker")
			tgt := rapid.SampledFrom(ids).Draw(rt, "target")
			switch rapid.IntRange(0, 2).Draw(rt, "op") {
			case 0:
				h.mgr.InitiateAttack(att, tgt)
			case 1:
				h.mgr.StopCombat(att)
			case 2:
				now = now.Add(time.Duration(rapid.IntRange(0, 3000).Draw(rt, "ms")) * time.Millisecond)
				h.mgr.Tick(now)
			}
			seen := make(map[string]bool)
			for _, s := range h.mgr.ActiveSessions() {
				assert.False(rt, seen[s.AttackerID], "duplicate session for %s", s.AttackerID)
				seen[s.AttackerID] = true
				assert.NotEqual(rt, s.AttackerID, s.TargetID)
			}
		}
	})
}
