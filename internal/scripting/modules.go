package scripting

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/inventory"
)

// registerModules installs the engine and classic tables into L.
//
//   - engine.log(msg) logs msg at info level.
//   - classic.hit_chance(attack, defence) and classic.max_hit(input) call
//     the built-in formula so scripts can adjust rather than replace it.
//
// Precondition: L must be from NewSandboxedState.
func registerModules(L *lua.LState, fallback combat.Formula, logger *zap.Logger) {
	engine := L.NewTable()
	L.SetField(engine, "log", L.NewFunction(func(L *lua.LState) int {
		logger.Info("formula script", zap.String("msg", L.CheckString(1)))
		return 0
	}))
	L.SetGlobal("engine", engine)

	classic := L.NewTable()
	L.SetField(classic, "hit_chance", L.NewFunction(func(L *lua.LState) int {
		a := L.CheckInt(1)
		d := L.CheckInt(2)
		L.Push(lua.LNumber(fallback.HitChance(a, d)))
		return 1
	}))
	L.SetField(classic, "max_hit", L.NewFunction(func(L *lua.LState) int {
		in, err := maxHitInputFromTable(L.CheckTable(1))
		if err != nil {
			L.ArgError(1, err.Error())
			return 0
		}
		L.Push(lua.LNumber(fallback.MaxHit(in)))
		return 1
	}))
	L.SetGlobal("classic", classic)
}

// maxHitTable converts in to the Lua table handed to max_hit.
func maxHitTable(L *lua.LState, in combat.MaxHitInput) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "attack_type", lua.LString(in.AttackType.String()))
	L.SetField(t, "effective_level", lua.LNumber(in.EffectiveLevel))
	L.SetField(t, "strength_bonus", lua.LNumber(in.StrengthBonus))
	L.SetField(t, "base_damage", lua.LNumber(in.BaseDamage))
	L.SetField(t, "damage_percent", lua.LNumber(in.DamagePercent))
	return t
}

func maxHitInputFromTable(t *lua.LTable) (combat.MaxHitInput, error) {
	num := func(key string) int {
		if n, ok := t.RawGetString(key).(lua.LNumber); ok {
			return int(n)
		}
		return 0
	}
	in := combat.MaxHitInput{
		EffectiveLevel: num("effective_level"),
		StrengthBonus:  num("strength_bonus"),
		BaseDamage:     num("base_damage"),
		DamagePercent:  num("damage_percent"),
	}
	name := lua.LVAsString(t.RawGetString("attack_type"))
	switch name {
	case inventory.AttackMelee.String():
		in.AttackType = inventory.AttackMelee
	case inventory.AttackRanged.String():
		in.AttackType = inventory.AttackRanged
	case inventory.AttackMagic.String():
		in.AttackType = inventory.AttackMagic
	default:
		return in, fmt.Errorf("unknown attack_type %q", name)
	}
	return in, nil
}
