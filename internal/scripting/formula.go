package scripting

import (
	"fmt"
	"math"
	"os"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// LuaFormula is a combat.Formula whose hit_chance and max_hit may be
// defined by a Lua script. Undefined functions, runtime errors, budget
// overruns and non-numeric results fall back to the wrapped formula.
//
// LuaFormula is safe for concurrent use; calls are serialized on one VM.
type LuaFormula struct {
	mu       sync.Mutex
	L        *lua.LState
	limit    int
	fallback combat.Formula
	logger   *zap.Logger
}

// LoadFormula reads the script at path and builds a LuaFormula from it.
//
// Precondition: logger must be non-nil.
// Postcondition: Returns a ready LuaFormula or an error describing why the
// script could not be loaded.
func LoadFormula(path string, limit int, logger *zap.Logger) (*LuaFormula, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scripting: reading formula script %q: %w", path, err)
	}
	f, err := NewFormula(string(src), limit, logger)
	if err != nil {
		return nil, fmt.Errorf("scripting: loading %q: %w", path, err)
	}
	return f, nil
}

// NewFormula runs src in a fresh sandbox with the classic formula as fallback.
//
// Precondition: logger must be non-nil.
// Postcondition: Returns a ready LuaFormula, or an error when src fails to
// compile, raises, or exceeds the instruction budget at load time.
func NewFormula(src string, limit int, logger *zap.Logger) (*LuaFormula, error) {
	if logger == nil {
		panic("scripting.NewFormula: logger must be non-nil")
	}
	fallback := combat.ClassicFormula{}
	L := NewSandboxedState()
	registerModules(L, fallback, logger)
	if err := WithBudget(L, limit, func() error { return L.DoString(src) }); err != nil {
		L.Close()
		return nil, err
	}
	return &LuaFormula{L: L, limit: limit, fallback: fallback, logger: logger}, nil
}

// Close releases the VM.
func (f *LuaFormula) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.L.Close()
}

// Defines reports whether the script defines the global function name.
func (f *LuaFormula) Defines(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.L.GetGlobal(name).Type() == lua.LTFunction
}

// HitChance implements combat.Formula.
func (f *LuaFormula) HitChance(attackRating, defenceRating int) float64 {
	v, ok := f.call("hit_chance", func(L *lua.LState) []lua.LValue {
		return []lua.LValue{lua.LNumber(attackRating), lua.LNumber(defenceRating)}
	})
	if !ok || math.IsNaN(v) {
		return f.fallback.HitChance(attackRating, defenceRating)
	}
	return v
}

// MaxHit implements combat.Formula.
func (f *LuaFormula) MaxHit(in combat.MaxHitInput) int {
	v, ok := f.call("max_hit", func(L *lua.LState) []lua.LValue {
		return []lua.LValue{maxHitTable(L, in)}
	})
	if !ok || math.IsNaN(v) {
		return f.fallback.MaxHit(in)
	}
	return max(int(math.Floor(v)), 0)
}

// call invokes the global fn with the arguments built by args and returns
// its numeric result. ok is false when fn is undefined or did not return a
// number.
func (f *LuaFormula) call(fn string, args func(L *lua.LState) []lua.LValue) (float64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	L := f.L
	hook := L.GetGlobal(fn)
	if hook.Type() != lua.LTFunction {
		return 0, false
	}
	err := WithBudget(L, f.limit, func() error {
		return L.CallByParam(lua.P{Fn: hook, NRet: 1, Protect: true}, args(L)...)
	})
	if err != nil {
		f.logger.Warn("scripting: formula error, using classic",
			zap.String("fn", fn),
			zap.Error(err),
		)
		return 0, false
	}
	ret := L.Get(-1)
	L.Pop(1)
	n, ok := ret.(lua.LNumber)
	if !ok {
		f.logger.Warn("scripting: formula returned non-number, using classic",
			zap.String("fn", fn),
			zap.String("type", ret.Type().String()),
		)
		return 0, false
	}
	return float64(n), true
}
