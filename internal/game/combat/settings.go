package combat

import (
	"errors"
	"fmt"
	"time"
)

// Settings holds the tunables of the combat engine.
type Settings struct {
	// TickInterval is the duration of one game tick.
	TickInterval time.Duration
	// SessionTimeout ends sessions idle for longer than this.
	SessionTimeout time.Duration
	// HistorySize bounds the per-session hit log.
	HistorySize int
	// MaxHitChance caps every hit chance.
	MaxHitChance float64
	// ProtectionDefenceMultiplier scales the defence rating of a defender
	// protecting against the incoming attack type.
	ProtectionDefenceMultiplier float64
	// ProtectionDamageMultiplier scales damage dealt to a protected defender.
	ProtectionDamageMultiplier float64
	SpecialCost                int
	SpecialDamageMultiplier    float64
	SpecialAccuracyMultiplier  float64
	SpecialRegenAmount         int
	SpecialRegenInterval       time.Duration
	// MaxHitSplats bounds the hit-splat queue on each CombatProfile.
	MaxHitSplats int
}

// DefaultSettings returns the stock engine tunables.
func DefaultSettings() Settings {
	return Settings{
		TickInterval:                600 * time.Millisecond,
		SessionTimeout:              10 * time.Second,
		HistorySize:                 10,
		MaxHitChance:                0.99,
		ProtectionDefenceMultiplier: 1.0,
		ProtectionDamageMultiplier:  0.6,
		SpecialCost:                 25,
		SpecialDamageMultiplier:     1.2,
		SpecialAccuracyMultiplier:   1.0,
		SpecialRegenAmount:          10,
		SpecialRegenInterval:        30 * time.Second,
		MaxHitSplats:                4,
	}
}

// Validate reports every invalid field in one error.
//
// Postcondition: Returns nil iff all fields are within range.
func (s Settings) Validate() error {
	var errs []error
	if s.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("tick_interval must be > 0, got %s", s.TickInterval))
	}
	if s.SessionTimeout <= 0 {
		errs = append(errs, fmt.Errorf("session_timeout must be > 0, got %s", s.SessionTimeout))
	}
	if s.HistorySize < 1 {
		errs = append(errs, fmt.Errorf("history_size must be >= 1, got %d", s.HistorySize))
	}
	if s.MaxHitChance <= 0 || s.MaxHitChance > 1 {
		errs = append(errs, fmt.Errorf("max_hit_chance must be in (0, 1], got %g", s.MaxHitChance))
	}
	if s.ProtectionDefenceMultiplier < 0 {
		errs = append(errs, fmt.Errorf("protection_defence_multiplier must be >= 0, got %g", s.ProtectionDefenceMultiplier))
	}
	if s.ProtectionDamageMultiplier < 0 || s.ProtectionDamageMultiplier > 1 {
		errs = append(errs, fmt.Errorf("protection_damage_multiplier must be in [0, 1], got %g", s.ProtectionDamageMultiplier))
	}
	if s.SpecialCost < 0 || s.SpecialCost > 100 {
		errs = append(errs, fmt.Errorf("special_cost must be in [0, 100], got %d", s.SpecialCost))
	}
	if s.SpecialDamageMultiplier < 0 {
		errs = append(errs, fmt.Errorf("special_damage_multiplier must be >= 0, got %g", s.SpecialDamageMultiplier))
	}
	if s.SpecialAccuracyMultiplier < 0 {
		errs = append(errs, fmt.Errorf("special_accuracy_multiplier must be >= 0, got %g", s.SpecialAccuracyMultiplier))
	}
	if s.SpecialRegenAmount < 0 {
		errs = append(errs, fmt.Errorf("special_regen_amount must be >= 0, got %d", s.SpecialRegenAmount))
	}
	if s.SpecialRegenInterval <= 0 {
		errs = append(errs, fmt.Errorf("special_regen_interval must be > 0, got %s", s.SpecialRegenInterval))
	}
	if s.MaxHitSplats < 0 {
		errs = append(errs, fmt.Errorf("max_hitsplats must be >= 0, got %d", s.MaxHitSplats))
	}
	return errors.Join(errs...)
}
