// Package config provides Viper-based configuration loading for the combat server.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// CombatConfig holds the combat engine tunables and runtime sizing.
type CombatConfig struct {
	TickInterval                time.Duration `mapstructure:"tick_interval"`
	SessionTimeout              time.Duration `mapstructure:"session_timeout"`
	HistorySize                 int           `mapstructure:"history_size"`
	MaxHitChance                float64       `mapstructure:"max_hit_chance"`
	ProtectionDefenceMultiplier float64       `mapstructure:"protection_defence_multiplier"`
	ProtectionDamageMultiplier  float64       `mapstructure:"protection_damage_multiplier"`
	SpecialCost                 int           `mapstructure:"special_cost"`
	SpecialDamageMultiplier     float64       `mapstructure:"special_damage_multiplier"`
	SpecialAccuracyMultiplier   float64       `mapstructure:"special_accuracy_multiplier"`
	SpecialRegenAmount          int           `mapstructure:"special_regen_amount"`
	SpecialRegenInterval        time.Duration `mapstructure:"special_regen_interval"`
	MaxHitSplats                int           `mapstructure:"max_hitsplats"`
	// CommandQueueSize bounds pending commands for the combat loop.
	CommandQueueSize int `mapstructure:"command_queue_size"`
	// EventBufferSize bounds undelivered events on the event bus.
	EventBufferSize int `mapstructure:"event_buffer_size"`
}

// Settings converts c to engine settings.
func (c CombatConfig) Settings() combat.Settings {
	return combat.Settings{
		TickInterval:                c.TickInterval,
		SessionTimeout:              c.SessionTimeout,
		HistorySize:                 c.HistorySize,
		MaxHitChance:                c.MaxHitChance,
		ProtectionDefenceMultiplier: c.ProtectionDefenceMultiplier,
		ProtectionDamageMultiplier:  c.ProtectionDamageMultiplier,
		SpecialCost:                 c.SpecialCost,
		SpecialDamageMultiplier:     c.SpecialDamageMultiplier,
		SpecialAccuracyMultiplier:   c.SpecialAccuracyMultiplier,
		SpecialRegenAmount:          c.SpecialRegenAmount,
		SpecialRegenInterval:        c.SpecialRegenInterval,
		MaxHitSplats:                c.MaxHitSplats,
	}
}

// ContentConfig locates the data files loaded at startup.
type ContentConfig struct {
	ZonesFile  string `mapstructure:"zones_file"`
	WeaponsDir string `mapstructure:"weapons_dir"`
	// ArmorDir is optional; empty loads no armor.
	ArmorDir     string `mapstructure:"armor_dir"`
	EntitiesFile string `mapstructure:"entities_file"`
	// FormulaScript is an optional Lua script overriding the combat formulas.
	FormulaScript          string `mapstructure:"formula_script"`
	ScriptInstructionLimit int    `mapstructure:"script_instruction_limit"`
}

// DatabaseConfig holds PostgreSQL connection settings for the combat ledger.
type DatabaseConfig struct {
	// Enabled turns the combat ledger on.
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	// WriteTimeout bounds each ledger write.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	Combat   CombatConfig   `mapstructure:"combat"`
	Content  ContentConfig  `mapstructure:"content"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateCombat(c.Combat); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Database.Enabled {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateCombat(c CombatConfig) error {
	var errs []string
	if err := c.Settings().Validate(); err != nil {
		for _, line := range strings.Split(err.Error(), "\n") {
			errs = append(errs, "combat."+line)
		}
	}
	if c.CommandQueueSize < 1 {
		errs = append(errs, fmt.Sprintf("combat.command_queue_size must be >= 1, got %d", c.CommandQueueSize))
	}
	if c.EventBufferSize < 1 {
		errs = append(errs, fmt.Sprintf("combat.event_buffer_size must be >= 1, got %d", c.EventBufferSize))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig) error {
	var errs []string
	if c.ZonesFile == "" {
		errs = append(errs, "content.zones_file must not be empty")
	}
	if c.WeaponsDir == "" {
		errs = append(errs, "content.weapons_dir must not be empty")
	}
	if c.ScriptInstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("content.script_instruction_limit must be >= 0, got %d", c.ScriptInstructionLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if d.WriteTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("database.write_timeout must be > 0, got %s", d.WriteTimeout))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// SKIRMISH_COMBAT_TICK_INTERVAL overrides combat.tick_interval, and so on.
	v.SetEnvPrefix("SKIRMISH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	d := combat.DefaultSettings()
	v.SetDefault("combat.tick_interval", d.TickInterval.String())
	v.SetDefault("combat.session_timeout", d.SessionTimeout.String())
	v.SetDefault("combat.history_size", d.HistorySize)
	v.SetDefault("combat.max_hit_chance", d.MaxHitChance)
	v.SetDefault("combat.protection_defence_multiplier", d.ProtectionDefenceMultiplier)
	v.SetDefault("combat.protection_damage_multiplier", d.ProtectionDamageMultiplier)
	v.SetDefault("combat.special_cost", d.SpecialCost)
	v.SetDefault("combat.special_damage_multiplier", d.SpecialDamageMultiplier)
	v.SetDefault("combat.special_accuracy_multiplier", d.SpecialAccuracyMultiplier)
	v.SetDefault("combat.special_regen_amount", d.SpecialRegenAmount)
	v.SetDefault("combat.special_regen_interval", d.SpecialRegenInterval.String())
	v.SetDefault("combat.max_hitsplats", d.MaxHitSplats)
	v.SetDefault("combat.command_queue_size", 256)
	v.SetDefault("combat.event_buffer_size", 1024)

	v.SetDefault("content.zones_file", "content/zones.yaml")
	v.SetDefault("content.weapons_dir", "content/weapons")
	v.SetDefault("content.armor_dir", "content/armor")
	v.SetDefault("content.entities_file", "")
	v.SetDefault("content.formula_script", "")
	v.SetDefault("content.script_instruction_limit", 100_000)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "skirmish")
	v.SetDefault("database.password", "skirmish")
	v.SetDefault("database.name", "skirmish")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.write_timeout", "2s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
