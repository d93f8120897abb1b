// Package main runs the combat engine as a standalone server: it loads zones,
// weapons, and seed entities, then drives the combat loop until signalled.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/entity"
	"github.com/cory-johannsen/skirmish/internal/game/inventory"
	"github.com/cory-johannsen/skirmish/internal/game/zone"
	"github.com/cory-johannsen/skirmish/internal/gameserver"
	"github.com/cory-johannsen/skirmish/internal/observability"
	"github.com/cory-johannsen/skirmish/internal/scripting"
	"github.com/cory-johannsen/skirmish/internal/server"
	"github.com/cory-johannsen/skirmish/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	engage := flag.String("engage", "", "comma-separated attacker=target pairs to start after boot")
	seed := flag.Uint64("seed", 0, "deterministic RNG seed; 0 = crypto source")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	zones, err := zone.LoadAuthorityFromFile(cfg.Content.ZonesFile)
	if err != nil {
		logger.Fatal("loading zones", zap.Error(err))
	}
	logger.Info("zones loaded",
		zap.Int("safe", len(zones.SafeZones)),
		zap.Int("multi_combat", len(zones.MultiCombat)),
	)

	weapons := inventory.NewRegistry()
	defs, err := inventory.LoadWeapons(cfg.Content.WeaponsDir)
	if err != nil {
		logger.Fatal("loading weapon definitions", zap.Error(err))
	}
	for _, w := range defs {
		if err := weapons.RegisterWeapon(w); err != nil {
			logger.Fatal("registering weapon", zap.String("id", w.ID), zap.Error(err))
		}
	}
	logger.Info("loaded weapon definitions", zap.Int("count", len(defs)))
	if cfg.Content.ArmorDir != "" {
		armors, err := inventory.LoadArmors(cfg.Content.ArmorDir)
		if err != nil {
			logger.Fatal("loading armor definitions", zap.Error(err))
		}
		for _, a := range armors {
			if err := weapons.RegisterArmor(a); err != nil {
				logger.Fatal("registering armor", zap.String("id", a.ID), zap.Error(err))
			}
		}
		logger.Info("loaded armor definitions", zap.Int("count", len(armors)))
	}

	store := entity.NewStore()
	var records []*entity.Record
	if cfg.Content.EntitiesFile != "" {
		records, err = entity.LoadSeedFile(cfg.Content.EntitiesFile, weapons)
		if err != nil {
			logger.Fatal("loading entities", zap.Error(err))
		}
		for _, r := range records {
			if err := store.Add(r); err != nil {
				logger.Fatal("adding entity", zap.String("id", r.ID()), zap.Error(err))
			}
		}
		logger.Info("loaded entities", zap.Int("count", store.Len()))
	}

	var opts []combat.Option
	if cfg.Content.FormulaScript != "" {
		formula, err := scripting.LoadFormula(cfg.Content.FormulaScript, cfg.Content.ScriptInstructionLimit, logger)
		if err != nil {
			logger.Fatal("loading formula script", zap.Error(err))
		}
		defer formula.Close()
		opts = append(opts, combat.WithFormula(formula))
		logger.Info("formula script loaded", zap.String("path", cfg.Content.FormulaScript))
	}

	src := dice.NewCryptoSource()
	if *seed != 0 {
		src = dice.NewSeededSource(*seed)
	}
	roller := dice.NewLoggedRoller(src, logger)

	bus := gameserver.NewBus(cfg.Combat.EventBufferSize, logger)
	bus.Subscribe(gameserver.EventLogger(logger))

	lifecycle := server.NewLifecycle(logger)

	if cfg.Database.Enabled {
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer func() {
			st := pool.Stats()
			logger.Info("ledger pool closing",
				zap.Int32("total", st.Total),
				zap.Int32("idle", st.Idle),
				zap.Int32("acquired", st.Acquired),
			)
			pool.Close()
		}()
		logger.Info("database connected", zap.String("host", cfg.Database.Host))
		ledger := pool.Ledger()
		bus.Subscribe(gameserver.NewLedgerSubscriber(ledger, cfg.Database.WriteTimeout, logger))
	}

	settings := cfg.Combat.Settings()
	mgr := combat.NewManager(store, zones, settings, roller, bus, logger, opts...)
	loop := gameserver.NewLoop(mgr, settings.TickInterval, settings.SpecialRegenInterval, cfg.Combat.CommandQueueSize, logger)

	respawner := gameserver.NewRespawner(loop, store, gameserver.SpawnPoints(records), settings.TickInterval, logger)
	bus.Subscribe(respawner)

	pairs, err := parsePairs(*engage)
	if err != nil {
		logger.Fatal("parsing -engage", zap.Error(err))
	}

	lifecycle.Add("event-bus", &server.FuncService{
		StartFn: func(context.Context) error { bus.Start(); return nil },
		StopFn: func() {
			bus.Stop()
			if n := bus.Dropped(); n > 0 {
				logger.Warn("events dropped during run", zap.Int64("count", n))
			}
		},
	})
	lifecycle.Add("combat-loop", &server.FuncService{
		StartFn: func(ctx context.Context) error {
			loop.Start(ctx)
			for _, p := range pairs {
				ok, err := loop.InitiateAttack(ctx, p[0], p[1])
				if err != nil {
					return fmt.Errorf("engaging %s -> %s: %w", p[0], p[1], err)
				}
				if !ok {
					logger.Warn("engagement refused", zap.String("attacker", p[0]), zap.String("target", p[1]))
				}
			}
			return nil
		},
		StopFn: loop.Stop,
	})
	lifecycle.Add("respawner", &server.FuncService{
		StartFn: func(ctx context.Context) error { respawner.Start(ctx); return nil },
		StopFn:  respawner.Stop,
	})

	logger.Info("combat server ready",
		zap.Duration("tick", settings.TickInterval),
		zap.Duration("startup", time.Since(start)),
	)
	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// parsePairs splits "a=b,c=d" into attacker/target pairs.
func parsePairs(s string) ([][2]string, error) {
	if s == "" {
		return nil, nil
	}
	var out [][2]string
	for _, part := range strings.Split(s, ",") {
		a, t, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || a == "" || t == "" {
			return nil, fmt.Errorf("malformed pair %q, want attacker=target", part)
		}
		out = append(out, [2]string{a, t})
	}
	return out, nil
}
