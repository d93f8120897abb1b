// Package gameserver runs the combat engine: a single goroutine owns the
// combat.Manager and serializes ticks, energy regeneration and commands,
// while a Bus fans engine events out to subscribers off that goroutine.
package gameserver

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrQueueFull is returned when the command queue cannot accept another command.
var ErrQueueFull = errors.New("gameserver: command queue full")

// ErrLoopStopped is returned for commands submitted to a stopped loop.
var ErrLoopStopped = errors.New("gameserver: loop stopped")

// Engine is the combat surface driven by a Loop. combat.Manager satisfies it.
type Engine interface {
	InitiateAttack(attackerID, targetID string) bool
	StopCombat(attackerID string) bool
	PerformSpecial(attackerID, targetID string) bool
	HandleDeath(entityID, killerID string) bool
	HandleDespawn(entityID string) bool
	Respawned(entityID string)
	Tick(now time.Time)
	RegenerateEnergy()
}

type command struct {
	name   string
	run    func(Engine) bool
	result chan bool
}

// Loop owns an Engine on one goroutine. Every engine call, whether from a
// ticker or a submitted command, happens on that goroutine.
//
// Invariant: the engine is never called concurrently.
type Loop struct {
	engine        Engine
	tickInterval  time.Duration
	regenInterval time.Duration
	logger        *zap.Logger
	cmds          chan command

	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}
	exited    chan struct{}
}

// NewLoop returns a stopped Loop.
//
// Precondition: engine and logger must be non-nil; tickInterval and
// regenInterval must be > 0; queueSize must be >= 1.
func NewLoop(engine Engine, tickInterval, regenInterval time.Duration, queueSize int, logger *zap.Logger) *Loop {
	if engine == nil || logger == nil {
		panic("gameserver.NewLoop: engine and logger must be non-nil")
	}
	if tickInterval <= 0 || regenInterval <= 0 {
		panic("gameserver.NewLoop: intervals must be > 0")
	}
	if queueSize < 1 {
		panic("gameserver.NewLoop: queueSize must be >= 1")
	}
	return &Loop{
		engine:        engine,
		tickInterval:  tickInterval,
		regenInterval: regenInterval,
		logger:        logger,
		cmds:          make(chan command, queueSize),
		done:          make(chan struct{}),
		exited:        make(chan struct{}),
	}
}

// Start launches the loop goroutine. It runs until ctx is cancelled or
// Stop is called. Calling Start more than once has no effect.
//
// Postcondition: the engine ticks once per tick interval and regenerates
// special energy once per regen interval.
func (l *Loop) Start(ctx context.Context) {
	l.startOnce.Do(func() {
		go l.run(ctx)
	})
}

// Stop halts the loop and waits for its goroutine to exit. Idempotent.
// Commands still queued are answered with ErrLoopStopped.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.done) })
	l.startOnce.Do(func() { close(l.exited) })
	<-l.exited
}

func (l *Loop) run(ctx context.Context) {
	defer close(l.exited)
	tick := time.NewTicker(l.tickInterval)
	defer tick.Stop()
	regen := time.NewTicker(l.regenInterval)
	defer regen.Stop()

	l.logger.Info("combat loop started",
		zap.Duration("tick", l.tickInterval),
		zap.Duration("regen", l.regenInterval),
	)
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("combat loop stopped", zap.Error(ctx.Err()))
			return
		case <-l.done:
			l.logger.Info("combat loop stopped")
			return
		case now := <-tick.C:
			l.engine.Tick(now)
		case <-regen.C:
			l.engine.RegenerateEnergy()
		case cmd := <-l.cmds:
			cmd.result <- cmd.run(l.engine)
		}
	}
}

// submit enqueues run without blocking and waits for its result.
func (l *Loop) submit(ctx context.Context, name string, run func(Engine) bool) (bool, error) {
	select {
	case <-l.done:
		return false, ErrLoopStopped
	case <-l.exited:
		return false, ErrLoopStopped
	default:
	}
	cmd := command{name: name, run: run, result: make(chan bool, 1)}
	select {
	case l.cmds <- cmd:
	default:
		l.logger.Warn("combat command dropped", zap.String("command", name))
		return false, ErrQueueFull
	}
	select {
	case ok := <-cmd.result:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	case <-l.exited:
		// The command may have run just before exit.
		select {
		case ok := <-cmd.result:
			return ok, nil
		default:
			return false, ErrLoopStopped
		}
	}
}

// InitiateAttack queues Engine.InitiateAttack and waits for its result.
func (l *Loop) InitiateAttack(ctx context.Context, attackerID, targetID string) (bool, error) {
	return l.submit(ctx, "initiate_attack", func(e Engine) bool { return e.InitiateAttack(attackerID, targetID) })
}

// StopCombat queues Engine.StopCombat and waits for its result.
func (l *Loop) StopCombat(ctx context.Context, attackerID string) (bool, error) {
	return l.submit(ctx, "stop_combat", func(e Engine) bool { return e.StopCombat(attackerID) })
}

// PerformSpecial queues Engine.PerformSpecial and waits for its result.
func (l *Loop) PerformSpecial(ctx context.Context, attackerID, targetID string) (bool, error) {
	return l.submit(ctx, "perform_special", func(e Engine) bool { return e.PerformSpecial(attackerID, targetID) })
}

// NotifyDeath reports a death caused outside the engine.
func (l *Loop) NotifyDeath(ctx context.Context, entityID, killerID string) (bool, error) {
	return l.submit(ctx, "notify_death", func(e Engine) bool { return e.HandleDeath(entityID, killerID) })
}

// NotifyDespawn reports that an entity left the world.
func (l *Loop) NotifyDespawn(ctx context.Context, entityID string) (bool, error) {
	return l.submit(ctx, "notify_despawn", func(e Engine) bool { return e.HandleDespawn(entityID) })
}

// NotifyRespawn clears an entity's death mark.
func (l *Loop) NotifyRespawn(ctx context.Context, entityID string) error {
	_, err := l.submit(ctx, "notify_respawn", func(e Engine) bool { e.Respawned(entityID); return true })
	return err
}
