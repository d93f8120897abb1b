package gameserver

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/entity"
	"github.com/cory-johannsen/skirmish/internal/game/zone"
)

// SpawnPoint says where an entity returns after being killed, and how soon.
//
// Invariant: Delay == 0 means the entity does not respawn.
type SpawnPoint struct {
	Home  zone.Position
	Delay time.Duration
}

// SpawnPoints collects the spawn point of every record with a respawn delay.
func SpawnPoints(records []*entity.Record) map[string]SpawnPoint {
	out := make(map[string]SpawnPoint)
	for _, r := range records {
		if r.RespawnDelay > 0 {
			out[r.EntityID] = SpawnPoint{Home: r.Home, Delay: r.RespawnDelay}
		}
	}
	return out
}

type respawnEntry struct {
	entityID string
	readyAt  time.Time
}

// Respawner brings killed entities back after their spawn delay. It
// subscribes to the Bus for deaths and restores entities through the Loop,
// so entity state is only ever written on the loop goroutine.
//
// Despawned entities are never respawned.
type Respawner struct {
	loop     *Loop
	dir      entity.Directory
	points   map[string]SpawnPoint
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	pending []respawnEntry

	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}
	exited    chan struct{}
}

// NewRespawner creates a Respawner that checks for due respawns every interval.
//
// Precondition: loop, dir and logger must be non-nil; interval must be > 0.
// points may be nil, in which case nothing respawns.
func NewRespawner(loop *Loop, dir entity.Directory, points map[string]SpawnPoint, interval time.Duration, logger *zap.Logger) *Respawner {
	if loop == nil || dir == nil || logger == nil {
		panic("gameserver.NewRespawner: loop, dir and logger must be non-nil")
	}
	if interval <= 0 {
		panic("gameserver.NewRespawner: interval must be > 0")
	}
	if points == nil {
		points = make(map[string]SpawnPoint)
	}
	return &Respawner{
		loop:     loop,
		dir:      dir,
		points:   points,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
		exited:   make(chan struct{}),
	}
}

// Handle implements Subscriber by scheduling killed entities.
func (r *Respawner) Handle(ev combat.Event) {
	d, ok := ev.(combat.EntityDeath)
	if !ok || d.Cause != combat.CauseKilled {
		return
	}
	r.Schedule(d.EntityID, d.At)
}

// Schedule queues entityID to return at diedAt plus its spawn delay.
// No-op for entities without a spawn point or already pending.
func (r *Respawner) Schedule(entityID string, diedAt time.Time) {
	sp, ok := r.points[entityID]
	if !ok || sp.Delay <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.pending {
		if e.entityID == entityID {
			return
		}
	}
	r.pending = append(r.pending, respawnEntry{entityID: entityID, readyAt: diedAt.Add(sp.Delay)})
}

// Pending returns the number of scheduled respawns.
func (r *Respawner) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Tick restores every entity whose respawn is due at now.
//
// Postcondition: due entries are consumed, except those refused by a full
// command queue, which stay pending for the next Tick. Returns the number
// of entities restored.
func (r *Respawner) Tick(ctx context.Context, now time.Time) int {
	r.mu.Lock()
	var ready, future []respawnEntry
	for _, e := range r.pending {
		if !e.readyAt.After(now) {
			ready = append(ready, e)
		} else {
			future = append(future, e)
		}
	}
	r.pending = future
	r.mu.Unlock()

	restored := 0
	for _, e := range ready {
		home := r.points[e.entityID].Home
		ok, err := r.loop.submit(ctx, "respawn", func(eng Engine) bool {
			return r.restore(eng, e.entityID, home)
		})
		switch {
		case errors.Is(err, ErrQueueFull):
			r.mu.Lock()
			r.pending = append(r.pending, e)
			r.mu.Unlock()
		case err != nil:
			r.logger.Warn("respawn failed", zap.String("entity", e.entityID), zap.Error(err))
		case ok:
			restored++
			r.logger.Info("entity respawned", zap.String("entity", e.entityID))
		}
	}
	return restored
}

// restore runs on the loop goroutine.
func (r *Respawner) restore(eng Engine, id string, home zone.Position) bool {
	ent, ok := r.dir.Lookup(id)
	if !ok {
		return false
	}
	stats, ok := entity.StatsOf(ent)
	if !ok {
		return false
	}
	stats.Hitpoints = stats.MaxHitpoints
	if mv, ok := entity.MovementOf(ent); ok {
		mv.Position = home
	}
	if cp, ok := entity.CombatOf(ent); ok {
		cp.SpecialEnergy = entity.MaxSpecialEnergy
		cp.HitSplats = nil
	}
	eng.Respawned(id)
	return true
}

// Start runs Tick every interval until ctx is cancelled or Stop is called.
func (r *Respawner) Start(ctx context.Context) {
	r.startOnce.Do(func() {
		go r.run(ctx)
	})
}

// Stop halts the respawn goroutine and waits for it to exit. Idempotent.
func (r *Respawner) Stop() {
	r.stopOnce.Do(func() { close(r.done) })
	r.startOnce.Do(func() { close(r.exited) })
	<-r.exited
}

func (r *Respawner) run(ctx context.Context) {
	defer close(r.exited)
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.done:
			return
		case now := <-t.C:
			r.Tick(ctx, now)
		}
	}
}
