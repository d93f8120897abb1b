package gameserver

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// Subscriber receives events from a Bus on the bus goroutine.
type Subscriber interface {
	Handle(ev combat.Event)
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(ev combat.Event)

// Handle calls f(ev).
func (f SubscriberFunc) Handle(ev combat.Event) { f(ev) }

// Bus is an asynchronous combat.Publisher. Publish never blocks: events go
// into a bounded buffer drained by the bus goroutine, and a full buffer
// drops the event with a warning.
type Bus struct {
	events  chan combat.Event
	logger  *zap.Logger
	dropped atomic.Int64

	// pubMu guards closed and the close of events against concurrent Publish.
	pubMu  sync.RWMutex
	closed bool

	mu   sync.RWMutex
	subs []Subscriber

	startOnce sync.Once
	stopOnce  sync.Once
	exited    chan struct{}
}

// NewBus creates a stopped Bus with room for size pending events.
//
// Precondition: size >= 1; logger must be non-nil.
func NewBus(size int, logger *zap.Logger) *Bus {
	if size < 1 {
		panic("gameserver.NewBus: size must be >= 1")
	}
	if logger == nil {
		panic("gameserver.NewBus: logger must be non-nil")
	}
	return &Bus{
		events: make(chan combat.Event, size),
		logger: logger,
		exited: make(chan struct{}),
	}
}

// Subscribe registers s. Subscribers are called in registration order.
//
// Precondition: s must not be nil.
func (b *Bus) Subscribe(s Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, s)
}

// Publish implements combat.Publisher.
func (b *Bus) Publish(ev combat.Event) {
	b.pubMu.RLock()
	defer b.pubMu.RUnlock()
	if b.closed {
		return
	}
	select {
	case b.events <- ev:
	default:
		b.dropped.Add(1)
		b.logger.Warn("event bus full, dropping event", zap.String("kind", string(ev.Kind())))
	}
}

// Dropped returns the number of events dropped because the buffer was full.
func (b *Bus) Dropped() int64 { return b.dropped.Load() }

// Start launches the dispatch goroutine. Calling Start more than once has no effect.
func (b *Bus) Start() {
	b.startOnce.Do(func() { go b.run() })
}

// Stop stops accepting events, delivers everything already buffered, and
// waits for the dispatch goroutine to exit. Idempotent.
func (b *Bus) Stop() {
	b.stopOnce.Do(func() {
		b.pubMu.Lock()
		b.closed = true
		close(b.events)
		b.pubMu.Unlock()
	})
	b.startOnce.Do(func() { go b.run() })
	<-b.exited
}

func (b *Bus) run() {
	defer close(b.exited)
	for ev := range b.events {
		b.mu.RLock()
		subs := append([]Subscriber(nil), b.subs...)
		b.mu.RUnlock()
		for _, s := range subs {
			s.Handle(ev)
		}
	}
}

// EventLogger returns a Subscriber that logs every event at debug level.
func EventLogger(logger *zap.Logger) Subscriber {
	return SubscriberFunc(func(ev combat.Event) {
		fields := []zap.Field{zap.String("kind", string(ev.Kind()))}
		switch e := ev.(type) {
		case combat.CombatStart:
			fields = append(fields, zap.String("attacker", e.Session.AttackerID), zap.String("target", e.Session.TargetID))
		case combat.CombatHit:
			fields = append(fields, zap.String("attacker", e.Hit.AttackerID), zap.String("target", e.Hit.TargetID),
				zap.Int("damage", e.Hit.Damage), zap.String("outcome", e.Hit.Outcome.String()))
		case combat.CombatSpecialHit:
			fields = append(fields, zap.String("attacker", e.Hit.AttackerID), zap.String("target", e.Hit.TargetID),
				zap.Int("damage", e.Hit.Damage), zap.Int("energy_left", e.EnergyLeft))
		case combat.CombatEnd:
			fields = append(fields, zap.String("attacker", e.Session.AttackerID), zap.String("reason", string(e.Reason)))
		case combat.EntityDeath:
			fields = append(fields, zap.String("entity", e.EntityID), zap.String("killer", e.KillerID), zap.String("cause", string(e.Cause)))
		case combat.CombatDenied:
			fields = append(fields, zap.String("attacker", e.AttackerID), zap.String("target", e.TargetID), zap.String("reason", string(e.Reason)))
		}
		logger.Debug("combat event", fields...)
	})
}
