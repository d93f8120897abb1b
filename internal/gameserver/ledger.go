package gameserver

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// LedgerStore persists the combat ledger. postgres.LedgerRepository satisfies it.
type LedgerStore interface {
	RecordDeath(ctx context.Context, ev combat.EntityDeath) error
	RecordSessionEnd(ctx context.Context, ev combat.CombatEnd) error
}

// LedgerSubscriber writes deaths and finished sessions to a LedgerStore.
// Write failures are logged and never retried.
type LedgerSubscriber struct {
	store   LedgerStore
	timeout time.Duration
	logger  *zap.Logger
}

// NewLedgerSubscriber creates a LedgerSubscriber whose writes each time out
// after timeout.
//
// Precondition: store and logger must be non-nil; timeout must be > 0.
func NewLedgerSubscriber(store LedgerStore, timeout time.Duration, logger *zap.Logger) *LedgerSubscriber {
	if store == nil || logger == nil {
		panic("gameserver.NewLedgerSubscriber: store and logger must be non-nil")
	}
	if timeout <= 0 {
		panic("gameserver.NewLedgerSubscriber: timeout must be > 0")
	}
	return &LedgerSubscriber{store: store, timeout: timeout, logger: logger}
}

// Handle implements Subscriber.
func (l *LedgerSubscriber) Handle(ev combat.Event) {
	var write func(ctx context.Context) error
	switch e := ev.(type) {
	case combat.EntityDeath:
		write = func(ctx context.Context) error { return l.store.RecordDeath(ctx, e) }
	case combat.CombatEnd:
		write = func(ctx context.Context) error { return l.store.RecordSessionEnd(ctx, e) }
	default:
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()
	if err := write(ctx); err != nil {
		l.logger.Error("writing combat ledger",
			zap.String("kind", string(ev.Kind())),
			zap.Error(err),
		)
	}
}
