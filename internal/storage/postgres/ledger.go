package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// ErrSessionNotFound is returned when a session lookup yields no results.
var ErrSessionNotFound = errors.New("combat session not found")

// DeathRecord is one row of the death ledger.
type DeathRecord struct {
	ID       int64
	EntityID string
	KillerID string
	Cause    combat.DeathCause
	DiedAt   time.Time
}

// SessionRecord summarises one finished combat session.
type SessionRecord struct {
	ID          uuid.UUID
	AttackerID  string
	TargetID    string
	StartedAt   time.Time
	EndedAt     time.Time
	Reason      combat.EndReason
	Hits        int
	Misses      int
	DamageDealt int
	BestHit     int
}

// LedgerRepository records deaths and finished sessions.
type LedgerRepository struct {
	db *pgxpool.Pool
}

// NewLedgerRepository creates a LedgerRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewLedgerRepository(db *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// RecordDeath appends ev to the death ledger.
//
// Postcondition: An empty KillerID is stored as NULL.
func (r *LedgerRepository) RecordDeath(ctx context.Context, ev combat.EntityDeath) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO combat_deaths (entity_id, killer_id, cause, died_at)
		 VALUES ($1, NULLIF($2, ''), $3, $4)`,
		ev.EntityID, ev.KillerID, string(ev.Cause), ev.At,
	)
	if err != nil {
		return fmt.Errorf("inserting death of %s: %w", ev.EntityID, err)
	}
	return nil
}

// RecordSessionEnd stores a summary of the finished session in ev.
// Recording the same session twice keeps the first row.
func (r *LedgerRepository) RecordSessionEnd(ctx context.Context, ev combat.CombatEnd) error {
	rec := summarise(ev)
	_, err := r.db.Exec(ctx,
		`INSERT INTO combat_sessions
		   (id, attacker_id, target_id, started_at, ended_at, reason, hits, misses, damage_dealt, best_hit)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (id) DO NOTHING`,
		rec.ID, rec.AttackerID, rec.TargetID, rec.StartedAt, rec.EndedAt, string(rec.Reason),
		rec.Hits, rec.Misses, rec.DamageDealt, rec.BestHit,
	)
	if err != nil {
		return fmt.Errorf("inserting session %s: %w", rec.ID, err)
	}
	return nil
}

// summarise folds the retained hit history of a finished session.
// History is bounded, so the totals cover the most recent hits only.
func summarise(ev combat.CombatEnd) SessionRecord {
	s := ev.Session
	rec := SessionRecord{
		ID:         s.ID,
		AttackerID: s.AttackerID,
		TargetID:   s.TargetID,
		StartedAt:  s.StartedAt,
		EndedAt:    ev.At,
		Reason:     ev.Reason,
	}
	for _, h := range s.History {
		if h.Outcome == combat.OutcomeMiss {
			rec.Misses++
			continue
		}
		rec.Hits++
		rec.DamageDealt += h.Damage
		if h.Damage > rec.BestHit {
			rec.BestHit = h.Damage
		}
	}
	return rec
}

// Session retrieves a session summary by id.
//
// Postcondition: Returns the SessionRecord or ErrSessionNotFound.
func (r *LedgerRepository) Session(ctx context.Context, id uuid.UUID) (SessionRecord, error) {
	var rec SessionRecord
	var reason string
	err := r.db.QueryRow(ctx,
		`SELECT id, attacker_id, target_id, started_at, ended_at, reason, hits, misses, damage_dealt, best_hit
		 FROM combat_sessions WHERE id = $1`,
		id,
	).Scan(&rec.ID, &rec.AttackerID, &rec.TargetID, &rec.StartedAt, &rec.EndedAt, &reason,
		&rec.Hits, &rec.Misses, &rec.DamageDealt, &rec.BestHit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SessionRecord{}, ErrSessionNotFound
		}
		return SessionRecord{}, fmt.Errorf("querying session: %w", err)
	}
	rec.Reason = combat.EndReason(reason)
	return rec, nil
}

// DeathsOf returns the most recent deaths of entityID, newest first.
//
// Precondition: limit must be > 0.
func (r *LedgerRepository) DeathsOf(ctx context.Context, entityID string, limit int) ([]DeathRecord, error) {
	return r.deaths(ctx,
		`SELECT id, entity_id, COALESCE(killer_id, ''), cause, died_at
		 FROM combat_deaths WHERE entity_id = $1
		 ORDER BY died_at DESC, id DESC LIMIT $2`,
		entityID, limit,
	)
}

// KillsBy returns the most recent kills credited to killerID, newest first.
//
// Precondition: limit must be > 0.
func (r *LedgerRepository) KillsBy(ctx context.Context, killerID string, limit int) ([]DeathRecord, error) {
	return r.deaths(ctx,
		`SELECT id, entity_id, COALESCE(killer_id, ''), cause, died_at
		 FROM combat_deaths WHERE killer_id = $1 AND cause = $2
		 ORDER BY died_at DESC, id DESC LIMIT $3`,
		killerID, string(combat.CauseKilled), limit,
	)
}

func (r *LedgerRepository) deaths(ctx context.Context, query string, args ...any) ([]DeathRecord, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying deaths: %w", err)
	}
	defer rows.Close()

	var out []DeathRecord
	for rows.Next() {
		var d DeathRecord
		var cause string
		if err := rows.Scan(&d.ID, &d.EntityID, &d.KillerID, &cause, &d.DiedAt); err != nil {
			return nil, fmt.Errorf("scanning death: %w", err)
		}
		d.Cause = combat.DeathCause(cause)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating deaths: %w", err)
	}
	return out, nil
}
