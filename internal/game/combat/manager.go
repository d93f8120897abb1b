package combat

import (
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/entity"
	"github.com/cory-johannsen/skirmish/internal/game/inventory"
	"github.com/cory-johannsen/skirmish/internal/game/zone"
)

// Manager owns every combat session and drives them forward each tick.
//
// Manager is not safe for concurrent use; a single goroutine must own it.
//
// Invariant: at most one session exists per attacker id.
type Manager struct {
	dir       entity.Directory
	settings  Settings
	hits      *HitResolver
	damage    *DamageResolver
	validator *Validator
	pub       Publisher
	logger    *zap.Logger
	now       func() time.Time

	sessions []*Session
	// index maps attacker id to its position in sessions.
	index map[string]int
	// byTarget maps target id to the set of attackers engaging it.
	byTarget map[string]map[string]struct{}
	// dead marks entities whose death has been handled.
	dead map[string]bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source used by InitiateAttack,
// PerformSpecial and the death coordinator.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithFormula overrides the ClassicFormula.
func WithFormula(f Formula) Option {
	return func(m *Manager) {
		if f != nil {
			m.hits.formula = f
			m.damage.formula = f
		}
	}
}

// NewManager creates a Manager.
//
// Precondition: dir, src, pub and logger must be non-nil; settings must validate.
// Postcondition: Returns a Manager with no sessions.
func NewManager(dir entity.Directory, zones *zone.Authority, settings Settings, src Source, pub Publisher, logger *zap.Logger, opts ...Option) *Manager {
	if dir == nil || src == nil || pub == nil || logger == nil {
		panic("combat.NewManager: dir, src, pub and logger must be non-nil")
	}
	if err := settings.Validate(); err != nil {
		panic("combat.NewManager: " + err.Error())
	}
	m := &Manager{
		dir:      dir,
		settings: settings,
		hits:     NewHitResolver(ClassicFormula{}, settings, src),
		damage:   NewDamageResolver(ClassicFormula{}, settings, src),
		pub:      pub,
		logger:   logger,
		now:      time.Now,
		index:    make(map[string]int),
		byTarget: make(map[string]map[string]struct{}),
		dead:     make(map[string]bool),
	}
	m.validator = NewValidator(dir, zones, m)
	for _, o := range opts {
		o(m)
	}
	return m
}

// Validator returns the engagement validator bound to this manager's sessions.
func (m *Manager) Validator() *Validator { return m.validator }

// Hits returns the hit resolver.
func (m *Manager) Hits() *HitResolver { return m.hits }

// Damage returns the damage resolver.
func (m *Manager) Damage() *DamageResolver { return m.damage }

// Settings returns the engine tunables.
func (m *Manager) Settings() Settings { return m.settings }

// TargetOf implements EngagementSource.
func (m *Manager) TargetOf(attackerID string, now time.Time) (string, bool) {
	i, ok := m.index[attackerID]
	if !ok || !m.sessions[i].live(now, m.settings.SessionTimeout) {
		return "", false
	}
	return m.sessions[i].TargetID, true
}

// AttackersOf implements EngagementSource.
func (m *Manager) AttackersOf(targetID string, now time.Time) []string {
	var out []string
	for a := range m.byTarget[targetID] {
		if s := m.sessions[m.index[a]]; s.live(now, m.settings.SessionTimeout) {
			out = append(out, a)
		}
	}
	return out
}

// Session returns a snapshot of attackerID's session.
func (m *Manager) Session(attackerID string) (SessionSnapshot, bool) {
	i, ok := m.index[attackerID]
	if !ok {
		return SessionSnapshot{}, false
	}
	return m.sessions[i].Snapshot(), true
}

// ActiveSessions returns snapshots of every session in storage order.
func (m *Manager) ActiveSessions() []SessionSnapshot {
	out := make([]SessionSnapshot, len(m.sessions))
	for i, s := range m.sessions {
		out[i] = s.Snapshot()
	}
	return out
}

// Len returns the number of active sessions.
func (m *Manager) Len() int { return len(m.sessions) }

// AttackInterval returns the delay between att's regular attacks.
//
// Postcondition: Returns >= one tick.
func (m *Manager) AttackInterval(w *inventory.WeaponDef, stance entity.Stance) time.Duration {
	ticks := w.Speed()
	if stance == entity.StanceRapid {
		ticks--
	}
	return time.Duration(max(ticks, 1)) * m.settings.TickInterval
}

// InitiateAttack begins or redirects attackerID's engagement with targetID.
//
// Postcondition: Returns true iff attackerID has a session targeting
// targetID. On refusal a CombatDenied event is published and no state changes.
func (m *Manager) InitiateAttack(attackerID, targetID string) bool {
	return m.initiate(attackerID, targetID, m.now())
}

func (m *Manager) initiate(attackerID, targetID string, now time.Time) bool {
	att, aok := resolve(m.dir, attackerID)
	def, dok := resolve(m.dir, targetID)
	if aok {
		m.observeAlive(att)
	}
	if dok {
		m.observeAlive(def)
	}
	reason := DenyDead
	if aok && dok {
		reason = m.validator.check(att, def, now)
	}
	if reason != DenyNone {
		m.logger.Debug("engagement denied",
			zap.String("attacker", attackerID),
			zap.String("target", targetID),
			zap.String("reason", string(reason)),
		)
		m.pub.Publish(CombatDenied{AttackerID: attackerID, TargetID: targetID, Reason: reason, At: now})
		return false
	}

	if i, ok := m.index[attackerID]; ok {
		if m.sessions[i].TargetID == targetID {
			return true
		}
		m.end(m.sessions[i], EndRetarget, now, true)
	}

	s := newSession(attackerID, targetID, now, m.settings.HistorySize)
	m.add(s)
	att.Combat.InCombat = true
	att.Combat.TargetID = targetID
	att.Combat.AttackInterval = m.AttackInterval(att.Weapon, att.Combat.Stance)
	m.logger.Info("combat session started",
		zap.String("session", s.ID.String()),
		zap.String("attacker", attackerID),
		zap.String("target", targetID),
	)
	m.pub.Publish(CombatStart{Session: s.Snapshot(), At: now})

	m.retaliate(def, attackerID, now)
	return true
}

// retaliate engages attackerID on behalf of def when def auto-retaliates
// and has no session of its own.
func (m *Manager) retaliate(def Combatant, attackerID string, now time.Time) {
	if !def.Combat.AutoRetaliate || !def.Stats.IsAlive() {
		return
	}
	if _, engaged := m.index[def.ID]; engaged {
		return
	}
	m.initiate(def.ID, attackerID, now)
}

// StopCombat ends attackerID's session immediately.
//
// Postcondition: attackerID has no session. Returns false when it had none.
func (m *Manager) StopCombat(attackerID string) bool {
	i, ok := m.index[attackerID]
	if !ok {
		return false
	}
	m.end(m.sessions[i], EndStopped, m.now(), true)
	return true
}

// Tick advances every session to now, then ends sessions idle for longer
// than the session timeout.
//
// Postcondition: every session alive after Tick was active within the timeout.
func (m *Manager) Tick(now time.Time) {
	order := append([]*Session(nil), m.sessions...)
	for _, s := range order {
		if !m.owns(s) {
			continue
		}
		m.advance(s, now)
	}

	order = append(order[:0], m.sessions...)
	for _, s := range order {
		if m.owns(s) && !s.live(now, m.settings.SessionTimeout) {
			m.end(s, EndTimeout, now, true)
		}
	}
}

// advance resolves at most one regular attack for s.
func (m *Manager) advance(s *Session, now time.Time) {
	att, aok := resolve(m.dir, s.AttackerID)
	def, dok := resolve(m.dir, s.TargetID)
	if !aok || !dok {
		m.end(s, EndEntityMissing, now, false)
		return
	}
	// Hitpoints may have been zeroed outside the engine since the last tick.
	if !def.Stats.IsAlive() && m.die(def.ID, att.ID, CauseKilled, now) {
		return
	}
	if !att.Stats.IsAlive() && m.die(att.ID, "", CauseKilled, now) {
		return
	}
	switch reason := m.validator.check(att, def, now); reason {
	case DenyNone:
	case DenyRange:
		return
	default:
		m.end(s, EndReason(reason), now, true)
		return
	}

	interval := m.AttackInterval(att.Weapon, att.Combat.Stance)
	att.Combat.AttackInterval = interval
	if last := att.Combat.LastAttackAt; !last.IsZero() && now.Sub(last) < interval {
		return
	}

	hr := m.attack(att, def, now, false)
	s.record(hr)
	s.LastAttackAt = now
	s.LastActivity = now
	m.pub.Publish(CombatHit{Session: s.Snapshot(), Hit: hr, TargetHitpoints: def.Stats.Hitpoints})

	if !def.Stats.IsAlive() {
		m.die(def.ID, att.ID, CauseKilled, now)
		return
	}
	m.retaliate(def, att.ID, now)
}

// attack resolves one attack from att on def and applies its damage.
func (m *Manager) attack(att, def Combatant, now time.Time, special bool) HitResult {
	at := att.AttackType()
	stance := att.Combat.Stance
	accuracy := 1.0
	if special {
		accuracy = m.settings.SpecialAccuracyMultiplier
	}
	hr := HitResult{
		AttackerID: att.ID,
		TargetID:   def.ID,
		AttackType: at,
		MaxHit:     m.damage.MaxHit(att, stance, at),
		Outcome:    OutcomeMiss,
		Special:    special,
		Timestamp:  now,
	}
	if m.hits.rollHit(att, def, at, stance, accuracy) {
		raw := m.damage.RollDamage(att, stance, at)
		hr.Outcome = OutcomeNormal
		if special {
			raw = m.damage.scaleSpecial(raw)
			hr.Outcome = OutcomeCritical
		}
		hr.Damage = def.Stats.ApplyDamage(m.damage.Reduce(def, at, raw))
	}
	def.Combat.QueueHitSplat(entity.HitSplat{Damage: hr.Damage, Kind: splatKind(hr.Outcome), At: now}, m.settings.MaxHitSplats)
	att.Combat.LastAttackAt = now
	return hr
}

func splatKind(o Outcome) entity.SplatKind {
	switch o {
	case OutcomeMiss:
		return entity.SplatMiss
	case OutcomeCritical:
		return entity.SplatCritical
	default:
		return entity.SplatHit
	}
}

// owns reports whether s is still stored.
func (m *Manager) owns(s *Session) bool {
	i, ok := m.index[s.AttackerID]
	return ok && m.sessions[i] == s
}

func (m *Manager) add(s *Session) {
	m.index[s.AttackerID] = len(m.sessions)
	m.sessions = append(m.sessions, s)
	set, ok := m.byTarget[s.TargetID]
	if !ok {
		set = make(map[string]struct{})
		m.byTarget[s.TargetID] = set
	}
	set[s.AttackerID] = struct{}{}
}

// remove swap-removes s from storage.
func (m *Manager) remove(s *Session) {
	i := m.index[s.AttackerID]
	last := len(m.sessions) - 1
	if i != last {
		m.sessions[i] = m.sessions[last]
		m.index[m.sessions[i].AttackerID] = i
	}
	m.sessions[last] = nil
	m.sessions = m.sessions[:last]
	delete(m.index, s.AttackerID)
	if set := m.byTarget[s.TargetID]; set != nil {
		delete(set, s.AttackerID)
		if len(set) == 0 {
			delete(m.byTarget, s.TargetID)
		}
	}
}

// end removes s, clears the attacker's combat flags and optionally
// publishes CombatEnd.
func (m *Manager) end(s *Session, reason EndReason, now time.Time, publish bool) {
	m.remove(s)
	if e, ok := m.dir.Lookup(s.AttackerID); ok {
		if cp, ok := entity.CombatOf(e); ok && cp.TargetID == s.TargetID {
			cp.InCombat = false
			cp.TargetID = ""
		}
	}
	m.logger.Info("combat session ended",
		zap.String("session", s.ID.String()),
		zap.String("attacker", s.AttackerID),
		zap.String("target", s.TargetID),
		zap.String("reason", string(reason)),
	)
	if publish {
		m.pub.Publish(CombatEnd{Session: s.Snapshot(), Reason: reason, At: now})
	}
}
