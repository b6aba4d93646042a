package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Manager owns session lifecycle: creation, mutation, expiry. All session
// writes go through here; the per-key lock plus the store's version check
// keep one (business, customer) pair strictly serialized.
type Manager struct {
	store        Store
	locks        *KeyedMutex
	idleTimeout  time.Duration
	turnCapacity int

	// now is swappable for tests
	now func() time.Time
}

func NewManager(store Store, idleTimeout time.Duration, turnCapacity int) *Manager {
	if idleTimeout <= 0 {
		idleTimeout = 30 * time.Minute
	}
	if turnCapacity <= 0 {
		turnCapacity = 20
	}

	return &Manager{
		store:        store,
		locks:        NewKeyedMutex(),
		idleTimeout:  idleTimeout,
		turnCapacity: turnCapacity,
		now:          time.Now,
	}
}

// Lock serializes message handling for one (business, customer) key. The
// returned function releases the key.
func (m *Manager) Lock(businessID, customerID uuid.UUID) func() {
	return m.locks.Lock(businessID.String() + "|" + customerID.String())
}

// GetOrCreate loads the live session for the key, creating a fresh one in
// the greeting stage on first contact. Expired and idle sessions are
// reinitialized before being handed out: history and the pending order
// reference are cleared and the stage reset to greeting.
func (m *Manager) GetOrCreate(ctx context.Context, businessID, customerID uuid.UUID) (*Session, error) {
	sess, err := m.store.Get(ctx, businessID, customerID)
	if err == nil {
		now := m.now()
		if sess.Stage == StageIdle || sess.IsExpired(now, m.idleTimeout) {
			sess.Reinitialize()
		}
		return sess, nil
	}
	if !errors.Is(err, ErrSessionNotFound) {
		return nil, err
	}

	sess = &Session{
		BusinessID:   businessID,
		CustomerID:   customerID,
		Stage:        StageGreeting,
		Turns:        Turns{},
		LastActivity: m.now(),
		Version:      1,
	}
	if createErr := m.store.Create(ctx, sess); createErr != nil {
		// Another message for the same key may have created it first
		existing, getErr := m.store.Get(ctx, businessID, customerID)
		if getErr == nil {
			return existing, nil
		}
		return nil, createErr
	}
	return sess, nil
}

// Apply validates the stage transition for ev and applies it to the session.
// The manager only applies transitions; deciding which event fires is the
// router's job.
func (m *Manager) Apply(sess *Session, ev Event) error {
	next, ok := Next(sess.Stage, ev)
	if !ok {
		return &ErrInvalidTransition{Stage: sess.Stage, Event: ev}
	}
	sess.Stage = next
	return nil
}

// AppendTurn records a message turn in the bounded history.
func (m *Manager) AppendTurn(sess *Session, role, body string) {
	sess.AppendTurn(Turn{Role: role, Body: body, At: m.now()}, m.turnCapacity)
}

// Save persists a mutated session, refreshing its last-activity timestamp.
// Returns ErrStaleSession when a concurrent save won.
func (m *Manager) Save(ctx context.Context, sess *Session) error {
	sess.LastActivity = m.now()
	return m.store.Save(ctx, sess)
}

// ExpireIdle flips sessions that have been inactive past the idle timeout to
// the idle stage, clearing their pending order reference. Runs from the
// periodic sweep, not per request; a session that loses the version race to
// an in-flight message is skipped, since it is no longer idle.
func (m *Manager) ExpireIdle(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-m.idleTimeout)
	candidates, err := m.store.ListIdleCandidates(ctx, cutoff, 500)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range candidates {
		sess := &candidates[i]
		if err := m.store.MarkIdle(ctx, sess.ID, sess.Version); err != nil {
			if errors.Is(err, ErrStaleSession) {
				continue
			}
			return expired, err
		}
		expired++
		log.Debug().
			Str("session_id", sess.ID.String()).
			Str("business_id", sess.BusinessID.String()).
			Msg("session expired to idle")
	}
	return expired, nil
}

// IdleTimeout exposes the configured timeout (used by the sweep scheduler).
func (m *Manager) IdleTimeout() time.Duration {
	return m.idleTimeout
}

// SetNow overrides the clock. Test helper.
func (m *Manager) SetNow(now func() time.Time) {
	m.now = now
}
