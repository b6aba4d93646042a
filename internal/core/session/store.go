package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrSessionNotFound is returned by Get when no session exists for the key
	ErrSessionNotFound = errors.New("session not found")

	// ErrStaleSession is returned by Save when the stored version has advanced
	// past the one supplied. The caller must reload and retry.
	ErrStaleSession = errors.New("stale session: stored version has advanced")
)

// Store is the persistence boundary for sessions. Implementations are pure
// data access; lifecycle rules live in the Manager.
type Store interface {
	// Get loads the session for (businessID, customerID) or ErrSessionNotFound.
	Get(ctx context.Context, businessID, customerID uuid.UUID) (*Session, error)

	// Create inserts a fresh session. Fails if one already exists for the key.
	Create(ctx context.Context, s *Session) error

	// Save persists a mutated session with an optimistic version check and
	// bumps s.Version on success.
	Save(ctx context.Context, s *Session) error

	// ListIdleCandidates returns non-idle sessions whose last activity is
	// older than cutoff.
	ListIdleCandidates(ctx context.Context, cutoff time.Time, limit int) ([]Session, error)

	// MarkIdle flips one session to the idle stage and clears its pending
	// order reference, guarded by the same version check as Save. A lost
	// race (a message arrived meanwhile) is reported as ErrStaleSession.
	MarkIdle(ctx context.Context, id uuid.UUID, version int) error
}

// GormStore persists sessions in Postgres via GORM.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Get(ctx context.Context, businessID, customerID uuid.UUID) (*Session, error) {
	var sess Session
	err := s.db.WithContext(ctx).
		Where("business_id = ? AND customer_id = ?", businessID, customerID).
		First(&sess).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &sess, nil
}

func (s *GormStore) Create(ctx context.Context, sess *Session) error {
	return s.db.WithContext(ctx).Create(sess).Error
}

func (s *GormStore) Save(ctx context.Context, sess *Session) error {
	result := s.db.WithContext(ctx).Model(&Session{}).
		Where("id = ? AND version = ?", sess.ID, sess.Version).
		Updates(map[string]interface{}{
			"stage":            sess.Stage,
			"turns":            sess.Turns,
			"last_activity":    sess.LastActivity,
			"pending_order_id": sess.PendingOrderID,
			"version":          sess.Version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleSession
	}
	sess.Version++
	return nil
}

func (s *GormStore) ListIdleCandidates(ctx context.Context, cutoff time.Time, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 100
	}

	var sessions []Session
	err := s.db.WithContext(ctx).
		Where("stage <> ? AND last_activity < ?", StageIdle, cutoff).
		Limit(limit).
		Find(&sessions).Error
	return sessions, err
}

func (s *GormStore) MarkIdle(ctx context.Context, id uuid.UUID, version int) error {
	result := s.db.WithContext(ctx).Model(&Session{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]interface{}{
			"stage":            StageIdle,
			"pending_order_id": nil,
			"version":          version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleSession
	}
	return nil
}
