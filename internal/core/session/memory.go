package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps sessions in an in-process map. Useful for development
// without a database and for tests; production deployments use GormStore.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
	}
}

func memoryKey(businessID, customerID uuid.UUID) string {
	return businessID.String() + "|" + customerID.String()
}

func (s *MemoryStore) Get(ctx context.Context, businessID, customerID uuid.UUID) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[memoryKey(businessID, customerID)]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess.Clone(), nil
}

func (s *MemoryStore) Create(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memoryKey(sess.BusinessID, sess.CustomerID)
	if _, exists := s.sessions[key]; exists {
		return ErrStaleSession
	}
	if sess.ID == uuid.Nil {
		sess.ID = uuid.New()
	}
	if sess.Version == 0 {
		sess.Version = 1
	}
	s.sessions[key] = sess.Clone()
	return nil
}

func (s *MemoryStore) Save(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memoryKey(sess.BusinessID, sess.CustomerID)
	stored, ok := s.sessions[key]
	if !ok {
		return ErrSessionNotFound
	}
	if stored.Version != sess.Version {
		return ErrStaleSession
	}

	sess.Version++
	s.sessions[key] = sess.Clone()
	return nil
}

func (s *MemoryStore) ListIdleCandidates(ctx context.Context, cutoff time.Time, limit int) ([]Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	var out []Session
	for _, sess := range s.sessions {
		if sess.Stage != StageIdle && sess.LastActivity.Before(cutoff) {
			out = append(out, *sess.Clone())
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (s *MemoryStore) MarkIdle(ctx context.Context, id uuid.UUID, version int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range s.sessions {
		if sess.ID == id {
			if sess.Version != version {
				return ErrStaleSession
			}
			sess.Stage = StageIdle
			sess.PendingOrderID = nil
			sess.Version++
			return nil
		}
	}
	return ErrSessionNotFound
}
