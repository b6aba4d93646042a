package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	return NewManager(store, 30*time.Minute, 20), store
}

func TestGetOrCreateFirstContact(t *testing.T) {
	m, _ := newTestManager(t)
	businessID, customerID := uuid.New(), uuid.New()

	sess, err := m.GetOrCreate(context.Background(), businessID, customerID)
	require.NoError(t, err)

	assert.Equal(t, StageGreeting, sess.Stage)
	assert.Empty(t, sess.Turns)
	assert.Equal(t, 1, sess.Version)
	assert.Equal(t, businessID, sess.BusinessID)
	assert.Equal(t, customerID, sess.CustomerID)
}

func TestGetOrCreateReturnsLiveSession(t *testing.T) {
	m, _ := newTestManager(t)
	businessID, customerID := uuid.New(), uuid.New()
	ctx := context.Background()

	sess, err := m.GetOrCreate(ctx, businessID, customerID)
	require.NoError(t, err)
	sess.Stage = StageBrowsing
	m.AppendTurn(sess, RoleUser, "show me products")
	require.NoError(t, m.Save(ctx, sess))

	reloaded, err := m.GetOrCreate(ctx, businessID, customerID)
	require.NoError(t, err)
	assert.Equal(t, StageBrowsing, reloaded.Stage)
	assert.Len(t, reloaded.Turns, 1)
}

func TestGetOrCreateReinitializesIdleSession(t *testing.T) {
	m, store := newTestManager(t)
	businessID, customerID := uuid.New(), uuid.New()
	ctx := context.Background()

	orderID := uuid.New()
	require.NoError(t, store.Create(ctx, &Session{
		BusinessID:     businessID,
		CustomerID:     customerID,
		Stage:          StageIdle,
		Turns:          Turns{{Role: RoleUser, Body: "old"}},
		PendingOrderID: &orderID,
		LastActivity:   time.Now(),
	}))

	sess, err := m.GetOrCreate(ctx, businessID, customerID)
	require.NoError(t, err)

	assert.Equal(t, StageGreeting, sess.Stage, "idle session must wake to greeting")
	assert.Empty(t, sess.Turns)
	assert.Nil(t, sess.PendingOrderID)
}

func TestGetOrCreateReinitializesExpiredSession(t *testing.T) {
	m, store := newTestManager(t)
	businessID, customerID := uuid.New(), uuid.New()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &Session{
		BusinessID:   businessID,
		CustomerID:   customerID,
		Stage:        StageOrdering,
		Turns:        Turns{{Role: RoleUser, Body: "buy shoes"}},
		LastActivity: time.Now().Add(-31 * time.Minute),
	}))

	sess, err := m.GetOrCreate(ctx, businessID, customerID)
	require.NoError(t, err)

	// Past the timeout the old context is gone even before the sweep ran
	assert.Equal(t, StageGreeting, sess.Stage)
	assert.Empty(t, sess.Turns)
}

func TestSaveDetectsStaleVersion(t *testing.T) {
	m, _ := newTestManager(t)
	businessID, customerID := uuid.New(), uuid.New()
	ctx := context.Background()

	first, err := m.GetOrCreate(ctx, businessID, customerID)
	require.NoError(t, err)

	second := first.Clone()

	require.NoError(t, m.Save(ctx, first))
	err = m.Save(ctx, second)
	assert.ErrorIs(t, err, ErrStaleSession)
}

func TestApplyRejectsInvalidTransition(t *testing.T) {
	m, _ := newTestManager(t)
	sess := &Session{Stage: StageGreeting}

	err := m.Apply(sess, EventConfirm)

	var invalid *ErrInvalidTransition
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, StageGreeting, sess.Stage, "failed transition must not move the stage")

	require.NoError(t, m.Apply(sess, EventBrowse))
	assert.Equal(t, StageBrowsing, sess.Stage)
}

func TestAppendTurnHonorsCapacity(t *testing.T) {
	store := NewMemoryStore()
	m := NewManager(store, 30*time.Minute, 3)
	sess := &Session{Turns: Turns{}}

	for _, body := range []string{"a", "b", "c", "d"} {
		m.AppendTurn(sess, RoleUser, body)
	}

	require.Len(t, sess.Turns, 3)
	assert.Equal(t, "b", sess.Turns[0].Body)
}

func TestExpireIdleSweep(t *testing.T) {
	m, store := newTestManager(t)
	ctx := context.Background()
	now := time.Now()

	// One stale, one fresh, one already idle
	require.NoError(t, store.Create(ctx, &Session{
		BusinessID: uuid.New(), CustomerID: uuid.New(),
		Stage: StageBrowsing, LastActivity: now.Add(-45 * time.Minute),
	}))
	require.NoError(t, store.Create(ctx, &Session{
		BusinessID: uuid.New(), CustomerID: uuid.New(),
		Stage: StageOrdering, LastActivity: now.Add(-5 * time.Minute),
	}))
	require.NoError(t, store.Create(ctx, &Session{
		BusinessID: uuid.New(), CustomerID: uuid.New(),
		Stage: StageIdle, LastActivity: now.Add(-2 * time.Hour),
	}))

	expired, err := m.ExpireIdle(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)
}

func TestExpireIdleClearsPendingOrder(t *testing.T) {
	m, store := newTestManager(t)
	ctx := context.Background()
	businessID, customerID := uuid.New(), uuid.New()
	orderID := uuid.New()

	require.NoError(t, store.Create(ctx, &Session{
		BusinessID:     businessID,
		CustomerID:     customerID,
		Stage:          StageAwaitingPayment,
		PendingOrderID: &orderID,
		LastActivity:   time.Now().Add(-time.Hour),
	}))

	_, err := m.ExpireIdle(ctx, time.Now())
	require.NoError(t, err)

	stored, err := store.Get(ctx, businessID, customerID)
	require.NoError(t, err)
	assert.Equal(t, StageIdle, stored.Stage)
	assert.Nil(t, stored.PendingOrderID)
}

func TestConcurrentMessagesSerializeUnderKeyLock(t *testing.T) {
	m, store := newTestManager(t)
	businessID, customerID := uuid.New(), uuid.New()
	ctx := context.Background()

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			unlock := m.Lock(businessID, customerID)
			defer unlock()

			sess, err := m.GetOrCreate(ctx, businessID, customerID)
			if !assert.NoError(t, err) {
				return
			}
			m.AppendTurn(sess, RoleUser, "msg")
			assert.NoError(t, m.Save(ctx, sess))
		}()
	}
	wg.Wait()

	stored, err := store.Get(ctx, businessID, customerID)
	require.NoError(t, err)
	// All 50 turns landed; capacity 20 keeps the newest 20
	assert.Len(t, stored.Turns, 20)
	assert.Equal(t, workers+1, stored.Version)
}
