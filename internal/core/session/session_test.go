package session

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendTurnEvictsOldestFirst(t *testing.T) {
	sess := &Session{Turns: Turns{}}

	for i := 0; i < 25; i++ {
		sess.AppendTurn(Turn{Role: RoleUser, Body: fmt.Sprintf("msg-%d", i)}, 20)
	}

	require.Len(t, sess.Turns, 20)
	assert.Equal(t, "msg-5", sess.Turns[0].Body, "oldest turns must be evicted first")
	assert.Equal(t, "msg-24", sess.Turns[19].Body, "newest turn must be kept")
}

func TestAppendTurnUnboundedWhenCapacityZero(t *testing.T) {
	sess := &Session{Turns: Turns{}}
	for i := 0; i < 30; i++ {
		sess.AppendTurn(Turn{Role: RoleUser, Body: "x"}, 0)
	}
	assert.Len(t, sess.Turns, 30)
}

func TestIsExpired(t *testing.T) {
	now := time.Now()
	sess := &Session{LastActivity: now.Add(-31 * time.Minute)}

	assert.True(t, sess.IsExpired(now, 30*time.Minute))
	assert.False(t, sess.IsExpired(now, 45*time.Minute))

	// Exactly at the boundary is still live
	sess.LastActivity = now.Add(-30 * time.Minute)
	assert.False(t, sess.IsExpired(now, 30*time.Minute))
}

func TestReinitialize(t *testing.T) {
	orderID := uuid.New()
	sess := &Session{
		Stage:          StageAwaitingPayment,
		Turns:          Turns{{Role: RoleUser, Body: "hello"}},
		PendingOrderID: &orderID,
		Version:        7,
	}

	sess.Reinitialize()

	assert.Equal(t, StageGreeting, sess.Stage)
	assert.Empty(t, sess.Turns)
	assert.Nil(t, sess.PendingOrderID)
	assert.Equal(t, 7, sess.Version, "version must survive reinitialization")
}

func TestCloneIsIndependent(t *testing.T) {
	orderID := uuid.New()
	sess := &Session{
		Stage:          StageOrdering,
		Turns:          Turns{{Role: RoleUser, Body: "original"}},
		PendingOrderID: &orderID,
	}

	cp := sess.Clone()
	cp.Turns[0].Body = "mutated"
	*cp.PendingOrderID = uuid.New()
	cp.Stage = StageIdle

	assert.Equal(t, "original", sess.Turns[0].Body)
	assert.Equal(t, orderID, *sess.PendingOrderID)
	assert.Equal(t, StageOrdering, sess.Stage)
}
