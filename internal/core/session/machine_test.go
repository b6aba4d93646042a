package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNext(t *testing.T) {
	tests := []struct {
		name  string
		stage Stage
		event Event
		want  Stage
		ok    bool
	}{
		{"greeting to browsing", StageGreeting, EventBrowse, StageBrowsing, true},
		{"browsing to ordering", StageBrowsing, EventSelectProduct, StageOrdering, true},
		{"ordering to awaiting payment", StageOrdering, EventConfirm, StageAwaitingPayment, true},
		{"ordering back to browsing", StageOrdering, EventAbandon, StageBrowsing, true},
		{"payment confirmed closes the loop", StageAwaitingPayment, EventPaymentConfirmed, StageGreeting, true},
		{"payment failed reopens the order", StageAwaitingPayment, EventPaymentFailed, StageOrdering, true},
		{"idle wakes to greeting", StageIdle, EventMessage, StageGreeting, true},

		{"cannot select from greeting", StageGreeting, EventSelectProduct, "", false},
		{"cannot confirm from greeting", StageGreeting, EventConfirm, "", false},
		{"cannot confirm from browsing", StageBrowsing, EventConfirm, "", false},
		{"cannot browse from awaiting payment", StageAwaitingPayment, EventBrowse, "", false},
		{"cannot abandon from idle", StageIdle, EventAbandon, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, ok := Next(tt.stage, tt.event)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, next)
			}
		})
	}
}

func TestNextTimeoutFromAnyStage(t *testing.T) {
	for _, stage := range []Stage{StageGreeting, StageBrowsing, StageOrdering, StageAwaitingPayment, StageIdle} {
		next, ok := Next(stage, EventTimeout)
		assert.True(t, ok, "timeout must be valid from %s", stage)
		assert.Equal(t, StageIdle, next)
	}
}
