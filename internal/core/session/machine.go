package session

import "fmt"

// Event drives a stage transition. Events are produced by the conversation
// router (from classified intents or commerce outcomes); this package only
// validates and applies them.
type Event string

const (
	EventBrowse           Event = "browse"
	EventSelectProduct    Event = "select_product"
	EventConfirm          Event = "confirm"
	EventAbandon          Event = "abandon"
	EventPaymentConfirmed Event = "payment_confirmed"
	EventPaymentFailed    Event = "payment_failed"
	EventTimeout          Event = "timeout"
	EventMessage          Event = "message"
)

// ErrInvalidTransition is returned when an event is not valid for the
// session's current stage.
type ErrInvalidTransition struct {
	Stage Stage
	Event Event
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid transition: stage=%s event=%s", e.Stage, e.Event)
}

var transitions = map[Stage]map[Event]Stage{
	StageGreeting: {
		EventBrowse: StageBrowsing,
	},
	StageBrowsing: {
		EventSelectProduct: StageOrdering,
	},
	StageOrdering: {
		EventConfirm: StageAwaitingPayment,
		EventAbandon: StageBrowsing,
	},
	StageAwaitingPayment: {
		EventPaymentConfirmed: StageGreeting,
		EventPaymentFailed:    StageOrdering,
	},
	StageIdle: {
		EventMessage: StageGreeting,
	},
}

// Next returns the stage reached by applying ev to stage. EventTimeout is
// valid from any stage and always lands on idle.
func Next(stage Stage, ev Event) (Stage, bool) {
	if ev == EventTimeout {
		return StageIdle, true
	}
	next, ok := transitions[stage][ev]
	return next, ok
}
