package intent

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/inxsource/whatsapp-sales-bot/internal/core/session"
)

// LabelClassifier is the slice of the AI responder this package needs.
type LabelClassifier interface {
	ClassifyIntent(ctx context.Context, text string, stage session.Stage) (string, error)
}

// AIClassifier delegates to the LLM when keyword rules were inconclusive.
// Errors and unrecognized labels are treated as inconclusive, never fatal:
// the router still answers the message with a free-form AI reply.
type AIClassifier struct {
	responder LabelClassifier
}

func NewAIClassifier(responder LabelClassifier) *AIClassifier {
	return &AIClassifier{responder: responder}
}

func (a *AIClassifier) Classify(ctx context.Context, text string, stage session.Stage) (Result, bool) {
	label, err := a.responder.ClassifyIntent(ctx, text, stage)
	if err != nil {
		log.Debug().Err(err).Msg("ai intent classification failed, treating as inconclusive")
		return Result{}, false
	}

	switch Intent(label) {
	case IntentBrowse, IntentSelectProduct, IntentConfirm, IntentAbandon:
		return Result{Intent: Intent(label)}, true
	default:
		return Result{}, false
	}
}
