package intent

import (
	"context"

	"github.com/inxsource/whatsapp-sales-bot/internal/core/session"
)

// Intent is what the customer is trying to do with one message
type Intent string

const (
	IntentBrowse        Intent = "browse"
	IntentSearch        Intent = "search"
	IntentSelectProduct Intent = "select_product"
	IntentConfirm       Intent = "confirm"
	IntentAbandon       Intent = "abandon"
	IntentHelp          Intent = "help"
	IntentReset         Intent = "reset"
	IntentUnknown       Intent = "unknown"
)

// Result carries the classified intent plus any extracted argument, e.g. the
// product terms from "search for red shoes".
type Result struct {
	Intent Intent
	Query  string
}

// Classifier inspects one message in the context of the current stage. The
// second return value reports whether the classification is conclusive;
// inconclusive results fall through to the next classifier in the chain.
type Classifier interface {
	Classify(ctx context.Context, text string, stage session.Stage) (Result, bool)
}

// Chain tries classifiers in order and returns the first conclusive result.
// Keyword rules run first; the AI classifier is the (slower) fallback.
type Chain struct {
	classifiers []Classifier
}

func NewChain(classifiers ...Classifier) *Chain {
	return &Chain{classifiers: classifiers}
}

func (c *Chain) Classify(ctx context.Context, text string, stage session.Stage) Result {
	for _, classifier := range c.classifiers {
		if result, ok := classifier.Classify(ctx, text, stage); ok {
			return result
		}
	}
	return Result{Intent: IntentUnknown}
}
