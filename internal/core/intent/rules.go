package intent

import (
	"context"
	"regexp"
	"strings"

	"github.com/inxsource/whatsapp-sales-bot/internal/core/session"
)

// RuleClassifier matches keyword patterns before any AI call is made.
// Cheap, deterministic, and handles the commands customers actually type.
type RuleClassifier struct{}

func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{}
}

var (
	searchPattern = regexp.MustCompile(`^(?:search|find|look for)\s+(.+)$`)
	buyPattern    = regexp.MustCompile(`^(?:buy|order|i want|i'd like|add)\s+(.+)$`)
)

var (
	browseWords = map[string]bool{
		"browse": true, "products": true, "show products": true,
		"show me products": true, "menu": true, "catalog": true,
		"catalogue": true, "show categories": true, "categories": true,
	}
	confirmWords = map[string]bool{
		"checkout": true, "pay": true, "purchase": true,
		"confirm": true, "confirm order": true, "place order": true,
	}
	abandonWords = map[string]bool{
		"cancel": true, "cancel order": true, "never mind": true,
		"nevermind": true, "stop": true, "go back": true,
	}
)

func (r *RuleClassifier) Classify(ctx context.Context, text string, stage session.Stage) (Result, bool) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return Result{}, false
	}

	switch normalized {
	case "help":
		return Result{Intent: IntentHelp}, true
	case "reset", "start over":
		return Result{Intent: IntentReset}, true
	}

	if browseWords[normalized] {
		return Result{Intent: IntentBrowse}, true
	}
	if confirmWords[normalized] {
		return Result{Intent: IntentConfirm}, true
	}
	if abandonWords[normalized] {
		return Result{Intent: IntentAbandon}, true
	}

	if m := searchPattern.FindStringSubmatch(normalized); m != nil {
		return Result{Intent: IntentSearch, Query: strings.TrimSpace(m[1])}, true
	}
	if m := buyPattern.FindStringSubmatch(normalized); m != nil {
		// "add" alone is too ambiguous outside a shopping phase
		if stage == session.StageGreeting && strings.HasPrefix(normalized, "add") {
			return Result{}, false
		}
		return Result{Intent: IntentSelectProduct, Query: strings.TrimSpace(m[1])}, true
	}

	// A bare "yes" while an order is being built means go ahead
	if stage == session.StageOrdering && (normalized == "yes" || normalized == "yes please" || normalized == "ok") {
		return Result{Intent: IntentConfirm}, true
	}

	return Result{}, false
}

// ExtractProductQuery pulls the product terms out of a buy or search command.
// Used by the router to recover what the customer asked for when the order is
// finally confirmed.
func ExtractProductQuery(text string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if m := buyPattern.FindStringSubmatch(normalized); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	if m := searchPattern.FindStringSubmatch(normalized); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	return "", false
}
