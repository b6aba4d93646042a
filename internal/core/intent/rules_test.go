package intent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inxsource/whatsapp-sales-bot/internal/core/session"
)

func TestRuleClassifier(t *testing.T) {
	classifier := NewRuleClassifier()
	ctx := context.Background()

	tests := []struct {
		name       string
		text       string
		stage      session.Stage
		wantIntent Intent
		wantQuery  string
		conclusive bool
	}{
		{"browse keyword", "products", session.StageGreeting, IntentBrowse, "", true},
		{"menu keyword", "Menu", session.StageGreeting, IntentBrowse, "", true},
		{"catalog keyword", "catalogue", session.StageBrowsing, IntentBrowse, "", true},

		{"search with terms", "search red shoes", session.StageBrowsing, IntentSearch, "red shoes", true},
		{"find with terms", "find maize meal", session.StageGreeting, IntentSearch, "maize meal", true},
		{"look for with terms", "Look for fertilizer", session.StageBrowsing, IntentSearch, "fertilizer", true},

		{"buy with product", "buy running shoes", session.StageBrowsing, IntentSelectProduct, "running shoes", true},
		{"order with product", "order 2kg sugar", session.StageBrowsing, IntentSelectProduct, "2kg sugar", true},
		{"i want phrasing", "I want the blue one", session.StageBrowsing, IntentSelectProduct, "the blue one", true},

		{"checkout keyword", "checkout", session.StageOrdering, IntentConfirm, "", true},
		{"pay keyword", "pay", session.StageOrdering, IntentConfirm, "", true},
		{"bare yes while ordering", "yes", session.StageOrdering, IntentConfirm, "", true},
		{"bare ok while ordering", "ok", session.StageOrdering, IntentConfirm, "", true},

		{"cancel keyword", "cancel", session.StageOrdering, IntentAbandon, "", true},
		{"never mind", "never mind", session.StageOrdering, IntentAbandon, "", true},

		{"help command", "help", session.StageBrowsing, IntentHelp, "", true},
		{"reset command", "reset", session.StageOrdering, IntentReset, "", true},
		{"start over command", "start over", session.StageAwaitingPayment, IntentReset, "", true},

		{"free text is inconclusive", "do you deliver to Lusaka?", session.StageBrowsing, "", "", false},
		{"bare yes in greeting is inconclusive", "yes", session.StageGreeting, "", "", false},
		{"ambiguous add in greeting", "add me to your list", session.StageGreeting, "", "", false},
		{"empty message", "   ", session.StageGreeting, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := classifier.Classify(ctx, tt.text, tt.stage)
			assert.Equal(t, tt.conclusive, ok)
			if tt.conclusive {
				assert.Equal(t, tt.wantIntent, result.Intent)
				assert.Equal(t, tt.wantQuery, result.Query)
			}
		})
	}
}

func TestExtractProductQuery(t *testing.T) {
	tests := []struct {
		text  string
		want  string
		found bool
	}{
		{"buy running shoes", "running shoes", true},
		{"Order 2kg sugar", "2kg sugar", true},
		{"search fertilizer", "fertilizer", true},
		{"yes", "", false},
		{"hello there", "", false},
	}

	for _, tt := range tests {
		query, ok := ExtractProductQuery(tt.text)
		assert.Equal(t, tt.found, ok, tt.text)
		assert.Equal(t, tt.want, query, tt.text)
	}
}
