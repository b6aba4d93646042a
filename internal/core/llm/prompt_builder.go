package llm

import (
	"fmt"
	"strings"

	"github.com/inxsource/whatsapp-sales-bot/internal/core/session"
)

// BusinessProfile is the per-tenant context handed to the responder. The
// prompt template comes from the business record, so every tenant gets its
// own voice.
type BusinessProfile struct {
	BusinessName   string
	Industry       string
	Tone           string
	PromptTemplate string
}

// BuildSystemPrompt membuat system prompt dari business profile
func BuildSystemPrompt(profile *BusinessProfile, stage session.Stage, catalogSnippet string) string {
	var sb strings.Builder

	if profile.PromptTemplate != "" {
		sb.WriteString(profile.PromptTemplate)
		sb.WriteString("\n\n")
	} else {
		sb.WriteString(fmt.Sprintf("You are a sales assistant for %s", profile.BusinessName))
		if profile.Industry != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", profile.Industry))
		}
		sb.WriteString(", chatting with a customer on WhatsApp.\n")
		if profile.Tone != "" {
			sb.WriteString(fmt.Sprintf("Communication tone: %s.\n", profile.Tone))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("The conversation is currently in the %q phase.\n", stageDescription(stage)))

	if catalogSnippet != "" {
		sb.WriteString("\n=== PRODUCT CATALOG ===\n")
		sb.WriteString(catalogSnippet)
		sb.WriteString("\n")
	}

	sb.WriteString("\nInstructions:\n")
	sb.WriteString("- Answer warmly and keep replies short enough for WhatsApp\n")
	sb.WriteString("- Only use the catalog above when talking about products and prices\n")
	sb.WriteString("- Never invent products, prices, or payment confirmations\n")
	sb.WriteString("- If you don't know something, say so honestly\n")

	return sb.String()
}

// BuildUserPrompt flattens the bounded turn history plus the latest message
// into one prompt body.
func BuildUserPrompt(turns session.Turns) string {
	var sb strings.Builder

	if len(turns) > 1 {
		sb.WriteString("Conversation so far:\n")
		for _, turn := range turns[:len(turns)-1] {
			sb.WriteString(fmt.Sprintf("%s: %s\n", turn.Role, turn.Body))
		}
		sb.WriteString("\n")
	}

	if len(turns) > 0 {
		sb.WriteString(fmt.Sprintf("Customer's latest message: %s", turns[len(turns)-1].Body))
	}

	return sb.String()
}

func stageDescription(stage session.Stage) string {
	switch stage {
	case session.StageGreeting:
		return "greeting"
	case session.StageBrowsing:
		return "browsing products"
	case session.StageOrdering:
		return "building an order"
	case session.StageAwaitingPayment:
		return "awaiting payment"
	default:
		return string(stage)
	}
}
