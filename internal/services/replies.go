package services

import (
	"fmt"
	"strings"

	"github.com/inxsource/whatsapp-sales-bot/internal/core/commerce"
)

// Templated reply texts for the deterministic branches of the conversation.
// AI-composed replies cover the open-ended stages; everything transactional
// (orders, payments, commands) stays templated so it never drifts.

func helpReply(businessName string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*%s* — here's what you can do:\n\n", businessName))
	sb.WriteString("- 'products' or 'menu' to browse the catalog\n")
	sb.WriteString("- 'search <name>' to look for something specific\n")
	sb.WriteString("- 'buy <product name>' to start an order\n")
	sb.WriteString("- 'confirm' to place the order, 'cancel' to drop it\n")
	sb.WriteString("- 'reset' to start the conversation over\n")
	return sb.String()
}

func resetReply(businessName string) string {
	return fmt.Sprintf("Alright, let's start fresh! Welcome back to %s. How can I help you today?", businessName)
}

func orderCreatedReply(ref *commerce.OrderRef) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Your order *%s* is in! Total: K%.2f.\n", ref.OrderNumber, ref.TotalAmount))
	if ref.Instructions != "" {
		sb.WriteString(ref.Instructions)
		sb.WriteString("\n")
	}
	if ref.PaymentLink != "" {
		sb.WriteString(fmt.Sprintf("Pay here: %s\n", ref.PaymentLink))
	}
	sb.WriteString("Message me anytime to check on your payment.")
	return sb.String()
}

func paymentConfirmedReply() string {
	return "Payment received, thank you! Your order is confirmed and on its way. Anything else I can help with?"
}

func paymentFailedReply() string {
	return "That payment didn't go through, sorry about that. Your order is back open — reply 'confirm' to try again or 'cancel' to drop it."
}

func paymentPendingReply() string {
	return "Your payment is still pending. I'll confirm as soon as it lands — check back in a moment."
}

func orderAbandonedReply() string {
	return "No problem, I've set that order aside. Feel free to keep browsing!"
}

func askWhatToOrderReply() string {
	return "Happy to place an order — which product would you like? Try 'buy <product name>'."
}

func productNotFoundReply(name string) string {
	return fmt.Sprintf("I couldn't find %q in the catalog. Try 'search %s' to see what's close, or 'products' to browse everything.", name, name)
}

func lookupFailedReply() string {
	return "I couldn't reach the catalog just now. Please try again in a moment."
}

func noProductsReply(query string) string {
	if query == "" {
		return "The catalog is empty right now — please check back soon!"
	}
	return fmt.Sprintf("Nothing matched %q. Try a different name, or 'products' to browse the full catalog.", query)
}

func tryAgainReply() string {
	return "Things got a bit busy on my end — please send that again."
}
