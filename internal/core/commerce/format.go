package commerce

import (
	"fmt"
	"strings"
)

// FormatProductList renders a catalog slice as a WhatsApp text message.
func FormatProductList(title string, products []ProductSummary) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("*%s*\n\n", title))
	for i, p := range products {
		sb.WriteString(fmt.Sprintf("%d. %s - K%.2f", i+1, p.Name, p.Price))
		if !p.InStock {
			sb.WriteString(" (out of stock)")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\nReply with 'buy <product name>' to order, or 'search <name>' to look for something else.")

	return sb.String()
}

// CatalogSnippet renders products as plain lines for the AI prompt.
func CatalogSnippet(products []ProductSummary) string {
	if len(products) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, p := range products {
		sb.WriteString(fmt.Sprintf("- %s: K%.2f", p.Name, p.Price))
		if p.Category != "" {
			sb.WriteString(fmt.Sprintf(" [%s]", p.Category))
		}
		if !p.InStock {
			sb.WriteString(" (out of stock)")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
