package commerce

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatProductList(t *testing.T) {
	out := FormatProductList("Our products", []ProductSummary{
		{Name: "Running Shoes", Price: 450, InStock: true},
		{Name: "Sandals", Price: 120.5, InStock: false},
	})

	assert.Contains(t, out, "*Our products*")
	assert.Contains(t, out, "1. Running Shoes - K450.00")
	assert.Contains(t, out, "2. Sandals - K120.50 (out of stock)")
	assert.Contains(t, out, "buy <product name>")
}

func TestCatalogSnippet(t *testing.T) {
	out := CatalogSnippet([]ProductSummary{
		{Name: "Maize Meal", Category: "groceries", Price: 85, InStock: true},
	})

	assert.Contains(t, out, "- Maize Meal: K85.00 [groceries]")
}

func TestCatalogSnippetEmpty(t *testing.T) {
	assert.Empty(t, CatalogSnippet(nil))
}
