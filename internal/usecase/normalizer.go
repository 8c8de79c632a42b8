package usecase

import (
	"regexp"
	"strings"
)

// Compiled patterns for search-term normalization
var (
	// Matches parenthesized asides like "(boneless)" or "(about 200g)"
	parentheticalPattern = regexp.MustCompile(`\([^)]*\)`)

	// Matches a leading quantity-plus-unit token like "200g ", "2 cups ", "1 lb "
	leadingQuantityPattern = regexp.MustCompile(`(?i)^\d+\s*(g|ml|oz|lb|lbs|cups?|tbsp|tsp|pieces?)\b\s*`)
)

// prepPhrases are preparation markers: the term is truncated at the leftmost
// occurrence, unless that occurrence starts the string.
var prepPhrases = []string{
	"cooked with", "mixed with", "topped with", "served with",
	"diced", "chopped", "sliced", "grilled", "baked",
}

// SimplifySearchTerm strips quantity and preparation noise from a raw item
// string to produce a cleaner search term. Total over all inputs: if
// normalization would erase the term entirely, the original item is returned.
func SimplifySearchTerm(item string) string {
	cleaned := parentheticalPattern.ReplaceAllString(item, "")
	cleaned = leadingQuantityPattern.ReplaceAllString(cleaned, "")

	lower := strings.ToLower(cleaned)
	cut := -1
	for _, phrase := range prepPhrases {
		idx := strings.Index(lower, phrase)
		if idx > 0 && (cut == -1 || idx < cut) {
			cut = idx
		}
	}
	if cut > 0 {
		cleaned = cleaned[:cut]
	}

	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return item
	}
	return cleaned
}
