package domain

import "strings"

// Suggested category labels. The ledger accepts any string; these are what the
// entry form and the extraction prompt offer.
const (
	CategoryFood          = "Food"
	CategoryTransport     = "Transport"
	CategoryShopping      = "Shopping"
	CategoryUtilities     = "Utilities"
	CategoryBills         = "Bills"
	CategoryEntertainment = "Entertainment"
	CategoryHealth        = "Health"
	CategoryOther         = "Other"
)

// DefaultManualCategory is preselected on the manual entry form.
const DefaultManualCategory = CategoryShopping

var suggestedCategories = []string{
	CategoryFood,
	CategoryTransport,
	CategoryShopping,
	CategoryUtilities,
	CategoryBills,
	CategoryEntertainment,
	CategoryHealth,
	CategoryOther,
}

// SuggestedCategories returns a copy of the suggested label set in display order.
func SuggestedCategories() []string {
	out := make([]string, len(suggestedCategories))
	copy(out, suggestedCategories)
	return out
}

// IsSuggestedCategory reports whether name matches a suggested label,
// ignoring case and surrounding whitespace.
func IsSuggestedCategory(name string) bool {
	return CanonicalCategory(name) != ""
}

// CanonicalCategory returns the suggested label matching name case-insensitively,
// or "" if name is not one of them.
func CanonicalCategory(name string) string {
	norm := normalizeCategory(name)
	for _, c := range suggestedCategories {
		if normalizeCategory(c) == norm {
			return c
		}
	}
	return ""
}

// normalizeCategory upper-cases and trims a label for comparison.
func normalizeCategory(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
