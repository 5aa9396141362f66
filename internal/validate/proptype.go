package validate

import "strings"

// DefaultPropertyTypes maps each canonical property type to the synonyms
// accepted for it. The canonical name is always accepted.
var DefaultPropertyTypes = map[string][]string{
	"apartment":  {"apartment", "flat", "unit", "condo"},
	"villa":      {"villa"},
	"townhouse":  {"townhouse", "townhome", "town house"},
	"penthouse":  {"penthouse", "pent house"},
	"studio":     {"studio"},
	"duplex":     {"duplex"},
	"plot":       {"plot", "land"},
	"commercial": {"commercial", "office", "shop", "retail", "warehouse"},
}

// PropertyType matches raw text against the property-type synonym table
// and normalizes to the canonical type name. Unmatched text is invalid.
func PropertyType(raw string, synonyms map[string][]string) Result {
	if synonyms == nil {
		synonyms = DefaultPropertyTypes
	}
	lower := strings.ToLower(strings.TrimSpace(raw))
	if lower == "" {
		return invalid(ReasonUnrecognizedType)
	}

	for canonical, words := range synonyms {
		if lower == canonical {
			return valid(canonical)
		}
		for _, w := range words {
			if lower == w || strings.Contains(lower, w) {
				return valid(canonical)
			}
		}
	}
	return invalid(ReasonUnrecognizedType)
}
