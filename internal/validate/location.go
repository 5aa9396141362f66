package validate

import (
	"strings"
	"unicode"

	"github.com/agext/levenshtein"
)

// Location matches raw text against the recognized-area allow-list.
// Matching is case-insensitive and tolerant of minor misspellings (edit
// distance scaled to the area name length). An allow-list hit validates at
// high confidence and normalizes to the canonical area name. Unknown but
// plausible free text is accepted at low confidence rather than rejected:
// location is a soft-qualify field, unlike phone or email.
func Location(raw string, areas []string) Result {
	cleaned := strings.Join(strings.Fields(raw), " ")
	if cleaned == "" {
		return invalid(ReasonEmptyOrInvalidChars)
	}

	lower := strings.ToLower(cleaned)
	for _, area := range areas {
		if matchesArea(lower, strings.ToLower(area)) {
			return valid(area)
		}
	}

	if !plausibleLocation(cleaned) {
		return invalid(ReasonEmptyOrInvalidChars)
	}
	return Result{Valid: true, Normalized: cleaned, Confidence: ConfidenceLow}
}

// matchesArea reports whether input names the given area, allowing small
// spelling variance on longer names (distance 1 under 8 chars, else 2).
func matchesArea(input, area string) bool {
	if input == area {
		return true
	}
	maxDist := 1
	if len(area) >= 8 {
		maxDist = 2
	}
	return levenshtein.Distance(input, area, nil) <= maxDist
}

func plausibleLocation(s string) bool {
	if len([]rune(s)) < 3 {
		return false
	}
	letters := 0
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letters++
		case r == ' ' || r == '-' || r == '\'' || unicode.IsDigit(r):
			// Digits appear in legitimate area names (e.g. "JVC District 12").
		default:
			return false
		}
	}
	return letters >= 3
}
