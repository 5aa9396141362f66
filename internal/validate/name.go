package validate

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var nameTitler = cases.Title(language.Und)

// Name validates a person name: letters plus space, hyphen, apostrophe and
// period only, at least two characters, no single-letter throwaway tokens.
// Output is title-cased with whitespace collapsed.
func Name(raw string) Result {
	cleaned := strings.Join(strings.Fields(raw), " ")
	if cleaned == "" {
		return invalid(ReasonEmptyOrInvalidChars)
	}
	if len([]rune(cleaned)) < 2 {
		return invalid(ReasonTooShort)
	}
	if len(cleaned) > 100 {
		return invalid(ReasonEmptyOrInvalidChars)
	}

	for _, r := range cleaned {
		if unicode.IsLetter(r) || r == ' ' || r == '-' || r == '\'' || r == '.' {
			continue
		}
		return invalid(ReasonEmptyOrInvalidChars)
	}

	// A name of only punctuation ("--") or a lone initial is not usable.
	letters := 0
	for _, r := range cleaned {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if letters < 2 {
		return invalid(ReasonTooShort)
	}

	return valid(nameTitler.String(strings.ToLower(cleaned)))
}
