package validate

import "strings"

// Phone validates an international phone number. Numbers must carry an
// explicit country calling code: "+" followed by 1-3 digits, then 6-14
// further digits. Local-format numbers are rejected with
// missing_country_code so the reply layer can ask for a fully-qualified
// number; downstream messaging cannot address a local number.
func Phone(raw string) Result {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return invalid(ReasonMalformedDigits)
	}

	var b strings.Builder
	for i, r := range trimmed {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+':
			if b.Len() != 0 || i != 0 {
				return invalid(ReasonMalformedDigits)
			}
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
			// Formatting characters are stripped.
		default:
			return invalid(ReasonMalformedDigits)
		}
	}

	cleaned := b.String()
	if !strings.HasPrefix(cleaned, "+") {
		if len(cleaned) >= 5 {
			return invalid(ReasonMissingCountryCode)
		}
		return invalid(ReasonMalformedDigits)
	}

	digits := cleaned[1:]
	// 1-3 digit country prefix plus 6-14 subscriber digits.
	if len(digits) < 7 || len(digits) > 17 {
		return invalid(ReasonMalformedDigits)
	}
	if allSameDigit(digits) {
		return invalid(ReasonMalformedDigits)
	}

	return valid(cleaned)
}

func allSameDigit(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return len(s) > 0
}
