package validate

import (
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9](?:[A-Za-z0-9\-]*[A-Za-z0-9])?(?:\.[A-Za-z0-9](?:[A-Za-z0-9\-]*[A-Za-z0-9])?)*\.[A-Za-z]{2,}$`)

// Email validates a local@domain.tld address and normalizes it to
// lowercase. Deliverability is not checked.
func Email(raw string) Result {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.Count(trimmed, "@") != 1 {
		return invalid(ReasonMalformedAddress)
	}
	if !emailRe.MatchString(trimmed) {
		return invalid(ReasonMalformedAddress)
	}
	return valid(strings.ToLower(trimmed))
}
