// Package extract is the rule-based extraction collaborator: a regex
// pre-pass that pulls per-field candidate substrings out of a free-form
// message for the state machine to validate. It makes no validity
// judgements of its own; a plausible-looking candidate that fails
// validation is exactly how corrective prompts get triggered.
package extract

import (
	"regexp"
	"strings"

	"github.com/sells-group/leadqual/internal/conversation"
	"github.com/sells-group/leadqual/internal/model"
	"github.com/sells-group/leadqual/internal/validate"
)

var (
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

	// An international number, or a bare local run of 9-13 digits. The
	// bare form is deliberately captured so the validator can reject it
	// with missing_country_code and prompt for the full format.
	intlPhoneRe  = regexp.MustCompile(`\+\d[\d\s\-().]{6,}\d`)
	localPhoneRe = regexp.MustCompile(`\b\d{9,13}\b`)

	// Amounts with a multiplier suffix or currency marker, optionally as
	// a range ("1.5M to 2M", "500k-1M", "AED 1,500,000").
	budgetRe = regexp.MustCompile(`(?i)(?:aed|usd|eur|gbp|dhs|dirhams?|dollars?|[$€£])?\s*\d[\d,]*(?:\.\d+)?\s*(?:k|m|mn|million|lakh)?(?:\s*(?:to|[-–])\s*(?:aed|usd|[$€£])?\s*\d[\d,]*(?:\.\d+)?\s*(?:k|m|mn|million|lakh)?)?`)
	budgetMarkerRe = regexp.MustCompile(`(?i)(k|m|mn|million|lakh)\b|aed|usd|eur|gbp|dhs|dirham|dollar|[$€£]|budget|\s+to\s+`)

	namePhraseRe = regexp.MustCompile(`(?i)\b(?:my name is|i am|i'm|this is|call me)\s+([A-Za-z][A-Za-z .'\-]{1,48})`)
	nameOnlyRe   = regexp.MustCompile(`^[A-Za-z .'\-]+$`)

	interestRe = regexp.MustCompile(`(?i)\b(interested|interest|looking for|looking to|buy|buying|rent|renting|invest|investing|property|properties|viewing|schedule|visit)\b`)
)

// Extractor scans inbound messages for field candidates using the same
// rules tables the validators use.
type Extractor struct {
	rules validate.Rules
}

// NewExtractor creates an Extractor; zero-value rules select the defaults.
func NewExtractor(rules validate.Rules) *Extractor {
	if len(rules.Areas) == 0 {
		rules.Areas = validate.DefaultAreas
	}
	if rules.PropertyTypes == nil {
		rules.PropertyTypes = validate.DefaultPropertyTypes
	}
	return &Extractor{rules: rules}
}

// Extract produces per-field raw candidates and the stage-advance signal
// for one inbound message.
func (e *Extractor) Extract(text string) conversation.Extraction {
	fields := make(map[model.FieldKind]string)
	remaining := text

	if m := emailRe.FindString(remaining); m != "" {
		fields[model.FieldEmail] = m
		remaining = strings.Replace(remaining, m, " ", 1)
	}

	remaining = e.extractPhone(fields, remaining)
	remaining = e.extractBudget(fields, remaining)

	if loc := e.findArea(remaining); loc != "" {
		fields[model.FieldLocation] = loc
	}
	if pt := e.findPropertyType(remaining); pt != "" {
		fields[model.FieldPropertyType] = pt
	}

	e.extractName(fields, text, remaining)

	signal := conversation.SignalNone
	switch {
	case len(fields) > 0:
		signal = conversation.SignalFieldSupplied
	case interestRe.MatchString(text):
		signal = conversation.SignalInterest
	}

	return conversation.Extraction{Fields: fields, Signal: signal}
}

func (e *Extractor) extractPhone(fields map[model.FieldKind]string, text string) string {
	if m := intlPhoneRe.FindString(text); m != "" {
		fields[model.FieldPhone] = strings.TrimSpace(m)
		return strings.Replace(text, m, " ", 1)
	}
	if m := localPhoneRe.FindString(text); m != "" {
		fields[model.FieldPhone] = m
		return strings.Replace(text, m, " ", 1)
	}
	return text
}

func (e *Extractor) extractBudget(fields map[model.FieldKind]string, text string) string {
	for _, m := range budgetRe.FindAllString(text, -1) {
		m = strings.TrimSpace(m)
		if m == "" || !budgetMarkerRe.MatchString(m) {
			// A bare number with no budget marker is too ambiguous: it
			// could be a house number or part of an address.
			continue
		}
		fields[model.FieldBudget] = m
		return strings.Replace(text, m, " ", 1)
	}
	return text
}

// findArea returns the first allow-listed area mentioned in the text.
func (e *Extractor) findArea(text string) string {
	lower := strings.ToLower(text)
	for _, area := range e.rules.Areas {
		if strings.Contains(lower, strings.ToLower(area)) {
			return area
		}
	}
	return ""
}

// findPropertyType returns the raw synonym mention, leaving normalization
// to the validator.
func (e *Extractor) findPropertyType(text string) string {
	lower := strings.ToLower(text)
	for _, words := range e.rules.PropertyTypes {
		for _, w := range words {
			if strings.Contains(lower, w) {
				return w
			}
		}
	}
	return ""
}

// nameStopwords are leading words that mark an introduction-phrase match
// as something other than a name.
var nameStopwords = map[string]bool{
	"on": true, "at": true, "via": true, "back": true,
	"later": true, "now": true, "anytime": true, "asap": true,
	"when": true, "whenever": true, "after": true, "tomorrow": true,
}

func firstWordLower(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// extractName looks for an introduction phrase, and falls back to treating
// a short, letters-only message with no other candidates as a name reply.
func (e *Extractor) extractName(fields map[model.FieldKind]string, original, remaining string) {
	if m := namePhraseRe.FindStringSubmatch(original); m != nil {
		candidate := strings.TrimSpace(m[1])
		// "I'm interested in..." is an intent statement, not an
		// introduction, and "call me on ..." leads into a number.
		if !interestRe.MatchString(candidate) && !nameStopwords[firstWordLower(candidate)] {
			fields[model.FieldName] = candidate
			return
		}
	}
	if len(fields) > 0 {
		return
	}
	trimmed := strings.TrimSpace(remaining)
	if trimmed == "" || len(trimmed) >= 50 || len(strings.Fields(trimmed)) > 4 {
		return
	}
	if !nameOnlyRe.MatchString(trimmed) || interestRe.MatchString(trimmed) {
		return
	}
	fields[model.FieldName] = trimmed
}
