package conversation

import (
	"github.com/sells-group/leadqual/internal/model"
	"github.com/sells-group/leadqual/internal/validate"
)

// hintTexts maps each failure reason to a specific corrective instruction
// for the reply layer. Every reason gets its own hint; a generic "invalid
// input" message is a contract violation, not a fallback.
var hintTexts = map[validate.Reason]string{
	validate.ReasonMissingCountryCode:  "ask for the phone number in full international format with country code, for example +971 50 123 4567",
	validate.ReasonMalformedDigits:     "ask for the phone number again using digits and country code only, no letters or extra symbols",
	validate.ReasonMalformedAddress:    "ask for an email address in the form name@example.com",
	validate.ReasonNotNumeric:          "ask for an approximate budget figure rather than a description, for example 500K or 1.5M",
	validate.ReasonInconsistentRange:   "the budget range was inconsistent; ask for it again from lower to higher, for example 1M to 2M",
	validate.ReasonBelowMinimum:        "the stated budget was implausibly low; confirm the intended amount and unit",
	validate.ReasonEmptyOrInvalidChars: "ask again using letters only, without numbers or symbols",
	validate.ReasonTooShort:            "the answer was too short to use; ask for the full version",
	validate.ReasonUnrecognizedType:    "ask the lead to pick a property type such as apartment, villa, townhouse, studio, plot or commercial",
}

// Hint returns the corrective instruction for a failed field validation.
func Hint(kind model.FieldKind, reason validate.Reason) string {
	if text, ok := hintTexts[reason]; ok {
		return text
	}
	// Unknown reasons should not occur; fall back to naming the field so
	// the reply still addresses the right thing.
	return "ask again for the lead's " + string(kind)
}
