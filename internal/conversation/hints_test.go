package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/leadqual/internal/model"
	"github.com/sells-group/leadqual/internal/validate"
)

func TestHintSpecificPerReason(t *testing.T) {
	reasons := []validate.Reason{
		validate.ReasonMissingCountryCode,
		validate.ReasonMalformedDigits,
		validate.ReasonMalformedAddress,
		validate.ReasonNotNumeric,
		validate.ReasonInconsistentRange,
		validate.ReasonBelowMinimum,
		validate.ReasonEmptyOrInvalidChars,
		validate.ReasonTooShort,
		validate.ReasonUnrecognizedType,
	}

	seen := make(map[string]validate.Reason, len(reasons))
	for _, r := range reasons {
		hint := Hint(model.FieldPhone, r)
		assert.NotEmpty(t, hint)
		assert.NotContains(t, hint, "invalid input")
		if prev, dup := seen[hint]; dup {
			t.Errorf("reason %s and %s share hint %q", prev, r, hint)
		}
		seen[hint] = r
	}

	// The country-code hint must carry a concrete example.
	assert.Contains(t, Hint(model.FieldPhone, validate.ReasonMissingCountryCode), "+971 50 123 4567")
}

func TestHintUnknownReasonNamesField(t *testing.T) {
	hint := Hint(model.FieldBudget, validate.Reason("mystery"))
	assert.Contains(t, hint, "budget")
}
