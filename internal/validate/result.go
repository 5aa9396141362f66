// Package validate implements per-field validation and normalization for
// lead qualification input. Every validator is a pure function: raw text in,
// Result out, no I/O. Failures are data, not errors.
package validate

import "github.com/sells-group/leadqual/internal/model"

// Reason identifies why a validation failed.
type Reason string

const (
	// Phone.
	ReasonMissingCountryCode Reason = "missing_country_code"
	ReasonMalformedDigits    Reason = "malformed_digits"

	// Email.
	ReasonMalformedAddress Reason = "malformed_address"

	// Budget.
	ReasonNotNumeric        Reason = "not_numeric"
	ReasonInconsistentRange Reason = "inconsistent_range"
	ReasonBelowMinimum      Reason = "below_minimum"

	// Name (also used for implausible location text).
	ReasonEmptyOrInvalidChars Reason = "empty_or_invalid_chars"
	ReasonTooShort            Reason = "too_short"

	// Property type.
	ReasonUnrecognizedType Reason = "unrecognized_type"
)

// Confidence tags how strong a valid match is. Soft-qualify fields
// (location) can validate at low confidence; everything else is high.
type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceLow  Confidence = "low"
)

// Result is the outcome of validating one raw field value. It is created
// fresh per call and never persisted; only Normalized (or Budget) is folded
// into the lead record once valid.
type Result struct {
	Valid      bool
	Normalized string
	Budget     *model.Budget
	Confidence Confidence
	Reason     Reason
}

func invalid(reason Reason) Result {
	return Result{Valid: false, Reason: reason}
}

func valid(normalized string) Result {
	return Result{Valid: true, Normalized: normalized, Confidence: ConfidenceHigh}
}
