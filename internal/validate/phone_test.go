package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhone(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		valid      bool
		normalized string
		reason     Reason
	}{
		{"uae mobile e164", "+971501234567", true, "+971501234567", ""},
		{"formatted with spaces", "+971 50 123 4567", true, "+971501234567", ""},
		{"dashes and parens", "+1 (415) 555-0134", true, "+14155550134", ""},
		{"dots", "+44.20.7946.0958", true, "+442079460958", ""},
		{"local number rejected", "03047127020", false, "", ReasonMissingCountryCode},
		{"local short format", "050 123 4567", false, "", ReasonMissingCountryCode},
		{"letters", "+9715o1234567", false, "", ReasonMalformedDigits},
		{"plus in middle", "971+501234567", false, "", ReasonMalformedDigits},
		{"too short", "+97150", false, "", ReasonMalformedDigits},
		{"too long", "+971501234567890123", false, "", ReasonMalformedDigits},
		{"all same digits", "+1111111111", false, "", ReasonMalformedDigits},
		{"empty", "   ", false, "", ReasonMalformedDigits},
		{"tiny digit string", "1234", false, "", ReasonMalformedDigits},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Phone(tt.input)
			assert.Equal(t, tt.valid, got.Valid)
			if tt.valid {
				assert.Equal(t, tt.normalized, got.Normalized)
				assert.Equal(t, ConfidenceHigh, got.Confidence)
			} else {
				assert.Equal(t, tt.reason, got.Reason)
			}
		})
	}
}

func TestPhoneNormalizationIdempotent(t *testing.T) {
	inputs := []string{"+971 50 123 4567", "+1 (415) 555-0134", "+442079460958"}
	for _, in := range inputs {
		first := Phone(in)
		assert.True(t, first.Valid)
		second := Phone(first.Normalized)
		assert.True(t, second.Valid)
		assert.Equal(t, first.Normalized, second.Normalized)
	}
}
