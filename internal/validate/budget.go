package validate

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/leadqual/internal/model"
)

// DefaultMinBudget is the floor below which a budget is rejected as noise.
// Kept currency-agnostic; override per deployment via the rules file.
const DefaultMinBudget int64 = 1000

var (
	currencyWordRe = regexp.MustCompile(`(?i)\b(AED|USD|EUR|GBP|DHS|DIRHAMS?|DOLLARS?|EUROS?|POUNDS?)\b`)
	currencySymRe  = regexp.MustCompile(`[$€£]`)
	rangeSplitRe   = regexp.MustCompile(`(?i)\s+to\s+|\s*[-–]\s*`)
	amountRe       = regexp.MustCompile(`(?i)^([0-9]+(?:\.[0-9]+)?)(K|M|MN|MILLION|LAKH)?$`)
)

var suffixMultipliers = map[string]float64{
	"K":       1_000,
	"M":       1_000_000,
	"MN":      1_000_000,
	"MILLION": 1_000_000,
	"LAKH":    100_000,
}

// Budget parses a budget amount or range into base currency units.
// Accepts thousand separators, suffix multipliers (k, m, million, lakh),
// currency words (ignored), and range syntax ("A to B", "A-B", "A–B").
// Values below min are rejected; a reversed range is swap-corrected when
// the gap is small (low within 2x of high), otherwise rejected.
func Budget(raw string, min int64) Result {
	if min <= 0 {
		min = DefaultMinBudget
	}

	text := currencyWordRe.ReplaceAllString(raw, " ")
	text = currencySymRe.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, ",", "")
	text = strings.TrimSpace(text)
	if text == "" {
		return invalid(ReasonNotNumeric)
	}

	if parts := rangeSplitRe.Split(text, -1); len(parts) == 2 {
		low, ok1 := parseAmount(parts[0])
		high, ok2 := parseAmount(parts[1])
		if ok1 && ok2 {
			if low < min || high < min {
				return invalid(ReasonBelowMinimum)
			}
			if low > high {
				if low <= 2*high {
					low, high = high, low
				} else {
					return invalid(ReasonInconsistentRange)
				}
			}
			return Result{
				Valid:      true,
				Normalized: strconv.FormatInt(low, 10) + "-" + strconv.FormatInt(high, 10),
				Budget:     model.RangeBudget(low, high),
				Confidence: ConfidenceHigh,
			}
		}
	}

	value, ok := parseAmount(text)
	if !ok {
		return invalid(ReasonNotNumeric)
	}
	if value < min {
		return invalid(ReasonBelowMinimum)
	}
	return Result{
		Valid:      true,
		Normalized: strconv.FormatInt(value, 10),
		Budget:     model.SingleBudget(value),
		Confidence: ConfidenceHigh,
	}
}

// parseAmount parses one side of a budget expression, e.g. "1.5M" or
// "500000". Whitespace between number and suffix is tolerated.
func parseAmount(s string) (int64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	m := amountRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	number, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	mult := 1.0
	if m[2] != "" {
		mult = suffixMultipliers[strings.ToUpper(m[2])]
	}
	value := number * mult
	if value <= 0 || value > math.MaxInt64/2 {
		return 0, false
	}
	return int64(math.Round(value)), true
}
