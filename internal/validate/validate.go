package validate

import "github.com/sells-group/leadqual/internal/model"

// Rules carries the configurable inputs the validators need: the
// recognized-area allow-list, the property-type synonym table, and the
// budget floor. Zero values fall back to the package defaults.
type Rules struct {
	Areas         []string
	PropertyTypes map[string][]string
	MinBudget     int64
}

// DefaultAreas is the built-in recognized-area allow-list.
var DefaultAreas = []string{
	"Downtown Dubai", "Dubai Marina", "Palm Jumeirah", "JBR",
	"Jumeirah Beach Residence", "Business Bay", "Dubai Hills",
	"Arabian Ranches", "Jumeirah Village Circle", "JVC",
	"Dubai Sports City", "Motor City", "Studio City", "Discovery Gardens",
	"JLT", "Jumeirah Lakes Towers", "DIFC", "Mirdif", "Deira", "Bur Dubai",
	"Karama", "Satwa", "Al Barsha", "Jumeirah", "Umm Suqeim", "Al Quoz",
	"Dubai Silicon Oasis", "DSO", "International City", "Dubai Creek Harbour",
	"City Walk", "Al Furjan", "Damac Hills", "Dubai South", "Town Square",
	"Tilal Al Ghaf", "Dubailand",
}

// Set bundles the rules with a single dispatch entry point so callers can
// validate by field kind without knowing which validator needs which rule.
type Set struct {
	rules Rules
}

// NewSet returns a Set using the given rules, substituting defaults for
// any unset rule.
func NewSet(rules Rules) *Set {
	if len(rules.Areas) == 0 {
		rules.Areas = DefaultAreas
	}
	if rules.PropertyTypes == nil {
		rules.PropertyTypes = DefaultPropertyTypes
	}
	if rules.MinBudget <= 0 {
		rules.MinBudget = DefaultMinBudget
	}
	return &Set{rules: rules}
}

// Rules returns the effective rules after default substitution.
func (s *Set) Rules() Rules {
	return s.rules
}

// Validate runs the validator for the given field kind.
func (s *Set) Validate(kind model.FieldKind, raw string) Result {
	switch kind {
	case model.FieldPhone:
		return Phone(raw)
	case model.FieldEmail:
		return Email(raw)
	case model.FieldBudget:
		return Budget(raw, s.rules.MinBudget)
	case model.FieldName:
		return Name(raw)
	case model.FieldLocation:
		return Location(raw, s.rules.Areas)
	case model.FieldPropertyType:
		return PropertyType(raw, s.rules.PropertyTypes)
	}
	return invalid(ReasonEmptyOrInvalidChars)
}
