package config

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/leadqual/internal/model"
	"github.com/sells-group/leadqual/internal/scorer"
	"github.com/sells-group/leadqual/internal/validate"
)

// RulesFile is the externally editable qualification rule set: the
// recognized-area allow-list, the property-type synonym table, and the
// scoring weights. Anything left unset falls back to the compiled-in
// defaults.
type RulesFile struct {
	Areas         []string            `yaml:"areas"`
	PropertyTypes map[string][]string `yaml:"property_types"`
	Weights       map[string]int      `yaml:"weights"`
}

// LoadRules reads the qualification rules from a YAML file. An empty path
// returns the defaults.
func LoadRules(path string) (*RulesFile, error) {
	if path == "" {
		return &RulesFile{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "config: read rules %s", path)
	}

	// The YAML has a top-level "qualification" key.
	var wrapper struct {
		Qualification RulesFile `yaml:"qualification"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "config: parse rules")
	}
	return &wrapper.Qualification, nil
}

// ValidateRules builds the validator rule set from the rules file plus the
// qualify config.
func (r *RulesFile) ValidateRules(q QualifyConfig) validate.Rules {
	return validate.Rules{
		Areas:         r.Areas,
		PropertyTypes: r.PropertyTypes,
		MinBudget:     q.MinBudget,
	}
}

// ScorerConfig builds the scorer configuration from the rules file plus
// the qualify config, then validates it.
func (r *RulesFile) ScorerConfig(q QualifyConfig) (scorer.Config, error) {
	cfg := scorer.DefaultConfig()
	if len(r.Weights) > 0 {
		weights := make(map[model.FieldKind]int, len(r.Weights))
		for k, w := range r.Weights {
			weights[model.FieldKind(k)] = w
		}
		cfg.Weights = weights
	}
	if q.HighQualityThreshold > 0 {
		cfg.HighQualityThreshold = q.HighQualityThreshold
	}
	if err := cfg.Validate(); err != nil {
		return scorer.Config{}, err
	}
	return cfg, nil
}
