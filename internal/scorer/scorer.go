// Package scorer derives a deterministic 0-100 quality score from a lead
// record. Only independently-validated fields contribute; low-confidence
// soft matches earn nothing until validated.
package scorer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadqual/internal/model"
)

// DefaultHighQualityThreshold marks the score at and above which a lead is
// considered high quality.
const DefaultHighQualityThreshold = 70

// Config holds the scoring weight table and quality threshold.
// Weights must sum to 100.
type Config struct {
	Weights              map[model.FieldKind]int `yaml:"weights" mapstructure:"weights"`
	HighQualityThreshold int                     `yaml:"high_quality_threshold" mapstructure:"high_quality_threshold"`
}

// DefaultConfig returns the standard weight table. Weights sum to 100.
func DefaultConfig() Config {
	return Config{
		Weights: map[model.FieldKind]int{
			model.FieldName:         10,
			model.FieldPhone:        25,
			model.FieldEmail:        15,
			model.FieldBudget:       20,
			model.FieldLocation:     15,
			model.FieldPropertyType: 15,
		},
		HighQualityThreshold: DefaultHighQualityThreshold,
	}
}

// WeightSum returns the sum of all field weights.
func (c Config) WeightSum() int {
	sum := 0
	for _, w := range c.Weights {
		sum += w
	}
	return sum
}

// Validate checks that the config is internally consistent.
func (c Config) Validate() error {
	var errs []string

	kinds := make([]string, 0, len(c.Weights))
	for k := range c.Weights {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		if c.Weights[model.FieldKind(k)] < 0 {
			errs = append(errs, fmt.Sprintf("weight for %s must be >= 0", k))
		}
	}

	if sum := c.WeightSum(); sum != 100 {
		errs = append(errs, fmt.Sprintf("weights must sum to 100, got %d", sum))
	}
	if c.HighQualityThreshold < 0 || c.HighQualityThreshold > 100 {
		errs = append(errs, "high_quality_threshold must be between 0 and 100")
	}

	if len(errs) > 0 {
		return eris.Errorf("scorer: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Score computes the weighted score for a lead. Each validated field
// contributes its weight exactly once; the result is clamped to [0, 100].
func Score(lead *model.LeadRecord, cfg Config) int {
	if lead == nil {
		return 0
	}
	score := 0
	for kind, weight := range cfg.Weights {
		if lead.Validated(kind) {
			score += weight
		}
	}
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

// HighQuality reports whether the score meets the configured threshold.
func (c Config) HighQuality(score int) bool {
	threshold := c.HighQualityThreshold
	if threshold == 0 {
		threshold = DefaultHighQualityThreshold
	}
	return score >= threshold
}
