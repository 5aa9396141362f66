package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadqual/internal/model"
)

func validatedField(v string) *model.Field {
	return &model.Field{Value: v, Validated: true}
}

func TestScoreEmptyLead(t *testing.T) {
	assert.Equal(t, 0, Score(&model.LeadRecord{}, DefaultConfig()))
	assert.Equal(t, 0, Score(nil, DefaultConfig()))
}

func TestScorePartialLead(t *testing.T) {
	// Name + phone + budget: 10 + 25 + 20 = 55.
	lead := &model.LeadRecord{
		Name:   validatedField("Ahmed"),
		Phone:  validatedField("+971501234567"),
		Budget: model.SingleBudget(1_500_000),
	}
	score := Score(lead, DefaultConfig())
	assert.Equal(t, 55, score)
	assert.False(t, DefaultConfig().HighQuality(score))
}

func TestScoreFullLead(t *testing.T) {
	lead := &model.LeadRecord{
		Name:         validatedField("Ahmed"),
		Phone:        validatedField("+971501234567"),
		Email:        validatedField("ahmed@example.com"),
		Budget:       model.RangeBudget(1_000_000, 2_000_000),
		Location:     validatedField("Dubai Marina"),
		PropertyType: validatedField("apartment"),
	}
	score := Score(lead, DefaultConfig())
	assert.Equal(t, 100, score)
	assert.True(t, DefaultConfig().HighQuality(score))
}

func TestScoreIgnoresUnvalidatedFields(t *testing.T) {
	lead := &model.LeadRecord{
		Phone:    validatedField("+971501234567"),
		Location: &model.Field{Value: "Somewhere New", Validated: false},
	}
	assert.Equal(t, 25, Score(lead, DefaultConfig()))
}

func TestScoreMonotoneInValidatedFields(t *testing.T) {
	cfg := DefaultConfig()
	lead := &model.LeadRecord{}
	prev := Score(lead, cfg)

	steps := []func(){
		func() { lead.Phone = validatedField("+971501234567") },
		func() { lead.Budget = model.SingleBudget(900_000) },
		func() { lead.Location = validatedField("JLT") },
		func() { lead.PropertyType = validatedField("villa") },
		func() { lead.Email = validatedField("a@b.co") },
		func() { lead.Name = validatedField("Sara") },
	}
	for _, step := range steps {
		step()
		got := Score(lead, cfg)
		assert.GreaterOrEqual(t, got, prev)
		assert.LessOrEqual(t, got, 100)
		prev = got
	}
	assert.Equal(t, 100, prev)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.Weights[model.FieldPhone] = 50
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sum to 100")

	neg := Config{
		Weights:              map[model.FieldKind]int{model.FieldPhone: -5, model.FieldName: 105},
		HighQualityThreshold: 70,
	}
	err = neg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be >= 0")

	threshold := DefaultConfig()
	threshold.HighQualityThreshold = 150
	err = threshold.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "high_quality_threshold")
}

func TestCustomThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HighQualityThreshold = 50

	lead := &model.LeadRecord{
		Phone:  validatedField("+971501234567"),
		Budget: model.SingleBudget(1_000_000),
		Email:  validatedField("a@b.co"),
	}
	score := Score(lead, cfg)
	assert.Equal(t, 60, score)
	assert.True(t, cfg.HighQuality(score))
	assert.False(t, DefaultConfig().HighQuality(score))
}
