package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadqual/internal/conversation"
	"github.com/sells-group/leadqual/internal/model"
	"github.com/sells-group/leadqual/internal/validate"
)

func TestExtractFields(t *testing.T) {
	e := NewExtractor(validate.Rules{})

	tests := []struct {
		name string
		text string
		want map[model.FieldKind]string
	}{
		{
			"international phone",
			"you can reach me at +971 50 123 4567",
			map[model.FieldKind]string{model.FieldPhone: "+971 50 123 4567"},
		},
		{
			"local phone still captured",
			"my number is 03047127020",
			map[model.FieldKind]string{model.FieldPhone: "03047127020"},
		},
		{
			"email",
			"write to Jane.Doe@Example.com please",
			map[model.FieldKind]string{model.FieldEmail: "Jane.Doe@Example.com"},
		},
		{
			"budget with suffix",
			"around 1.5M I think",
			map[model.FieldKind]string{model.FieldBudget: "1.5M"},
		},
		{
			"budget range",
			"somewhere from 1.5M to 2M",
			map[model.FieldKind]string{model.FieldBudget: "1.5M to 2M"},
		},
		{
			"currency marked amount",
			"I can spend AED 1,500,000",
			map[model.FieldKind]string{model.FieldBudget: "AED 1,500,000"},
		},
		{
			"location from allow-list",
			"ideally in Dubai Marina somewhere",
			map[model.FieldKind]string{model.FieldLocation: "Dubai Marina"},
		},
		{
			"property type synonym",
			"we want a flat",
			map[model.FieldKind]string{model.FieldPropertyType: "flat"},
		},
		{
			"introduction phrase",
			"Hi, my name is Ahmed Hassan",
			map[model.FieldKind]string{model.FieldName: "Ahmed Hassan"},
		},
		{
			"bare short reply treated as name",
			"Ahmed Hassan",
			map[model.FieldKind]string{model.FieldName: "Ahmed Hassan"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Extract(tt.text)
			require.Equal(t, conversation.SignalFieldSupplied, got.Signal)
			for kind, want := range tt.want {
				assert.Equal(t, want, got.Fields[kind], "field %s", kind)
			}
		})
	}
}

func TestExtractMultipleFieldsOneMessage(t *testing.T) {
	e := NewExtractor(validate.Rules{})

	got := e.Extract("I'm looking for a villa in JLT around 2M, call me on +971501234567")
	assert.Equal(t, "+971501234567", got.Fields[model.FieldPhone])
	assert.Equal(t, "2M", got.Fields[model.FieldBudget])
	assert.Equal(t, "JLT", got.Fields[model.FieldLocation])
	assert.Equal(t, "villa", got.Fields[model.FieldPropertyType])
	assert.Equal(t, conversation.SignalFieldSupplied, got.Signal)
}

func TestExtractSignals(t *testing.T) {
	e := NewExtractor(validate.Rules{})

	got := e.Extract("I'm interested in buying soon")
	assert.Empty(t, got.Fields[model.FieldName])
	assert.Equal(t, conversation.SignalInterest, got.Signal)

	got = e.Extract("ok thanks, talk later then, appreciate all of your help today")
	assert.Empty(t, got.Fields)
	assert.Equal(t, conversation.SignalNone, got.Signal)
}

func TestExtractAmbiguousNumberIgnored(t *testing.T) {
	e := NewExtractor(validate.Rules{})

	// A bare number with no budget marker could be a street address.
	got := e.Extract("we live at 4512 today")
	assert.NotContains(t, got.Fields, model.FieldBudget)
	assert.NotContains(t, got.Fields, model.FieldPhone)
}

func TestExtractPhoneNotMistakenForBudget(t *testing.T) {
	e := NewExtractor(validate.Rules{})

	got := e.Extract("+971 50 123 4567")
	assert.Contains(t, got.Fields, model.FieldPhone)
	assert.NotContains(t, got.Fields, model.FieldBudget)
}

func TestExtractCallMeOnNotAName(t *testing.T) {
	e := NewExtractor(validate.Rules{})

	got := e.Extract("call me on 03047127020")
	assert.Equal(t, "03047127020", got.Fields[model.FieldPhone])
	assert.NotContains(t, got.Fields, model.FieldName)
}

func TestExtractCustomRules(t *testing.T) {
	e := NewExtractor(validate.Rules{
		Areas:         []string{"Palm Springs"},
		PropertyTypes: map[string][]string{"cabin": {"cabin", "chalet"}},
	})

	got := e.Extract("a chalet near palm springs")
	assert.Equal(t, "Palm Springs", got.Fields[model.FieldLocation])
	assert.Equal(t, "chalet", got.Fields[model.FieldPropertyType])
}
