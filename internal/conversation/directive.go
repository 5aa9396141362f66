package conversation

import (
	"github.com/sells-group/leadqual/internal/model"
	"github.com/sells-group/leadqual/internal/validate"
)

// PromptPriority orders still-missing fields by how urgently the reply
// layer should ask for them. A reachable phone number outranks everything.
var PromptPriority = []model.FieldKind{
	model.FieldPhone,
	model.FieldBudget,
	model.FieldLocation,
	model.FieldPropertyType,
	model.FieldEmail,
	model.FieldName,
}

// Directive is the machine's sole handoff to the reply-generation
// collaborator. It says what stage the conversation is in, which fields to
// ask for next (in priority order), and which corrective hints to weave in
// for fields that just failed validation. The machine never produces
// user-facing prose itself.
type Directive struct {
	NextStage       model.Stage                        `json:"next_stage"`
	FieldsToPrompt  []model.FieldKind                  `json:"fields_to_prompt"`
	CorrectiveHints map[model.FieldKind]validate.Reason `json:"corrective_hints,omitempty"`
	Score           int                                `json:"score"`
	HighQuality     bool                               `json:"high_quality"`
}
