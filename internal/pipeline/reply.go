package pipeline

import (
	"context"
	"strings"

	"github.com/sells-group/leadqual/internal/conversation"
	"github.com/sells-group/leadqual/internal/model"
	"github.com/sells-group/leadqual/internal/validate"
)

// StaticReplier produces deterministic canned replies from the directive.
// It serves as the fallback when no Anthropic key is configured, and keeps
// the chat command usable offline.
type StaticReplier struct{}

func (StaticReplier) Reply(_ context.Context, state *model.ContactState, d conversation.Directive, _ []model.Message, _ string) (string, error) {
	var b strings.Builder

	switch d.NextStage {
	case model.StageGreeting:
		return "Hi! Thanks for reaching out. How can I help with your property search today?", nil
	case model.StageClosed:
		return "Thank you for your time! Feel free to message us whenever you want to continue your property search.", nil
	case model.StageScheduling:
		if greet := firstName(state); greet != "" {
			b.WriteString("Great news, " + greet + "! ")
		}
		b.WriteString("You're all set. Would you like to schedule a viewing or a call with one of our agents?")
	default:
		b.WriteString("Thanks for the details!")
	}

	for kind, reason := range d.CorrectiveHints {
		b.WriteString(" ")
		b.WriteString(correctiveText(kind, reason))
	}

	if d.NextStage == model.StageQualifying && len(d.FieldsToPrompt) > 0 && len(d.CorrectiveHints) == 0 {
		b.WriteString(" Could you share ")
		b.WriteString(fieldQuestions[d.FieldsToPrompt[0]])
		b.WriteString("?")
	}

	return b.String(), nil
}

func firstName(state *model.ContactState) string {
	if state.Lead.Name == nil {
		return ""
	}
	parts := strings.Fields(state.Lead.Name.Value)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// correctiveText phrases a corrective hint as a direct question to the lead.
var correctiveQuestions = map[model.FieldKind]string{
	model.FieldPhone:        "Could you share your phone number in international format, like +971 50 123 4567?",
	model.FieldEmail:        "Could you share your email in the form name@example.com?",
	model.FieldBudget:       "Could you give me an approximate budget figure, like 500K or 1.5M?",
	model.FieldLocation:     "Which area are you interested in?",
	model.FieldName:         "Could you tell me your name again, letters only?",
	model.FieldPropertyType: "Which property type suits you best: apartment, villa, townhouse, studio, plot or commercial?",
}

func correctiveText(kind model.FieldKind, _ validate.Reason) string {
	if q, ok := correctiveQuestions[kind]; ok {
		return q
	}
	return "Could you share your " + string(kind) + " again?"
}
