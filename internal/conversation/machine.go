// Package conversation implements the qualification state machine: it folds
// validated field candidates into the per-contact lead record, applies the
// retry-or-skip policy, advances the conversation stage, and emits a
// directive for the reply-generation collaborator.
package conversation

import (
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/leadqual/internal/model"
	"github.com/sells-group/leadqual/internal/scorer"
	"github.com/sells-group/leadqual/internal/validate"
)

// DefaultMaxRetries caps per-field re-prompts before a field is skipped.
const DefaultMaxRetries = 2

// Signal is the stage-advance hint decided by the extraction collaborator.
type Signal string

const (
	SignalNone          Signal = "none"
	SignalInterest      Signal = "interest_expressed"
	SignalFieldSupplied Signal = "field_supplied"
)

// Extraction is the per-turn input to Advance: raw candidate values per
// field kind, produced externally, plus the extraction signal. The machine
// never parses free-form sentences itself.
type Extraction struct {
	Fields map[model.FieldKind]string
	Signal Signal
}

// Machine runs qualification turns. It holds only configuration; all
// per-contact state lives in the ContactState passed to each call, so
// distinct contacts can be processed in parallel.
type Machine struct {
	validators *validate.Set
	scoreCfg   scorer.Config
	maxRetries int
	now        func() time.Time
}

// NewMachine creates a Machine. maxRetries <= 0 selects DefaultMaxRetries.
func NewMachine(validators *validate.Set, scoreCfg scorer.Config, maxRetries int) *Machine {
	if validators == nil {
		validators = validate.NewSet(validate.Rules{})
	}
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Machine{
		validators: validators,
		scoreCfg:   scoreCfg,
		maxRetries: maxRetries,
		now:        time.Now,
	}
}

// Advance processes one turn: validates each candidate field, folds valid
// values into the lead (never downgrading a validated value), applies the
// retry-or-skip policy to failures, advances the stage, and returns the
// directive for the reply layer. The caller must serialize turns per
// contact; across contacts Advance is safe to run concurrently.
func (m *Machine) Advance(state *model.ContactState, ex Extraction) Directive {
	if state.RetryCounts == nil {
		state.RetryCounts = make(map[model.FieldKind]int)
	}
	if state.Skipped == nil {
		state.Skipped = make(map[model.FieldKind]bool)
	}
	state.MessageCount++
	state.LastActivity = m.now().UTC()

	hints := make(map[model.FieldKind]validate.Reason)
	for _, kind := range model.AllFieldKinds {
		raw, ok := ex.Fields[kind]
		if !ok || raw == "" {
			continue
		}
		m.applyCandidate(state, kind, raw, hints)
	}

	m.advanceStage(state, ex)

	state.Score = scorer.Score(&state.Lead, m.scoreCfg)

	d := Directive{
		NextStage:       state.Stage,
		FieldsToPrompt:  m.fieldsToPrompt(state),
		CorrectiveHints: hints,
		Score:           state.Score,
		HighQuality:     m.scoreCfg.HighQuality(state.Score),
	}

	zap.L().Debug("conversation: turn advanced",
		zap.String("phone_id", state.PhoneID),
		zap.String("stage", string(state.Stage)),
		zap.Int("score", state.Score),
		zap.Int("message_count", state.MessageCount),
		zap.Int("fields_to_prompt", len(d.FieldsToPrompt)),
	)
	return d
}

// Close ends the session. This is an explicit external action (operator or
// lead ends engagement); stage transitions never infer it from content.
func (m *Machine) Close(state *model.ContactState) Directive {
	state.Stage = model.StageClosed
	state.LastActivity = m.now().UTC()
	return Directive{
		NextStage:   model.StageClosed,
		Score:       state.Score,
		HighQuality: m.scoreCfg.HighQuality(state.Score),
	}
}

// applyCandidate validates one candidate and updates lead, retry and skip
// state for its field kind.
func (m *Machine) applyCandidate(state *model.ContactState, kind model.FieldKind, raw string, hints map[model.FieldKind]validate.Reason) {
	res := m.validators.Validate(kind, raw)

	switch {
	case res.Valid && res.Confidence == validate.ConfidenceHigh:
		fold(&state.Lead, kind, res, true)
		state.RetryCounts[kind] = 0
		delete(state.Skipped, kind)

	case res.Valid:
		// Low-confidence soft match: fill only if nothing validated yet.
		if !state.Lead.Validated(kind) {
			fold(&state.Lead, kind, res, false)
		}

	default:
		if state.Lead.Validated(kind) {
			// No-downgrade: an invalid candidate never disturbs a
			// validated value, and needs no re-prompt.
			return
		}
		if state.Skipped[kind] {
			return
		}
		rc := state.RetryCounts[kind] + 1
		if rc > m.maxRetries {
			state.RetryCounts[kind] = m.maxRetries
			state.Skipped[kind] = true
			zap.L().Debug("conversation: field skipped after retries",
				zap.String("phone_id", state.PhoneID),
				zap.String("field", string(kind)),
			)
			return
		}
		state.RetryCounts[kind] = rc
		hints[kind] = res.Reason
	}
}

// fold writes a validation result into the lead record. A validated value
// is only ever replaced by another validated value.
func fold(lead *model.LeadRecord, kind model.FieldKind, res validate.Result, validated bool) {
	if lead.Validated(kind) && !validated {
		return
	}
	switch kind {
	case model.FieldName:
		lead.Name = &model.Field{Value: res.Normalized, Validated: validated}
	case model.FieldPhone:
		lead.Phone = &model.Field{Value: res.Normalized, Validated: validated}
	case model.FieldEmail:
		lead.Email = &model.Field{Value: res.Normalized, Validated: validated}
	case model.FieldBudget:
		if res.Budget != nil {
			lead.Budget = res.Budget
		}
	case model.FieldLocation:
		lead.Location = &model.Field{Value: res.Normalized, Validated: validated}
	case model.FieldPropertyType:
		lead.PropertyType = &model.Field{Value: res.Normalized, Validated: validated}
	}
}

// advanceStage applies the forward-only stage policy.
func (m *Machine) advanceStage(state *model.ContactState, ex Extraction) {
	if state.Stage == model.StageClosed {
		return
	}

	if state.Stage == model.StageGreeting {
		qualifying := ex.Signal == SignalInterest || ex.Signal == SignalFieldSupplied || len(ex.Fields) > 0
		if !qualifying {
			for _, kind := range model.AllFieldKinds {
				if state.Lead.Present(kind) {
					qualifying = true
					break
				}
			}
		}
		if qualifying {
			state.Stage = model.StageQualifying
		}
	}

	if state.Stage == model.StageQualifying && m.hardRequiredMet(&state.Lead) {
		state.Stage = model.StageScheduling
	}
}

// hardRequiredMet reports whether the scheduling gate is satisfied: a
// validated phone plus at least one of budget, location or property type.
func (m *Machine) hardRequiredMet(lead *model.LeadRecord) bool {
	if !lead.Validated(model.FieldPhone) {
		return false
	}
	return lead.Validated(model.FieldBudget) ||
		lead.Validated(model.FieldLocation) ||
		lead.Validated(model.FieldPropertyType)
}

// fieldsToPrompt lists still-missing fields in prompt priority order.
// Skipped fields are excluded for the rest of the session, and a
// soft-filled location is not re-asked.
func (m *Machine) fieldsToPrompt(state *model.ContactState) []model.FieldKind {
	if state.Stage == model.StageClosed {
		return nil
	}
	var out []model.FieldKind
	for _, kind := range PromptPriority {
		if state.Lead.Validated(kind) || state.Skipped[kind] {
			continue
		}
		if kind == model.FieldLocation && state.Lead.Present(kind) {
			continue
		}
		out = append(out, kind)
	}
	return out
}
