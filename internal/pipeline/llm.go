package pipeline

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadqual/internal/conversation"
	"github.com/sells-group/leadqual/internal/model"
	"github.com/sells-group/leadqual/pkg/anthropic"
)

// LLMReplier generates replies with the Anthropic API, steered by the
// machine's directive.
type LLMReplier struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewLLMReplier creates a Replier backed by the given Anthropic client.
func NewLLMReplier(client anthropic.Client, model string, maxTokens int64) *LLMReplier {
	if maxTokens <= 0 {
		maxTokens = 300
	}
	return &LLMReplier{client: client, model: model, maxTokens: maxTokens}
}

func (r *LLMReplier) Reply(ctx context.Context, state *model.ContactState, d conversation.Directive, history []model.Message, userMsg string) (string, error) {
	msgs := make([]anthropic.Message, 0, len(history)+2)
	for _, m := range history {
		msgs = append(msgs, anthropic.Message{Role: string(m.Role), Content: m.Content})
	}
	msgs = append(msgs,
		anthropic.Message{Role: "user", Content: userMsg},
		// Directive delivered as a trailing instruction rather than in the
		// system prompt, so the cached persona block stays byte-stable.
		anthropic.Message{Role: "user", Content: "[instructions]\n" + buildTurnInstructions(state, d)},
	)

	resp, err := r.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     r.model,
		MaxTokens: r.maxTokens,
		System:    anthropic.BuildCachedSystemBlocks(replierPersona),
		Messages:  msgs,
	})
	if err != nil {
		return "", eris.Wrap(err, "pipeline: reply generation")
	}
	resp.Usage.LogCost(r.model, "reply")

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", eris.New("pipeline: empty reply from model")
	}
	return text, nil
}

// LLMExtractor supplements the regex pre-pass with model-extracted field
// candidates.
type LLMExtractor struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewLLMExtractor creates an Extractor backed by the given Anthropic client.
func NewLLMExtractor(client anthropic.Client, model string, maxTokens int64) *LLMExtractor {
	if maxTokens <= 0 {
		maxTokens = 300
	}
	return &LLMExtractor{client: client, model: model, maxTokens: maxTokens}
}

// extractionPayload is the JSON shape the extraction model replies with.
type extractionPayload struct {
	Fields map[string]string `json:"fields"`
	Signal string            `json:"signal"`
}

func (e *LLMExtractor) Extract(ctx context.Context, text string, state *model.ContactState) (conversation.Extraction, error) {
	resp, err := e.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     e.model,
		MaxTokens: e.maxTokens,
		System:    anthropic.BuildCachedSystemBlocks(extractorPrompt),
		Messages:  []anthropic.Message{{Role: "user", Content: text}},
	})
	if err != nil {
		return conversation.Extraction{}, eris.Wrap(err, "pipeline: llm extraction")
	}
	resp.Usage.LogCost(e.model, "extract")

	return parseExtraction(resp.Text())
}

// parseExtraction decodes the model's JSON reply, tolerating surrounding
// prose or code fences.
func parseExtraction(raw string) (conversation.Extraction, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return conversation.Extraction{}, eris.New("pipeline: no JSON object in extraction reply")
	}

	var payload extractionPayload
	if err := json.Unmarshal([]byte(raw[start:end+1]), &payload); err != nil {
		return conversation.Extraction{}, eris.Wrap(err, "pipeline: decode extraction reply")
	}

	out := conversation.Extraction{
		Fields: make(map[model.FieldKind]string, len(payload.Fields)),
		Signal: conversation.SignalNone,
	}
	for key, val := range payload.Fields {
		val = strings.TrimSpace(val)
		if val == "" {
			continue
		}
		kind := model.FieldKind(key)
		switch kind {
		case model.FieldName, model.FieldPhone, model.FieldEmail,
			model.FieldBudget, model.FieldLocation, model.FieldPropertyType:
			out.Fields[kind] = val
		default:
			zap.L().Debug("pipeline: extraction returned unknown field", zap.String("field", key))
		}
	}
	switch conversation.Signal(payload.Signal) {
	case conversation.SignalInterest:
		out.Signal = conversation.SignalInterest
	case conversation.SignalFieldSupplied:
		out.Signal = conversation.SignalFieldSupplied
	}
	return out, nil
}
