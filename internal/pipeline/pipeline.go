// Package pipeline orchestrates one conversation turn end to end: load the
// contact state, extract field candidates, advance the state machine,
// generate the reply, and persist everything.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadqual/internal/conversation"
	"github.com/sells-group/leadqual/internal/extract"
	"github.com/sells-group/leadqual/internal/model"
	"github.com/sells-group/leadqual/internal/store"
)

// Extractor is the LLM extraction collaborator: it may supplement the
// regex pre-pass with candidates the rules missed. Implementations must
// not judge validity; that stays with the validators.
type Extractor interface {
	Extract(ctx context.Context, text string, state *model.ContactState) (conversation.Extraction, error)
}

// Replier turns a machine directive into user-facing prose.
type Replier interface {
	Reply(ctx context.Context, state *model.ContactState, d conversation.Directive, history []model.Message, userMsg string) (string, error)
}

// Options configures a Pipeline.
type Options struct {
	// LLMExtractor is optional; when nil only the regex pre-pass runs.
	LLMExtractor Extractor
	// HistoryLimit caps how many prior messages the replier sees.
	HistoryLimit int
}

// Pipeline processes inbound messages. Turns for the same contact are
// serialized; distinct contacts proceed in parallel.
type Pipeline struct {
	store     store.Store
	extractor *extract.Extractor
	machine   *conversation.Machine
	replier   Replier
	opts      Options

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a Pipeline.
func New(st store.Store, ex *extract.Extractor, m *conversation.Machine, replier Replier, opts Options) *Pipeline {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 10
	}
	return &Pipeline{
		store:     st,
		extractor: ex,
		machine:   m,
		replier:   replier,
		opts:      opts,
		locks:     make(map[string]*sync.Mutex),
	}
}

// contactLock returns the mutex serializing turns for one contact.
func (p *Pipeline) contactLock(phoneID string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	if l, ok := p.locks[phoneID]; ok {
		return l
	}
	l := &sync.Mutex{}
	p.locks[phoneID] = l
	return l
}

// HandleMessage runs one full turn for an inbound message and returns the
// reply text.
func (p *Pipeline) HandleMessage(ctx context.Context, phoneID, text string) (string, error) {
	start := time.Now()
	lock := p.contactLock(phoneID)
	lock.Lock()
	defer lock.Unlock()

	state, err := p.store.GetContactState(ctx, phoneID)
	if err != nil {
		return "", eris.Wrap(err, "pipeline: load state")
	}
	if state == nil {
		state = model.NewContactState(phoneID)
	}

	ex := p.extractor.Extract(text)
	if p.opts.LLMExtractor != nil {
		llmEx, err := p.opts.LLMExtractor.Extract(ctx, text, state)
		if err != nil {
			// The regex pre-pass already produced candidates; an LLM
			// failure degrades extraction, it does not fail the turn.
			zap.L().Warn("pipeline: llm extraction failed",
				zap.String("phone_id", phoneID),
				zap.Error(err),
			)
		} else {
			ex = mergeExtractions(ex, llmEx)
		}
	}

	directive := p.machine.Advance(state, ex)

	history, err := p.store.RecentMessages(ctx, phoneID, p.opts.HistoryLimit)
	if err != nil {
		return "", eris.Wrap(err, "pipeline: load history")
	}

	reply, err := p.replier.Reply(ctx, state, directive, history, text)
	if err != nil {
		return "", eris.Wrap(err, "pipeline: generate reply")
	}

	if err := p.persistTurn(ctx, state, phoneID, text, reply); err != nil {
		return "", err
	}

	zap.L().Info("pipeline: turn complete",
		zap.String("phone_id", phoneID),
		zap.String("stage", string(state.Stage)),
		zap.Int("score", state.Score),
		zap.Bool("high_quality", directive.HighQuality),
		zap.Duration("elapsed", time.Since(start)),
	)
	return reply, nil
}

// CloseConversation explicitly ends a contact's session.
func (p *Pipeline) CloseConversation(ctx context.Context, phoneID string) error {
	lock := p.contactLock(phoneID)
	lock.Lock()
	defer lock.Unlock()

	state, err := p.store.GetContactState(ctx, phoneID)
	if err != nil {
		return eris.Wrap(err, "pipeline: load state")
	}
	if state == nil {
		return eris.Errorf("pipeline: no conversation for %s", phoneID)
	}
	p.machine.Close(state)
	return eris.Wrap(p.store.PutContactState(ctx, state), "pipeline: persist closed state")
}

func (p *Pipeline) persistTurn(ctx context.Context, state *model.ContactState, phoneID, inbound, reply string) error {
	if err := p.store.PutContactState(ctx, state); err != nil {
		return eris.Wrap(err, "pipeline: persist state")
	}
	now := time.Now().UTC()
	if err := p.store.AppendMessage(ctx, model.Message{
		PhoneID:   phoneID,
		Role:      model.RoleUser,
		Content:   inbound,
		Timestamp: now,
	}); err != nil {
		return eris.Wrap(err, "pipeline: persist inbound message")
	}
	if err := p.store.AppendMessage(ctx, model.Message{
		PhoneID:   phoneID,
		Role:      model.RoleAssistant,
		Content:   reply,
		Timestamp: now.Add(time.Millisecond),
	}); err != nil {
		return eris.Wrap(err, "pipeline: persist reply message")
	}
	return nil
}

// mergeExtractions combines the regex pre-pass with LLM candidates. The
// rule-based candidates win on conflict; the LLM only fills gaps.
func mergeExtractions(rules, llm conversation.Extraction) conversation.Extraction {
	out := conversation.Extraction{
		Fields: make(map[model.FieldKind]string, len(rules.Fields)+len(llm.Fields)),
		Signal: rules.Signal,
	}
	for k, v := range llm.Fields {
		out.Fields[k] = v
	}
	for k, v := range rules.Fields {
		out.Fields[k] = v
	}
	if out.Signal == conversation.SignalNone {
		out.Signal = llm.Signal
	}
	if len(out.Fields) > 0 {
		out.Signal = conversation.SignalFieldSupplied
	}
	return out
}
