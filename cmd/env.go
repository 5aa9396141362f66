package main

import (
	"context"
	"os"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadqual/internal/config"
	"github.com/sells-group/leadqual/internal/conversation"
	"github.com/sells-group/leadqual/internal/extract"
	"github.com/sells-group/leadqual/internal/pipeline"
	"github.com/sells-group/leadqual/internal/scorer"
	"github.com/sells-group/leadqual/internal/store"
	"github.com/sells-group/leadqual/internal/validate"
	"github.com/sells-group/leadqual/pkg/anthropic"
	sf "github.com/sells-group/leadqual/pkg/salesforce"
)

// env bundles the wired application components for a command run.
type env struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
	ScoreCfg scorer.Config
}

// Close releases the store.
func (e *env) Close() {
	if err := e.Store.Close(); err != nil {
		zap.L().Warn("close store", zap.Error(err))
	}
}

// newStore opens the configured persistence backend.
func newStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite", "":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// initEnv wires the full qualification pipeline from configuration.
func initEnv(ctx context.Context) (*env, error) {
	rules, err := config.LoadRules(cfg.Qualify.RulesPath)
	if err != nil {
		return nil, err
	}
	scoreCfg, err := rules.ScorerConfig(cfg.Qualify)
	if err != nil {
		return nil, err
	}
	validators := validate.NewSet(rules.ValidateRules(cfg.Qualify))
	machine := conversation.NewMachine(validators, scoreCfg, cfg.Qualify.MaxRetries)
	extractor := extract.NewExtractor(rules.ValidateRules(cfg.Qualify))

	st, err := newStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}

	var replier pipeline.Replier = pipeline.StaticReplier{}
	opts := pipeline.Options{HistoryLimit: cfg.Qualify.HistoryLimit}
	if cfg.Anthropic.Key != "" {
		client := anthropic.NewClient(cfg.Anthropic.Key)
		replier = pipeline.NewLLMReplier(client, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens)
		opts.LLMExtractor = pipeline.NewLLMExtractor(client, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens)
	} else {
		zap.L().Info("no anthropic key configured; using rule-based extraction and canned replies")
	}

	return &env{
		Store:    st,
		Pipeline: pipeline.New(st, extractor, machine, replier, opts),
		ScoreCfg: scoreCfg,
	}, nil
}

// newSalesforceClient authenticates against Salesforce with the configured
// JWT credentials.
func newSalesforceClient() (sf.Client, error) {
	if cfg.Salesforce.ClientID == "" || cfg.Salesforce.Username == "" || cfg.Salesforce.KeyPath == "" {
		return nil, eris.New("salesforce client_id, username and key_path must be configured")
	}
	pemData, err := os.ReadFile(cfg.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}
	inst, err := salesforce.Init(salesforce.Creds{
		Domain:         cfg.Salesforce.LoginURL,
		Username:       cfg.Salesforce.Username,
		ConsumerKey:    cfg.Salesforce.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}
	return sf.NewClient(inst, sf.WithRateLimit(5)), nil
}
