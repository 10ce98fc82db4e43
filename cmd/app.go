package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/brandlens/brandlens-cli/internal/checker"
	"github.com/brandlens/brandlens-cli/internal/evidence"
	"github.com/brandlens/brandlens-cli/internal/model"
	"github.com/brandlens/brandlens-cli/internal/store"
	"github.com/brandlens/brandlens-cli/pkg/answers"
	"github.com/brandlens/brandlens-cli/pkg/claude"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "brandlens.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, cfg.Store.Pool)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// openStore initializes the configured store and applies migrations.
func openStore(ctx context.Context) (store.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// initEngines builds one answer engine per configured API key.
func initEngines() (map[model.Engine]checker.Engine, error) {
	engines := make(map[model.Engine]checker.Engine)

	if cfg.OpenAI.Key != "" {
		opts := []answers.Option{answers.WithModel(cfg.OpenAI.Model)}
		if cfg.OpenAI.BaseURL != "" {
			opts = append(opts, answers.WithBaseURL(cfg.OpenAI.BaseURL))
		}
		engines[model.EngineOpenAI] = answers.NewClient(cfg.OpenAI.Key, opts...)
	} else {
		zap.L().Debug("BRANDLENS_OPENAI_KEY not set, openai engine disabled")
	}

	if cfg.Claude.Key != "" {
		engines[model.EngineClaude] = claude.NewClient(cfg.Claude.Key,
			claude.WithModel(cfg.Claude.Model),
			claude.WithMaxTokens(cfg.Claude.MaxTokens),
		)
	} else {
		zap.L().Debug("BRANDLENS_CLAUDE_KEY not set, claude engine disabled")
	}

	if len(engines) == 0 {
		return nil, eris.New("no answer engine configured: set BRANDLENS_OPENAI_KEY or BRANDLENS_CLAUDE_KEY")
	}
	return engines, nil
}

// initSummarizer loads the evidence summarizer, extended with custom rules
// when a rules file is configured.
func initSummarizer() (*evidence.Summarizer, error) {
	if cfg.Evidence.RulesPath == "" {
		return evidence.Default(), nil
	}
	return evidence.LoadRules(cfg.Evidence.RulesPath)
}

// initChecker wires the store, engines and summarizer into a checker.
func initChecker(st store.Store) (*checker.Checker, error) {
	engines, err := initEngines()
	if err != nil {
		return nil, err
	}
	summarizer, err := initSummarizer()
	if err != nil {
		return nil, err
	}
	return checker.New(st, engines, summarizer, cfg.Checker), nil
}
