package cmd

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/abhisek/mcqprep/internal/bank"
	"github.com/abhisek/mcqprep/internal/config"
	"github.com/abhisek/mcqprep/internal/explain"
	"github.com/abhisek/mcqprep/internal/llm"
	"github.com/abhisek/mcqprep/internal/logging"
	"github.com/abhisek/mcqprep/internal/progress"
	"github.com/abhisek/mcqprep/internal/quiz"
	"github.com/abhisek/mcqprep/internal/store"
)

// env is what every command needs: resolved config, a logger and the
// session store.
type env struct {
	cfg      *config.Config
	log      *zap.Logger
	kv       store.KV
	progress *progress.Store
}

// openEnv loads config, builds the logger and opens the session store.
// CLI commands pass console=true to get warnings on stderr; the TUI owns
// the terminal and logs to the file only.
func openEnv(ctx context.Context, console bool) (*env, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	logOpts := logging.Options{File: cfg.LogFile, Level: cfg.LogLevel}
	if console {
		logOpts.Console = os.Stderr
		logOpts.ConsoleLevel = zapcore.WarnLevel
	}
	logger, err := logging.New(logOpts)
	if err != nil {
		return nil, err
	}

	kv, err := store.OpenBackend(ctx, cfg.Backend())
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	logger.Debug("environment ready",
		zap.String("config", cfg.File),
		zap.String("store", cfg.Store),
		zap.String("data_dir", cfg.DataDir),
		zap.String("bank_url", cfg.BankURL),
	)

	return &env{
		cfg:      cfg,
		log:      logger,
		kv:       kv,
		progress: progress.New(kv, logger),
	}, nil
}

func (e *env) Close() {
	if err := e.kv.Close(); err != nil {
		e.log.Warn("close store", zap.Error(err))
	}
	_ = e.log.Sync()
}

// loader probes the data directory, the working directory and the bank
// URL, then optionally the bundled samples.
func (e *env) loader(samples bool) bank.Loader {
	chain := bank.Chain{bank.NewDirLoader(e.cfg.DataDir, ".")}
	if e.cfg.BankURL != "" {
		chain = append(chain, bank.NewHTTPLoader(e.cfg.BankURL))
	}
	if samples {
		chain = append(chain, bank.Samples())
	}
	return chain
}

// explainer builds the explanation service. Without a configured provider
// the service is disabled rather than nil.
func (e *env) explainer(ctx context.Context) (*explain.Service, error) {
	provider, err := llm.NewProvider(ctx, e.cfg.Explain, e.log)
	if err != nil {
		return nil, err
	}
	cfg := explain.DefaultConfig()
	if e.cfg.Explain.Timeout > 0 {
		cfg.Timeout = e.cfg.Explain.Timeout
	}
	if provider != nil {
		e.log.Info("explanations enabled", zap.String("provider", e.cfg.Explain.Provider), zap.String("model", provider.ModelID()))
	}
	return explain.NewService(provider, cfg, e.log), nil
}

// controller builds the session controller over an empty pool registry.
func (e *env) controller(ctx context.Context) (*quiz.Controller, error) {
	ex, err := e.explainer(ctx)
	if err != nil {
		return nil, err
	}
	return quiz.New(ctx, quiz.NewRegistry(),
		quiz.WithProgress(e.progress),
		quiz.WithExplainer(ex),
		quiz.WithConfig(e.cfg.Quiz()),
		quiz.WithLogger(e.log),
	), nil
}
