package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/dshills/commitgenie/internal/abort"
	"github.com/dshills/commitgenie/internal/cache"
	"github.com/dshills/commitgenie/internal/config"
	"github.com/dshills/commitgenie/internal/gitctx"
	"github.com/dshills/commitgenie/internal/llm"
	"github.com/dshills/commitgenie/internal/redact"
	"github.com/dshills/commitgenie/internal/scm"
	"github.com/dshills/commitgenie/internal/store"
	"github.com/dshills/commitgenie/internal/usage"
	"github.com/dshills/commitgenie/internal/workflow"
)

// app holds the collaborators one command invocation needs.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	store   *store.Store
	tracker *usage.Tracker
	repo    *gitctx.Repo
	coord   *abort.Coordinator
	ui      *terminalUI
}

// appOptions selects the optional collaborators.
type appOptions struct {
	// needRepo opens the git repository in the working directory.
	needRepo bool
	format   string
}

func newApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg, err := config.Load(buildOverrides())
	if err != nil {
		return nil, err
	}
	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return nil, usageError{err}
	}

	path := cfg.Stats.Path
	if path == "" {
		if path, err = store.DefaultPath(); err != nil {
			return nil, err
		}
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening state store: %w", err)
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		store:   st,
		tracker: usage.New(ctx, st, logger.Named("usage")),
		coord:   abort.NewCoordinator(),
		ui:      newTerminalUI(os.Stderr, stdout, opts.format, flagYes),
	}
	if opts.needRepo {
		wd, err := os.Getwd()
		if err != nil {
			a.Close()
			return nil, err
		}
		if a.repo, err = gitctx.Open(ctx, wd); err != nil {
			a.Close()
			if errors.Is(err, gitctx.ErrNotRepository) {
				return nil, usageError{err}
			}
			return nil, err
		}
	}
	return a, nil
}

// Close flushes usage statistics and releases the store.
func (a *app) Close() {
	if err := a.tracker.Close(); err != nil {
		a.logger.Warn("closing usage tracker", zap.Error(err))
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing state store", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// orchestrator builds a workflow.Orchestrator writing into box.
func (a *app) orchestrator(box scm.InputBox) (*workflow.Orchestrator, error) {
	rc, err := cache.New(a.cfg.Cache.Enabled, a.cfg.Cache.Dir, a.cfg.Cache.TTLSeconds)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	deps := workflow.Deps{
		LoadConfig:  func() (config.Config, error) { return a.cfg, nil },
		SaveModel:   config.SaveModel,
		NewClient:   a.newClient,
		Coordinator: a.coord,
		Tracker:     a.tracker,
		Input:       box,
		UI:          a.ui,
		Cache:       rc,
		Redactor:    redact.New(nil),
		Logger:      a.logger,
	}
	if a.repo != nil {
		deps.Diff = a.repo
	}
	return workflow.New(deps), nil
}

func (a *app) newClient(svc config.ServiceConfig) (workflow.Completer, error) {
	return llm.New(llm.Config{
		APIKey:  svc.APIKey,
		BaseURL: svc.BaseURL,
		Model:   svc.Model,
	},
		llm.WithUsageRecorder(a.tracker),
		llm.WithLogger(a.logger.Named("llm")),
	)
}

// abortOnSignal cancels the running operation on SIGINT or SIGTERM. The
// returned func stops listening.
func (a *app) abortOnSignal() func() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
			a.logger.Debug("signal received, aborting")
			a.coord.Abort()
		case <-done:
		}
	}()
	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}

// stdout is swapped in tests.
var stdout io.Writer = os.Stdout
