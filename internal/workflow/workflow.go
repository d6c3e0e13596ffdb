package workflow

import (
	"context"

	"go.uber.org/zap"

	"github.com/dshills/commitgenie/internal/abort"
	"github.com/dshills/commitgenie/internal/config"
	"github.com/dshills/commitgenie/internal/llm"
	"github.com/dshills/commitgenie/internal/redact"
	"github.com/dshills/commitgenie/internal/review"
	"github.com/dshills/commitgenie/internal/scm"
	"github.com/dshills/commitgenie/internal/usage"
)

// Completer is the completion backend.
type Completer interface {
	Complete(ctx context.Context, msgs []llm.Message, opts llm.CallOptions) (llm.Result, error)
	Stream(ctx context.Context, msgs []llm.Message, onChunk llm.ChunkFunc, opts llm.CallOptions) (llm.Result, error)
	ListModels(ctx context.Context) ([]string, error)
}

// ClientFactory builds a Completer for the configured service.
type ClientFactory func(cfg config.ServiceConfig) (Completer, error)

// DiffSource supplies the staged diff. An empty string or
// gitctx.NoStagedChanges means nothing is staged.
type DiffSource interface {
	StagedDiff(ctx context.Context) (string, error)
}

// Tracker is the subset of usage.Tracker the workflows drive.
type Tracker interface {
	StartSession()
	EndSession()
	CurrentStats() (usage.Stats, bool)
	HistoricalStats() (usage.Historical, bool)
	Reset(ctx context.Context) error
}

// ReviewCache stores review results by request key.
type ReviewCache interface {
	Get(key string) (review.Result, bool)
	Put(key, model string, res review.Result) error
}

// UI is how the workflows talk to the user.
type UI interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string)
	// Status reports progress of a long-running step.
	Status(msg string)
	// ConfirmContinue shows a failed review and asks whether to go on.
	ConfirmContinue(ctx context.Context, res review.Result) (bool, error)
	// SelectModel lets the user pick one of models. ok is false when the
	// user picked nothing.
	SelectModel(ctx context.Context, models []string, current string) (picked string, ok bool, err error)
	ConfirmReset(ctx context.Context) (bool, error)
	ShowStats(current *usage.Stats, historical *usage.Historical)
}

// Deps are the Orchestrator's collaborators. LoadConfig, NewClient,
// Coordinator, Tracker and UI are required.
type Deps struct {
	LoadConfig  func() (config.Config, error)
	SaveModel   func(model string) error
	NewClient   ClientFactory
	Coordinator *abort.Coordinator
	Tracker     Tracker
	Diff        DiffSource
	// Input receives the commit message. Nil means there is none.
	Input    scm.InputBox
	UI       UI
	Cache    ReviewCache
	Redactor *redact.Redactor
	Logger   *zap.Logger
}

// Orchestrator runs the user-facing operations.
type Orchestrator struct {
	loadConfig func() (config.Config, error)
	saveModel  func(string) error
	newClient  ClientFactory
	coord      *abort.Coordinator
	tracker    Tracker
	diff       DiffSource
	input      scm.InputBox
	ui         UI
	cache      ReviewCache
	redactor   *redact.Redactor
	logger     *zap.Logger

	// complete is set when the last commit operation wrote a whole message.
	complete bool
}

// New creates an Orchestrator.
func New(d Deps) *Orchestrator {
	o := &Orchestrator{
		loadConfig: d.LoadConfig,
		saveModel:  d.SaveModel,
		newClient:  d.NewClient,
		coord:      d.Coordinator,
		tracker:    d.Tracker,
		diff:       d.Diff,
		input:      d.Input,
		ui:         d.UI,
		cache:      d.Cache,
		redactor:   d.Redactor,
		logger:     d.Logger,
	}
	if o.coord == nil {
		o.coord = abort.NewCoordinator()
	}
	if o.redactor == nil {
		o.redactor = redact.New(nil)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

// Coordinator returns the abort coordinator the operations run under.
func (o *Orchestrator) Coordinator() *abort.Coordinator { return o.coord }

// MessageComplete reports whether the last ReviewAndCommit or
// GenerateCommitMessage left a fully generated message in the input box.
// It is false after a cancelled or timed-out stream, even though neither
// is returned as an error.
func (o *Orchestrator) MessageComplete() bool { return o.complete }
