package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dshills/commitgenie/internal/abort"
	"github.com/dshills/commitgenie/internal/cache"
	"github.com/dshills/commitgenie/internal/config"
	"github.com/dshills/commitgenie/internal/gitctx"
	"github.com/dshills/commitgenie/internal/llm"
	"github.com/dshills/commitgenie/internal/prompt"
	"github.com/dshills/commitgenie/internal/review"
	"github.com/dshills/commitgenie/internal/scm"
)

// ReviewAndCommit reviews the staged diff according to the configured mode
// and then writes a generated commit message into the input box.
func (o *Orchestrator) ReviewAndCommit(ctx context.Context) error {
	return o.commit(ctx, "reviewAndCommit", true)
}

// GenerateCommitMessage writes a generated commit message into the input
// box without reviewing.
func (o *Orchestrator) GenerateCommitMessage(ctx context.Context) error {
	return o.commit(ctx, "generateCommitMessage", false)
}

// run holds the state of one commit operation.
type run struct {
	tok      *abort.Token
	log      *zap.Logger
	cfg      config.Config
	client   Completer
	callOpts llm.CallOptions
	diff     string
}

func (o *Orchestrator) commit(ctx context.Context, op string, withReview bool) error {
	tok := o.coord.CreateController(ctx)
	defer o.coord.Clear(tok)
	o.complete = false

	log := o.logger.With(zap.String("operation", op), zap.String("op_id", uuid.NewString()))
	err := o.commitSteps(tok, log, withReview)
	return o.finish(tok, log, op, err)
}

func (o *Orchestrator) commitSteps(tok *abort.Token, log *zap.Logger, withReview bool) error {
	ctx := tok.Context()

	cfg, err := o.loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := validateService(cfg.Service, true); err != nil {
		return err
	}

	o.ui.Status("Reading staged changes...")
	diff, err := o.diff.StagedDiff(ctx)
	if err != nil {
		return fmt.Errorf("reading staged diff: %w", err)
	}
	if strings.TrimSpace(diff) == "" || diff == gitctx.NoStagedChanges {
		o.ui.Info("No staged changes to commit.")
		return nil
	}
	if o.input == nil {
		return scm.ErrNoInputBox
	}

	if cfg.Privacy.RedactSecrets {
		red := o.redactor.Diff(diff)
		if red.Count > 0 {
			o.ui.Warn(fmt.Sprintf("Redacted %d potential secret(s) from the diff before sending.", red.Count))
		}
		diff = red.Text
	}

	client, err := o.newClient(cfg.Service)
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}
	r := &run{
		tok:      tok,
		log:      log,
		cfg:      cfg,
		client:   client,
		callOpts: llm.CallOptions{MaxWait: cfg.Request.Timeout()},
		diff:     diff,
	}
	log.Debug("commit started",
		zap.Int("diff_bytes", len(diff)),
		zap.String("model", cfg.Service.Model),
	)

	o.tracker.StartSession()
	defer o.tracker.EndSession()

	mode := review.ModeOff
	if withReview {
		if mode, err = review.ParseMode(cfg.Review.Mode); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidConfig, err.Error())
		}
	}
	if mode != review.ModeOff {
		if cfg.Review.Combined {
			return o.combined(r, mode)
		}
		if err := o.review(r, mode); err != nil {
			return err
		}
	}
	return o.stream(r)
}

// review runs a split-mode review. An unreadable review response fails
// open with a default passing result and is not cached.
func (o *Orchestrator) review(r *run, mode review.Mode) error {
	cfg := r.cfg
	key := cache.Key(cfg.Service.Model, mode, cfg.Format.OutputLanguage, cfg.Review.CustomPrompt, r.diff)

	res, hit := review.Result{}, false
	if o.cache != nil {
		res, hit = o.cache.Get(key)
	}
	if hit {
		r.log.Debug("code review cache hit")
	} else {
		o.ui.Status("Reviewing staged changes...")
		msgs := prompt.Review(r.diff, prompt.ReviewOptions{
			Language:     cfg.Format.OutputLanguage,
			Mode:         mode,
			CustomPrompt: cfg.Review.CustomPrompt,
		})
		out, err := r.client.Complete(r.tok.Context(), msgs, r.callOpts)
		if err != nil {
			return fmt.Errorf("code review: %w", err)
		}
		var parsed bool
		res, parsed = review.Parse(out.Content, r.log)
		if parsed && o.cache != nil {
			if err := o.cache.Put(key, cfg.Service.Model, res); err != nil {
				r.log.Warn("failed to cache code review", zap.Error(err))
			}
		}
	}

	if res.Passed {
		return nil
	}
	return o.confirm(r, res)
}

// combined runs review and message generation in one call.
func (o *Orchestrator) combined(r *run, mode review.Mode) error {
	cfg := r.cfg
	o.ui.Status("Reviewing staged changes and generating commit message...")
	msgs := prompt.Combined(r.diff, formatOptions(cfg), prompt.ReviewOptions{
		Language:     cfg.Format.OutputLanguage,
		Mode:         mode,
		CustomPrompt: cfg.Review.CustomPrompt,
	})
	out, err := r.client.Complete(r.tok.Context(), msgs, r.callOpts)
	if err != nil {
		return fmt.Errorf("combined review: %w", err)
	}
	res, err := review.ParseCombined(out.Content)
	if err != nil {
		return err
	}
	if !res.Passed {
		if err := o.confirm(r, res.Result); err != nil {
			return err
		}
	}
	if r.tok.Cancelled() {
		return context.Canceled
	}
	o.input.SetValue(res.CommitMessage)
	o.complete = strings.TrimSpace(res.CommitMessage) != ""
	return nil
}

func (o *Orchestrator) confirm(r *run, res review.Result) error {
	ok, err := o.ui.ConfirmContinue(r.tok.Context(), res)
	if err != nil {
		return err
	}
	if !ok {
		o.ui.Info("Commit cancelled. Please address the review issues first.")
		return ErrReviewRejected
	}
	return nil
}

// stream writes the commit message into the input box as it arrives.
func (o *Orchestrator) stream(r *run) error {
	o.ui.Status("Generating commit message...")
	o.input.SetValue("")
	msgs := prompt.Commit(r.diff, formatOptions(r.cfg))

	res, err := r.client.Stream(r.tok.Context(), msgs, func(chunk string) {
		if r.tok.Cancelled() {
			return
		}
		o.input.SetValue(o.input.Value() + chunk)
	}, r.callOpts)
	if err != nil {
		return fmt.Errorf("generating commit message: %w", err)
	}
	if r.tok.Cancelled() {
		return context.Canceled
	}
	if res.Interrupted {
		o.ui.Warn("Commit message generation timed out; the message may be incomplete.")
	}
	if strings.TrimSpace(res.Content) == "" {
		return ErrEmptyMessage
	}
	o.complete = !res.Interrupted
	r.log.Debug("commit message generated",
		zap.Int("message_bytes", len(res.Content)),
		zap.Bool("complete", o.complete),
	)
	return nil
}

// finish is the error boundary shared by every operation.
func (o *Orchestrator) finish(tok *abort.Token, log *zap.Logger, op string, err error) error {
	if err == nil {
		return nil
	}
	if isCancellation(tok, err) {
		log.Debug("operation cancelled")
		return nil
	}
	if errors.Is(err, ErrReviewRejected) {
		return err
	}
	log.Error("operation failed", zap.Error(err), zap.String("kind", string(llm.Classify(err))))
	o.ui.Error(Message(err))
	return &HandledError{Op: op, Err: err}
}

func formatOptions(cfg config.Config) prompt.FormatOptions {
	return prompt.FormatOptions{
		Language:     cfg.Format.OutputLanguage,
		EnableEmoji:  cfg.Format.EnableEmojiPrefix,
		CustomPrompt: cfg.Format.CustomPrompt,
	}
}
