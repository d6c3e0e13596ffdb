package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/commitgenie/internal/output"
	"github.com/dshills/commitgenie/internal/scm"
	"github.com/dshills/commitgenie/internal/workflow"
)

var (
	flagCommit   bool
	flagCombined bool
	flagFormat   string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a commit message for the staged changes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommit(cmd.Context(), false)
	},
}

var reviewCommitCmd = &cobra.Command{
	Use:   "review-commit",
	Short: "Review the staged changes, then generate a commit message",
	Long: "Reviews the staged diff at the configured review mode. When the review " +
		"fails you are asked whether to continue; otherwise a commit message is generated.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommit(cmd.Context(), true)
	},
}

func runCommit(ctx context.Context, withReview bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := output.GetWriter(flagFormat); err != nil {
		return usageError{err}
	}
	a, err := newApp(ctx, appOptions{needRepo: true, format: flagFormat})
	if err != nil {
		return err
	}
	defer a.Close()

	meta := a.repo.Meta(ctx)
	a.logger.Debug("repository",
		zap.String("root", meta.Root),
		zap.String("branch", meta.Branch),
		zap.String("head", meta.Head),
		zap.String("state", a.store.Path()),
	)

	// Structured formats print the message once at the end instead of
	// echoing the stream.
	echo := stdout
	if flagFormat != "" && flagFormat != "text" {
		echo = nil
	}
	box := scm.NewTerminalBox(echo)
	orch, err := a.orchestrator(box)
	if err != nil {
		return err
	}

	stop := a.abortOnSignal()
	if withReview {
		err = orch.ReviewAndCommit(ctx)
	} else {
		err = orch.GenerateCommitMessage(ctx)
	}
	stop()
	if err != nil {
		return err
	}

	msg := strings.TrimSpace(box.Value())
	if msg == "" {
		return nil
	}
	if echo != nil {
		fmt.Fprintln(stdout)
	} else if err := writeMessage(msg); err != nil {
		return err
	}
	if !flagCommit {
		return nil
	}
	if !orch.MessageComplete() {
		a.logger.Info("skipping commit of incomplete message", zap.Int("message_bytes", len(msg)))
		a.ui.Warn("The commit message is incomplete; nothing was committed.")
		return nil
	}
	files, err := a.repo.StagedFiles(ctx)
	if err != nil {
		a.logger.Warn("listing staged files", zap.Error(err))
	}
	if err := a.repo.Commit(ctx, msg); err != nil {
		a.ui.Error(err.Error())
		return &workflow.HandledError{Op: "commit", Err: err}
	}
	a.ui.Info(fmt.Sprintf("Committed %d file(s) on %s.", len(files), branchName(meta.Branch)))
	return nil
}

func writeMessage(msg string) error {
	w, err := output.GetWriter(flagFormat)
	if err != nil {
		return usageError{err}
	}
	return w.Write(stdout, &output.Report{CommitMessage: msg})
}

func branchName(b string) string {
	if b == "" {
		return "detached HEAD"
	}
	return b
}

func init() {
	for _, c := range []*cobra.Command{generateCmd, reviewCommitCmd} {
		c.Flags().BoolVar(&flagCommit, "commit", false, "Run git commit with the generated message")
		c.Flags().StringVar(&flagFormat, "format", "text", "Output format for the review and message ("+strings.Join(output.Formats, ", ")+")")
	}
	reviewCommitCmd.Flags().BoolVar(&flagCombined, "combined", false, "Review and generate the message in a single request")
}
