package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/commitgenie/internal/llm"
	"github.com/dshills/commitgenie/internal/workflow"
)

const version = "0.3.0"

// Exit codes.
const (
	ExitSuccess      = 0
	ExitRejected     = 1
	ExitUsageError   = 2
	ExitAuthError    = 3
	ExitRuntimeError = 4
)

// Persistent flags, applied as config overrides.
var (
	flagModel      string
	flagBaseURL    string
	flagLanguage   string
	flagReviewMode string
	flagTimeout    int
	flagLogLevel   string
	flagNoRedact   bool
	flagYes        bool
)

var rootCmd = &cobra.Command{
	Use:   "commitgenie",
	Short: "AI commit messages and pre-commit code review",
	Long: "commitgenie reads your staged changes, optionally reviews them, and writes a " +
		"conventional commit message using an OpenAI-compatible chat completion API.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Run executes the root command and returns an exit code.
func Run() int {
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(reviewCommitCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(hookCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		var handled *workflow.HandledError
		if !errors.As(err, &handled) && !errors.Is(err, workflow.ErrReviewRejected) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// exitCodeFor maps a command error to a process exit code.
func exitCodeFor(err error) int {
	var handled *workflow.HandledError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, workflow.ErrReviewRejected):
		return ExitRejected
	case errors.Is(err, workflow.ErrInvalidConfig):
		return ExitUsageError
	case llm.IsAuthError(err):
		return ExitAuthError
	case errors.As(err, &handled):
		return ExitRuntimeError
	case isUsageError(err):
		return ExitUsageError
	default:
		return ExitRuntimeError
	}
}

// usageError marks flag and argument mistakes.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func isUsageError(err error) bool {
	var u usageError
	return errors.As(err, &u)
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagModel != "" {
		m["service.model"] = flagModel
	}
	if flagBaseURL != "" {
		m["service.baseURL"] = flagBaseURL
	}
	if flagLanguage != "" {
		m["format.outputLanguage"] = flagLanguage
	}
	if flagReviewMode != "" {
		m["review.mode"] = flagReviewMode
	}
	if flagTimeout > 0 {
		m["request.timeoutSeconds"] = fmt.Sprintf("%d", flagTimeout)
	}
	if flagLogLevel != "" {
		m["logging.level"] = flagLogLevel
	}
	if flagCombined {
		m["review.combined"] = "true"
	}
	if flagNoRedact {
		m["privacy.redactSecrets"] = "false"
	}
	return m
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print commitgenie version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "commitgenie version %s\n", version)
	},
}

func init() {
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagModel, "model", "", "Model id")
	pf.StringVar(&flagBaseURL, "base-url", "", "API base URL")
	pf.StringVar(&flagLanguage, "language", "", "Output language for messages and reviews")
	pf.StringVar(&flagReviewMode, "review-mode", "", "Review mode (off, lenient, standard, strict)")
	pf.IntVar(&flagTimeout, "timeout", 0, "Per-request timeout in seconds")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.BoolVar(&flagNoRedact, "no-redact", false, "Send the diff without secret redaction (use with caution)")
	pf.BoolVarP(&flagYes, "yes", "y", false, "Answer yes to every confirmation")
}
