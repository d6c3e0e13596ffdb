package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/commitgenie/internal/gitctx"
	"github.com/dshills/commitgenie/internal/scm"
)

const (
	hookName        = "prepare-commit-msg"
	hookMarkerStart = "# >>> commitgenie prepare-commit-msg hook >>>"
	hookMarkerEnd   = "# <<< commitgenie prepare-commit-msg hook <<<"
)

var (
	hookReview bool
	hookYes    bool
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Manage the git prepare-commit-msg hook",
}

var hookInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install commitgenie as a git prepare-commit-msg hook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		hookPath, err := getHookPath(cmd)
		if err != nil {
			return err
		}

		section := generateHookScript(hookReview, hookYes)

		existing, err := os.ReadFile(hookPath)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("reading hook file: %w", err)
		}

		var content string
		if os.IsNotExist(err) || len(existing) == 0 {
			content = "#!/bin/sh\n" + section
		} else {
			content = replaceHookSection(string(existing), section)
		}

		if err := os.MkdirAll(filepath.Dir(hookPath), 0o755); err != nil {
			return fmt.Errorf("creating hooks directory: %w", err)
		}
		if err := os.WriteFile(hookPath, []byte(content), 0o755); err != nil {
			return fmt.Errorf("writing hook file: %w", err)
		}

		fmt.Fprintf(stdout, "Installed commitgenie %s hook at %s\n", hookName, hookPath)
		return nil
	},
}

var hookUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the commitgenie prepare-commit-msg hook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		hookPath, err := getHookPath(cmd)
		if err != nil {
			return err
		}

		existing, err := os.ReadFile(hookPath)
		if err != nil {
			if os.IsNotExist(err) {
				fmt.Fprintf(stdout, "No %s hook found.\n", hookName)
				return nil
			}
			return fmt.Errorf("reading hook file: %w", err)
		}

		content := removeHookSection(string(existing))

		// Only a shebang left: remove the file.
		trimmed := strings.TrimSpace(content)
		if trimmed == "" || trimmed == "#!/bin/sh" || trimmed == "#!/bin/bash" {
			if err := os.Remove(hookPath); err != nil {
				return fmt.Errorf("removing hook file: %w", err)
			}
			fmt.Fprintf(stdout, "Removed commitgenie %s hook at %s\n", hookName, hookPath)
			return nil
		}

		if err := os.WriteFile(hookPath, []byte(content), 0o755); err != nil {
			return fmt.Errorf("writing hook file: %w", err)
		}
		fmt.Fprintf(stdout, "Removed commitgenie section from %s\n", hookPath)
		return nil
	},
}

var hookRunCmd = &cobra.Command{
	Use:    "run <message-file> [source] [sha]",
	Short:  "Write a generated message into a commit message file (called by git)",
	Hidden: true,
	Args:   cobra.RangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		// git passes a source for -m, -F, merges, amends and templates.
		// Those already have a message.
		if len(args) > 1 && args[1] != "" {
			return nil
		}

		box, err := scm.OpenFileBox(args[0])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		a, err := newApp(ctx, appOptions{needRepo: true})
		if err != nil {
			return err
		}
		defer a.Close()

		orch, err := a.orchestrator(box)
		if err != nil {
			return err
		}
		stop := a.abortOnSignal()
		if hookReview {
			err = orch.ReviewAndCommit(ctx)
		} else {
			err = orch.GenerateCommitMessage(ctx)
		}
		stop()
		if err != nil {
			return err
		}
		return box.Save()
	},
}

func getHookPath(cmd *cobra.Command) (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	repo, err := gitctx.Open(ctx, wd)
	if err != nil {
		return "", usageError{err}
	}
	dir, err := repo.HooksDir(ctx)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, hookName), nil
}

func generateHookScript(withReview, assumeYes bool) string {
	run := `commitgenie hook run "$1"`
	if withReview {
		run += " --review"
	}
	if assumeYes {
		run += " --yes"
	}

	var b strings.Builder
	b.WriteString(hookMarkerStart + "\n")
	b.WriteString("if [ -z \"$2\" ]; then\n")
	b.WriteString("  " + run + "\n")
	b.WriteString("  GENIE_EXIT=$?\n")
	b.WriteString("  if [ $GENIE_EXIT -eq 1 ]; then\n")
	b.WriteString("    echo \"commitgenie: commit stopped after code review\"\n")
	b.WriteString("    exit 1\n")
	b.WriteString("  elif [ $GENIE_EXIT -ge 2 ]; then\n")
	b.WriteString("    echo \"commitgenie: no message generated (exit $GENIE_EXIT), continuing\"\n")
	b.WriteString("  fi\n")
	b.WriteString("fi\n")
	b.WriteString(hookMarkerEnd + "\n")
	return b.String()
}

func replaceHookSection(existing, section string) string {
	startIdx := strings.Index(existing, hookMarkerStart)
	endIdx := strings.Index(existing, hookMarkerEnd)

	if startIdx == -1 || endIdx == -1 {
		if !strings.HasSuffix(existing, "\n") {
			existing += "\n"
		}
		return existing + section
	}

	before := existing[:startIdx]
	after := strings.TrimPrefix(existing[endIdx+len(hookMarkerEnd):], "\n")
	return before + section + after
}

func removeHookSection(existing string) string {
	startIdx := strings.Index(existing, hookMarkerStart)
	endIdx := strings.Index(existing, hookMarkerEnd)

	if startIdx == -1 || endIdx == -1 {
		return existing
	}

	before := existing[:startIdx]
	after := strings.TrimPrefix(existing[endIdx+len(hookMarkerEnd):], "\n")
	return before + after
}

func init() {
	hookCmd.AddCommand(hookInstallCmd)
	hookCmd.AddCommand(hookUninstallCmd)
	hookCmd.AddCommand(hookRunCmd)
	hookInstallCmd.Flags().BoolVar(&hookReview, "review", false, "Review the staged changes before generating")
	hookInstallCmd.Flags().BoolVar(&hookYes, "no-confirm", false, "Continue after a failed review without asking")
	hookRunCmd.Flags().BoolVar(&hookReview, "review", false, "Review the staged changes before generating")
}
