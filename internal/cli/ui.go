package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/dshills/commitgenie/internal/output"
	"github.com/dshills/commitgenie/internal/review"
	"github.com/dshills/commitgenie/internal/usage"
)

// terminalUI implements workflow.UI. Notifications and prompts go to errW
// so stdout carries only the commit message and requested reports.
type terminalUI struct {
	errW        io.Writer
	outW        io.Writer
	format      string
	assumeYes   bool
	interactive bool

	info   lipgloss.Style
	warn   lipgloss.Style
	err    lipgloss.Style
	status lipgloss.Style
}

func newTerminalUI(errW, outW io.Writer, format string, assumeYes bool) *terminalUI {
	r := lipgloss.NewRenderer(errW)
	return &terminalUI{
		errW:        errW,
		outW:        outW,
		format:      format,
		assumeYes:   assumeYes,
		interactive: isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()),
		info:        r.NewStyle().Foreground(lipgloss.Color("12")),
		warn:        r.NewStyle().Foreground(lipgloss.Color("11")),
		err:         r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		status:      r.NewStyle().Faint(true),
	}
}

func (u *terminalUI) Info(msg string)  { fmt.Fprintln(u.errW, u.info.Render(msg)) }
func (u *terminalUI) Warn(msg string)  { fmt.Fprintln(u.errW, u.warn.Render("Warning: "+msg)) }
func (u *terminalUI) Error(msg string) { fmt.Fprintln(u.errW, u.err.Render("Error: "+msg)) }

func (u *terminalUI) Status(msg string) { fmt.Fprintln(u.errW, u.status.Render(msg)) }

func (u *terminalUI) ConfirmContinue(ctx context.Context, res review.Result) (bool, error) {
	w, err := output.GetWriter(u.format)
	if err != nil {
		w = &output.TextWriter{}
	}
	if err := w.Write(u.errW, &output.Report{Review: &res}); err != nil {
		return false, err
	}
	return u.confirm(ctx, "Code review found issues. Continue with the commit anyway?", "Continue", "Cancel")
}

func (u *terminalUI) ConfirmReset(ctx context.Context) (bool, error) {
	return u.confirm(ctx, "Reset all token usage statistics? This cannot be undone.", "Reset", "Cancel")
}

// confirm asks a yes/no question. Without a terminal the answer is no
// unless --yes was given.
func (u *terminalUI) confirm(ctx context.Context, title, yes, no string) (bool, error) {
	if u.assumeYes {
		return true, nil
	}
	if !u.interactive {
		u.Warn("no terminal to confirm on; pass --yes to continue non-interactively.")
		return false, nil
	}
	var ok bool
	field := huh.NewConfirm().
		Title(title).
		Affirmative(yes).
		Negative(no).
		Value(&ok)
	if err := huh.NewForm(huh.NewGroup(field)).RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}

func (u *terminalUI) SelectModel(ctx context.Context, models []string, current string) (string, bool, error) {
	if !u.interactive {
		return "", false, usageError{errors.New("model selection needs a terminal; use: commitgenie config set service.model <model>")}
	}
	picked := current
	field := huh.NewSelect[string]().
		Title("Select a model").
		Options(modelOptions(models, current)...).
		Value(&picked)
	if err := huh.NewForm(huh.NewGroup(field)).RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", false, nil
		}
		return "", false, err
	}
	return picked, picked != "", nil
}

// modelOptions labels the current model.
func modelOptions(models []string, current string) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(models))
	for _, m := range models {
		label := m
		if m == current {
			label = m + " (current)"
		}
		opts = append(opts, huh.NewOption(label, m).Selected(m == current))
	}
	return opts
}

func (u *terminalUI) ShowStats(current *usage.Stats, historical *usage.Historical) {
	w, err := output.GetWriter(u.format)
	if err != nil {
		u.Error(err.Error())
		return
	}
	if err := w.Write(u.outW, &output.Report{Current: current, Historical: historical}); err != nil {
		u.Error(err.Error())
	}
}
