package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/dshills/commitgenie/internal/review"
)

// TextWriter outputs styled, human-readable text. Colors are only emitted
// when w is a terminal.
type TextWriter struct{}

// styles are bound to one renderer so color detection follows the writer.
type styles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	pass    lipgloss.Style
	error   lipgloss.Style
	warning lipgloss.Style
	info    lipgloss.Style
	dim     lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title:   r.NewStyle().Bold(true),
		label:   r.NewStyle().Foreground(lipgloss.Color("12")),
		pass:    r.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		error:   r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		warning: r.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		info:    r.NewStyle().Foreground(lipgloss.Color("14")),
		dim:     r.NewStyle().Faint(true),
	}
}

func (s styles) severity(sev review.Severity) lipgloss.Style {
	switch sev {
	case review.SeverityError:
		return s.error
	case review.SeverityWarning:
		return s.warning
	default:
		return s.info
	}
}

func (t *TextWriter) Write(w io.Writer, report *Report) error {
	ew := &errWriter{w: w}
	st := newStyles(w)
	rule := st.dim.Render(strings.Repeat("─", 60))

	if report.Review != nil {
		writeReviewText(ew, st, rule, *report.Review)
	}
	if report.CommitMessage != "" {
		ew.printf("\n%s\n%s\n", st.title.Render("Commit message"), report.CommitMessage)
	}
	if report.Current != nil {
		c := report.Current
		ew.printf("\n%s\n", st.title.Render("Current operation"))
		ew.println(rule)
		ew.printf("  %s %s\n", st.label.Render("Prompt tokens:    "), humanize.Comma(int64(c.PromptTokens)))
		ew.printf("  %s %s\n", st.label.Render("Completion tokens:"), humanize.Comma(int64(c.CompletionTokens)))
		ew.printf("  %s %s\n", st.label.Render("Total tokens:     "), humanize.Comma(int64(c.TotalTokens)))
		ew.printf("  %s %s (%s%%)\n", st.label.Render("Cached tokens:    "), humanize.Comma(int64(c.CachedTokens)), c.CacheHitRate)
	}
	if report.Historical != nil {
		h := report.Historical
		ew.printf("\n%s\n", st.title.Render("All operations"))
		ew.println(rule)
		ew.printf("  %s %s\n", st.label.Render("Operations:       "), humanize.Comma(int64(h.OperationCount)))
		ew.printf("  %s %s\n", st.label.Render("Total tokens:     "), humanize.Comma(int64(h.TotalTokens)))
		ew.printf("  %s %s\n", st.label.Render("Average per op:   "), humanize.Comma(int64(h.AvgTokens)))
		ew.printf("  %s %s%%\n", st.label.Render("Cache hit rate:   "), h.OverallCacheRate)
	}
	if report.Cache != nil {
		c := report.Cache
		ew.printf("\n%s\n", st.title.Render("Review cache"))
		ew.println(rule)
		ew.printf("  %s %s\n", st.label.Render("Directory:"), c.Dir)
		ew.printf("  %s %t\n", st.label.Render("Enabled:  "), c.Enabled)
		ew.printf("  %s %d (%d expired)\n", st.label.Render("Entries:  "), c.Entries, c.Expired)
		ew.printf("  %s %s\n", st.label.Render("Size:     "), humanize.Bytes(uint64(c.TotalBytes)))
	}
	return ew.err
}

func writeReviewText(ew *errWriter, st styles, rule string, res review.Result) {
	ew.println(st.title.Render("Code Review"))
	ew.println(rule)
	if res.Passed {
		ew.printf("%s (severity: %s)\n", st.pass.Render("PASSED"), res.Severity)
	} else {
		ew.printf("%s (severity: %s)\n", st.severity(res.Severity).Render("FAILED"), res.Severity)
	}
	ew.println(rule)

	if len(res.Issues) == 0 && len(res.Suggestions) == 0 {
		ew.println("\nNo issues found. Looks good!")
		return
	}
	if len(res.Issues) > 0 {
		ew.printf("\n%s %s\n", severityIcon(res.Severity), st.severity(res.Severity).Render(fmt.Sprintf("Issues (%d)", len(res.Issues))))
		for i, issue := range res.Issues {
			writeWrapped(ew, fmt.Sprintf("  %d. ", i+1), issue)
		}
	}
	if len(res.Suggestions) > 0 {
		ew.printf("\n%s\n", st.info.Render(fmt.Sprintf("Suggestions (%d)", len(res.Suggestions))))
		for _, s := range res.Suggestions {
			writeWrapped(ew, "  - ", s)
		}
	}
}

// writeWrapped writes text wrapped at 70 columns, indenting continuation
// lines to align with the text after prefix.
func writeWrapped(ew *errWriter, prefix, text string) {
	indent := strings.Repeat(" ", len(prefix))
	for i, line := range wrapText(text, 70) {
		if i == 0 {
			ew.printf("%s%s\n", prefix, line)
			continue
		}
		ew.printf("%s%s\n", indent, line)
	}
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

func severityIcon(s review.Severity) string {
	switch s {
	case review.SeverityError:
		return "[!!]"
	case review.SeverityWarning:
		return "[!]"
	case review.SeverityInfo:
		return "[-]"
	default:
		return "[?]"
	}
}

func wrapText(text string, width int) []string {
	if len(text) <= width {
		return []string{text}
	}
	var lines []string
	var current strings.Builder
	for _, word := range strings.Fields(text) {
		if current.Len()+len(word)+1 > width && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
