package output

import (
	"io"
	"strings"

	"github.com/dshills/commitgenie/internal/review"
)

// MarkdownWriter outputs a PR-comment-friendly markdown review. Usage and
// cache sections are rendered as a compact table.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *Report) error {
	ew := &errWriter{w: w}

	if res := report.Review; res != nil {
		ew.printf("## Code Review\n\n")
		status := ":white_check_mark: Passed"
		if !res.Passed {
			status = mdSeverityIcon(res.Severity) + " Failed"
		}
		ew.printf("| Result | Severity | Issues | Suggestions |\n")
		ew.printf("|--------|----------|--------|-------------|\n")
		ew.printf("| %s | %s | %d | %d |\n\n", status, res.Severity, len(res.Issues), len(res.Suggestions))

		if len(res.Issues) == 0 && len(res.Suggestions) == 0 {
			ew.println("No issues found. :white_check_mark:")
		}
		if len(res.Issues) > 0 {
			ew.printf("<details open>\n<summary>Issues (%d)</summary>\n\n", len(res.Issues))
			for _, issue := range res.Issues {
				ew.printf("- %s\n", mdEscape(issue))
			}
			ew.printf("\n</details>\n\n")
		}
		if len(res.Suggestions) > 0 {
			ew.printf("<details>\n<summary>Suggestions (%d)</summary>\n\n", len(res.Suggestions))
			for _, s := range res.Suggestions {
				ew.printf("- %s\n", mdEscape(s))
			}
			ew.printf("\n</details>\n\n")
		}
	}

	if report.CommitMessage != "" {
		ew.printf("### Commit message\n\n```\n%s\n```\n\n", report.CommitMessage)
	}

	if report.Current != nil || report.Historical != nil {
		ew.printf("### Token usage\n\n| Metric | Value |\n|--------|-------|\n")
		if c := report.Current; c != nil {
			ew.printf("| Prompt tokens | %d |\n", c.PromptTokens)
			ew.printf("| Completion tokens | %d |\n", c.CompletionTokens)
			ew.printf("| Total tokens | %d |\n", c.TotalTokens)
			ew.printf("| Cache hit rate | %s%% |\n", c.CacheHitRate)
		}
		if h := report.Historical; h != nil {
			ew.printf("| Operations | %d |\n", h.OperationCount)
			ew.printf("| Lifetime tokens | %d |\n", h.TotalTokens)
			ew.printf("| Average per operation | %d |\n", h.AvgTokens)
			ew.printf("| Overall cache hit rate | %s%% |\n", h.OverallCacheRate)
		}
		ew.println("")
	}

	if c := report.Cache; c != nil {
		ew.printf("### Review cache\n\n| Directory | Enabled | Entries | Expired | Bytes |\n")
		ew.printf("|-----------|---------|---------|---------|-------|\n")
		ew.printf("| `%s` | %t | %d | %d | %d |\n", c.Dir, c.Enabled, c.Entries, c.Expired, c.TotalBytes)
	}
	return ew.err
}

func mdSeverityIcon(s review.Severity) string {
	switch s {
	case review.SeverityError:
		return ":red_circle:"
	case review.SeverityWarning:
		return ":orange_circle:"
	case review.SeverityInfo:
		return ":large_blue_circle:"
	default:
		return ":white_circle:"
	}
}

// mdEscape keeps list items on one line.
func mdEscape(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

