package prompt

import (
	"fmt"
	"strings"

	"github.com/dshills/commitgenie/internal/llm"
	"github.com/dshills/commitgenie/internal/review"
)

// ReviewOptions controls the code review request.
type ReviewOptions struct {
	Language     string
	Mode         review.Mode
	CustomPrompt string
}

const lenientGuidelines = `## LENIENT Mode - CRITICAL Issues Only

**CHECK:**
• Syntax errors, undefined variables/functions, type errors, import errors
• Security: SQL injection, XSS, exposed secrets, auth bypass, weak crypto
• Data integrity: loss/corruption, schema changes without migration
• Crashes: null access, infinite loops, unhandled rejections, memory leaks

**IGNORE:** Style, performance, docs, edge cases, tests, non-crash logic bugs

**Result:** passed=false only if CRITICAL found (severity="error"), else passed=true (severity="info")`

const standardGuidelines = `## STANDARD Mode - CRITICAL + MAJOR

**CRITICAL:** Syntax, security, crashes, data loss (lenient mode)

**MAJOR:**
• Logic: Wrong calculations, bad conditions, off-by-one, state errors
• Errors: Unhandled failures, missing error checks, swallowed errors
• Concurrency: Race conditions, missing locks, async state conflicts
• Breaking: API/schema changes without migration/deprecation
• Performance: O(n²) on >1000 items, N+1 queries, blocking >100ms
• Resources: Unclosed handles/connections/listeners/timers

**IGNORE:** Style, minor docs, unlikely edge cases, micro-optimizations

**Result:** passed=false if CRITICAL/MAJOR found, severity="error" (critical) or "warning" (major)`

const strictGuidelines = `## STRICT Mode - Everything

**CRITICAL/MAJOR:** See standard mode

**MINOR:**
• Quality: Inconsistent naming, magic numbers, complexity >10, long functions, duplicates, dead code
• Types: Untyped values, missing null checks, implicit coercion, no input validation
• Docs: Missing doc comments, unclear names, generic error messages
• Practices: Bad error handling, hardcoded values, no defensive programming
• Maintainability: Tight coupling, god objects, >5 params, deep nesting
• Testing: Missing tests, uncovered edge cases

**Result:** passed=false if ANY issue found, severity="error"/"warning"/"info" by level`

// Guidelines returns the reviewer instructions for mode. ModeOff has none.
func Guidelines(mode review.Mode) string {
	switch mode {
	case review.ModeLenient:
		return lenientGuidelines
	case review.ModeStandard:
		return standardGuidelines
	case review.ModeStrict:
		return strictGuidelines
	default:
		return ""
	}
}

// Review returns the messages asking for a JSON code review of diff.
func Review(diff string, opts ReviewOptions) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: ReviewSystem(opts)},
		{Role: llm.RoleUser, Content: userContent(diff)},
	}
}

// ReviewSystem returns the system instructions for a code review.
func ReviewSystem(opts ReviewOptions) string {
	var b strings.Builder
	b.WriteString("Senior code reviewer. Analyze the git diff following the mode rules strictly.\n\n")
	b.WriteString(Guidelines(reviewMode(opts.Mode)))
	b.WriteString("\n\n## Output Format (JSON ONLY)\n\n")
	b.WriteString("{\n  \"passed\": boolean,\n  \"severity\": \"error\" | \"warning\" | \"info\",\n  \"issues\": string[],\n  \"suggestions\": string[]\n}\n\n")
	fmt.Fprintf(&b, "**CRITICAL: All text in issues[] and suggestions[] arrays MUST be in %s**\n\n", language(opts.Language))
	b.WriteString("Empty/whitespace/comment-only diffs: Pass with empty arrays.")
	writeCustom(&b, "Custom Review Rules (Additional Focus)", opts.CustomPrompt)
	return b.String()
}

// Combined returns the messages asking for a review and a commit message in
// one JSON reply.
func Combined(diff string, format FormatOptions, rev ReviewOptions) []llm.Message {
	var b strings.Builder
	b.WriteString("Senior code reviewer and commit message generator. Review the git diff following the mode rules strictly, then write its commit message.\n\n")
	b.WriteString(Guidelines(reviewMode(rev.Mode)))
	b.WriteString("\n\n# Commit Message Rules\n\n")
	writeCommitRules(&b, format)
	b.WriteString("\n\n## Output Format (JSON ONLY)\n\n")
	b.WriteString("{\n  \"passed\": boolean,\n  \"severity\": \"error\" | \"warning\" | \"info\",\n  \"issues\": string[],\n  \"suggestions\": string[],\n  \"commitMessage\": string\n}\n\n")
	fmt.Fprintf(&b, "**CRITICAL: All text in issues[] and suggestions[] arrays MUST be in %s**\n", language(rev.Language))
	b.WriteString("commitMessage is always required, even when passed is false. Use \\n for line breaks inside it.")
	writeCustom(&b, "Custom Review Rules (Additional Focus)", rev.CustomPrompt)
	writeCustom(&b, "Custom Commit Rules (Override Commit Rules Above)", format.CustomPrompt)

	return []llm.Message{
		{Role: llm.RoleSystem, Content: b.String()},
		{Role: llm.RoleUser, Content: userContent(diff)},
	}
}

func reviewMode(m review.Mode) review.Mode {
	if m == "" || m == review.ModeOff {
		return review.ModeStandard
	}
	return m
}
