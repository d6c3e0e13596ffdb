package prompt

import (
	"fmt"
	"strings"

	"github.com/dshills/commitgenie/internal/llm"
)

const (
	// MaxSubjectLength is the longest subject line the model is asked for.
	MaxSubjectLength = 50
	// MaxBodyLineLength is the longest body line the model is asked for.
	MaxBodyLineLength = 72

	emptyDiffPlaceholder = "[empty diff provided]"
)

// FormatOptions controls the generated commit message.
type FormatOptions struct {
	Language     string
	EnableEmoji  bool
	CustomPrompt string
}

type commitType struct {
	name        string
	description string
	emoji       string
}

var commitTypes = []commitType{
	{"feat", "new feature", "✨"},
	{"fix", "bug fix", "🐛"},
	{"docs", "documentation", "📚"},
	{"style", "formatting / code style", "💄"},
	{"refactor", "code refactoring", "♻️"},
	{"perf", "performance improvement", "⚡"},
	{"test", "testing", "✅"},
	{"build", "build system", "📦"},
	{"ci", "CI configuration", "👷"},
	{"chore", "maintenance", "🔧"},
	{"revert", "revert previous commit", "⏪"},
}

// Commit returns the messages asking for a conventional commit message.
func Commit(diff string, opts FormatOptions) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: CommitSystem(opts)},
		{Role: llm.RoleUser, Content: userContent(diff)},
	}
}

// CommitSystem returns the system instructions for commit message generation.
func CommitSystem(opts FormatOptions) string {
	var b strings.Builder
	b.WriteString("Commit message generator. Output ONLY the final message, with no explanations or markdown blocks.\n\n")
	writeCommitRules(&b, opts)
	writeCustom(&b, "Custom Rules (Override All Above)", opts.CustomPrompt)
	return b.String()
}

func writeCommitRules(b *strings.Builder, opts FormatOptions) {
	b.WriteString("## Types\n")
	for _, ct := range commitTypes {
		prefix := ""
		if opts.EnableEmoji {
			prefix = ct.emoji + " "
		}
		fmt.Fprintf(b, "- %s**%s**: %s\n", prefix, ct.name, ct.description)
	}

	hint := ""
	if opts.EnableEmoji {
		b.WriteString("\n### Emoji Rules\n")
		b.WriteString("- Format: <emoji> <type>[scope]: <subject>\n")
		b.WriteString("- Use matching emoji from the types above\n")
		hint = "<emoji> "
	}

	b.WriteString("\n## Format\n")
	fmt.Fprintf(b, "%s<type>[scope]: <subject>\n[body]\n[BREAKING CHANGE: <description>]\n\n", hint)
	fmt.Fprintf(b, "**Subject:** Imperative, ≤%d chars, no period\n", MaxSubjectLength)
	b.WriteString("**Scope:** Use only when it adds clarity (monorepo packages, modules, components). Omit if redundant or global.\n")
	fmt.Fprintf(b, "**Body:** \"- \" prefix, ≤%d chars/line, explain why/how. Omit if obvious.\n", MaxBodyLineLength)
	b.WriteString("**Breaking:** Add a \"BREAKING CHANGE:\" footer if backward incompatible (API/schema/config changes).\n")
	fmt.Fprintf(b, "**Language:** %s (space between Chinese/English/numbers)\n\n", language(opts.Language))

	b.WriteString("## Rules\n")
	b.WriteString("1. Pick the most precise type (never invent one)\n")
	b.WriteString("2. Single responsibility per commit\n")
	b.WriteString("3. Empty/generated diffs → chore type\n\n")
	b.WriteString("**Mixed changes priority:** feat > fix > refactor > perf > docs/test/style\n")
	b.WriteString("Example: 3 lines feat + 20 lines refactor → use refactor\n\n")
	b.WriteString("**Revert:** revert: <original type>(<scope>): <original subject>\n")
	b.WriteString("**Test-only:** test(<scope>): summarize coverage")
}

func userContent(diff string) string {
	d := strings.TrimSpace(diff)
	if d == "" {
		return emptyDiffPlaceholder
	}
	return d
}

func language(l string) string {
	if strings.TrimSpace(l) == "" {
		return "English"
	}
	return strings.TrimSpace(l)
}

func writeCustom(b *strings.Builder, heading, custom string) {
	custom = strings.TrimSpace(custom)
	if custom == "" {
		return
	}
	fmt.Fprintf(b, "\n\n## %s\n\n%s", heading, custom)
}
