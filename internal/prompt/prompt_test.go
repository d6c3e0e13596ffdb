package prompt

import (
	"strings"
	"testing"

	"github.com/dshills/commitgenie/internal/llm"
	"github.com/dshills/commitgenie/internal/review"
)

func assertShape(t *testing.T, msgs []llm.Message) {
	t.Helper()
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != llm.RoleSystem || msgs[1].Role != llm.RoleUser {
		t.Errorf("roles = %q, %q", msgs[0].Role, msgs[1].Role)
	}
}

func TestCommit(t *testing.T) {
	msgs := Commit("  diff --git a/x b/x\n+foo\n", FormatOptions{Language: "English"})
	assertShape(t, msgs)

	sys := msgs[0].Content
	for _, want := range []string{"**feat**: new feature", "≤50 chars", "≤72 chars/line", "**Language:** English"} {
		if !strings.Contains(sys, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
	if strings.Contains(sys, "Emoji Rules") || strings.Contains(sys, "✨") {
		t.Error("emoji guidance present with emoji disabled")
	}
	if strings.Contains(sys, "Custom Rules") {
		t.Error("custom section present without custom prompt")
	}
	if msgs[1].Content != "diff --git a/x b/x\n+foo" {
		t.Errorf("user content = %q", msgs[1].Content)
	}
}

func TestCommit_EmojiAndCustom(t *testing.T) {
	msgs := Commit("x", FormatOptions{Language: "Simplified Chinese", EnableEmoji: true, CustomPrompt: "  Always use scope core.  "})
	sys := msgs[0].Content
	if !strings.Contains(sys, "- ✨ **feat**") || !strings.Contains(sys, "<emoji> <type>[scope]: <subject>") {
		t.Error("emoji guidance missing")
	}
	if !strings.HasSuffix(sys, "## Custom Rules (Override All Above)\n\nAlways use scope core.") {
		t.Errorf("custom rules not appended last:\n%s", sys)
	}
}

func TestEmptyDiffPlaceholder(t *testing.T) {
	for _, msgs := range [][]llm.Message{
		Commit("", FormatOptions{}),
		Review(" \n\t", ReviewOptions{}),
		Combined("", FormatOptions{}, ReviewOptions{}),
	} {
		if msgs[1].Content != "[empty diff provided]" {
			t.Errorf("user content = %q", msgs[1].Content)
		}
	}
}

func TestReview_Modes(t *testing.T) {
	tests := []struct {
		mode review.Mode
		want string
	}{
		{review.ModeLenient, "LENIENT Mode"},
		{review.ModeStandard, "STANDARD Mode"},
		{review.ModeStrict, "STRICT Mode"},
		{"", "STANDARD Mode"},
	}
	for _, tt := range tests {
		msgs := Review("d", ReviewOptions{Language: "English", Mode: tt.mode})
		assertShape(t, msgs)
		sys := msgs[0].Content
		if !strings.Contains(sys, tt.want) {
			t.Errorf("mode %q: missing %q", tt.mode, tt.want)
		}
		if !strings.Contains(sys, `"passed": boolean`) {
			t.Errorf("mode %q: missing output schema", tt.mode)
		}
	}
	if Guidelines(review.ModeOff) != "" {
		t.Error("off mode should have no guidelines")
	}
}

func TestReview_Custom(t *testing.T) {
	sys := ReviewSystem(ReviewOptions{Mode: review.ModeStrict, CustomPrompt: "Check SQL."})
	if !strings.HasSuffix(sys, "## Custom Review Rules (Additional Focus)\n\nCheck SQL.") {
		t.Errorf("custom review rules not appended:\n%s", sys)
	}
}

func TestCombined(t *testing.T) {
	msgs := Combined("d", FormatOptions{Language: "English", CustomPrompt: "Use scope api."}, ReviewOptions{Language: "English", Mode: review.ModeLenient})
	assertShape(t, msgs)
	sys := msgs[0].Content
	for _, want := range []string{"LENIENT Mode", "**feat**", `"commitMessage": string`, "Use scope api."} {
		if !strings.Contains(sys, want) {
			t.Errorf("combined prompt missing %q", want)
		}
	}
}
