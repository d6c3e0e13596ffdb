package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dshills/commitgenie/internal/cache"
	"github.com/dshills/commitgenie/internal/llm"
	"github.com/dshills/commitgenie/internal/review"
	"github.com/dshills/commitgenie/internal/usage"
)

func TestTextWriter_Passed(t *testing.T) {
	res := review.Default()
	var buf bytes.Buffer
	if err := (&TextWriter{}).Write(&buf, &Report{Review: &res}); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "PASSED") {
		t.Error("Output should say passed")
	}
	if !strings.Contains(out, "No issues found") {
		t.Error("Output should say no issues found")
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("Output to a buffer should not contain escape codes")
	}
}

func TestTextWriter_Failed(t *testing.T) {
	res := review.Result{
		Passed:      false,
		Severity:    review.SeverityError,
		Issues:      []string{"SQL built from user input in handler.go", "missing error check"},
		Suggestions: []string{"use a prepared statement"},
	}
	var buf bytes.Buffer
	if err := (&TextWriter{}).Write(&buf, &Report{Review: &res}); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"FAILED", "severity: error", "[!!]", "Issues (2)", "1. SQL built", "2. missing error check", "Suggestions (1)", "- use a prepared statement"} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
}

func TestTextWriter_Stats(t *testing.T) {
	report := &Report{
		Current: &usage.Stats{
			Usage:        llm.Usage{PromptTokens: 1200, CompletionTokens: 34, TotalTokens: 1234, CachedTokens: 600},
			CacheHitRate: "50.0",
		},
		Historical: &usage.Historical{OperationCount: 3, TotalTokens: 4500, AvgTokens: 1500, OverallCacheRate: "12.5"},
		Cache:      &cache.Stats{Dir: "/tmp/c", Enabled: true, Entries: 4, Expired: 1, TotalBytes: 2048},
	}
	var buf bytes.Buffer
	if err := (&TextWriter{}).Write(&buf, report); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"1,234", "600 (50.0%)", "Operations:", "4,500", "12.5%", "/tmp/c", "4 (1 expired)", "2.0 kB"} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Code Review") {
		t.Error("Review section rendered without a review")
	}
}

func TestWrapText(t *testing.T) {
	long := strings.Repeat("word ", 30)
	lines := wrapText(long, 20)
	if len(lines) < 2 {
		t.Fatalf("expected wrapping, got %d lines", len(lines))
	}
	for _, l := range lines {
		if len(l) > 20 {
			t.Errorf("line too long: %q", l)
		}
	}
	if got := wrapText("short", 20); len(got) != 1 || got[0] != "short" {
		t.Errorf("wrapText(short) = %v", got)
	}
}

func TestGetWriter(t *testing.T) {
	for _, f := range []string{"", "text", "json", "markdown", "md"} {
		if _, err := GetWriter(f); err != nil {
			t.Errorf("GetWriter(%q): %v", f, err)
		}
	}
	if _, err := GetWriter("sarif"); err == nil {
		t.Error("expected error for unsupported format")
	}
}
