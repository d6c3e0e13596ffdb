package review

import (
	"fmt"
	"strings"
)

// Severity is the overall severity a reviewer assigns to a diff.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// SeverityRank returns a numeric rank for sorting (higher = more severe).
func SeverityRank(s Severity) int {
	switch s {
	case SeverityError:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// Mode selects how strict the reviewer is asked to be.
type Mode string

const (
	ModeOff      Mode = "off"
	ModeLenient  Mode = "lenient"
	ModeStandard Mode = "standard"
	ModeStrict   Mode = "strict"
)

// ParseMode parses a mode name. The empty string is ModeStandard.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeStandard:
		return ModeStandard, nil
	case ModeOff:
		return ModeOff, nil
	case ModeLenient:
		return ModeLenient, nil
	case ModeStrict:
		return ModeStrict, nil
	default:
		return "", fmt.Errorf("invalid review mode %q (expected off, lenient, standard, or strict)", s)
	}
}

// Result is the structured outcome of a code review.
type Result struct {
	Passed      bool     `json:"passed"`
	Severity    Severity `json:"severity"`
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
}

// Default returns the canonical passing result used when a reply cannot be
// parsed or there is nothing to review.
func Default() Result {
	return Result{
		Passed:      true,
		Severity:    SeverityInfo,
		Issues:      []string{},
		Suggestions: []string{},
	}
}

// normalize fills nil slices and maps a severity outside the known set to
// info for a passing review and warning for a failing one.
func (r *Result) normalize() {
	if SeverityRank(r.Severity) == 0 {
		r.Severity = SeverityInfo
		if !r.Passed {
			r.Severity = SeverityWarning
		}
	}
	if r.Issues == nil {
		r.Issues = []string{}
	}
	if r.Suggestions == nil {
		r.Suggestions = []string{}
	}
}

// Combined is the reply to a single review+commit request.
type Combined struct {
	Result
	CommitMessage string `json:"commitMessage"`
}
