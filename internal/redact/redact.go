package redact

import (
	"path/filepath"
	"regexp"
	"strings"
)

const placeholder = "[REDACTED]"

type secretPattern struct {
	name string
	re   *regexp.Regexp
}

var secretPatterns = []secretPattern{
	{"private key", regexp.MustCompile(`-----BEGIN\s+(?:RSA\s+|EC\s+|OPENSSH\s+)?PRIVATE KEY-----`)},
	{"aws access key id", regexp.MustCompile(`AKIA[0-9A-Z]{16}`)},
	{"aws secret access key", regexp.MustCompile(`(?i)aws[_-]?secret[_-]?access[_-]?key\s*[:=]\s*["']?[A-Za-z0-9/+=]{40}["']?`)},
	{"api key assignment", regexp.MustCompile(`(?i)(?:api[_-]?key|apikey|api[_-]?secret)\s*[:=]\s*["']?[A-Za-z0-9/+=_-]{20,}["']?`)},
	{"credential assignment", regexp.MustCompile(`(?i)(?:secret|token|password|passwd|credential)\s*[:=]\s*["'][^"']{8,}["']`)},
	{"bearer token", regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`)},
	{"jwt", regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`)},
	{"github token", regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`)},
	{"slack token", regexp.MustCompile(`xox[bporas]-[A-Za-z0-9-]{10,}`)},
	{"sk- api key", regexp.MustCompile(`sk-(?:ant-|proj-)?[A-Za-z0-9_-]{20,}`)},
	{"hex secret assignment", regexp.MustCompile(`(?i)(?:key|secret|token)\s*[:=]\s*["']?[0-9a-f]{32,}["']?`)},
}

// DefaultSensitivePaths are globs whose diff content is withheld entirely.
var DefaultSensitivePaths = []string{
	"**/.env",
	"**/.env.*",
	"**/*.pem",
	"**/*.key",
	"**/id_rsa",
	"**/*secrets*",
}

// Result is a redacted diff.
type Result struct {
	Text string
	// Count is the number of secrets or withheld lines replaced.
	Count int
}

// Redactor scrubs secrets from diffs.
type Redactor struct {
	sensitivePaths []string
}

// New returns a Redactor withholding files matching sensitivePaths.
// A nil slice means DefaultSensitivePaths.
func New(sensitivePaths []string) *Redactor {
	if sensitivePaths == nil {
		sensitivePaths = DefaultSensitivePaths
	}
	return &Redactor{sensitivePaths: sensitivePaths}
}

// Diff redacts a unified diff.
func (r *Redactor) Diff(diff string) Result {
	lines := strings.Split(diff, "\n")
	var (
		count    int
		withhold bool
		inHunk   bool
	)
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "diff --git "):
			withhold = r.ShouldWithhold(pathFromHeader(line))
			inHunk = false
			continue
		case strings.HasPrefix(line, "@@"):
			inHunk = true
			continue
		}

		if withhold && inHunk && isChangeLine(line) {
			lines[i] = line[:1] + placeholder
			count++
			continue
		}

		redacted, n := Secrets(line)
		if n > 0 {
			lines[i] = redacted
			count += n
		}
	}
	return Result{Text: strings.Join(lines, "\n"), Count: count}
}

// ShouldWithhold reports whether path matches a sensitive glob.
func (r *Redactor) ShouldWithhold(path string) bool {
	if path == "" {
		return false
	}
	for _, pattern := range r.sensitivePaths {
		if matched, err := filepath.Match(pattern, path); err == nil && matched {
			return true
		}
		// "**/x" also matches x in any directory.
		if clean, ok := strings.CutPrefix(pattern, "**/"); ok {
			if matched, err := filepath.Match(clean, filepath.Base(path)); err == nil && matched {
				return true
			}
		}
	}
	return false
}

// Secrets replaces detected secrets in text with [REDACTED] and returns the
// number of replacements.
func Secrets(text string) (string, int) {
	count := 0
	for _, p := range secretPatterns {
		text = p.re.ReplaceAllStringFunc(text, func(string) string {
			count++
			return placeholder
		})
	}
	return text, count
}

// pathFromHeader returns the b/ path of a "diff --git a/x b/x" header.
func pathFromHeader(line string) string {
	idx := strings.LastIndex(line, " b/")
	if idx == -1 {
		return ""
	}
	return line[idx+3:]
}

func isChangeLine(line string) bool {
	if line == "" {
		return false
	}
	switch line[0] {
	case '+', '-', ' ':
		return true
	default:
		return false
	}
}
