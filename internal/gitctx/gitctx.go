package gitctx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// NoStagedChanges is returned by StagedDiff when the index matches HEAD.
const NoStagedChanges = "No staged changes."

// DefaultMaxDiffBytes caps the diff sent for review.
const DefaultMaxDiffBytes = 200_000

// DefaultExclude lists generated files that add noise but no meaning.
var DefaultExclude = []string{
	"**/go.sum",
	"**/package-lock.json",
	"**/pnpm-lock.yaml",
	"**/yarn.lock",
	"**/Cargo.lock",
	"**/poetry.lock",
}

// ErrNotRepository is returned by Open outside a git work tree.
var ErrNotRepository = errors.New("not a git repository")

// RepoMeta contains git repository metadata.
type RepoMeta struct {
	Root   string `json:"root"`
	Head   string `json:"head"`
	Branch string `json:"branch"`
}

// Repo is a git work tree.
type Repo struct {
	root         string
	Exclude      []string
	MaxDiffBytes int
}

// Open locates the work tree containing dir. An empty dir means the current
// directory.
func Open(ctx context.Context, dir string) (*Repo, error) {
	root, err := git(ctx, dir, nil, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotRepository, err)
	}
	return &Repo{
		root:         strings.TrimSpace(root),
		Exclude:      DefaultExclude,
		MaxDiffBytes: DefaultMaxDiffBytes,
	}, nil
}

// Meta collects repository metadata.
func (r *Repo) Meta(ctx context.Context) RepoMeta {
	head, err := r.git(ctx, "rev-parse", "HEAD")
	if err != nil {
		head = "" // new repo with no commits
	}
	// symbolic-ref also resolves the branch of a repo with no commits yet.
	branch, err := r.git(ctx, "symbolic-ref", "--quiet", "--short", "HEAD")
	if err != nil {
		branch = "" // detached
	}
	return RepoMeta{
		Root:   r.root,
		Head:   strings.TrimSpace(head),
		Branch: strings.TrimSpace(branch),
	}
}

// StagedDiff returns the diff of index vs HEAD, or NoStagedChanges.
func (r *Repo) StagedDiff(ctx context.Context) (string, error) {
	diff, err := r.git(ctx, "diff", "--cached", "--no-color", "--no-ext-diff")
	if err != nil {
		return "", fmt.Errorf("git diff --cached: %w", err)
	}
	if strings.TrimSpace(diff) == "" {
		return NoStagedChanges, nil
	}

	if len(r.Exclude) > 0 {
		if filtered := filterExcluded(diff, r.Exclude); strings.TrimSpace(filtered) != "" {
			diff = filtered
		}
	}
	if r.MaxDiffBytes > 0 && len(diff) > r.MaxDiffBytes {
		diff = truncate(diff, r.MaxDiffBytes) + "\n... (diff truncated)\n"
	}
	return diff, nil
}

// StagedFiles lists the paths touched by the staged diff.
func (r *Repo) StagedFiles(ctx context.Context) ([]string, error) {
	out, err := r.git(ctx, "diff", "--cached", "--name-only")
	if err != nil {
		return nil, fmt.Errorf("git diff --cached --name-only: %w", err)
	}
	var files []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}

// Commit records the staged changes with message.
func (r *Repo) Commit(ctx context.Context, message string) error {
	if strings.TrimSpace(message) == "" {
		return errors.New("empty commit message")
	}
	if _, err := git(ctx, r.root, strings.NewReader(message), "commit", "-F", "-"); err != nil {
		return fmt.Errorf("git commit: %w", err)
	}
	return nil
}

// HooksDir returns the directory git reads hooks from.
func (r *Repo) HooksDir(ctx context.Context) (string, error) {
	out, err := r.git(ctx, "rev-parse", "--git-path", "hooks")
	if err != nil {
		return "", fmt.Errorf("locating hooks dir: %w", err)
	}
	dir := strings.TrimSpace(out)
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(r.root, dir)
	}
	return dir, nil
}

func (r *Repo) git(ctx context.Context, args ...string) (string, error) {
	return git(ctx, r.root, nil, args...)
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func filterExcluded(diff string, excludes []string) string {
	sections := splitDiffSections(diff)
	var kept []string
	for _, section := range sections {
		path := extractPathFromSection(section)
		if path == "" || !MatchesAny(path, excludes) {
			kept = append(kept, section)
		}
	}
	return strings.Join(kept, "")
}

func splitDiffSections(diff string) []string {
	var sections []string
	var current strings.Builder
	for _, line := range strings.SplitAfter(diff, "\n") {
		if strings.HasPrefix(line, "diff --git") && current.Len() > 0 {
			sections = append(sections, current.String())
			current.Reset()
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		sections = append(sections, current.String())
	}
	return sections
}

// extractPathFromSection returns the new path of a file section, falling
// back to the header for deletions and binary files.
func extractPathFromSection(section string) string {
	var header string
	for _, line := range strings.Split(section, "\n") {
		if strings.HasPrefix(line, "+++ b/") {
			return strings.TrimPrefix(line, "+++ b/")
		}
		if header == "" && strings.HasPrefix(line, "diff --git ") {
			header = line
		}
	}
	if idx := strings.LastIndex(header, " b/"); idx != -1 {
		return header[idx+3:]
	}
	return ""
}

// MatchesAny returns true if the path matches any of the given glob patterns.
func MatchesAny(path string, patterns []string) bool {
	for _, pattern := range patterns {
		matched, err := filepath.Match(pattern, path)
		if err == nil && matched {
			return true
		}
		clean := strings.TrimPrefix(pattern, "**/")
		if clean != pattern {
			matched, err = filepath.Match(clean, filepath.Base(path))
			if err == nil && matched {
				return true
			}
			matched, err = filepath.Match(clean, path)
			if err == nil && matched {
				return true
			}
		}
	}
	return false
}

func git(ctx context.Context, dir string, stdin *strings.Reader, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	if stdin != nil {
		cmd.Stdin = stdin
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return string(out), fmt.Errorf("%w: %s", err, msg)
		}
		return string(out), err
	}
	return string(out), nil
}
