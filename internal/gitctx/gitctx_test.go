package gitctx

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short", "abc", 10, "abc"},
		{"ascii", "abcdef", 3, "abc"},
		{"inside rune", "abécd", 3, "ab"},
		{"rune boundary", "abécd", 4, "abé"},
		{"inside 3-byte rune", "a世b", 2, "a"},
		{"zero", "世", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.n)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncate(%q, %d) produced invalid UTF-8", tt.in, tt.n)
			}
		})
	}
}

func TestFilterExcluded(t *testing.T) {
	diff := `diff --git a/main.go b/main.go
--- a/main.go
+++ b/main.go
@@ -1,3 +1,4 @@
+import "fmt"
diff --git a/go.sum b/go.sum
--- a/go.sum
+++ b/go.sum
@@ -1,3 +1,4 @@
+example.com/x v1.0.0 h1:abc
diff --git a/old/package-lock.json b/old/package-lock.json
deleted file mode 100644
`
	result := filterExcluded(diff, DefaultExclude)
	if strings.Contains(result, "go.sum") || strings.Contains(result, "package-lock.json") {
		t.Errorf("lock files should be excluded:\n%s", result)
	}
	if !strings.Contains(result, "+import \"fmt\"") {
		t.Error("main.go should be kept")
	}
}

func TestMatchesAny(t *testing.T) {
	tests := []struct {
		path     string
		patterns []string
		want     bool
	}{
		{"vendor/lib.go", []string{"vendor/*"}, true},
		{"main.go", []string{"vendor/*"}, false},
		{"go.sum", []string{"**/go.sum"}, true},
		{"tools/go.sum", []string{"**/go.sum"}, true},
		{"main.go", []string{"*.go"}, true},
		{"main.go", nil, false},
	}
	for _, tt := range tests {
		if got := MatchesAny(tt.path, tt.patterns); got != tt.want {
			t.Errorf("MatchesAny(%q, %v) = %v, want %v", tt.path, tt.patterns, got, tt.want)
		}
	}
}

// setupTestRepo creates a temp git repo with one commit and returns its path.
func setupTestRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	t.Setenv("GIT_AUTHOR_NAME", "test")
	t.Setenv("GIT_AUTHOR_EMAIL", "test@test.com")
	t.Setenv("GIT_COMMITTER_NAME", "test")
	t.Setenv("GIT_COMMITTER_EMAIL", "test@test.com")

	run(t, dir, "git", "init")
	run(t, dir, "git", "checkout", "-b", "main")
	writeFile(t, dir, "main.go", "package main\n\nfunc main() {}\n")
	run(t, dir, "git", "add", "-A")
	run(t, dir, "git", "commit", "-m", "init")
	return dir
}

func run(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("command %v failed: %v\n%s", args, err, out)
	}
	return string(out)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestOpen_NotRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	t.Setenv("GIT_CEILING_DIRECTORIES", os.TempDir())
	_, err := Open(context.Background(), t.TempDir())
	if !errors.Is(err, ErrNotRepository) {
		t.Errorf("err = %v, want ErrNotRepository", err)
	}
}

func TestStagedDiff(t *testing.T) {
	dir := setupTestRepo(t)
	ctx := context.Background()

	repo, err := Open(ctx, filepath.Join(dir))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	diff, err := repo.StagedDiff(ctx)
	if err != nil {
		t.Fatalf("StagedDiff: %v", err)
	}
	if diff != NoStagedChanges {
		t.Errorf("clean index diff = %q, want sentinel", diff)
	}

	// Unstaged edits are not part of the staged diff.
	writeFile(t, dir, "main.go", "package main\n\nfunc main() { println(1) }\n")
	if diff, _ = repo.StagedDiff(ctx); diff != NoStagedChanges {
		t.Errorf("unstaged change leaked into staged diff: %q", diff)
	}

	run(t, dir, "git", "add", "main.go")
	writeFile(t, dir, "go.sum", "example.com/x v1.0.0 h1:abc\n")
	run(t, dir, "git", "add", "go.sum")

	diff, err = repo.StagedDiff(ctx)
	if err != nil {
		t.Fatalf("StagedDiff: %v", err)
	}
	if !strings.Contains(diff, "println(1)") {
		t.Errorf("staged change missing:\n%s", diff)
	}
	if strings.Contains(diff, "example.com/x") {
		t.Error("go.sum should be excluded")
	}

	files, err := repo.StagedFiles(ctx)
	if err != nil {
		t.Fatalf("StagedFiles: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("StagedFiles = %v", files)
	}
}

func TestStagedDiff_OnlyExcludedFiles(t *testing.T) {
	dir := setupTestRepo(t)
	ctx := context.Background()
	repo, err := Open(ctx, dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	writeFile(t, dir, "go.sum", "example.com/x v1.0.0 h1:abc\n")
	run(t, dir, "git", "add", "go.sum")

	diff, err := repo.StagedDiff(ctx)
	if err != nil {
		t.Fatalf("StagedDiff: %v", err)
	}
	if !strings.Contains(diff, "go.sum") {
		t.Errorf("only-excluded diff should be kept unfiltered, got %q", diff)
	}
}

func TestStagedDiff_Truncates(t *testing.T) {
	dir := setupTestRepo(t)
	ctx := context.Background()
	repo, err := Open(ctx, dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	repo.MaxDiffBytes = 100

	writeFile(t, dir, "big.txt", strings.Repeat("line of text\n", 100))
	run(t, dir, "git", "add", "big.txt")

	diff, err := repo.StagedDiff(ctx)
	if err != nil {
		t.Fatalf("StagedDiff: %v", err)
	}
	if !strings.HasSuffix(diff, "(diff truncated)\n") || len(diff) > 130 {
		t.Errorf("diff not truncated: %d bytes", len(diff))
	}
}

func TestCommitAndMeta(t *testing.T) {
	dir := setupTestRepo(t)
	ctx := context.Background()
	repo, err := Open(ctx, dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	writeFile(t, dir, "util.go", "package main\n")
	run(t, dir, "git", "add", "util.go")

	msg := "feat: add util\n\n- helper file"
	if err := repo.Commit(ctx, msg); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	got := run(t, dir, "git", "log", "-1", "--format=%B")
	if strings.TrimSpace(got) != msg {
		t.Errorf("commit message = %q, want %q", got, msg)
	}

	if err := repo.Commit(ctx, "  "); err == nil {
		t.Error("expected error for empty message")
	}

	meta := repo.Meta(ctx)
	if meta.Branch != "main" || len(meta.Head) != 40 {
		t.Errorf("meta = %+v", meta)
	}

	hooks, err := repo.HooksDir(ctx)
	if err != nil {
		t.Fatalf("HooksDir: %v", err)
	}
	if !filepath.IsAbs(hooks) || filepath.Base(hooks) != "hooks" {
		t.Errorf("HooksDir = %q", hooks)
	}
}

func TestMeta_UnbornAndDetached(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	ctx := context.Background()
	run(t, dir, "git", "init")
	run(t, dir, "git", "symbolic-ref", "HEAD", "refs/heads/trunk")

	repo, err := Open(ctx, dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	meta := repo.Meta(ctx)
	if meta.Branch != "trunk" || meta.Head != "" {
		t.Errorf("unborn meta = %+v, want branch trunk and no head", meta)
	}

	dir = setupTestRepo(t)
	run(t, dir, "git", "checkout", "--detach")
	repo, err = Open(ctx, dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if meta := repo.Meta(ctx); meta.Branch != "" || len(meta.Head) != 40 {
		t.Errorf("detached meta = %+v", meta)
	}
}

func TestStagedDiff_TruncatesOnRuneBoundary(t *testing.T) {
	dir := setupTestRepo(t)
	ctx := context.Background()
	repo, err := Open(ctx, dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	writeFile(t, dir, "notes.txt", strings.Repeat("日本語のテキスト\n", 50))
	run(t, dir, "git", "add", "notes.txt")

	for n := 150; n < 160; n++ {
		repo.MaxDiffBytes = n
		diff, err := repo.StagedDiff(ctx)
		if err != nil {
			t.Fatalf("StagedDiff: %v", err)
		}
		if !utf8.ValidString(diff) {
			t.Fatalf("MaxDiffBytes=%d: truncated diff is not valid UTF-8", n)
		}
	}
}
