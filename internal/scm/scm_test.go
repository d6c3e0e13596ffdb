package scm

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestTerminalBox_StreamsSuffixes(t *testing.T) {
	var out bytes.Buffer
	b := NewTerminalBox(&out)

	b.SetValue("")
	for _, chunk := range []string{"feat", ": add", " parser"} {
		b.SetValue(b.Value() + chunk)
	}
	if b.Value() != "feat: add parser" {
		t.Errorf("Value = %q", b.Value())
	}
	if out.String() != "feat: add parser" {
		t.Errorf("echoed %q", out.String())
	}

	b.SetValue("fix: other")
	if out.String() != "feat: add parser\nfix: other" {
		t.Errorf("replacement echoed %q", out.String())
	}
}

func TestTerminalBox_NilWriter(t *testing.T) {
	b := NewTerminalBox(nil)
	b.SetValue("x")
	if b.Value() != "x" {
		t.Errorf("Value = %q", b.Value())
	}
}

func TestFileBox_Save(t *testing.T) {
	path := filepath.Join(t.TempDir(), "COMMIT_EDITMSG")
	orig := "\n# Please enter the commit message for your changes.\n"
	if err := os.WriteFile(path, []byte(orig), 0o644); err != nil {
		t.Fatal(err)
	}

	b, err := OpenFileBox(path)
	if err != nil {
		t.Fatalf("OpenFileBox: %v", err)
	}
	if b.Value() != "" {
		t.Errorf("initial Value = %q", b.Value())
	}
	b.SetValue("feat: add parser\n")
	if err := b.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, _ := os.ReadFile(path)
	want := "feat: add parser\n\n# Please enter the commit message for your changes.\n"
	if string(got) != want {
		t.Errorf("file = %q, want %q", got, want)
	}
}

func TestFileBox_EmptyMessageLeavesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "MSG")
	if err := os.WriteFile(path, []byte("# help\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	b, err := OpenFileBox(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "# help\n" {
		t.Errorf("file changed: %q", got)
	}
}

func TestOpenFileBox_Missing(t *testing.T) {
	if _, err := OpenFileBox(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error")
	}
}
