package scm

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// ErrNoInputBox is returned when there is nowhere to write the message.
var ErrNoInputBox = errors.New("scm: no commit message input available")

// InputBox is the text field the commit message is written into.
type InputBox interface {
	Value() string
	SetValue(v string)
}

// TerminalBox keeps the message in memory and echoes it to w as it grows.
// Appends print only the new suffix, so a streamed message appears token
// by token; any other change reprints the whole value on a new line.
type TerminalBox struct {
	mu    sync.Mutex
	value string
	w     io.Writer
}

// NewTerminalBox returns a box echoing to w. A nil w echoes nothing.
func NewTerminalBox(w io.Writer) *TerminalBox {
	return &TerminalBox{w: w}
}

func (b *TerminalBox) Value() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.value
}

func (b *TerminalBox) SetValue(v string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	old := b.value
	b.value = v
	if b.w == nil || v == "" || v == old {
		return
	}
	if old != "" && strings.HasPrefix(v, old) {
		fmt.Fprint(b.w, v[len(old):])
		return
	}
	if old != "" {
		fmt.Fprintln(b.w)
	}
	fmt.Fprint(b.w, v)
}

// FileBox edits a commit message file such as the one git passes to the
// prepare-commit-msg hook. The file's original content, usually git's
// commented help text, is kept below the generated message.
type FileBox struct {
	mu       sync.Mutex
	path     string
	original string
	value    string
}

// OpenFileBox reads the message file at path.
func OpenFileBox(path string) (*FileBox, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading commit message file: %w", err)
	}
	return &FileBox{path: path, original: string(data)}, nil
}

func (b *FileBox) Value() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.value
}

func (b *FileBox) SetValue(v string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.value = v
}

// Save writes the message followed by the file's original content. Nothing
// is written when the message is empty.
func (b *FileBox) Save() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	msg := strings.TrimSpace(b.value)
	if msg == "" {
		return nil
	}
	content := msg + "\n"
	if orig := strings.TrimLeft(b.original, "\n"); orig != "" {
		content += "\n" + orig
	}
	if err := os.WriteFile(b.path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing commit message file: %w", err)
	}
	return nil
}
