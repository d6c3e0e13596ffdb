// Package scm holds the surfaces a generated commit message is written to.
//
// [TerminalBox] echoes a streamed message as it grows. [FileBox] fills the
// message file git hands to the prepare-commit-msg hook.
package scm
