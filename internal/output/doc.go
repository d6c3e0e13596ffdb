// Package output formats code review results and usage statistics for
// display or machine consumption.
//
// Three formats are supported:
//   - text: styled terminal output (default)
//   - json: the full [Report] as indented JSON
//   - markdown: a PR-comment-friendly review summary
//
// Use [GetWriter] to obtain a [Writer] for a format string, then call
// [Writer.Write] with an [io.Writer] and a [*Report]. [WriteReport] handles
// choosing between a file and stdout.
package output
