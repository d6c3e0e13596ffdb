// Package review holds the review result types and the parser that turns a
// model's free-text reply into a [Result].
//
// Models are asked for a bare JSON object but often wrap it in markdown
// fences or prose. [Parse] extracts the object defensively and, when that
// fails, degrades to [Default], a passing result, so a malformed reply never
// blocks a commit. [ParseCombined] handles the single-call review+commit
// reply and fails hard instead, because without a commit message there is
// nothing to write.
package review
