// Package cache stores code review results on disk so an unchanged staged
// diff is not sent for review twice.
//
// Entries are keyed by a SHA-256 hash of the model, review mode, review
// instructions and the redacted diff. Each entry stores the parsed review
// result with a creation timestamp; entries older than the TTL are treated
// as misses and removed on read.
//
// The default cache directory is $XDG_CACHE_HOME/commitgenie (or the
// OS-appropriate equivalent).
package cache
