// Package gitctx reads the staged diff and repository metadata from git and
// writes commits, by shelling out to the git binary.
//
// [Repo.StagedDiff] returns [NoStagedChanges] instead of an empty string when
// nothing is staged, so callers can test for one sentinel. Configured
// exclude globs (lock files by default) are dropped from the diff unless
// nothing else is staged, and oversized diffs are truncated.
package gitctx
