// Commitgenie writes conventional commit messages for staged git changes
// using an OpenAI-compatible chat completion API, optionally reviewing the
// changes first.
//
// Usage:
//
//	commitgenie generate                  # stream a commit message for staged changes
//	commitgenie generate --commit         # ...and run git commit with it
//	commitgenie review-commit             # review, then generate
//	commitgenie models select             # pick a model from the service
//	commitgenie stats show                # token usage
//	commitgenie hook install --review     # generate messages from git's prepare-commit-msg hook
package main
