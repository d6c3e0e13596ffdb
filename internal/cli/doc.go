// Package cli wires together the Cobra command tree for the commitgenie binary.
//
// It defines the root command and all subcommands (generate, review-commit,
// models, stats, config, cache, hook, version), binds flags, builds the
// workflow orchestrator with its collaborators, and returns deterministic
// exit codes.
package cli
