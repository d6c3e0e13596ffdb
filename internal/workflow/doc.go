// Package workflow composes the commit message workflows: validate
// configuration, read the staged diff, optionally review it, then write a
// generated commit message into an input box.
//
// Every operation runs under a token from the shared [abort.Coordinator], so
// starting a second operation cancels the first. Cancellation is never
// reported to the user. Any other failure is logged once with the operation
// name and shown once through the [UI] as a friendly message; the returned
// error is wrapped in [*HandledError] so callers do not report it again.
package workflow
