// Package llm is the client for OpenAI-compatible chat-completion endpoints.
//
// It issues exactly one request shape: an ordered list of chat messages with
// temperature 0, answered either as one complete string ([Client.Complete])
// or as an incremental stream of text deltas ([Client.Stream]). Both calls
// merge the caller's cancellation with a per-call timeout, and both report
// token usage to an optional [UsageRecorder] when the backend returns it.
//
// Backends disagree on how cached prompt tokens are reported; every known
// payload shape is normalized into a single [Usage] value. Transport and
// HTTP failures are returned as [*Error] values carrying a [Kind] so callers
// can show one friendly message per failure class.
package llm
