// Package prompt builds the chat messages sent to the completion backend.
//
// Every builder returns exactly two messages: a system message carrying the
// instructions and a user message carrying the diff. An empty diff is sent
// as a fixed placeholder so the model is never handed a blank turn.
package prompt
