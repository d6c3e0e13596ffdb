// Package redact scrubs secrets from a staged diff before it is uploaded to
// the completion backend.
//
// Two passes run over the unified diff. Files whose path matches a sensitive
// glob (.env files, key material, anything named like a secrets file) have
// every changed line in their hunks replaced. Every other line is scanned with
// regex heuristics for common credential shapes: provider API keys, cloud
// access keys, bearer tokens, JWTs, private key headers and assignments of
// passwords or tokens. The number of replacements is reported so callers can
// tell the user something was withheld.
package redact
