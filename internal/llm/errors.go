package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// Kind classifies a failed completion call.
type Kind string

const (
	KindAuthentication Kind = "authentication"
	KindRateLimit      Kind = "rate_limit"
	KindTimeout        Kind = "timeout"
	KindNetwork        Kind = "network"
	KindInvalidRequest Kind = "invalid_request"
	KindServerError    Kind = "server_error"
	KindUnknown        Kind = "unknown"
)

// Error is a classified failure from the completion backend or the
// transport underneath it.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("llm: ")
	b.WriteString(string(e.Kind))
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// IsAuthError reports whether err is an authentication failure.
func IsAuthError(err error) bool {
	return Classify(err) == KindAuthentication
}

func kindForStatus(code int) Kind {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return KindAuthentication
	case code == http.StatusTooManyRequests:
		return KindRateLimit
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return KindTimeout
	case code >= 500:
		return KindServerError
	case code >= 400:
		return KindInvalidRequest
	default:
		return KindUnknown
	}
}

// statusError builds an Error from a non-2xx response, reading at most
// 64 KiB of the body for the backend's error message.
func statusError(resp *http.Response) *Error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	msg := strings.TrimSpace(string(body))
	if gjson.ValidBytes(body) {
		if m := gjson.GetBytes(body, "error.message"); m.Exists() && m.String() != "" {
			msg = m.String()
		} else if m := gjson.GetBytes(body, "message"); m.Exists() && m.String() != "" {
			msg = m.String()
		}
	}
	if msg == "" {
		msg = resp.Status
	}
	return &Error{
		Kind:       kindForStatus(resp.StatusCode),
		StatusCode: resp.StatusCode,
		Message:    msg,
	}
}

// transportError wraps a failure that happened before or while reading a
// response body.
func transportError(err error) *Error {
	var le *Error
	if errors.As(err, &le) {
		return le
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Message: "request timed out", Err: err}
	case errors.Is(err, context.Canceled):
		return &Error{Kind: KindUnknown, Message: "request cancelled", Err: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &Error{Kind: KindTimeout, Message: "request timed out", Err: err}
	}
	return &Error{Kind: KindNetwork, Message: "request failed", Err: err}
}

// Classify returns the Kind for any error. Errors that did not come from this
// package are classified by type first and by message text as a fallback.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) {
		if ne.Timeout() {
			return KindTimeout
		}
		return KindNetwork
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "401", "unauthorized", "invalid api key"):
		return KindAuthentication
	case containsAny(msg, "429", "rate limit"):
		return KindRateLimit
	case containsAny(msg, "timeout", "timed out"):
		return KindTimeout
	case containsAny(msg, "network", "connection refused", "no such host", "dial tcp"):
		return KindNetwork
	case containsAny(msg, "400", "bad request", "invalid"):
		return KindInvalidRequest
	case containsAny(msg, "500", "502", "503", "server error"):
		return KindServerError
	default:
		return KindUnknown
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
