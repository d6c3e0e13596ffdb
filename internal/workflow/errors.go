package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/commitgenie/internal/abort"
	"github.com/dshills/commitgenie/internal/config"
	"github.com/dshills/commitgenie/internal/llm"
	"github.com/dshills/commitgenie/internal/review"
	"github.com/dshills/commitgenie/internal/scm"
)

var (
	// ErrInvalidConfig is returned when required settings are missing.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrReviewRejected is returned when the user stops after a failed review.
	ErrReviewRejected = errors.New("commit stopped after code review")
	// ErrEmptyMessage is returned when the model produced no commit message.
	ErrEmptyMessage = errors.New("failed to generate commit message")
)

// HandledError wraps a failure that has already been shown to the user.
type HandledError struct {
	Op  string
	Err error
}

func (e *HandledError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *HandledError) Unwrap() error { return e.Err }

var missingMessages = map[string]string{
	"service.apiKey":  "API key is required. Set it with: commitgenie config set service.apiKey <key>",
	"service.baseURL": "Base URL is required. Set it with: commitgenie config set service.baseURL <url>",
	"service.model":   "Model is required. Set it with: commitgenie config set service.model <model> or run: commitgenie models select",
}

// validateService reports the first missing service field as ErrInvalidConfig.
func validateService(s config.ServiceConfig, needModel bool) error {
	for _, key := range s.Missing() {
		if key == "service.model" && !needModel {
			continue
		}
		return fmt.Errorf("%w: %s", ErrInvalidConfig, missingMessages[key])
	}
	return nil
}

// Message returns the user-facing text for err.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrInvalidConfig):
		return strings.TrimPrefix(err.Error(), ErrInvalidConfig.Error()+": ")
	case errors.Is(err, scm.ErrNoInputBox):
		return "Unable to find a commit message input."
	case errors.Is(err, review.ErrUnparseable):
		return "The model's combined review could not be read. Try again, or set review.combined to false."
	case errors.Is(err, ErrEmptyMessage):
		return "Failed to generate commit message."
	case errors.Is(err, context.Canceled):
		return "Request was cancelled."
	}

	switch llm.Classify(err) {
	case llm.KindAuthentication:
		return "Invalid API key. Please check your configuration."
	case llm.KindRateLimit:
		return "Rate limit exceeded. Please try again later or check your API quota."
	case llm.KindTimeout:
		return "Request timeout. Please check your network connection and try again."
	case llm.KindNetwork:
		return "Network error. Please check your internet connection and base URL configuration."
	case llm.KindInvalidRequest:
		return "Invalid request. Please check your configuration or try again."
	case llm.KindServerError:
		return "Server error. The API service may be temporarily unavailable. Please try again later."
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return "An unexpected error occurred."
}

// isCancellation reports whether err should be swallowed silently.
func isCancellation(tok *abort.Token, err error) bool {
	return (tok != nil && tok.Cancelled()) || errors.Is(err, context.Canceled)
}
