// Package narration asks a hosted text-generation model to describe a matched
// analysis in plain language.
package narration

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

const (
	DefaultMaxTokens = 300

	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string
	Content string
}

// Request mirrors the /api/chat contract: an instruction, conversational turns
// and a bound on the reply length.
type Request struct {
	System    string
	Messages  []Message
	MaxTokens int
}

// Provider is a text-generation backend. A non-nil error is terminal for the
// request; providers must not retry.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

var (
	ErrNotConfigured = errors.New("narration provider not configured")
	ErrNoMessages    = errors.New("narration request has no messages")
	ErrEmptyResponse = errors.New("narration provider returned no text")
)

// Error carries the HTTP status to report and a message fit to show a user.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError normalises any provider failure into an *Error.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var nerr *Error
	if errors.As(err, &nerr) {
		return nerr
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Status: http.StatusGatewayTimeout, Message: "narration request timed out", Err: err}
	case errors.Is(err, ErrNotConfigured):
		return &Error{Status: http.StatusInternalServerError, Message: "narration API key not configured", Err: err}
	case errors.Is(err, ErrNoMessages):
		return &Error{Status: http.StatusBadRequest, Message: "at least one message is required", Err: err}
	default:
		return &Error{Status: http.StatusInternalServerError, Message: "narration failed", Err: err}
	}
}

// Unconfigured is used when no API key is set; every call fails fast.
type Unconfigured struct{}

func (Unconfigured) Name() string { return "none" }

func (Unconfigured) Complete(context.Context, Request) (string, error) {
	return "", ErrNotConfigured
}
