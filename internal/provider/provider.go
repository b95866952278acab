package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a single system/user exchange.
type Request struct {
	System      string  `json:"system"`
	User        string  `json:"user"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// Messages returns the request as a chat transcript.
func (r Request) Messages() []Message {
	var msgs []Message
	if r.System != "" {
		msgs = append(msgs, Message{Role: "system", Content: r.System})
	}
	return append(msgs, Message{Role: "user", Content: r.User})
}

// Response represents the output from the model.
type Response struct {
	Content string `json:"content"`
	Usage   Usage  `json:"usage"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Provider defines the interface for remote text generation.
type Provider interface {
	// Generate sends one request and returns the single completion.
	Generate(ctx context.Context, req Request) (*Response, error)

	// Name returns the provider identifier (e.g., "stub", "openai").
	Name() string
}

// ErrorKind groups provider failures the caller can act on.
type ErrorKind string

const (
	KindAuth      ErrorKind = "auth"
	KindRateLimit ErrorKind = "rate_limit"
	KindNetwork   ErrorKind = "network"
	KindProvider  ErrorKind = "provider"
)

// Error is returned by providers for failed generations.
type Error struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s error: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the kind of a provider error, or KindProvider for
// anything that was not classified.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return kindFromTransport(err)
}

func newError(provider string, kind ErrorKind, err error) *Error {
	return &Error{Provider: provider, Kind: kind, Err: err}
}

func kindFromStatus(code int) ErrorKind {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuth
	case http.StatusTooManyRequests:
		return KindRateLimit
	default:
		return KindProvider
	}
}

func kindFromTransport(err error) ErrorKind {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindNetwork
	}
	return KindProvider
}
