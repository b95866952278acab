// Package suggest turns a natural-language request into a shell command
// through a text-generation provider.
package suggest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/please/internal/provider"
)

// Defaults for the completion request.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 100
)

// ErrSuggestionFailed is matched by every error returned from Suggest.
var ErrSuggestionFailed = errors.New("suggestion failed")

// Error describes a failed suggestion.
type Error struct {
	Kind provider.ErrorKind
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case provider.KindAuth:
		return fmt.Sprintf("suggestion failed: authentication rejected: %v", e.Err)
	case provider.KindRateLimit:
		return fmt.Sprintf("suggestion failed: rate limited: %v", e.Err)
	case provider.KindNetwork:
		return fmt.Sprintf("suggestion failed: network error: %v", e.Err)
	default:
		return fmt.Sprintf("suggestion failed: %v", e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == ErrSuggestionFailed
}

const basePrompt = `You are a helpful CLI assistant that converts natural language requests into bash commands.

Rules:
- Reply with exactly one fenced code block tagged bash and nothing else. No explanations.
- If the request is a question, answer it with an echo command, for example: echo "The capital of France is Paris"
- If the request is an action, reply with the literal command that performs it.
- If multiple steps are needed, join them with &&.
- If a command could be dangerous or destructive, reply with an echo command that prints a warning instead of the command.`

const contextHeader = "\n\nContext from the previous command:\n"

// SystemPrompt returns the instructions sent with every request. The context
// section is left out when prior is empty.
func SystemPrompt(prior string) string {
	if strings.TrimSpace(prior) == "" {
		return basePrompt
	}
	return PromptPrefix() + prior
}

// PromptPrefix is the fixed text that precedes a non-empty context, so that
// SystemPrompt(prior) == PromptPrefix()+prior. Context budgets charge it.
func PromptPrefix() string {
	return basePrompt + contextHeader
}

// Engine asks a provider for one command per request.
type Engine struct {
	provider    provider.Provider
	temperature float64
	maxTokens   int
}

// Option configures an Engine.
type Option func(*Engine)

func WithTemperature(t float64) Option {
	return func(e *Engine) { e.temperature = t }
}

func WithMaxTokens(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxTokens = n
		}
	}
}

func NewEngine(p provider.Provider, opts ...Option) *Engine {
	e := &Engine{
		provider:    p,
		temperature: DefaultTemperature,
		maxTokens:   DefaultMaxTokens,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Provider returns the backing provider.
func (e *Engine) Provider() provider.Provider {
	return e.provider
}

// Suggest returns the raw model reply for query. Use Clean to extract the
// command from it.
func (e *Engine) Suggest(ctx context.Context, query, prior string) (string, error) {
	resp, err := e.provider.Generate(ctx, provider.Request{
		System:      SystemPrompt(prior),
		User:        query,
		Temperature: e.temperature,
		MaxTokens:   e.maxTokens,
	})
	if err != nil {
		return "", &Error{Kind: provider.KindOf(err), Err: err}
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", &Error{Kind: provider.KindProvider, Err: fmt.Errorf("%s returned an empty reply", e.provider.Name())}
	}
	return strings.TrimSpace(resp.Content), nil
}
