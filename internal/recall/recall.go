// Package recall turns the remembered interaction into a short context
// snippet that fits the remote model's token budget.
package recall

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/please/internal/memory"
	"github.com/felixgeelhaar/please/internal/tokenizer"
)

const (
	outputHeader    = "Output of last command:\n"
	truncatedMarker = "[output truncated]"
)

// Budget describes the model's context window.
type Budget struct {
	// Total is the model context ceiling in tokens.
	Total int
	// ReservedForResponse is held back for the model's reply.
	ReservedForResponse int
	// MinResultTokens is the least room worth spending on previous output.
	// Anything smaller would only show a meaningless fragment.
	MinResultTokens int
}

// DefaultBudget matches gpt-3.5-turbo with a 100 token reply.
var DefaultBudget = Budget{
	Total:               4096,
	ReservedForResponse: 100,
	MinResultTokens:     50,
}

// Builder composes the context snippet.
type Builder struct {
	counter      tokenizer.Counter
	budget       Budget
	instructions string
}

// New creates a Builder. instructions is the fixed prompt text the snippet
// is appended to; the snippet is charged as part of instructions+snippet.
func New(counter tokenizer.Counter, budget Budget, instructions string) *Builder {
	return &Builder{
		counter:      counter,
		budget:       budget,
		instructions: instructions,
	}
}

// Remaining returns how many tokens are left for context once the
// instructions, the query and the reply reservation are paid for.
func (b *Builder) Remaining(query string) int {
	return b.budget.Total -
		tokenizer.Count(b.counter, b.instructions) -
		tokenizer.Count(b.counter, query) -
		b.budget.ReservedForResponse
}

// Build returns the context for query given the last remembered record.
// instructions+context and the query together never encode to more than
// Total-ReservedForResponse tokens; when even the basic summary does not
// fit it returns "".
func (b *Builder) Build(last *memory.Record, query string) string {
	if last == nil {
		return ""
	}

	remaining := b.Remaining(query)
	if remaining <= 0 {
		return ""
	}

	summary := Summary(last)
	if b.over(summary, query) > 0 {
		return ""
	}

	if last.Result == nil || *last.Result == "" {
		return summary
	}

	summaryCost := tokenizer.Count(b.counter, summary)
	overhead := tokenizer.Count(b.counter, "\n"+outputHeader) + tokenizer.Count(b.counter, "\n"+truncatedMarker)
	room := remaining - summaryCost - overhead
	if room <= b.budget.MinResultTokens {
		return summary
	}

	result := strings.TrimRight(*last.Result, "\n")
	tokens := b.counter.Encode(result)
	if len(tokens) <= room {
		if out := summary + "\n" + outputHeader + result; b.over(out, query) <= 0 {
			return out
		}
	}

	// Keep the tail: the end of a listing or log is what matters next.
	n := min(room, len(tokens))
	for n > 0 {
		tail := strings.ToValidUTF8(b.counter.Decode(tokens[len(tokens)-n:]), "")
		out := summary + "\n" + outputHeader + tail + "\n" + truncatedMarker
		excess := b.over(out, query)
		if excess <= 0 {
			return out
		}
		// joined text can merge tokens differently than the parts did
		n -= max(1, excess)
	}
	return summary
}

// over returns how many tokens the prompt built around context exceeds the
// budget by. Zero or less means it fits.
func (b *Builder) over(context, query string) int {
	used := tokenizer.Count(b.counter, b.instructions+context) +
		tokenizer.Count(b.counter, query) +
		b.budget.ReservedForResponse
	return used - b.budget.Total
}

// Summary is the two line description of the last command.
func Summary(last *memory.Record) string {
	status := "failed"
	if last.Successful {
		status = "succeeded"
	}
	return fmt.Sprintf("Last command: %s\nStatus: %s", last.ShellCommand, status)
}
