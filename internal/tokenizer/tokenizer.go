// Package tokenizer counts tokens the way the remote model does, so prompt
// budgets can be enforced before a request is sent.
package tokenizer

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// FallbackEncoding is used for models tiktoken has no mapping for.
const FallbackEncoding = "cl100k_base"

// Counter encodes text into model tokens and back.
type Counter interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

// Count returns the number of tokens text encodes to.
func Count(c Counter, text string) int {
	if text == "" {
		return 0
	}
	return len(c.Encode(text))
}

var loaderOnce sync.Once

// BPE ranks ship inside the binary; nothing is fetched at runtime.
func useOfflineLoader() {
	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})
}

// Tiktoken is a Counter backed by OpenAI's BPE encodings.
type Tiktoken struct {
	enc      *tiktoken.Tiktoken
	encoding string
}

// ForModel returns the encoding for model, falling back to cl100k_base for
// models tiktoken does not know (ollama, gemini, anthropic, plugins).
func ForModel(model string) (*Tiktoken, error) {
	useOfflineLoader()

	if model != "" {
		if enc, err := tiktoken.EncodingForModel(model); err == nil {
			return &Tiktoken{enc: enc, encoding: model}, nil
		}
	}

	enc, err := tiktoken.GetEncoding(FallbackEncoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s encoding: %w", FallbackEncoding, err)
	}
	return &Tiktoken{enc: enc, encoding: FallbackEncoding}, nil
}

// Encoding names the model or encoding the counter was built for.
func (t *Tiktoken) Encoding() string {
	return t.encoding
}

func (t *Tiktoken) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

func (t *Tiktoken) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}
