package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type GeminiProvider struct {
	client *genai.Client
	model  string
}

func NewGeminiProvider(apiKey, model string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, errors.New("API key is required")
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if model == "" {
		model = "gemini-1.5-flash"
	}

	return &GeminiProvider{
		client: client,
		model:  model,
	}, nil
}

func (p *GeminiProvider) Name() string {
	return "gemini"
}

func (p *GeminiProvider) Model() string {
	return p.model
}

func (p *GeminiProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	geminiModel := p.client.GenerativeModel(p.model)
	geminiModel.SetTemperature(float32(req.Temperature))
	if req.MaxTokens > 0 {
		geminiModel.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if req.System != "" {
		geminiModel.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.System)},
		}
	}

	resp, err := geminiModel.GenerateContent(ctx, genai.Text(req.User))
	if err != nil {
		return nil, newError(p.Name(), kindFromTransport(err), fmt.Errorf("gemini completion failed: %w", err))
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, newError(p.Name(), KindProvider, errors.New("no candidates returned"))
	}

	var contentStr string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			contentStr += string(text)
		}
	}

	var usage Usage
	if resp.UsageMetadata != nil {
		usage = Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	return &Response{
		Content: contentStr,
		Usage:   usage,
	}, nil
}

// Close releases the underlying client connection.
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}
