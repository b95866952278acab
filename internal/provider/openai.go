package provider

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is the model used when none is configured.
const DefaultOpenAIModel = openai.GPT3Dot5Turbo

type OpenAIProvider struct {
	client *openai.Client
	model  string
}

func NewOpenAIProvider(apiKey, baseURL, model string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, errors.New("API key is required")
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	client := openai.NewClientWithConfig(config)
	if model == "" {
		model = DefaultOpenAIModel
	}

	return &OpenAIProvider{
		client: client,
		model:  model,
	}, nil
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Model returns the configured model name.
func (p *OpenAIProvider) Model() string {
	return p.model
}

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	msgs := req.Messages()
	reqMsgs := make([]openai.ChatCompletionMessage, len(msgs))
	for i, m := range msgs {
		reqMsgs[i] = openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		}
	}

	resp, err := p.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:       p.model,
			Messages:    reqMsgs,
			Temperature: float32(req.Temperature),
			MaxTokens:   req.MaxTokens,
		},
	)
	if err != nil {
		return nil, newError(p.Name(), openAIKind(err), fmt.Errorf("openai completion failed: %w", err))
	}
	if len(resp.Choices) == 0 {
		return nil, newError(p.Name(), KindProvider, errors.New("no choices returned"))
	}

	return &Response{
		Content: resp.Choices[0].Message.Content,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

func openAIKind(err error) ErrorKind {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return kindFromStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return kindFromStatus(reqErr.HTTPStatusCode)
	}
	return kindFromTransport(err)
}
