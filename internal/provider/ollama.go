package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/ollama/ollama/api"
)

type OllamaProvider struct {
	client *api.Client
	model  string
}

func NewOllamaProvider(model string) (*OllamaProvider, error) {
	if model == "" {
		model = "llama3.2"
	}

	baseURL := "http://localhost:11434"
	if envURL := os.Getenv("OLLAMA_HOST"); envURL != "" {
		baseURL = envURL
	}
	uri, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid OLLAMA_HOST %q: %w", baseURL, err)
	}
	client := api.NewClient(uri, http.DefaultClient)

	return &OllamaProvider{
		client: client,
		model:  model,
	}, nil
}

func (p *OllamaProvider) Name() string {
	return "ollama"
}

func (p *OllamaProvider) Model() string {
	return p.model
}

func (p *OllamaProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var apiMsgs []api.Message
	for _, m := range req.Messages() {
		apiMsgs = append(apiMsgs, api.Message{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	chatReq := &api.ChatRequest{
		Model:    p.model,
		Messages: apiMsgs,
		Stream:   new(bool), // false
		Options: map[string]any{
			"temperature": req.Temperature,
			"num_predict": req.MaxTokens,
		},
	}

	var respContent string
	var promptTokens, evalTokens int

	err := p.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		respContent += resp.Message.Content
		if resp.Done {
			promptTokens = resp.PromptEvalCount
			evalTokens = resp.EvalCount
		}
		return nil
	})
	if err != nil {
		kind := kindFromTransport(err)
		var statusErr api.StatusError
		if errors.As(err, &statusErr) {
			kind = kindFromStatus(statusErr.StatusCode)
		}
		return nil, newError(p.Name(), kind, fmt.Errorf("ollama chat failed: %w", err))
	}

	return &Response{
		Content: respContent,
		Usage: Usage{
			PromptTokens:     promptTokens,
			CompletionTokens: evalTokens,
			TotalTokens:      promptTokens + evalTokens,
		},
	}, nil
}
