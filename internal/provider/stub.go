package provider

import (
	"context"
)

// StubProvider replays scripted responses. Used by tests and --provider stub.
type StubProvider struct {
	Responses []Response
	// Err, when set, is returned by every call.
	Err error
	// Requests records every request received.
	Requests []Request
}

func NewStubProvider(replies ...string) *StubProvider {
	if len(replies) == 0 {
		replies = []string{"```bash\necho 'hello from the stub provider'\n```"}
	}
	s := &StubProvider{}
	for _, r := range replies {
		s.Responses = append(s.Responses, Response{
			Content: r,
			Usage:   Usage{PromptTokens: 100, CompletionTokens: 10, TotalTokens: 110},
		})
	}
	return s
}

func (m *StubProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return nil, m.Err
	}

	// the last response repeats once the script runs out
	resp := m.Responses[0]
	if len(m.Responses) > 1 {
		m.Responses = m.Responses[1:]
	}
	return &resp, nil
}

func (m *StubProvider) Name() string {
	return "stub"
}
