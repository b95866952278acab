package plugin

import (
	"context"
	"errors"
	"testing"

	hcplugin "github.com/hashicorp/go-plugin"

	"github.com/felixgeelhaar/please/internal/provider"
)

func dispense(t *testing.T, impl provider.Provider) provider.Provider {
	t.Helper()
	client, _ := hcplugin.TestPluginRPCConn(t, map[string]hcplugin.Plugin{
		ProviderPluginName: &ProviderRPCPlugin{Impl: impl},
	}, nil)
	t.Cleanup(func() { client.Close() })

	raw, err := client.Dispense(ProviderPluginName)
	if err != nil {
		t.Fatalf("Dispense failed: %v", err)
	}
	p, ok := raw.(provider.Provider)
	if !ok {
		t.Fatalf("Expected provider.Provider, got %T", raw)
	}
	return p
}

func TestProviderRPC_Generate(t *testing.T) {
	stub := provider.NewStubProvider("```bash\nls *.py\n```")
	p := dispense(t, stub)

	if p.Name() != "stub" {
		t.Errorf("Expected 'stub', got '%s'", p.Name())
	}

	resp, err := p.Generate(context.Background(), provider.Request{
		System: "sys", User: "list python files", Temperature: 0.7, MaxTokens: 100,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if resp.Content != "```bash\nls *.py\n```" {
		t.Errorf("Unexpected content %q", resp.Content)
	}
	if resp.Usage.TotalTokens != 110 {
		t.Errorf("Expected usage to cross the wire, got %+v", resp.Usage)
	}

	if len(stub.Requests) != 1 {
		t.Fatalf("Expected 1 request at the plugin, got %d", len(stub.Requests))
	}
	got := stub.Requests[0]
	if got.User != "list python files" || got.System != "sys" || got.MaxTokens != 100 {
		t.Errorf("Request not forwarded intact: %+v", got)
	}
}

func TestProviderRPC_Error(t *testing.T) {
	stub := provider.NewStubProvider()
	stub.Err = &provider.Error{Provider: "stub", Kind: provider.KindRateLimit, Err: errors.New("slow down")}
	p := dispense(t, stub)

	_, err := p.Generate(context.Background(), provider.Request{User: "hi"})
	if err == nil {
		t.Fatal("Expected error")
	}
	if provider.KindOf(err) != provider.KindRateLimit {
		t.Errorf("Expected rate limit kind to survive, got %s (%v)", provider.KindOf(err), err)
	}
}

func TestProviderRPC_Canceled(t *testing.T) {
	p := dispense(t, provider.NewStubProvider())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Generate(ctx, provider.Request{User: "hi"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestLoad_MissingBinary(t *testing.T) {
	if _, err := Load("/nonexistent/please-plugin", nil); err == nil {
		t.Error("Expected error for missing plugin binary")
	}
}
