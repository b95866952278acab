// Package plugin lets an external binary act as a text-generation provider.
// Host and plugin talk net/rpc through hashicorp/go-plugin.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"net/rpc"
	"os/exec"

	"github.com/hashicorp/go-hclog"
	hcplugin "github.com/hashicorp/go-plugin"

	"github.com/felixgeelhaar/please/internal/provider"
)

// HandshakeConfig is used to handshake between host and plugin.
var HandshakeConfig = hcplugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "PLEASE_PLUGIN_MAGIC_COOKIE",
	MagicCookieValue: "please-provider",
}

// ProviderPluginName is the key a plugin binary registers its provider under.
const ProviderPluginName = "provider"

// PluginMap is the map of plugins we can dispense.
var PluginMap = map[string]hcplugin.Plugin{
	ProviderPluginName: &ProviderRPCPlugin{},
}

// ProviderRPCPlugin serves or consumes a provider.Provider over net/rpc.
type ProviderRPCPlugin struct {
	Impl provider.Provider
}

func (p *ProviderRPCPlugin) Server(*hcplugin.MuxBroker) (interface{}, error) {
	return &ProviderRPCServer{Impl: p.Impl}, nil
}

func (p *ProviderRPCPlugin) Client(_ *hcplugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &ProviderRPCClient{client: c}, nil
}

// GenerateReply carries the result of a remote Generate. Errors travel as
// data so their kind survives the trip.
type GenerateReply struct {
	Response  provider.Response
	ErrKind   provider.ErrorKind
	ErrString string
}

// ProviderRPCServer runs inside the plugin process.
type ProviderRPCServer struct {
	Impl provider.Provider
}

func (s *ProviderRPCServer) Generate(req provider.Request, reply *GenerateReply) error {
	resp, err := s.Impl.Generate(context.Background(), req)
	if err != nil {
		reply.ErrKind = provider.KindOf(err)
		reply.ErrString = err.Error()
		return nil
	}
	reply.Response = *resp
	return nil
}

func (s *ProviderRPCServer) Name(_ interface{}, reply *string) error {
	*reply = s.Impl.Name()
	return nil
}

// ProviderRPCClient is the host-side provider.Provider.
type ProviderRPCClient struct {
	client *rpc.Client
}

func (c *ProviderRPCClient) Generate(ctx context.Context, req provider.Request) (*provider.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var reply GenerateReply
	call := c.client.Go("Plugin.Generate", req, &reply, nil)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-call.Done:
	}

	name := c.Name()
	if call.Error != nil {
		return nil, &provider.Error{Provider: name, Kind: provider.KindNetwork, Err: fmt.Errorf("plugin call failed: %w", call.Error)}
	}
	if reply.ErrString != "" {
		return nil, &provider.Error{Provider: name, Kind: reply.ErrKind, Err: errors.New(reply.ErrString)}
	}
	return &reply.Response, nil
}

func (c *ProviderRPCClient) Name() string {
	var name string
	if err := c.client.Call("Plugin.Name", new(interface{}), &name); err != nil || name == "" {
		return "plugin"
	}
	return name
}

// Provider is a provider backed by a running plugin process.
type Provider struct {
	provider.Provider
	client *hcplugin.Client
}

// Close stops the plugin process.
func (p *Provider) Close() {
	p.client.Kill()
}

// Load launches the plugin binary at path and dispenses its provider.
func Load(path string, logger hclog.Logger) (*Provider, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	client := hcplugin.NewClient(&hcplugin.ClientConfig{
		HandshakeConfig:  HandshakeConfig,
		Plugins:          PluginMap,
		Cmd:              exec.Command(path), // #nosec G204
		AllowedProtocols: []hcplugin.Protocol{hcplugin.ProtocolNetRPC},
		Logger:           logger,
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("failed to start plugin %s: %w", path, err)
	}

	raw, err := rpcClient.Dispense(ProviderPluginName)
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("failed to dispense provider from %s: %w", path, err)
	}

	p, ok := raw.(provider.Provider)
	if !ok {
		client.Kill()
		return nil, fmt.Errorf("plugin %s does not implement a provider", path)
	}
	return &Provider{Provider: p, client: client}, nil
}

// Serve is called from a plugin binary's main to expose impl.
func Serve(impl provider.Provider) {
	hcplugin.Serve(&hcplugin.ServeConfig{
		HandshakeConfig: HandshakeConfig,
		Plugins: map[string]hcplugin.Plugin{
			ProviderPluginName: &ProviderRPCPlugin{Impl: impl},
		},
	})
}
