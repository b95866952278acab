package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/felixgeelhaar/please/internal/credential"
	"github.com/felixgeelhaar/please/internal/execute"
	"github.com/felixgeelhaar/please/internal/memory"
	"github.com/felixgeelhaar/please/internal/observe"
	"github.com/felixgeelhaar/please/internal/pipeline"
	"github.com/felixgeelhaar/please/internal/plugin"
	"github.com/felixgeelhaar/please/internal/provider"
	"github.com/felixgeelhaar/please/internal/recall"
	"github.com/felixgeelhaar/please/internal/settings"
	"github.com/felixgeelhaar/please/internal/store"
	"github.com/felixgeelhaar/please/internal/suggest"
	"github.com/felixgeelhaar/please/internal/tokenizer"
)

// environment is everything a command needs from disk and flags.
type environment struct {
	home     string
	settings settings.Settings
	obs      *observe.Observer
	store    *store.SQLiteStore
	vault    *credential.Vault
	closers  []func()
}

func (e *environment) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

func openVault(home string) (*store.SQLiteStore, *credential.Vault, error) {
	s, err := store.NewSQLiteStore(filepath.Join(home, store.DBFileName))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init store: %w", err)
	}
	mgr, err := credential.NewManager()
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	return s, credential.NewVault(s, mgr), nil
}

// setup resolves settings with precedence flags > env > settings file >
// defaults and opens the config store.
func setup(cmd *cobra.Command) (*environment, error) {
	home, err := settings.Home()
	if err != nil {
		return nil, err
	}

	s, err := settings.Load(settings.Find(home))
	if err != nil {
		return nil, err
	}
	s.ApplyEnv(os.Getenv)

	flags := cmd.Flags()
	if flags.Changed("provider") {
		s.Provider = providerName
	}
	if flags.Changed("model") {
		s.Model = modelName
	}
	if flags.Changed("plugin-path") {
		s.PluginPath = pluginPath
	}
	if autoExecute {
		s.AutoExecute = true
	}

	var obs *observe.Observer
	if ciMode {
		obs = observe.NewJSON(cmd.ErrOrStderr(), verbose)
	} else {
		obs = observe.New(cmd.ErrOrStderr(), verbose)
	}

	res := s.Validate()
	for _, w := range res.Warnings {
		obs.Log().Warn().Msg(w)
	}
	if !res.Valid {
		return nil, fmt.Errorf("invalid settings: %s", strings.Join(res.Errors, "; "))
	}

	st, vault, err := openVault(home)
	if err != nil {
		return nil, err
	}

	env := &environment{
		home:     home,
		settings: s,
		obs:      obs,
		store:    st,
		vault:    vault,
	}
	env.closers = append(env.closers, func() { st.Close() })
	return env, nil
}

// secret returns the credential for a provider, preferring the environment.
func (e *environment) secret(envVar, key string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return e.vault.Lookup(key)
}

func (e *environment) newProvider() (provider.Provider, error) {
	s := e.settings
	switch s.Provider {
	case "openai":
		baseURL := s.BaseURL
		if baseURL == "" {
			baseURL = e.vault.Lookup("openai.base_url")
		}
		return provider.NewOpenAIProvider(e.secret("OPENAI_API_KEY", "openai.api_key"), baseURL, s.Model)
	case "ollama":
		return provider.NewOllamaProvider(s.Model)
	case "gemini":
		p, err := provider.NewGeminiProvider(e.secret("GEMINI_API_KEY", "gemini.api_key"), s.Model)
		if err != nil {
			return nil, err
		}
		e.closers = append(e.closers, func() { p.Close() })
		return p, nil
	case "anthropic":
		return provider.NewAnthropicProvider(e.secret("ANTHROPIC_API_KEY", "anthropic.api_key"), s.Model)
	case "cli":
		return e.detectCLIProvider()
	case "plugin":
		path := s.PluginPath
		if path == "" {
			path = e.vault.Lookup("provider.plugin.path")
		}
		if path == "" {
			return nil, fmt.Errorf("plugin provider needs --plugin-path or config provider.plugin.path")
		}
		p, err := plugin.Load(path, nil)
		if err != nil {
			return nil, err
		}
		e.closers = append(e.closers, p.Close)
		return p, nil
	case "stub":
		return provider.NewStubProvider(), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", s.Provider)
	}
}

func (e *environment) detectCLIProvider() (provider.Provider, error) {
	if e.settings.CLIBinary != "" {
		return provider.NewCLIProvider(e.settings.CLIBinary, e.settings.CLIArgs)
	}
	if cliPath := e.vault.Lookup("provider.cli.path"); cliPath != "" {
		return provider.NewCLIProvider(cliPath, e.settings.CLIArgs)
	}

	tools := []string{"claude", "llm", "gemini"}
	for _, t := range tools {
		if path, err := exec.LookPath(t); err == nil {
			return provider.NewCLIProvider(path, e.settings.CLIArgs)
		}
	}
	return nil, fmt.Errorf("no local CLI agents detected (tried %s); set cli_binary or config provider.cli.path", strings.Join(tools, ", "))
}

type modeler interface {
	Model() string
}

// NewRunner wires provider, memory and context builder into a Runner.
func (e *environment) NewRunner(cmd *cobra.Command) (*Runner, error) {
	p, err := e.newProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize provider: %w", err)
	}

	model := e.settings.Model
	if m, ok := p.(modeler); ok {
		model = m.Model()
	}
	counter, err := tokenizer.ForModel(model)
	if err != nil {
		return nil, err
	}
	e.obs.Log().Debug().Str("provider", p.Name()).Str("encoding", counter.Encoding()).Msg("provider ready")

	budget := recall.Budget{
		Total:               e.settings.ContextTokens,
		ReservedForResponse: e.settings.MaxTokens,
		MinResultTokens:     e.settings.MinResultTokens,
	}
	engine := suggest.NewEngine(p,
		suggest.WithTemperature(e.settings.Temperature),
		suggest.WithMaxTokens(e.settings.MaxTokens),
	)
	ctrl := pipeline.New(
		memory.NewFileStore(filepath.Join(e.home, memory.FileName)),
		engine,
		recall.New(counter, budget, suggest.PromptPrefix()),
		e.obs,
	)

	return &Runner{
		Observer:    e.obs,
		Controller:  ctrl,
		Executor:    execute.NewRunner(),
		In:          cmd.InOrStdin(),
		Out:         cmd.OutOrStdout(),
		Err:         cmd.ErrOrStderr(),
		CI:          ciMode,
		AutoExecute: e.settings.AutoExecute,
		Interactive: !ciMode && isTerminal(cmd.InOrStdin()) && isTerminal(cmd.OutOrStdout()),
		Timeout:     e.settings.TimeoutDuration(),
		Status:      fmt.Sprintf("Asking %s...", p.Name()),
	}, nil
}

func isTerminal(v interface{}) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
