// Package settings loads user preferences from $PLEASE_HOME/config.yaml
// (or .yml/.json) and the environment.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Providers lists the accepted provider names.
var Providers = []string{"openai", "ollama", "gemini", "anthropic", "cli", "plugin", "stub"}

// Settings are the user-tunable knobs. Zero values are never used directly:
// Load starts from Defaults and decodes over it.
type Settings struct {
	Provider    string  `json:"provider" yaml:"provider"`
	Model       string  `json:"model" yaml:"model"`
	BaseURL     string  `json:"base_url" yaml:"base_url"`
	Temperature float64 `json:"temperature" yaml:"temperature"`
	MaxTokens   int     `json:"max_tokens" yaml:"max_tokens"`
	// Timeout bounds the remote call, e.g. "60s".
	Timeout string `json:"timeout" yaml:"timeout"`

	ContextTokens   int `json:"context_tokens" yaml:"context_tokens"`
	MinResultTokens int `json:"min_result_tokens" yaml:"min_result_tokens"`

	AutoExecute bool `json:"auto_execute" yaml:"auto_execute"`

	PluginPath string   `json:"plugin_path" yaml:"plugin_path"`
	CLIBinary  string   `json:"cli_binary" yaml:"cli_binary"`
	CLIArgs    []string `json:"cli_args" yaml:"cli_args"`
}

// ValidationResult represents the outcome of a validation pass.
type ValidationResult struct {
	Valid    bool
	Warnings []string
	Errors   []string
}

func Defaults() Settings {
	return Settings{
		Provider:        "openai",
		Temperature:     0.7,
		MaxTokens:       100,
		Timeout:         "60s",
		ContextTokens:   4096,
		MinResultTokens: 50,
	}
}

// Home returns $PLEASE_HOME, or ~/.please.
func Home() (string, error) {
	if h := os.Getenv("PLEASE_HOME"); h != "" {
		return h, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home dir: %w", err)
	}
	return filepath.Join(home, ".please"), nil
}

// Find returns the first settings file present in dir, or "".
func Find(dir string) string {
	for _, name := range []string{"config.yaml", "config.yml", "config.json"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Load reads settings from path over the defaults. An empty path or a
// missing file yields the defaults.
func Load(path string) (Settings, error) {
	s := Defaults()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path) // #nosec G304
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("failed to read settings file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, &s); err != nil {
			return s, fmt.Errorf("failed to unmarshal JSON settings: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &s); err != nil {
			return s, fmt.Errorf("failed to unmarshal YAML settings: %w", err)
		}
	default:
		return s, fmt.Errorf("unsupported settings format: %s (use .json or .yaml)", ext)
	}
	return s, nil
}

// ApplyEnv overrides fields from PLEASE_* variables.
func (s *Settings) ApplyEnv(getenv func(string) string) {
	if v := getenv("PLEASE_PROVIDER"); v != "" {
		s.Provider = v
	}
	if v := getenv("PLEASE_MODEL"); v != "" {
		s.Model = v
	}
	if v := getenv("PLEASE_BASE_URL"); v != "" {
		s.BaseURL = v
	}
	if v := getenv("PLEASE_TIMEOUT"); v != "" {
		s.Timeout = v
	}
	if v := getenv("PLEASE_PLUGIN_PATH"); v != "" {
		s.PluginPath = v
	}
}

// TimeoutDuration parses Timeout. Invalid or empty values yield zero, which
// means no limit.
func (s Settings) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// Validate checks the settings for usable values.
func (s Settings) Validate() ValidationResult {
	res := ValidationResult{
		Valid:    true,
		Warnings: []string{},
		Errors:   []string{},
	}
	fail := func(msg string) {
		res.Valid = false
		res.Errors = append(res.Errors, msg)
	}

	known := false
	for _, p := range Providers {
		if p == s.Provider {
			known = true
			break
		}
	}
	if !known {
		fail(fmt.Sprintf("Unknown provider %q (expected one of %s)", s.Provider, strings.Join(Providers, ", ")))
	}

	if s.Temperature < 0 || s.Temperature > 2 {
		fail("Temperature must be between 0 and 2")
	}
	if s.MaxTokens <= 0 {
		fail("max_tokens must be positive")
	} else if s.MaxTokens > 1000 {
		res.Warnings = append(res.Warnings, "max_tokens is large for a single command; replies may include explanations")
	}

	if s.Timeout != "" {
		if d, err := time.ParseDuration(s.Timeout); err != nil || d < 0 {
			fail(fmt.Sprintf("Invalid timeout %q", s.Timeout))
		}
	}

	if s.ContextTokens <= s.MaxTokens {
		fail("context_tokens must be larger than max_tokens")
	}
	if s.MinResultTokens < 0 {
		fail("min_result_tokens cannot be negative")
	}

	if s.AutoExecute {
		res.Warnings = append(res.Warnings, "auto_execute is on; suggested commands run without confirmation")
	}

	return res
}
