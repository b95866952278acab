package settings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	yamlPath := filepath.Join(tmpDir, "config.yaml")
	os.WriteFile(yamlPath, []byte("provider: ollama\nmodel: llama3\ntemperature: 0.2\n"), 0600)

	jsonPath := filepath.Join(tmpDir, "config.json")
	os.WriteFile(jsonPath, []byte(`{"provider": "gemini", "max_tokens": 200, "auto_execute": true}`), 0600)

	t.Run("YAML", func(t *testing.T) {
		s, err := Load(yamlPath)
		if err != nil {
			t.Fatalf("Failed to load YAML: %v", err)
		}
		if s.Provider != "ollama" || s.Model != "llama3" || s.Temperature != 0.2 {
			t.Errorf("Unexpected settings: %+v", s)
		}
		if s.MaxTokens != 100 || s.ContextTokens != 4096 {
			t.Error("Expected unset fields to keep their defaults")
		}
	})

	t.Run("JSON", func(t *testing.T) {
		s, err := Load(jsonPath)
		if err != nil {
			t.Fatalf("Failed to load JSON: %v", err)
		}
		if s.Provider != "gemini" || s.MaxTokens != 200 || !s.AutoExecute {
			t.Errorf("Unexpected settings: %+v", s)
		}
		if s.Temperature != 0.7 {
			t.Errorf("Expected default temperature, got %v", s.Temperature)
		}
	})

	t.Run("Missing", func(t *testing.T) {
		s, err := Load(filepath.Join(tmpDir, "nope.yaml"))
		if err != nil {
			t.Fatalf("Expected defaults for missing file, got %v", err)
		}
		if s.Provider != Defaults().Provider {
			t.Error("Expected defaults")
		}
	})

	t.Run("Empty Path", func(t *testing.T) {
		if _, err := Load(""); err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
	})

	t.Run("Invalid Extension", func(t *testing.T) {
		p := filepath.Join(tmpDir, "config.txt")
		os.WriteFile(p, []byte("x"), 0600)
		if _, err := Load(p); err == nil {
			t.Error("Expected error for .txt extension")
		}
	})

	t.Run("Malformed", func(t *testing.T) {
		p := filepath.Join(tmpDir, "bad.json")
		os.WriteFile(p, []byte("{"), 0600)
		if _, err := Load(p); err == nil {
			t.Error("Expected error for malformed JSON")
		}
	})
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	if Find(dir) != "" {
		t.Error("Expected no settings file")
	}

	os.WriteFile(filepath.Join(dir, "config.json"), []byte("{}"), 0600)
	if got := Find(dir); filepath.Base(got) != "config.json" {
		t.Errorf("Expected config.json, got %q", got)
	}

	os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(""), 0600)
	if got := Find(dir); filepath.Base(got) != "config.yaml" {
		t.Errorf("Expected config.yaml to win, got %q", got)
	}
}

func TestHome(t *testing.T) {
	t.Setenv("PLEASE_HOME", "/tmp/please-home")
	h, err := Home()
	if err != nil || h != "/tmp/please-home" {
		t.Errorf("Expected PLEASE_HOME, got %q (%v)", h, err)
	}

	t.Setenv("PLEASE_HOME", "")
	h, err = Home()
	if err != nil {
		t.Fatalf("Home failed: %v", err)
	}
	if filepath.Base(h) != ".please" {
		t.Errorf("Expected ~/.please, got %q", h)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"PLEASE_PROVIDER": "anthropic",
		"PLEASE_MODEL":    "claude-3-5-haiku-latest",
		"PLEASE_TIMEOUT":  "5s",
	}
	s := Defaults()
	s.BaseURL = "http://keep"
	s.ApplyEnv(func(k string) string { return env[k] })

	if s.Provider != "anthropic" || s.Model != "claude-3-5-haiku-latest" {
		t.Errorf("Env not applied: %+v", s)
	}
	if s.BaseURL != "http://keep" {
		t.Error("Unset variables must not clear fields")
	}
	if s.TimeoutDuration() != 5*time.Second {
		t.Errorf("Expected 5s, got %v", s.TimeoutDuration())
	}
}

func TestTimeoutDuration(t *testing.T) {
	s := Defaults()
	if s.TimeoutDuration() != time.Minute {
		t.Errorf("Expected 1m default, got %v", s.TimeoutDuration())
	}
	s.Timeout = "soon"
	if s.TimeoutDuration() != 0 {
		t.Error("Expected zero for invalid timeout")
	}
}

func TestValidate(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		res := Defaults().Validate()
		if !res.Valid {
			t.Errorf("Expected defaults to be valid, got %v", res.Errors)
		}
		if len(res.Warnings) != 0 {
			t.Errorf("Expected no warnings, got %v", res.Warnings)
		}
	})

	tests := []struct {
		name   string
		mutate func(*Settings)
		errSub string
	}{
		{"unknown provider", func(s *Settings) { s.Provider = "skynet" }, "Unknown provider"},
		{"temperature", func(s *Settings) { s.Temperature = 3 }, "Temperature"},
		{"max tokens", func(s *Settings) { s.MaxTokens = 0 }, "max_tokens"},
		{"timeout", func(s *Settings) { s.Timeout = "forever" }, "Invalid timeout"},
		{"context", func(s *Settings) { s.ContextTokens = 50 }, "context_tokens"},
		{"min result", func(s *Settings) { s.MinResultTokens = -1 }, "min_result_tokens"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Defaults()
			tt.mutate(&s)
			res := s.Validate()
			if res.Valid {
				t.Fatal("Expected invalid settings")
			}
			if !strings.Contains(strings.Join(res.Errors, "\n"), tt.errSub) {
				t.Errorf("Expected error containing %q, got %v", tt.errSub, res.Errors)
			}
		})
	}

	// cli and plugin binaries may also come from the config store or PATH,
	// so leaving them unset here is not an error.
	t.Run("Binaries resolved later", func(t *testing.T) {
		for _, p := range []string{"cli", "plugin"} {
			s := Defaults()
			s.Provider = p
			if res := s.Validate(); !res.Valid {
				t.Errorf("%s: expected valid, got %v", p, res.Errors)
			}
		}
	})

	t.Run("Warnings", func(t *testing.T) {
		s := Defaults()
		s.MaxTokens = 2000
		s.ContextTokens = 8192
		s.AutoExecute = true
		res := s.Validate()
		if !res.Valid {
			t.Errorf("Expected valid, got %v", res.Errors)
		}
		if len(res.Warnings) != 2 {
			t.Errorf("Expected 2 warnings, got %v", res.Warnings)
		}
	})
}
