package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSQLiteStore(t *testing.T) {
	tmpDir, _ := os.MkdirTemp("", "store-test-*")
	defer os.RemoveAll(tmpDir)

	dbPath := filepath.Join(tmpDir, "nested", DBFileName)

	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer s.Close()

	t.Run("Set and Get", func(t *testing.T) {
		if err := s.SetConfig("provider", "ollama"); err != nil {
			t.Fatalf("SetConfig failed: %v", err)
		}
		got, err := s.GetConfig("provider")
		if err != nil {
			t.Fatalf("GetConfig failed: %v", err)
		}
		if got != "ollama" {
			t.Errorf("Expected 'ollama', got '%s'", got)
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		s.SetConfig("model", "llama3")
		s.SetConfig("model", "llama3.2")
		got, _ := s.GetConfig("model")
		if got != "llama3.2" {
			t.Errorf("Expected 'llama3.2', got '%s'", got)
		}
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := s.GetConfig("nope")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		entries, err := s.ListConfig()
		if err != nil {
			t.Fatalf("ListConfig failed: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("Expected 2 entries, got %d", len(entries))
		}
		if entries[0].Key != "model" || entries[1].Key != "provider" {
			t.Errorf("Expected sorted keys, got %+v", entries)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := s.DeleteConfig("model"); err != nil {
			t.Fatalf("DeleteConfig failed: %v", err)
		}
		if _, err := s.GetConfig("model"); !errors.Is(err, ErrNotFound) {
			t.Error("Expected key to be gone")
		}
		if err := s.DeleteConfig("model"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound deleting twice, got %v", err)
		}
	})

	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("Expected database file: %v", err)
	}
}

func TestSQLiteStore_Persists(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), DBFileName)

	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	s.SetConfig("openai.api_key", "enc:v1:abc")
	s.Close()

	s, err = NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer s.Close()
	got, err := s.GetConfig("openai.api_key")
	if err != nil || got != "enc:v1:abc" {
		t.Errorf("Expected persisted value, got %q (%v)", got, err)
	}
}

func TestSQLiteStore_InMemory(t *testing.T) {
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer s.Close()

	s.SetConfig("k", "v")
	if got, _ := s.GetConfig("k"); got != "v" {
		t.Errorf("Expected 'v', got '%s'", got)
	}
}
