package credential

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func testManager(t *testing.T, fill byte) *Manager {
	t.Helper()
	m, err := NewManagerWithKey(bytes.Repeat([]byte{fill}, 32))
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}
	return m
}

func TestManager_EncryptDecrypt(t *testing.T) {
	manager, err := NewManager()
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	testCases := []struct {
		name      string
		plaintext string
	}{
		{"empty string", ""},
		{"openai key", "sk-1234567890abcdef"},
		{"long key", strings.Repeat("a", 1000)},
		{"unicode content", "clé-🔑-キー"},
		{"special chars", "key!@#$%^&*()_+-=[]{}|;':\",./<>?"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			encrypted, err := manager.Encrypt(tc.plaintext)
			if err != nil {
				t.Fatalf("encrypt failed: %v", err)
			}

			if tc.plaintext == "" {
				if encrypted != "" {
					t.Errorf("empty string should not be encrypted, got: %s", encrypted)
				}
				return
			}

			if !IsEncrypted(encrypted) {
				t.Errorf("encrypted value should have prefix, got: %s", encrypted)
			}
			if strings.Contains(encrypted, tc.plaintext) {
				t.Error("encrypted value should not contain the plaintext")
			}

			decrypted, err := manager.Decrypt(encrypted)
			if err != nil {
				t.Fatalf("decrypt failed: %v", err)
			}
			if decrypted != tc.plaintext {
				t.Errorf("decrypted value mismatch: got %q, want %q", decrypted, tc.plaintext)
			}
		})
	}
}

func TestManager_DecryptPlaintext(t *testing.T) {
	manager := testManager(t, 1)

	result, err := manager.Decrypt("sk-not-encrypted")
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	if result != "sk-not-encrypted" {
		t.Errorf("plaintext should pass through unchanged, got %q", result)
	}
}

func TestManager_DecryptInvalid(t *testing.T) {
	manager := testManager(t, 1)

	testCases := []struct {
		name  string
		input string
		want  error
	}{
		{"invalid base64", EncryptedPrefix + "not-valid-base64!!!", ErrInvalidFormat},
		{"too short", EncryptedPrefix + "YWJj", ErrInvalidFormat},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := manager.Decrypt(tc.input)
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestManager_WrongKey(t *testing.T) {
	enc, err := testManager(t, 1).Encrypt("sk-secret-value")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	if _, err := testManager(t, 2).Decrypt(enc); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestNewManagerWithKey_BadLength(t *testing.T) {
	if _, err := NewManagerWithKey([]byte("short")); err == nil {
		t.Error("expected error for short key")
	}
}

func TestManager_DifferentNonces(t *testing.T) {
	manager := testManager(t, 3)

	enc1, _ := manager.Encrypt("test-api-key")
	enc2, _ := manager.Encrypt("test-api-key")
	if enc1 == enc2 {
		t.Error("same plaintext should produce different ciphertext")
	}

	dec1, _ := manager.Decrypt(enc1)
	dec2, _ := manager.Decrypt(enc2)
	if dec1 != "test-api-key" || dec2 != "test-api-key" {
		t.Error("both should decrypt to original plaintext")
	}
}

func TestIsEncrypted(t *testing.T) {
	testCases := map[string]bool{
		"":                     false,
		"sk-plaintext":         false,
		EncryptedPrefix + "xx": true,
		"enc:wrong:prefix":     false,
	}
	for in, want := range testCases {
		if got := IsEncrypted(in); got != want {
			t.Errorf("IsEncrypted(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestIsSecretKey(t *testing.T) {
	testCases := map[string]bool{
		"openai.api_key":    true,
		"gemini.API_KEY":    true,
		"anthropic.api_key": true,
		"github.token":      true,
		"provider":          false,
		"model":             false,
		"openai.base_url":   false,
	}
	for in, want := range testCases {
		if got := IsSecretKey(in); got != want {
			t.Errorf("IsSecretKey(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestMaskSecret(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"", "****"},
		{"short", "****"},
		{"12345678", "****"},
		{"123456789", "1234...6789"},
		{"sk-1234567890abcdef", "sk-1...cdef"},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			if got := MaskSecret(tc.input); got != tc.expected {
				t.Errorf("MaskSecret(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}
