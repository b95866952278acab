// Package credential encrypts provider API keys before they reach the config
// database. The AES-256-GCM key is derived from the machine and user, so a
// copied database is useless elsewhere.
package credential

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

// EncryptedPrefix marks values as encrypted in storage
const EncryptedPrefix = "enc:v1:"

const salt = "please-credential-manager-v1"

var (
	ErrDecryptionFailed = errors.New("decryption failed")
	ErrInvalidFormat    = errors.New("invalid encrypted format")
)

// Manager encrypts and decrypts single values.
type Manager struct {
	aead cipher.AEAD
}

// NewManager creates a manager keyed to this machine and user.
func NewManager() (*Manager, error) {
	return NewManagerWithKey(deriveKey())
}

// NewManagerWithKey creates a manager from a 32-byte key.
func NewManagerWithKey(key []byte) (*Manager, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &Manager{aead: aead}, nil
}

// Encrypt returns a storable form of plaintext. Empty input stays empty.
func (m *Manager) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, m.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := m.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return EncryptedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Values without the prefix were stored before
// encryption was enabled and are returned unchanged.
func (m *Manager) Decrypt(stored string) (string, error) {
	if !IsEncrypted(stored) {
		return stored, nil
	}

	sealed, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(stored, EncryptedPrefix))
	if err != nil {
		return "", fmt.Errorf("%w: invalid base64: %v", ErrInvalidFormat, err)
	}

	n := m.aead.NonceSize()
	if len(sealed) < n {
		return "", ErrInvalidFormat
	}

	plaintext, err := m.aead.Open(nil, sealed[:n], sealed[n:], nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}

// IsEncrypted checks if a value is already encrypted.
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, EncryptedPrefix)
}

// IsSecretKey reports whether a config key holds a credential, e.g.
// "openai.api_key".
func IsSecretKey(key string) bool {
	k := strings.ToLower(key)
	return strings.HasSuffix(k, "api_key") || strings.HasSuffix(k, ".token")
}

func deriveKey() []byte {
	var entropy strings.Builder

	hostname, _ := os.Hostname()
	entropy.WriteString(hostname)
	home, _ := os.UserHomeDir()
	entropy.WriteString(home)
	entropy.WriteString(runtime.GOOS)
	entropy.WriteString(runtime.GOARCH)
	entropy.WriteString(salt)

	if uid := os.Getuid(); uid != -1 {
		fmt.Fprintf(&entropy, "uid:%d", uid)
	}
	if username := os.Getenv("USER"); username != "" {
		entropy.WriteString(username)
	}

	hash := sha256.Sum256([]byte(entropy.String()))
	return hash[:]
}

// MaskSecret returns a masked version of a secret for display purposes.
// Shows only the first and last 4 characters if the secret is long enough.
func MaskSecret(secret string) string {
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
