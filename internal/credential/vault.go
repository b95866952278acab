package credential

import (
	"fmt"

	"github.com/felixgeelhaar/please/internal/store"
)

// Vault reads and writes config values, encrypting secret keys on the way in.
type Vault struct {
	store store.ConfigStore
	mgr   *Manager
}

func NewVault(s store.ConfigStore, m *Manager) *Vault {
	return &Vault{store: s, mgr: m}
}

// Set stores value under key, encrypted when IsSecretKey(key).
func (v *Vault) Set(key, value string) error {
	if IsSecretKey(key) && !IsEncrypted(value) {
		enc, err := v.mgr.Encrypt(value)
		if err != nil {
			return fmt.Errorf("failed to encrypt %s: %w", key, err)
		}
		value = enc
	}
	return v.store.SetConfig(key, value)
}

// Get returns the plaintext value for key.
func (v *Vault) Get(key string) (string, error) {
	stored, err := v.store.GetConfig(key)
	if err != nil {
		return "", err
	}
	plain, err := v.mgr.Decrypt(stored)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt %s: %w", key, err)
	}
	return plain, nil
}

// Display returns the value for key as it should be printed: secrets are
// masked unless reveal is set.
func (v *Vault) Display(key string, reveal bool) (string, error) {
	plain, err := v.Get(key)
	if err != nil {
		return "", err
	}
	if IsSecretKey(key) && !reveal {
		return MaskSecret(plain), nil
	}
	return plain, nil
}

// Lookup returns the value for key, or "" when it is unset or unreadable.
func (v *Vault) Lookup(key string) string {
	plain, err := v.Get(key)
	if err != nil {
		return ""
	}
	return plain
}
