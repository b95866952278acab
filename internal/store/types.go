package store

import "errors"

// ErrNotFound is returned by GetConfig for keys that were never set.
var ErrNotFound = errors.New("config key not found")

// Entry is a stored configuration pair.
type Entry struct {
	Key   string
	Value string
}

// ConfigStore persists flat key/value configuration such as provider
// credentials. Values are stored as given; encryption is the caller's job.
type ConfigStore interface {
	SetConfig(key, value string) error
	GetConfig(key string) (string, error)
	DeleteConfig(key string) error
	ListConfig() ([]Entry, error)

	Close() error
}
