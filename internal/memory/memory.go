// Package memory persists the single most recent request/command pair.
package memory

import (
	"errors"
	"time"
)

// ErrIncompatible marks stored content that cannot be read back as a Record.
var ErrIncompatible = errors.New("incompatible memory record")

// Record is the one remembered interaction.
type Record struct {
	Timestamp      time.Time
	NaturalCommand string
	ShellCommand   string
	Successful     bool
	Result         *string
}

// NewRecord creates an unexecuted record stamped at second precision.
func NewRecord(now time.Time, natural, shell string) *Record {
	return &Record{
		Timestamp:      now.Truncate(time.Second),
		NaturalCommand: natural,
		ShellCommand:   shell,
	}
}

// Clone returns a deep copy so callers can't mutate a store's copy.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	if r.Result != nil {
		res := *r.Result
		c.Result = &res
	}
	return &c
}

// Store loads and saves the remembered record. Implementations hold at most
// one record; Save replaces whatever was there.
type Store interface {
	// Load returns nil with a nil error when nothing has been remembered.
	Load() (*Record, error)
	Save(r *Record) error
}

// InMemoryStore keeps the record in process. Used by tests and dry runs.
type InMemoryStore struct {
	rec   *Record
	Saves int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Load() (*Record, error) {
	return s.rec.Clone(), nil
}

func (s *InMemoryStore) Save(r *Record) error {
	s.rec = r.Clone()
	s.Saves++
	return nil
}
