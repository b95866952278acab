package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio"
)

// FileName is the memory file inside the please home directory.
const FileName = "last_command.json"

// timestamps written without a zone are read as local time
var legacyLayouts = []string{
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
}

// fileRecord is the on-disk shape. Pointer fields let Load tell a missing
// key from a zero value.
type fileRecord struct {
	Timestamp      *string `json:"timestamp"`
	NaturalCommand *string `json:"natural_command"`
	BashCommand    *string `json:"bash_command"`
	Successful     *bool   `json:"successful"`
	Result         *string `json:"result,omitempty"`
}

// FileStore keeps the record as a JSON object at a fixed path.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the file the store reads and writes.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load() (*Record, error) {
	data, err := os.ReadFile(s.path) // #nosec G304
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read memory file: %w", err)
	}

	var fr fileRecord
	if err := json.Unmarshal(data, &fr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIncompatible, err)
	}
	if fr.Timestamp == nil || fr.NaturalCommand == nil || fr.BashCommand == nil || fr.Successful == nil {
		return nil, fmt.Errorf("%w: missing required keys", ErrIncompatible)
	}

	ts, err := parseTimestamp(*fr.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIncompatible, err)
	}

	return &Record{
		Timestamp:      ts,
		NaturalCommand: *fr.NaturalCommand,
		ShellCommand:   *fr.BashCommand,
		Successful:     *fr.Successful,
		Result:         fr.Result,
	}, nil
}

func (s *FileStore) Save(r *Record) error {
	if r == nil {
		return errors.New("nil record")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0750); err != nil {
		return fmt.Errorf("failed to create memory directory: %w", err)
	}

	ts := r.Timestamp.Truncate(time.Second).Format(time.RFC3339)
	fr := fileRecord{
		Timestamp:      &ts,
		NaturalCommand: &r.NaturalCommand,
		BashCommand:    &r.ShellCommand,
		Successful:     &r.Successful,
		Result:         r.Result,
	}
	data, err := json.MarshalIndent(fr, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal memory: %w", err)
	}

	// renameio writes to a temp file in the same directory and renames it
	// over the target, so the previous record survives a crash mid-write.
	if err := renameio.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write memory file: %w", err)
	}
	return nil
}

func parseTimestamp(v string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return ts.Truncate(time.Second), nil
	}
	for _, layout := range legacyLayouts {
		if ts, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return ts.Truncate(time.Second), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", v)
}
