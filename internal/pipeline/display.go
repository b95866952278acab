package pipeline

import (
	"time"

	"github.com/felixgeelhaar/please/internal/memory"
)

// Kind tells the renderer what a Display carries.
type Kind string

const (
	KindSuggestion Kind = "suggestion"
	KindInfo       Kind = "info"
	KindMemory     Kind = "memory"
)

// Display is everything the UI layer needs to show a result.
type Display struct {
	Kind     Kind   `json:"kind"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Body     string `json:"body,omitempty"`
	// Command is the cleaned, executable command. Empty unless Kind is
	// KindSuggestion.
	Command string `json:"command,omitempty"`
	// Raw is the model reply before cleaning.
	Raw  string `json:"raw,omitempty"`
	Rows []Row  `json:"rows,omitempty"`
}

// Row is one field/value line of a table.
type Row struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

const (
	SuccessMark = "✓"
	FailureMark = "✗"
)

const timestampLayout = "2006-01-02 15:04:05"

func lastDisplay(rec *memory.Record) *Display {
	if rec == nil {
		return &Display{
			Kind:  KindInfo,
			Title: LastTitle,
			Body:  NoMemoryMessage,
		}
	}

	status := FailureMark
	if rec.Successful {
		status = SuccessMark
	}
	result := ""
	if rec.Result != nil {
		result = *rec.Result
	}

	return &Display{
		Kind:    KindMemory,
		Title:   LastTitle,
		Rows: []Row{
			{Field: "Timestamp", Value: rec.Timestamp.In(time.Local).Format(timestampLayout)},
			{Field: "Query", Value: rec.NaturalCommand},
			{Field: "Command", Value: rec.ShellCommand},
			{Field: "Success", Value: status},
			{Field: "Result", Value: result},
		},
	}
}
