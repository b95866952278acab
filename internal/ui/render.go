package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/felixgeelhaar/please/internal/guard"
	"github.com/felixgeelhaar/please/internal/pipeline"
)

var (
	primary   = lipgloss.Color("33")  // blue
	secondary = lipgloss.Color("240") // gray
	accent    = lipgloss.Color("86")  // green
	warning   = lipgloss.Color("214") // orange
	danger    = lipgloss.Color("196") // red

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primary)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primary).
			Padding(1, 2)

	commandStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	warningStyle = lipgloss.NewStyle().
			Foreground(warning)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(danger)
)

// Render formats d for a terminal.
func Render(d *pipeline.Display) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(d.Title))
	b.WriteString("\n")

	switch d.Kind {
	case pipeline.KindSuggestion:
		b.WriteString(panelStyle.Render(commandStyle.Render(d.Body)))
		if d.Subtitle != "" {
			b.WriteString("\n")
			b.WriteString(mutedStyle.Render(d.Subtitle))
		}
	case pipeline.KindMemory:
		b.WriteString(renderRows(d.Rows))
	default:
		b.WriteString(mutedStyle.Render(d.Body))
	}

	b.WriteString("\n")
	return b.String()
}

func renderRows(rows []pipeline.Row) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(secondary)).
		Headers("Field", "Value").
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Bold(true).Foreground(primary)
			}
			if col == 0 {
				return s.Foreground(lipgloss.Color("245"))
			}
			return s
		})
	for _, r := range rows {
		t.Row(r.Field, r.Value)
	}
	return t.String()
}

// Warning formats a non-fatal finding about a command.
func Warning(v *guard.Violation) string {
	return warningStyle.Render("⚠ " + v.Message)
}

// Error formats an error for the terminal.
func Error(err error) string {
	return errorStyle.Render(fmt.Sprintf("Error: %v", err))
}

// WriteJSON writes v as indented JSON, the CI output format.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
