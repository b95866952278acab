package tui

import (
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	questionStyle = lipgloss.NewStyle().Bold(true)
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// ConfirmModel asks a yes/no question. Anything but y/yes is a no.
type ConfirmModel struct {
	Question string
	Answer   bool
	Done     bool
}

func NewConfirm(question string) ConfirmModel {
	return ConfirmModel{Question: question}
}

func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
		m.Done = true
		return m, tea.Quit
	case tea.KeyRunes:
		switch strings.ToLower(string(key.Runes)) {
		case "y":
			m.Answer = true
			m.Done = true
			return m, tea.Quit
		case "n", "q":
			m.Done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m ConfirmModel) View() string {
	if m.Done {
		answer := "no"
		if m.Answer {
			answer = "yes"
		}
		return questionStyle.Render(m.Question) + " " + answer + "\n"
	}
	return questionStyle.Render(m.Question) + " " + hintStyle.Render("[y/N]") + " "
}

// Confirm asks question on out and reads the answer from in.
func Confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	p := tea.NewProgram(NewConfirm(question), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return false, err
	}
	m, _ := final.(ConfirmModel)
	return m.Answer, nil
}
