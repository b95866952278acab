// Package tui holds the interactive bubbletea pieces: the spinner shown
// while waiting on the model and the execute confirmation.
package tui

import (
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// TUI forwards progress to a running spinner program.
type TUI struct {
	program *tea.Program
}

func NewTUI(p *tea.Program) *TUI {
	return &TUI{program: p}
}

func (t *TUI) UpdateStatus(status string) {
	t.program.Send(StatusMsg(status))
}

func (t *TUI) Log(msg string) {
	t.program.Send(LogMsg(msg))
}

var (
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

type (
	LogMsg    string
	StatusMsg string
	// DoneMsg stops the spinner.
	DoneMsg struct{}
)

// SpinnerModel shows a spinner and a status line until DoneMsg arrives.
type SpinnerModel struct {
	Spinner  spinner.Model
	Status   string
	Done     bool
	Canceled bool
}

func NewSpinner(status string) SpinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle
	return SpinnerModel{Spinner: s, Status: status}
}

func (m SpinnerModel) Init() tea.Cmd {
	return m.Spinner.Tick
}

func (m SpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.Canceled = true
			return m, tea.Quit
		}
	case StatusMsg:
		m.Status = string(msg)
	case LogMsg:
		return m, tea.Println(string(msg))
	case DoneMsg:
		m.Done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m SpinnerModel) View() string {
	if m.Done || m.Canceled {
		return ""
	}
	return m.Spinner.View() + " " + statusStyle.Render(m.Status) + "\n"
}

// Wait runs fn while a spinner is drawn on out. fn receives a UI bound to
// the spinner. It returns false when the user pressed Ctrl+C. In that case
// cancel is called and Wait still returns only after fn has.
func Wait(in io.Reader, out io.Writer, status string, cancel func(), fn func(t *TUI)) (bool, error) {
	p := tea.NewProgram(NewSpinner(status), tea.WithInput(in), tea.WithOutput(out))
	t := NewTUI(p)

	done := make(chan struct{})
	go func() {
		defer close(done)
		fn(t)
		p.Send(DoneMsg{})
	}()

	final, err := p.Run()
	m, _ := final.(SpinnerModel)
	if err != nil || m.Canceled {
		cancel()
	}
	<-done

	if err != nil {
		return false, err
	}
	return !m.Canceled, nil
}
