// Package ui renders pipeline results for the terminal.
package ui

// UI receives progress while a request is in flight.
type UI interface {
	UpdateStatus(status string)
	Log(msg string)
}

// SilentUI drops all progress, used in CI mode and tests.
type SilentUI struct{}

func (s SilentUI) UpdateStatus(status string) {}
func (s SilentUI) Log(msg string)             {}
