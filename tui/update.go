package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"vizbot/app/services"
)

// Update implements tea.Model interface
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case eventMsg:
		return m.apply(services.BatchEvent(msg)), waitForEvent(m.events)
	case batchFinishedMsg:
		m.Finished = true
		return m, nil
	}
	return m, nil
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	}
	return m, nil
}
