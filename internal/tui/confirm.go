// Package tui holds the interactive pieces of the skilldock CLI. The only
// interaction the installer needs is a yes/no confirmation, rendered inline
// rather than as a full-screen program so it composes with normal command
// output.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	colorDanger = lipgloss.Color("#EF4444")
	colorMuted  = lipgloss.Color("#6B7280")

	promptStyle = lipgloss.NewStyle().Bold(true)
	warnStyle   = lipgloss.NewStyle().Foreground(colorDanger)
	hintStyle   = lipgloss.NewStyle().Foreground(colorMuted)
)

// Key bindings for the confirm prompt.
var (
	confirmYesKey = key.NewBinding(
		key.WithKeys("y", "Y"),
		key.WithHelp("y", "confirm"),
	)
	confirmNoKey = key.NewBinding(
		key.WithKeys("n", "N", "esc", "ctrl+c"),
		key.WithHelp("n", "cancel"),
	)
	confirmEnterKey = key.NewBinding(
		key.WithKeys("enter"),
	)
)

// confirmModel is a one-shot inline yes/no prompt. Enter accepts the
// default, which is always No; every confirmation in skilldock guards an
// overwrite or removal.
type confirmModel struct {
	message   string
	confirmed bool
	done      bool
}

func (m confirmModel) Init() tea.Cmd { return nil }

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, confirmYesKey):
		m.confirmed = true
		m.done = true
		return m, tea.Quit
	case key.Matches(keyMsg, confirmNoKey), key.Matches(keyMsg, confirmEnterKey):
		m.confirmed = false
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s %s\n",
		warnStyle.Render("!"),
		promptStyle.Render(m.message),
		hintStyle.Render("[y/N]"))
}

// Confirm shows an inline prompt and reports the user's answer. Any error
// from the terminal counts as a decline.
func Confirm(message string) bool {
	model, err := tea.NewProgram(confirmModel{message: message}).Run()
	if err != nil {
		return false
	}
	final, ok := model.(confirmModel)
	return ok && final.confirmed
}
