package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	confirmLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	confirmHintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// ConfirmResult holds the outcome of a yes/no prompt.
type ConfirmResult struct {
	Confirmed bool
	Aborted   bool
}

type confirmModel struct {
	message  string
	selected bool // true = Yes
	done     bool
	result   ConfirmResult
}

func newConfirmModel(message string) confirmModel {
	// Destructive prompts default to No.
	return confirmModel{message: message, selected: false}
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.result.Aborted = true
			m.done = true
			return m, tea.Quit

		case "left", "right", "tab", "h", "l":
			m.selected = !m.selected
			return m, nil

		case "y", "Y":
			m.result.Confirmed = true
			m.done = true
			return m, tea.Quit

		case "n", "N":
			m.result.Confirmed = false
			m.done = true
			return m, tea.Quit

		case "enter":
			m.result.Confirmed = m.selected
			m.done = true
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m confirmModel) View() string {
	var sb strings.Builder

	sb.WriteString(confirmLabelStyle.Render(m.message) + "\n\n")

	yes, no := "  Yes  ", "  No  "
	if m.selected {
		yes = confirmLabelStyle.Render("▸ Yes ")
	} else {
		no = confirmLabelStyle.Render("▸ No ")
	}
	sb.WriteString(fmt.Sprintf("  %s %s\n\n", yes, no))
	sb.WriteString(confirmHintStyle.Render("y/n to answer • enter to confirm • esc to cancel"))

	return sb.String()
}

// Confirm shows a yes/no prompt and blocks until answered.
func Confirm(message string) (ConfirmResult, error) {
	p := tea.NewProgram(newConfirmModel(message))
	final, err := p.Run()
	if err != nil {
		return ConfirmResult{}, err
	}
	if m, ok := final.(confirmModel); ok {
		return m.result, nil
	}
	return ConfirmResult{}, nil
}
