package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PasswordModel prompts for the password of a secured network.
type PasswordModel struct {
	item  networkItem
	input textinput.Model
	width int
}

// NewPasswordModel creates the prompt, pre-filled with a saved password.
func NewPasswordModel(item networkItem, saved string) *PasswordModel {
	ti := textinput.New()
	ti.Placeholder = "password"
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.CharLimit = 63
	ti.SetValue(saved)
	ti.Focus()
	return &PasswordModel{item: item, input: ti}
}

func (m *PasswordModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *PasswordModel) Update(msg tea.Msg) (Component, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return popViewMsg{} }
		case "enter":
			password := m.input.Value()
			ssid := m.item.SSID
			return m, func() tea.Msg { return connectMsg{ssid: ssid, password: password} }
		case "ctrl+r":
			// Toggle password visibility
			if m.input.EchoMode == textinput.EchoPassword {
				m.input.EchoMode = textinput.EchoNormal
			} else {
				m.input.EchoMode = textinput.EchoPassword
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *PasswordModel) View() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Bold(true).Render(fmt.Sprintf("Connect to %s", m.item.SSID)))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Subtle).Render(m.item.Security))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Subtle).Render("enter: connect • ctrl+r: show/hide • esc: cancel"))

	dialog := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(CurrentTheme.Primary).
		Padding(1, 2)
	if m.width > 8 {
		dialog = dialog.Width(min(60, m.width-8))
	}
	return lipgloss.NewStyle().Margin(1, 2).Render(dialog.Render(b.String()))
}

func (m *PasswordModel) Resize(width, height int) {
	m.width = width
	m.input.Width = max(10, min(50, width-16))
}

func (m *PasswordModel) IsConsumingInput() bool {
	return true
}
