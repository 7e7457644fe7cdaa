package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wifiproxy/wifiproxy/wifi"
)

// Component is the interface for a TUI component.
type Component interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Component, tea.Cmd)
	View() string
	Resize(width, height int)
	// IsConsumingInput reports whether the component wants raw keys, such
	// as while typing into a text field.
	IsConsumingInput() bool
}

// networkItem holds the information for a single network in our list
type networkItem struct {
	wifi.Network
	IsActive bool
	IsSaved  bool
}

func (i networkItem) Title() string { return i.SSID }
func (i networkItem) Description() string {
	return fmt.Sprintf("%d%%", i.Signal)
}
func (i networkItem) FilterValue() string { return i.Title() }

// Bubbletea messages are used to communicate between the main loop and commands
type (
	// From backend
	scanFinishedMsg []wifi.Network
	statusLoadedMsg wifi.ConnectionStatus
	connectedMsg    struct{ ssid, password string }
	disconnectedMsg struct{}
	forgottenMsg    struct{ name string }
	errorMsg        struct{ err error }

	// To main model
	popViewMsg       struct{}
	scanMsg          struct{}
	connectMsg       struct{ ssid, password string }
	disconnectMsg    struct{}
	forgetNetworkMsg struct{ item networkItem }
	showPasswordMsg  struct{ item networkItem }
	toggleRescanMsg  struct{}
)

// --- Commands that interact with the backend ---

func scanNetworks(b wifi.Backend, adapter string) tea.Cmd {
	return func() tea.Msg {
		networks, err := b.Scan(adapter)
		if err != nil {
			return errorMsg{fmt.Errorf("failed to scan: %w", err)}
		}
		return scanFinishedMsg(networks)
	}
}

func loadStatus(b wifi.Backend, adapter string) tea.Cmd {
	return func() tea.Msg {
		status, err := b.Status(adapter)
		if err != nil {
			return errorMsg{fmt.Errorf("failed to load status: %w", err)}
		}
		return statusLoadedMsg(status)
	}
}

func connectNetwork(b wifi.Backend, adapter, ssid, password string) tea.Cmd {
	return func() tea.Msg {
		if err := b.Connect(adapter, ssid, password); err != nil {
			return errorMsg{err}
		}
		return connectedMsg{ssid: ssid, password: password}
	}
}

func disconnectAdapter(b wifi.Backend, adapter string) tea.Cmd {
	return func() tea.Msg {
		if err := b.Disconnect(adapter); err != nil {
			return errorMsg{fmt.Errorf("failed to disconnect: %w", err)}
		}
		return disconnectedMsg{}
	}
}

func forgetNetwork(b wifi.Backend, name string) tea.Cmd {
	return func() tea.Msg {
		if err := b.DeleteConnection(name); err != nil {
			return errorMsg{fmt.Errorf("failed to forget connection: %w", err)}
		}
		return forgottenMsg{name: name}
	}
}
