// Package tui is an interactive network picker for the secondary adapter.
package tui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wifiproxy/wifiproxy/internal/log"
	"github.com/wifiproxy/wifiproxy/wifi"
)

// Options configures the TUI.
type Options struct {
	// Adapter is the interface to manage.
	Adapter string
	// SavedPassword returns the saved password for ssid, or "".
	SavedPassword func(ssid string) (string, bool)
	// OnConnected runs after a successful connection, e.g. to save the profile.
	OnConnected func(ssid, password string) error
	// RescanInterval is the auto scan period. Zero means RescanDefault.
	RescanInterval time.Duration
}

// The main model for our TUI application
type model struct {
	stack *ComponentStack
	list  *ListModel

	spinner       spinner.Model
	rescan        ScanSchedule
	backend       wifi.Backend
	opts          Options
	networks      []wifi.Network
	status        wifi.ConnectionStatus
	loading       bool
	statusMessage string
	lastLog       string
}

// NewModel creates the starting state of our application
func NewModel(b wifi.Backend, opts Options) *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(CurrentTheme.Primary)

	listModel := NewListModel(opts.Adapter)

	return &model{
		stack:         NewComponentStack(listModel),
		list:          listModel,
		spinner:       s,
		backend:       b,
		opts:          opts,
		status:        wifi.ConnectionStatus{Interface: opts.Adapter},
		loading:       true,
		statusMessage: "Scanning for networks...",
	}
}

// Init is the first command that is run when the program starts
func (m *model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		loadStatus(m.backend, m.opts.Adapter),
		scanNetworks(m.backend, m.opts.Adapter),
	)
}

func (m *model) isSaved(ssid string) bool {
	if m.opts.SavedPassword == nil {
		return false
	}
	_, ok := m.opts.SavedPassword(ssid)
	return ok
}

func (m *model) activeSSID() string {
	if m.status.Connection == nil || m.status.Kind() != wifi.StateConnected {
		return ""
	}
	return *m.status.Connection
}

func (m *model) refreshList() tea.Cmd {
	return m.list.SetNetworks(m.networks, m.activeSSID(), m.isSaved)
}

// Update handles all incoming messages and updates the model accordingly
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// Global messages that are not passed to components
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.stack.Resize(msg.Width, msg.Height-4)
		return m, nil
	case popViewMsg:
		m.stack.Pop()
		return m, nil
	case errorMsg:
		m.loading = false
		m.statusMessage = ""
		return m, m.stack.Push(NewErrorModel(msg.err))
	case log.LogMsg:
		if msg.Level >= slog.LevelWarn {
			m.lastLog = msg.Message
		}
		return m, nil
	case toggleRescanMsg:
		enabled, cmd := m.rescan.Toggle(m.opts.RescanInterval)
		if enabled {
			m.statusMessage = "Auto scan on"
		} else {
			m.statusMessage = "Auto scan off"
		}
		return m, cmd
	case rescanTickMsg:
		return m, m.rescan.Update(msg)
	case scanMsg:
		if m.loading && m.rescan.Enabled() {
			// Skip a periodic scan while another action is running
			return m, nil
		}
		m.loading = true
		m.statusMessage = "Scanning for networks..."
		return m, scanNetworks(m.backend, m.opts.Adapter)
	case scanFinishedMsg:
		m.loading = false
		m.statusMessage = ""
		m.networks = msg
		return m, m.refreshList()
	case statusLoadedMsg:
		m.status = wifi.ConnectionStatus(msg)
		return m, m.refreshList()
	case showPasswordMsg:
		saved := ""
		if m.opts.SavedPassword != nil {
			saved, _ = m.opts.SavedPassword(msg.item.SSID)
		}
		return m, m.stack.Push(NewPasswordModel(msg.item, saved))
	case connectMsg:
		if _, ok := m.stack.Top().(*PasswordModel); ok {
			m.stack.Pop()
		}
		m.loading = true
		m.statusMessage = fmt.Sprintf("Connecting to '%s'...", msg.ssid)
		return m, connectNetwork(m.backend, m.opts.Adapter, msg.ssid, msg.password)
	case connectedMsg:
		m.loading = false
		m.statusMessage = fmt.Sprintf("Connected to '%s'", msg.ssid)
		if m.opts.OnConnected != nil {
			if err := m.opts.OnConnected(msg.ssid, msg.password); err != nil {
				slog.Warn("could not save network", "ssid", msg.ssid, "err", err)
			}
		}
		return m, loadStatus(m.backend, m.opts.Adapter)
	case disconnectMsg:
		m.loading = true
		m.statusMessage = fmt.Sprintf("Disconnecting %s...", m.opts.Adapter)
		return m, disconnectAdapter(m.backend, m.opts.Adapter)
	case disconnectedMsg:
		m.loading = false
		m.statusMessage = "Disconnected"
		return m, loadStatus(m.backend, m.opts.Adapter)
	case forgetNetworkMsg:
		m.loading = true
		m.statusMessage = fmt.Sprintf("Forgetting '%s'...", msg.item.SSID)
		return m, forgetNetwork(m.backend, msg.item.SSID)
	case forgottenMsg:
		m.loading = false
		m.statusMessage = fmt.Sprintf("Forgot '%s'", msg.name)
		return m, loadStatus(m.backend, m.opts.Adapter)
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	// Delegate to the component on the stack
	cmds = append(cmds, m.stack.Update(msg))

	// Spinner update
	var spinnerCmd tea.Cmd
	m.spinner, spinnerCmd = m.spinner.Update(msg)
	cmds = append(cmds, spinnerCmd)

	return m, tea.Batch(cmds...)
}

// statusLine summarizes the adapter's connection.
func (m *model) statusLine() string {
	parts := []string{m.opts.Adapter, m.status.Kind().String()}
	if m.status.Connection != nil {
		parts = append(parts, *m.status.Connection)
	}
	if m.status.IPv4Address != nil {
		addr := *m.status.IPv4Address
		if m.status.Gateway != nil {
			addr += " via " + *m.status.Gateway
		}
		parts = append(parts, addr)
	}
	color := CurrentTheme.Subtle
	if m.status.Kind() == wifi.StateConnected {
		color = CurrentTheme.Success
	}
	return lipgloss.NewStyle().Foreground(color).Render(strings.Join(parts, " · "))
}

// View renders the UI based on the current model state
func (m *model) View() string {
	var s strings.Builder
	s.WriteString(lipgloss.NewStyle().Margin(1, 2, 0).Render(m.statusLine()))
	s.WriteString(m.stack.View())

	primary := lipgloss.NewStyle().Foreground(CurrentTheme.Primary)
	if m.loading {
		s.WriteString(fmt.Sprintf("\n  %s %s", m.spinner.View(), primary.Render(m.statusMessage)))
	} else if m.statusMessage != "" {
		s.WriteString(fmt.Sprintf("\n  %s", primary.Render(m.statusMessage)))
	}
	if m.lastLog != "" {
		s.WriteString("\n  " + lipgloss.NewStyle().Foreground(CurrentTheme.Error).Render(m.lastLog))
	}

	return s.String()
}

// Run starts the TUI and blocks until the user quits.
func Run(b wifi.Backend, opts Options) error {
	p := tea.NewProgram(NewModel(b, opts), tea.WithAltScreen())

	logs := make(chan tea.Msg, 16)
	done := make(chan struct{})
	log.SetOutput(logs)
	defer func() {
		log.SetOutput(nil)
		close(done)
	}()
	go func() {
		for {
			select {
			case msg := <-logs:
				p.Send(msg)
			case <-done:
				return
			}
		}
	}()

	_, err := p.Run()
	return err
}
