package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wifiproxy/wifiproxy/wifi"
)

const ssidColumnWidth = 32

// itemDelegate is our custom list delegate
type itemDelegate struct {
	list.DefaultDelegate
}

func newItemDelegate() itemDelegate {
	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	d.SetHeight(1)
	d.SetSpacing(0)
	return itemDelegate{DefaultDelegate: d}
}

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(networkItem)
	if !ok {
		// Fallback to default render for any other item types
		d.DefaultDelegate.Render(w, m, index, listItem)
		return
	}

	icon := "🔒 "
	if i.IsOpen() {
		icon = "🔓 "
	}
	title := truncate(i.SSID, ssidColumnWidth-lipgloss.Width(icon))
	title = icon + title
	padding := strings.Repeat(" ", max(0, ssidColumnWidth-lipgloss.Width(title)))

	var titleStyle lipgloss.Style
	switch {
	case i.IsActive:
		titleStyle = lipgloss.NewStyle().Foreground(CurrentTheme.Success).Bold(true)
	case i.IsSaved:
		titleStyle = lipgloss.NewStyle().Foreground(CurrentTheme.Success)
	default:
		titleStyle = lipgloss.NewStyle().Foreground(CurrentTheme.Normal)
	}
	title = titleStyle.Render(title)

	signal := lipgloss.NewStyle().Foreground(SignalColor(i.Signal)).Render(fmt.Sprintf("%s %3d%%", SignalBar(i.Signal), i.Signal))
	security := lipgloss.NewStyle().Foreground(CurrentTheme.Subtle).Render(" " + i.Security)
	desc := signal + security
	if i.IsActive {
		desc += lipgloss.NewStyle().Foreground(CurrentTheme.Success).Render(" (Connected)")
	}

	line := title + padding + " " + desc
	var lineStyle lipgloss.Style
	if index == m.Index() {
		lineStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true). // Left border
			BorderForeground(CurrentTheme.Primary)
	} else {
		lineStyle = lipgloss.NewStyle().PaddingLeft(1)
	}
	fmt.Fprint(w, lineStyle.Render(line))
}

// truncate shortens s to at most width cells, marking the cut with an
// ellipsis.
func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

// ListModel shows the scan results for one adapter.
type ListModel struct {
	list         list.Model
	adapter      string
	isForgetting bool
	forgetItem   networkItem
}

// NewListModel creates the network list for adapter.
func NewListModel(adapter string) *ListModel {
	l := list.New(nil, newItemDelegate(), 0, 0)
	l.Title = fmt.Sprintf("Networks on %s", adapter)
	l.Styles.Title = lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Bold(true)
	l.SetShowStatusBar(false)
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "connect")),
			key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "scan")),
			key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "disconnect")),
			key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "forget")),
			key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "auto scan")),
		}
	}
	return &ListModel{list: l, adapter: adapter}
}

// SetNetworks replaces the list contents, marking the active network and
// the networks with a saved password.
func (m *ListModel) SetNetworks(networks []wifi.Network, active string, isSaved func(ssid string) bool) tea.Cmd {
	items := make([]list.Item, 0, len(networks))
	for _, n := range networks {
		items = append(items, networkItem{
			Network:  n,
			IsActive: n.SSID == active,
			IsSaved:  isSaved != nil && isSaved(n.SSID),
		})
	}
	return m.list.SetItems(items)
}

func (m *ListModel) selected() (networkItem, bool) {
	if len(m.list.Items()) == 0 {
		return networkItem{}, false
	}
	item, ok := m.list.SelectedItem().(networkItem)
	return item, ok
}

func (m *ListModel) Init() tea.Cmd { return nil }

func (m *ListModel) Update(msg tea.Msg) (Component, tea.Cmd) {
	if m.isForgetting {
		finished, cmd := forgetHandler(msg, m.forgetItem)
		if finished {
			m.isForgetting = false
		}
		return m, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "s":
			return m, func() tea.Msg { return scanMsg{} }
		case "d":
			return m, func() tea.Msg { return disconnectMsg{} }
		case "a":
			return m, func() tea.Msg { return toggleRescanMsg{} }
		case "f":
			if item, ok := m.selected(); ok {
				m.isForgetting = true
				m.forgetItem = item
			}
			return m, nil
		case "enter", "c":
			item, ok := m.selected()
			if !ok {
				return m, nil
			}
			if item.IsOpen() {
				return m, func() tea.Msg { return connectMsg{ssid: item.SSID} }
			}
			return m, func() tea.Msg { return showPasswordMsg{item: item} }
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *ListModel) View() string {
	var b strings.Builder
	listBorderStyle := lipgloss.NewStyle().Border(lipgloss.RoundedBorder(), true).BorderForeground(CurrentTheme.Border)
	b.WriteString(listBorderStyle.Render(m.list.View()))
	b.WriteString("\n")

	switch {
	case m.isForgetting:
		b.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Error).Render(fmt.Sprintf("Forget saved connection '%s'? (Y/n)", m.forgetItem.SSID)))
	case len(m.list.Items()) > 0:
		b.WriteString(fmt.Sprintf("%d/%d", m.list.Index()+1, len(m.list.Items())))
	default:
		b.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Subtle).Render("No networks found. Press s to scan."))
	}
	return lipgloss.NewStyle().Margin(1, 2).Render(b.String())
}

func (m *ListModel) Resize(width, height int) {
	// Border and margins
	m.list.SetSize(max(0, width-6), max(0, height-8))
}

func (m *ListModel) IsConsumingInput() bool {
	return m.list.FilterState() == list.Filtering
}
