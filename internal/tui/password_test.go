package tui

import (
	"testing"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wifiproxy/wifiproxy/wifi"
)

func TestPasswordModel_Enter(t *testing.T) {
	item := networkItem{Network: wifi.Network{SSID: "ESP32-CAM", Security: "WPA2"}}
	m := NewPasswordModel(item, "camera")

	// Type one more character after the pre-filled password
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("1")})
	m = updated.(*PasswordModel)
	if m.input.Value() != "camera1" {
		t.Fatalf("expected input camera1, got %q", m.input.Value())
	}

	_, cmd := m.Update(keyMsg("enter"))
	conn, ok := cmd().(connectMsg)
	if !ok {
		t.Fatalf("expected a connectMsg")
	}
	if conn.ssid != "ESP32-CAM" || conn.password != "camera1" {
		t.Errorf("unexpected connectMsg %+v", conn)
	}
}

func TestPasswordModel_Esc(t *testing.T) {
	m := NewPasswordModel(networkItem{Network: wifi.Network{SSID: "x"}}, "")
	_, cmd := m.Update(keyMsg("esc"))
	if _, ok := cmd().(popViewMsg); !ok {
		t.Errorf("expected esc to pop the view")
	}
}

func TestPasswordModel_ToggleVisibility(t *testing.T) {
	m := NewPasswordModel(networkItem{Network: wifi.Network{SSID: "x"}}, "secret")
	if !m.IsConsumingInput() {
		t.Errorf("password prompt should consume input")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	if m.input.EchoMode != textinput.EchoNormal {
		t.Errorf("expected the password to be visible after ctrl+r")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	if m.input.EchoMode != textinput.EchoPassword {
		t.Errorf("expected the password to be hidden again")
	}
}
