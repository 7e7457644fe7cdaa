package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wifiproxy/wifiproxy/wifi"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestList() *ListModel {
	m := NewListModel("wlx00c0ca")
	m.SetNetworks([]wifi.Network{
		{SSID: "ESP32-CAM", Signal: 80, Security: "WPA2"},
		{SSID: "Cafe", Signal: 40},
	}, "ESP32-CAM", func(ssid string) bool { return ssid == "ESP32-CAM" })
	return m
}

func TestListModel_SetNetworks(t *testing.T) {
	m := newTestList()
	items := m.list.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	first := items[0].(networkItem)
	if !first.IsActive || !first.IsSaved {
		t.Errorf("expected ESP32-CAM to be active and saved, got %+v", first)
	}
	second := items[1].(networkItem)
	if second.IsActive || second.IsSaved {
		t.Errorf("expected Cafe to be neither active nor saved, got %+v", second)
	}
}

func TestListModel_EnterSecured(t *testing.T) {
	m := newTestList()
	_, cmd := m.Update(keyMsg("enter"))

	msg := cmd()
	pw, ok := msg.(showPasswordMsg)
	if !ok {
		t.Fatalf("expected a showPasswordMsg but got %T", msg)
	}
	if pw.item.SSID != "ESP32-CAM" {
		t.Errorf("expected ESP32-CAM, got %s", pw.item.SSID)
	}
}

func TestListModel_EnterOpen(t *testing.T) {
	m := newTestList()
	m.list.Select(1)
	_, cmd := m.Update(keyMsg("enter"))

	msg := cmd()
	conn, ok := msg.(connectMsg)
	if !ok {
		t.Fatalf("expected a connectMsg but got %T", msg)
	}
	if conn.ssid != "Cafe" || conn.password != "" {
		t.Errorf("unexpected connectMsg %+v", conn)
	}
}

func TestListModel_Keys(t *testing.T) {
	m := newTestList()

	_, cmd := m.Update(keyMsg("s"))
	if _, ok := cmd().(scanMsg); !ok {
		t.Errorf("expected s to request a scan")
	}

	_, cmd = m.Update(keyMsg("d"))
	if _, ok := cmd().(disconnectMsg); !ok {
		t.Errorf("expected d to request a disconnect")
	}
}

func TestListModel_EmptyEnter(t *testing.T) {
	m := NewListModel("wlx00c0ca")
	_, cmd := m.Update(keyMsg("enter"))
	if cmd != nil {
		t.Errorf("expected no command on an empty list, got %T", cmd())
	}
}

func TestListModel_ForgetFlow(t *testing.T) {
	m := newTestList()

	// Press 'f' to start forgetting
	updated, _ := m.Update(keyMsg("f"))
	m = updated.(*ListModel)
	if !m.isForgetting {
		t.Fatal("isForgetting was not set to true")
	}

	// Press 'n' to cancel
	updated, _ = m.Update(keyMsg("n"))
	m = updated.(*ListModel)
	if m.isForgetting {
		t.Fatal("isForgetting was not cleared after pressing 'n'")
	}

	// Press 'f' again, then 'j' which should be ignored
	updated, _ = m.Update(keyMsg("f"))
	m = updated.(*ListModel)
	updated, _ = m.Update(keyMsg("j"))
	m = updated.(*ListModel)
	if !m.isForgetting {
		t.Fatal("isForgetting should not be cleared after pressing a navigation key")
	}

	// Press 'y' to confirm
	updated, cmd := m.Update(keyMsg("y"))
	m = updated.(*ListModel)
	if m.isForgetting {
		t.Fatal("isForgetting was not cleared after pressing 'y'")
	}

	msg := cmd()
	forgetMsg, ok := msg.(forgetNetworkMsg)
	if !ok {
		t.Fatalf("expected a forgetNetworkMsg but got %T", msg)
	}
	if forgetMsg.item.SSID != "ESP32-CAM" {
		t.Errorf("expected forgetNetworkMsg for 'ESP32-CAM' but got for '%s'", forgetMsg.item.SSID)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate() = %q, want unchanged", got)
	}
	got := truncate("a very long network name", 10)
	if got != "a very lo…" {
		t.Errorf("truncate() = %q, want %q", got, "a very lo…")
	}
}
