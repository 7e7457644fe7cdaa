package tui

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wifiproxy/wifiproxy/internal/log"
	"github.com/wifiproxy/wifiproxy/wifi"
	"github.com/wifiproxy/wifiproxy/wifi/mock"
)

func newTestModel(t *testing.T) (*model, *mock.MockBackend, map[string]string) {
	t.Helper()
	b, err := mock.New()
	require.NoError(t, err)
	mb := b.(*mock.MockBackend)
	mb.ActionSleep = 0
	mb.Jitter = false

	saved := map[string]string{"ESP32-CAM": "camera123"}
	m := NewModel(mb, Options{
		Adapter: "wlx00c0ca",
		SavedPassword: func(ssid string) (string, bool) {
			p, ok := saved[ssid]
			return p, ok
		},
		OnConnected: func(ssid, password string) error {
			saved[ssid] = password
			return nil
		},
	})
	return m, mb, saved
}

// drive feeds msg to the model and keeps feeding the messages produced by
// single (non-batched) commands until the model settles.
func drive(t *testing.T, m *model, msg tea.Msg) {
	t.Helper()
	for i := 0; i < 10 && msg != nil; i++ {
		_, cmd := m.Update(msg)
		if cmd == nil {
			return
		}
		msg = cmd()
		if _, ok := msg.(tea.BatchMsg); ok {
			return
		}
	}
}

func TestModel_Scan(t *testing.T) {
	m, _, _ := newTestModel(t)

	drive(t, m, scanMsg{})
	assert.False(t, m.loading)
	require.NotEmpty(t, m.list.list.Items())
	first := m.list.list.Items()[0].(networkItem)
	assert.Equal(t, "TacoBoutAGoodSignal", first.SSID)
}

func TestModel_ConnectSavesAndRefreshesStatus(t *testing.T) {
	m, _, saved := newTestModel(t)
	drive(t, m, scanMsg{})

	drive(t, m, connectMsg{ssid: "Password is password", password: "password"})

	assert.Equal(t, "password", saved["Password is password"])
	assert.Equal(t, wifi.StateConnected, m.status.Kind())
	require.NotNil(t, m.status.Connection)
	assert.Equal(t, "Password is password", *m.status.Connection)
	assert.Contains(t, m.View(), "Password is password")

	for _, it := range m.list.list.Items() {
		item := it.(networkItem)
		assert.Equal(t, item.SSID == "Password is password", item.IsActive, "active flag for %s", item.SSID)
	}
}

func TestModel_ConnectFailureShowsError(t *testing.T) {
	m, _, saved := newTestModel(t)

	drive(t, m, connectMsg{ssid: "ESP32-CAM", password: "wrong"})

	_, ok := m.stack.Top().(*ErrorModel)
	assert.True(t, ok, "expected an error view on top, got %T", m.stack.Top())
	assert.Equal(t, "camera123", saved["ESP32-CAM"], "a failed connect must not overwrite the saved password")

	// Any key dismisses it
	drive(t, m, keyMsg("x"))
	assert.Equal(t, 1, m.stack.Len())
}

func TestModel_PasswordPrompt(t *testing.T) {
	m, _, _ := newTestModel(t)
	drive(t, m, scanMsg{})

	item := networkItem{Network: wifi.Network{SSID: "ESP32-CAM", Security: "WPA2"}}
	m.Update(showPasswordMsg{item: item})

	pw, ok := m.stack.Top().(*PasswordModel)
	require.True(t, ok, "expected a password prompt, got %T", m.stack.Top())
	assert.Equal(t, "camera123", pw.input.Value())

	drive(t, m, keyMsg("enter"))
	assert.Equal(t, 1, m.stack.Len())
	assert.Equal(t, wifi.StateConnected, m.status.Kind())
}

func TestModel_Disconnect(t *testing.T) {
	m, mb, _ := newTestModel(t)
	require.NoError(t, mb.Connect("wlx00c0ca", "Unencrypted_Honeypot", ""))

	drive(t, m, disconnectMsg{})
	assert.Equal(t, wifi.StateDisconnected, m.status.Kind())
	assert.Equal(t, "Disconnected", m.statusMessage)
}

func TestModel_Forget(t *testing.T) {
	m, mb, _ := newTestModel(t)
	item := networkItem{Network: wifi.Network{SSID: "HideYoKidsHideYoWiFi"}}

	drive(t, m, forgetNetworkMsg{item: item})
	assert.Empty(t, mb.Profiles)
	assert.Equal(t, "Forgot 'HideYoKidsHideYoWiFi'", m.statusMessage)
}

func TestModel_ScanError(t *testing.T) {
	m, mb, _ := newTestModel(t)
	mb.ScanError = errors.New("device busy")

	drive(t, m, scanMsg{})
	em, ok := m.stack.Top().(*ErrorModel)
	require.True(t, ok)
	assert.Contains(t, em.View(), "device busy")
}

func TestModel_LogMsg(t *testing.T) {
	m, _, _ := newTestModel(t)

	m.Update(log.LogMsg(slog.NewRecord(time.Now(), slog.LevelInfo, "chatter", 0)))
	assert.Empty(t, m.lastLog)

	m.Update(log.LogMsg(slog.NewRecord(time.Now(), slog.LevelWarn, "could not save network", 0)))
	assert.Equal(t, "could not save network", m.lastLog)
	assert.True(t, strings.Contains(m.View(), "could not save network"))
}

func TestModel_ToggleAutoScan(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.loading = false

	_, cmd := m.Update(toggleRescanMsg{})
	require.NotNil(t, cmd)
	assert.True(t, m.rescan.Enabled())
	assert.Equal(t, "Auto scan on", m.statusMessage)

	m.Update(toggleRescanMsg{})
	assert.False(t, m.rescan.Enabled())
	assert.Equal(t, "Auto scan off", m.statusMessage)
}
