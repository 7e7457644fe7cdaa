package mock

import (
	"errors"
	"testing"

	"github.com/wifiproxy/wifiproxy/wifi"
)

func newTestBackend(t *testing.T) *MockBackend {
	t.Helper()
	b, err := New()
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	mock := b.(*MockBackend)
	mock.Jitter = false
	return mock
}

func TestNew(t *testing.T) {
	b := newTestBackend(t)
	usb, err := wifi.FindUSBAdapter(b)
	if err != nil {
		t.Fatalf("FindUSBAdapter() failed: %v", err)
	}
	if usb.Name != "wlx00c0ca" {
		t.Errorf("expected USB adapter wlx00c0ca, got %s", usb.Name)
	}
}

func TestScan(t *testing.T) {
	b := newTestBackend(t)

	networks, err := b.Scan("wlx00c0ca")
	if err != nil {
		t.Fatalf("Scan() failed: %v", err)
	}
	if networks[0].SSID != "TacoBoutAGoodSignal" {
		t.Errorf("expected strongest network first, got %s", networks[0].SSID)
	}

	count := 0
	for _, n := range networks {
		if n.SSID == "ESP32-CAM" {
			count++
			if n.Signal != 74 {
				t.Errorf("expected first ESP32-CAM entry to win with signal 74, got %d", n.Signal)
			}
		}
	}
	if count != 1 {
		t.Errorf("expected one ESP32-CAM entry, got %d", count)
	}

	if _, err := b.Scan("wlan9"); !errors.Is(err, wifi.ErrDaemon) {
		t.Errorf("expected ErrDaemon for unknown adapter, got %v", err)
	}
}

func TestConnect(t *testing.T) {
	b := newTestBackend(t)

	if err := b.Connect("wlx00c0ca", "ESP32-CAM", "camera123"); err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}

	status, err := b.Status("wlx00c0ca")
	if err != nil {
		t.Fatalf("Status() failed: %v", err)
	}
	if status.Kind() != wifi.StateConnected {
		t.Errorf("expected connected, got %q", status.State)
	}
	if status.Connection == nil || *status.Connection != "ESP32-CAM" {
		t.Errorf("expected connection ESP32-CAM, got %v", status.Connection)
	}
	if status.Gateway == nil || *status.Gateway != "192.168.4.1" {
		t.Errorf("expected gateway 192.168.4.1, got %v", status.Gateway)
	}

	found := false
	for _, p := range b.Profiles {
		if p == "ESP32-CAM" {
			found = true
		}
	}
	if !found {
		t.Errorf("Connect() did not save a profile for ESP32-CAM")
	}
}

func TestConnectFailures(t *testing.T) {
	b := newTestBackend(t)

	tests := []struct {
		adapter, ssid, password string
	}{
		{"wlx00c0ca", "ESP32-CAM", "wrong"},
		{"wlx00c0ca", "ESP32-CAM", ""},
		{"wlx00c0ca", "Nonexistent", ""},
		{"wlan9", "ESP32-CAM", "camera123"},
	}
	for _, tt := range tests {
		err := b.Connect(tt.adapter, tt.ssid, tt.password)
		if !errors.Is(err, wifi.ErrConnectionFailed) {
			t.Errorf("Connect(%q, %q, %q) = %v, want ErrConnectionFailed", tt.adapter, tt.ssid, tt.password, err)
		}
	}
}

func TestConnectOpenNetwork(t *testing.T) {
	b := newTestBackend(t)
	if err := b.Connect("wlx00c0ca", "Unencrypted_Honeypot", ""); err != nil {
		t.Fatalf("Connect() to open network failed: %v", err)
	}
}

func TestDisconnect(t *testing.T) {
	b := newTestBackend(t)

	if err := b.Disconnect("wlx00c0ca"); !errors.Is(err, wifi.ErrDaemon) {
		t.Errorf("expected ErrDaemon disconnecting an idle adapter, got %v", err)
	}

	if err := b.Connect("wlx00c0ca", "Unencrypted_Honeypot", ""); err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}
	if err := b.Disconnect("wlx00c0ca"); err != nil {
		t.Fatalf("Disconnect() failed: %v", err)
	}

	status, err := b.Status("wlx00c0ca")
	if err != nil {
		t.Fatalf("Status() failed: %v", err)
	}
	if status.Kind() != wifi.StateDisconnected {
		t.Errorf("expected disconnected, got %q", status.State)
	}
	if status.Connection != nil || status.Gateway != nil {
		t.Errorf("expected no connection details, got %+v", status)
	}
}

func TestDeleteConnection(t *testing.T) {
	b := newTestBackend(t)

	if err := b.Connect("wlx00c0ca", "HideYoKidsHideYoWiFi", "hidden"); err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}
	if len(b.Profiles) != 1 {
		t.Fatalf("reconnecting a saved network should not add a profile, got %v", b.Profiles)
	}

	if err := b.DeleteConnection("HideYoKidsHideYoWiFi"); err != nil {
		t.Fatalf("DeleteConnection() failed: %v", err)
	}
	if len(b.Profiles) != 0 {
		t.Errorf("expected no profiles, got %v", b.Profiles)
	}

	status, _ := b.Status("wlx00c0ca")
	if status.Kind() != wifi.StateDisconnected {
		t.Errorf("deleting the active profile should disconnect, got %q", status.State)
	}

	if err := b.DeleteConnection("HideYoKidsHideYoWiFi"); !errors.Is(err, wifi.ErrDaemon) {
		t.Errorf("expected ErrDaemon deleting an unknown profile, got %v", err)
	}
}

func TestInjectedErrors(t *testing.T) {
	b := newTestBackend(t)
	boom := errors.New("boom")
	b.ListAdaptersError = boom

	if _, err := wifi.FindUSBAdapter(b); !errors.Is(err, boom) {
		t.Errorf("expected injected error, got %v", err)
	}
}

func init() {
	DefaultActionSleep = 0
}
