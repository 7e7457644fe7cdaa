package mock

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/wifiproxy/wifiproxy/wifi"
)

var DefaultActionSleep = 500 * time.Millisecond

// mockNetwork wraps a wifi.Network with the secret it accepts.
type mockNetwork struct {
	wifi.Network
	Secret string
}

// mockLease is the addressing handed out to a connected adapter.
type mockLease struct {
	SSID    string
	Address string
	Gateway string
}

// MockBackend is a mock implementation of the wifi.Backend interface for testing.
type MockBackend struct {
	Adapters []wifi.Adapter
	Networks []mockNetwork
	// Profiles are the saved connection profile names, in creation order.
	Profiles []string

	ListAdaptersError     error
	ConnectError          error
	DisconnectError       error
	StatusError           error
	ScanError             error
	DeleteConnectionError error

	// Jitter re-randomizes signal strengths on every scan.
	Jitter bool

	// ActionSleep is a delay before every action, to better emulate a real-world backend for the frontend. Set to 0 during testing.
	ActionSleep time.Duration

	mu     sync.Mutex
	leases map[string]mockLease
}

// New creates a new mock.Backend with a built-in adapter, a USB dongle and a
// list of fun wifi networks.
func New() (wifi.Backend, error) {
	return &MockBackend{
		Adapters: []wifi.Adapter{
			{Name: "wlp2s0", State: "connected", IsUSB: false},
			{Name: "wlx00c0ca", State: "disconnected", IsUSB: true},
		},
		Networks: []mockNetwork{
			{Network: wifi.Network{SSID: "ESP32-CAM", Signal: 74, Security: "WPA2"}, Secret: "camera123"},
			{Network: wifi.Network{SSID: "HideYoKidsHideYoWiFi", Signal: 62, Security: "WPA2"}, Secret: "hidden"},
			{Network: wifi.Network{SSID: "Unencrypted_Honeypot", Signal: 55}},
			{Network: wifi.Network{SSID: "Police Surveillance 2", Signal: 48, Security: "WPA1 WPA2"}, Secret: "nothingtosee"},
			{Network: wifi.Network{SSID: "Password is password", Signal: 87, Security: "WPA2"}, Secret: "password"},
			{Network: wifi.Network{SSID: "TacoBoutAGoodSignal", Signal: 99, Security: "WPA2"}, Secret: "tacos"},
			{Network: wifi.Network{SSID: "NeverGonnaGiveYouIP", Signal: 21, Security: "WEP"}, Secret: "rickroll"},
			{Network: wifi.Network{SSID: "ESP32-CAM", Signal: 31, Security: "WPA2"}, Secret: "camera123"},
		},
		Profiles:    []string{"HideYoKidsHideYoWiFi"},
		Jitter:      true,
		ActionSleep: DefaultActionSleep,
	}, nil
}

func (m *MockBackend) findAdapter(name string) int {
	for i, a := range m.Adapters {
		if a.Name == name {
			return i
		}
	}
	return -1
}

func (m *MockBackend) ListAdapters() ([]wifi.Adapter, error) {
	time.Sleep(m.ActionSleep)
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListAdaptersError != nil {
		return nil, m.ListAdaptersError
	}
	adapters := make([]wifi.Adapter, len(m.Adapters))
	copy(adapters, m.Adapters)
	return adapters, nil
}

func (m *MockBackend) Connect(adapter, ssid, password string) error {
	time.Sleep(m.ActionSleep)
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ConnectError != nil {
		return m.ConnectError
	}
	idx := m.findAdapter(adapter)
	if idx < 0 {
		return fmt.Errorf("%w: Device '%s' not found.", wifi.ErrConnectionFailed, adapter)
	}

	// "Act on first match" logic for duplicate SSIDs.
	var target *mockNetwork
	for i := range m.Networks {
		if m.Networks[i].SSID == ssid {
			target = &m.Networks[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("%w: No network with SSID '%s' found.", wifi.ErrConnectionFailed, ssid)
	}
	if !target.IsOpen() && password != target.Secret {
		return fmt.Errorf("%w: Secrets were required, but not provided.", wifi.ErrConnectionFailed)
	}

	if m.leases == nil {
		m.leases = map[string]mockLease{}
	}
	m.leases[adapter] = mockLease{
		SSID:    ssid,
		Address: fmt.Sprintf("192.168.4.%d/24", 2+idx),
		Gateway: "192.168.4.1",
	}
	m.Adapters[idx].State = "connected"

	for _, p := range m.Profiles {
		if p == ssid {
			return nil
		}
	}
	m.Profiles = append(m.Profiles, ssid)
	return nil
}

func (m *MockBackend) Disconnect(adapter string) error {
	time.Sleep(m.ActionSleep)
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.DisconnectError != nil {
		return m.DisconnectError
	}
	idx := m.findAdapter(adapter)
	if idx < 0 {
		return fmt.Errorf("device %s: %w: not found", adapter, wifi.ErrDaemon)
	}
	if _, ok := m.leases[adapter]; !ok {
		return fmt.Errorf("device %s: %w: not active", adapter, wifi.ErrDaemon)
	}
	delete(m.leases, adapter)
	m.Adapters[idx].State = "disconnected"
	return nil
}

func (m *MockBackend) Status(adapter string) (wifi.ConnectionStatus, error) {
	time.Sleep(m.ActionSleep)
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.StatusError != nil {
		return wifi.ConnectionStatus{}, m.StatusError
	}
	if m.findAdapter(adapter) < 0 {
		return wifi.ConnectionStatus{}, fmt.Errorf("device %s: %w: not found", adapter, wifi.ErrDaemon)
	}

	lease, ok := m.leases[adapter]
	if !ok {
		return wifi.ConnectionStatus{Interface: adapter, State: "30 (disconnected)"}, nil
	}
	return wifi.ConnectionStatus{
		Interface:   adapter,
		State:       "100 (connected)",
		Connection:  &lease.SSID,
		IPv4Address: &lease.Address,
		Gateway:     &lease.Gateway,
	}, nil
}

func (m *MockBackend) Scan(adapter string) ([]wifi.Network, error) {
	time.Sleep(m.ActionSleep)
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ScanError != nil {
		return nil, m.ScanError
	}
	if m.findAdapter(adapter) < 0 {
		return nil, fmt.Errorf("device %s: %w: not found", adapter, wifi.ErrDaemon)
	}

	if m.Jitter {
		r := rand.New(rand.NewSource(time.Now().UnixNano()))
		for i := range m.Networks {
			m.Networks[i].Signal = uint8(r.Intn(70) + 30)
		}
	}

	networks := make([]wifi.Network, 0, len(m.Networks))
	for _, n := range m.Networks {
		networks = append(networks, n.Network)
	}
	networks = wifi.DedupNetworks(networks)
	wifi.SortNetworks(networks)
	return networks, nil
}

func (m *MockBackend) DeleteConnection(name string) error {
	time.Sleep(m.ActionSleep)
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.DeleteConnectionError != nil {
		return m.DeleteConnectionError
	}

	var remaining []string
	found := false
	for _, p := range m.Profiles {
		if p == name {
			found = true
		} else {
			remaining = append(remaining, p)
		}
	}
	if !found {
		return fmt.Errorf("connection %s: %w: unknown connection", name, wifi.ErrDaemon)
	}
	m.Profiles = remaining

	for adapter, lease := range m.leases {
		if lease.SSID == name {
			delete(m.leases, adapter)
			if idx := m.findAdapter(adapter); idx >= 0 {
				m.Adapters[idx].State = "disconnected"
			}
		}
	}
	return nil
}
