//go:build linux

// Package networkmanager implements wifi.Backend by talking to
// NetworkManager over D-Bus.
package networkmanager

import (
	"fmt"
	"time"

	gonetworkmanager "github.com/Wifx/gonetworkmanager/v3"
	"github.com/google/uuid"
	"github.com/wifiproxy/wifiproxy/wifi"
)

const (
	// DefaultConnectTimeout bounds how long Connect waits for activation.
	DefaultConnectTimeout = 30 * time.Second
	// DefaultScanSettle is how long Scan and Connect wait after requesting a rescan.
	DefaultScanSettle = 500 * time.Millisecond
)

var _ wifi.Backend = (*Backend)(nil)

// Backend implements the wifi.Backend interface using D-Bus to communicate with NetworkManager.
type Backend struct {
	NM        gonetworkmanager.NetworkManager
	Settings  gonetworkmanager.Settings
	SysfsRoot string

	ScanSettle     time.Duration
	ConnectTimeout time.Duration
}

// New creates a new networkmanager.Backend connected to the system bus.
func New() (*Backend, error) {
	nm, err := gonetworkmanager.NewNetworkManager()
	if err != nil {
		return nil, fmt.Errorf("failed to create network manager client: %w: %s", wifi.ErrDaemon, err)
	}

	settings, err := gonetworkmanager.NewSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w: %s", wifi.ErrDaemon, err)
	}

	return &Backend{
		NM:             nm,
		Settings:       settings,
		SysfsRoot:      wifi.DefaultSysfsRoot,
		ScanSettle:     DefaultScanSettle,
		ConnectTimeout: DefaultConnectTimeout,
	}, nil
}

type wirelessDevice struct {
	gonetworkmanager.DeviceWireless
	name string
}

// wirelessDevices returns every wifi device in bus order.
func (b *Backend) wirelessDevices() ([]wirelessDevice, error) {
	devices, err := b.NM.GetDevices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w: %s", wifi.ErrDaemon, err)
	}

	var out []wirelessDevice
	for _, device := range devices {
		dev, ok := device.(gonetworkmanager.DeviceWireless)
		if !ok {
			continue
		}
		name, err := dev.GetPropertyInterface()
		if err != nil || name == "" {
			continue
		}
		out = append(out, wirelessDevice{DeviceWireless: dev, name: name})
	}
	return out, nil
}

func (b *Backend) device(name string) (wirelessDevice, error) {
	devices, err := b.wirelessDevices()
	if err != nil {
		return wirelessDevice{}, err
	}
	for _, d := range devices {
		if d.name == name {
			return d, nil
		}
	}
	return wirelessDevice{}, fmt.Errorf("%q: %w", name, wifi.ErrAdapterNotFound)
}

func (b *Backend) ListAdapters() ([]wifi.Adapter, error) {
	devices, err := b.wirelessDevices()
	if err != nil {
		return nil, err
	}

	var adapters []wifi.Adapter
	for _, d := range devices {
		state, _ := d.GetPropertyState()
		adapters = append(adapters, wifi.Adapter{
			Name:  d.name,
			State: deviceStateWord(state),
			IsUSB: wifi.IsUSBDevice(b.SysfsRoot, d.name),
		})
	}
	return adapters, nil
}

// rescan asks the device for fresh results. A rejected request still leaves
// the last results in place, so its outcome is ignored.
func (b *Backend) rescan(d wirelessDevice) {
	_ = d.RequestScan()
	if b.ScanSettle > 0 {
		time.Sleep(b.ScanSettle)
	}
}

func (b *Backend) Scan(adapter string) ([]wifi.Network, error) {
	d, err := b.device(adapter)
	if err != nil {
		return nil, err
	}
	b.rescan(d)

	aps, err := d.GetAccessPoints()
	if err != nil {
		return nil, fmt.Errorf("list access points: %w: %s", wifi.ErrDaemon, err)
	}

	var networks []wifi.Network
	for _, ap := range aps {
		ssid, err := ap.GetPropertySSID()
		if err != nil || ssid == "" {
			continue
		}
		strength, _ := ap.GetPropertyStrength()
		if strength > 100 {
			strength = 100
		}
		networks = append(networks, wifi.Network{
			SSID:     ssid,
			Signal:   strength,
			Security: securityOf(ap),
		})
	}

	networks = wifi.DedupNetworks(networks)
	wifi.SortNetworks(networks)
	return networks, nil
}

// securityOf renders an access point's flags the way nmcli does.
func securityOf(ap gonetworkmanager.AccessPoint) string {
	flags, _ := ap.GetPropertyFlags()
	wpaFlags, _ := ap.GetPropertyWPAFlags()
	rsnFlags, _ := ap.GetPropertyRSNFlags()

	switch {
	case wpaFlags > 0 && rsnFlags > 0:
		return "WPA1 WPA2"
	case rsnFlags > 0:
		return "WPA2"
	case wpaFlags > 0:
		return "WPA1"
	case uint32(flags)&uint32(gonetworkmanager.Nm80211APFlagsPrivacy) != 0:
		return "WEP"
	}
	return ""
}

func (b *Backend) Connect(adapter, ssid, password string) error {
	d, err := b.device(adapter)
	if err != nil {
		return fmt.Errorf("%w: %s", wifi.ErrConnectionFailed, err)
	}
	b.rescan(d)

	aps, err := d.GetAccessPoints()
	if err != nil {
		return fmt.Errorf("%w: %s", wifi.ErrConnectionFailed, err)
	}

	var target gonetworkmanager.AccessPoint
	for _, ap := range aps {
		if s, err := ap.GetPropertySSID(); err == nil && s == ssid {
			target = ap
			break
		}
	}
	if target == nil {
		return fmt.Errorf("%w: No network with SSID '%s' found", wifi.ErrConnectionFailed, ssid)
	}

	connection := map[string]map[string]interface{}{
		"connection": {
			"id":             ssid,
			"uuid":           uuid.New().String(),
			"type":           "802-11-wireless",
			"interface-name": adapter,
			"autoconnect":    true,
		},
		"802-11-wireless": {
			"mode": "infrastructure",
			"ssid": []byte(ssid),
		},
		"ipv4": {"method": "auto"},
		"ipv6": {"method": "auto"},
	}

	switch security := securityOf(target); {
	case password == "" || security == "":
		// No security settings needed
	case security == "WEP":
		connection["802-11-wireless"]["security"] = "802-11-wireless-security"
		connection["802-11-wireless-security"] = map[string]interface{}{
			"key-mgmt": "none",
			"wep-key0": password,
		}
	default: // WPA/WPA2
		connection["802-11-wireless"]["security"] = "802-11-wireless-security"
		connection["802-11-wireless-security"] = map[string]interface{}{
			"key-mgmt": "wpa-psk",
			"psk":      password,
		}
	}

	activeConn, err := b.NM.AddAndActivateWirelessConnection(connection, d.DeviceWireless, target)
	if err != nil {
		return fmt.Errorf("%w: %s", wifi.ErrConnectionFailed, err)
	}
	return b.waitActivated(activeConn)
}

// waitActivated blocks until activeConn is fully activated, fails or
// ConnectTimeout passes.
func (b *Backend) waitActivated(activeConn gonetworkmanager.ActiveConnection) error {
	stateChanges := make(chan gonetworkmanager.StateChange, 1)
	done := make(chan struct{})
	defer close(done)
	if err := activeConn.SubscribeState(stateChanges, done); err != nil {
		return fmt.Errorf("%w: %s", wifi.ErrConnectionFailed, err)
	}

	// Check the initial state first
	initialState, err := activeConn.GetPropertyState()
	if err != nil {
		return fmt.Errorf("%w: %s", wifi.ErrConnectionFailed, err)
	}
	if initialState == gonetworkmanager.NmActiveConnectionStateActivated {
		return nil
	}

	timeout := b.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case change := <-stateChanges:
			switch change.State {
			case gonetworkmanager.NmActiveConnectionStateActivated:
				return nil
			case gonetworkmanager.NmActiveConnectionStateDeactivated:
				return fmt.Errorf("%w: activation was deactivated", wifi.ErrConnectionFailed)
			}
		case <-timer.C:
			return fmt.Errorf("%w: timed out after %s", wifi.ErrConnectionFailed, timeout)
		}
	}
}

func (b *Backend) Disconnect(adapter string) error {
	d, err := b.device(adapter)
	if err != nil {
		return err
	}
	if err := d.Disconnect(); err != nil {
		return fmt.Errorf("disconnect %s: %w: %s", adapter, wifi.ErrDaemon, err)
	}
	return nil
}

func (b *Backend) Status(adapter string) (wifi.ConnectionStatus, error) {
	d, err := b.device(adapter)
	if err != nil {
		return wifi.ConnectionStatus{}, err
	}

	status := wifi.ConnectionStatus{Interface: adapter, State: "unknown"}
	if state, err := d.GetPropertyState(); err == nil {
		status.State = fmt.Sprintf("%d (%s)", uint32(state), deviceStateWord(state))
	}

	if ac, err := d.GetPropertyActiveConnection(); err == nil && ac != nil {
		if id, err := ac.GetPropertyID(); err == nil && id != "" {
			status.Connection = &id
		}
	}

	if cfg, err := d.GetPropertyIP4Config(); err == nil && cfg != nil {
		if data, err := cfg.GetPropertyAddressData(); err == nil && len(data) > 0 {
			addr := fmt.Sprintf("%s/%d", data[0].Address, data[0].Prefix)
			status.IPv4Address = &addr
		}
		if gw, err := cfg.GetPropertyGateway(); err == nil && gw != "" {
			status.Gateway = &gw
		}
	}
	return status, nil
}

// DeleteConnection removes every saved profile whose id is name.
func (b *Backend) DeleteConnection(name string) error {
	conns, err := b.Settings.ListConnections()
	if err != nil {
		return fmt.Errorf("list connections: %w: %s", wifi.ErrDaemon, err)
	}

	found := false
	for _, conn := range conns {
		s, err := conn.GetSettings()
		if err != nil {
			continue
		}
		if id, _ := s["connection"]["id"].(string); id != name {
			continue
		}
		found = true
		if err := conn.Delete(); err != nil {
			return fmt.Errorf("delete %s: %w: %s", name, wifi.ErrDaemon, err)
		}
	}
	if !found {
		return fmt.Errorf("delete %s: %w: unknown connection", name, wifi.ErrDaemon)
	}
	return nil
}

// deviceStateWord names an NMDeviceState the way nmcli does.
func deviceStateWord(state gonetworkmanager.NmDeviceState) string {
	switch uint32(state) {
	case 10:
		return "unmanaged"
	case 20:
		return "unavailable"
	case 30:
		return "disconnected"
	case 40:
		return "connecting (prepare)"
	case 50:
		return "connecting (configuring)"
	case 60:
		return "connecting (need authentication)"
	case 70:
		return "connecting (getting IP configuration)"
	case 80:
		return "connecting (checking IP connectivity)"
	case 90:
		return "connecting (starting secondary connections)"
	case 100:
		return "connected"
	case 110:
		return "deactivating"
	case 120:
		return "failed"
	}
	return "unknown"
}
