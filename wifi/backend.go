package wifi

import "strings"

// Adapter is a wireless network interface known to the network daemon.
type Adapter struct {
	Name  string
	State string // Raw token reported by the daemon, e.g. "connected"
	IsUSB bool
}

// Kind returns the best-effort classification of the adapter's raw state.
func (a Adapter) Kind() StateKind {
	return ClassifyState(a.State)
}

// ConnectionStatus is the state of a single adapter as reported by the daemon.
// A nil field means the daemon reported no value for it.
type ConnectionStatus struct {
	Interface   string
	State       string  // Raw token, e.g. "100 (connected)"
	Connection  *string // Active connection profile name
	IPv4Address *string // CIDR notation, e.g. "192.168.4.2/24"
	Gateway     *string
}

// Kind returns the best-effort classification of the status' raw state.
func (s ConnectionStatus) Kind() StateKind {
	return ClassifyState(s.State)
}

// Network is a single visible network from a scan.
type Network struct {
	SSID     string
	Signal   uint8  // 0-100
	Security string // Empty for open networks, e.g. "WPA2" or "WPA1 WPA2"
}

// IsOpen returns true if the network advertises no security.
func (n Network) IsOpen() bool {
	return strings.TrimSpace(n.Security) == ""
}

// AdapterLister lists the wireless adapters on the system.
type AdapterLister interface {
	// ListAdapters returns every wireless adapter, in daemon listing order.
	ListAdapters() ([]Adapter, error)
}

// Backend defines the interface for managing a secondary wireless adapter.
type Backend interface {
	AdapterLister

	// Connect joins the network ssid on the given adapter.
	// An empty password joins an open network.
	Connect(adapter, ssid, password string) error
	// Disconnect drops the active connection on the given adapter.
	Disconnect(adapter string) error
	// Status reports the connection state of the given adapter.
	Status(adapter string) (ConnectionStatus, error)
	// Scan rescans and returns visible networks, strongest first.
	Scan(adapter string) ([]Network, error)
	// DeleteConnection removes a saved connection profile by name.
	DeleteConnection(name string) error
}
