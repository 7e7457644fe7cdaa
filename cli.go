package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wifiproxy/wifiproxy/internal/config"
	"github.com/wifiproxy/wifiproxy/internal/gateway"
	"github.com/wifiproxy/wifiproxy/internal/link"
	"github.com/wifiproxy/wifiproxy/internal/proxy"
	"github.com/wifiproxy/wifiproxy/internal/tui"
	"github.com/wifiproxy/wifiproxy/wifi"
)

// env is what every command needs besides its own flags.
type env struct {
	out        io.Writer
	backend    func() (wifi.Backend, error)
	configPath string
	// links reads nl80211 details for status. Nil when unavailable.
	links linkReader
}

type linkReader interface {
	Link(name string) (link.Info, error)
}

func (e *env) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(e.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", e.configPath, err)
	}
	return cfg, nil
}

// resolveAdapter picks the adapter to act on: the explicit name, then the
// saved profile's interface for ssid, then the configured default, then the
// first USB adapter.
func resolveAdapter(b wifi.AdapterLister, cfg *config.Config, name, ssid string) (wifi.Adapter, error) {
	if name == "" && cfg != nil {
		if n := cfg.FindNetwork(ssid); ssid != "" && n != nil {
			name = n.Interface
		}
		if name == "" {
			name = cfg.DefaultInterface
		}
	}
	return wifi.Resolve(b, name)
}

// adapterFor loads the backend and config and resolves the adapter.
func (e *env) adapterFor(name, ssid string) (wifi.Backend, *config.Config, wifi.Adapter, error) {
	b, err := e.backend()
	if err != nil {
		return nil, nil, wifi.Adapter{}, err
	}
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, nil, wifi.Adapter{}, err
	}
	a, err := resolveAdapter(b, cfg, name, ssid)
	if err != nil {
		return nil, nil, wifi.Adapter{}, err
	}
	return b, cfg, a, nil
}

func runListInterfaces(e *env) error {
	b, err := e.backend()
	if err != nil {
		return err
	}
	adapters, err := b.ListAdapters()
	if err != nil {
		return fmt.Errorf("failed to list interfaces: %w", err)
	}
	if len(adapters) == 0 {
		fmt.Fprintln(e.out, "No WiFi interfaces found.")
		return nil
	}

	fmt.Fprintf(e.out, "%-16s %-12s %s\n", "INTERFACE", "STATE", "TYPE")
	fmt.Fprintln(e.out, strings.Repeat("-", 40))
	for _, a := range adapters {
		kind := "Built-in"
		if a.IsUSB {
			kind = "USB"
		}
		fmt.Fprintf(e.out, "%-16s %-12s %s\n", a.Name, a.State, kind)
	}
	return nil
}

// signalMeter draws a fixed-width bar for a 0-100 signal.
func signalMeter(signal uint8) string {
	lit := 0
	switch {
	case signal >= 80:
		lit = 4
	case signal >= 60:
		lit = 3
	case signal >= 40:
		lit = 2
	case signal >= 20:
		lit = 1
	}
	bar := strings.Repeat("█", lit) + strings.Repeat("░", 4-lit)
	return lipgloss.NewStyle().Foreground(tui.SignalColor(signal)).Render(bar)
}

// truncateSSID shortens s to max runes, ending in "...".
func truncateSSID(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

func runScan(e *env, iface string) error {
	b, _, a, err := e.adapterFor(iface, "")
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Scanning on interface: %s\n\n", a.Name)

	networks, err := b.Scan(a.Name)
	if err != nil {
		return fmt.Errorf("failed to scan: %w", err)
	}
	if len(networks) == 0 {
		fmt.Fprintln(e.out, "No networks found.")
		return nil
	}

	fmt.Fprintf(e.out, "%-32s %6s %s\n", "SSID", "SIGNAL", "SECURITY")
	fmt.Fprintln(e.out, strings.Repeat("-", 60))
	for _, n := range networks {
		fmt.Fprintf(e.out, "%-32s %3d%% %s %s\n", truncateSSID(n.SSID, 32), n.Signal, signalMeter(n.Signal), n.Security)
	}
	return nil
}

func runConnect(e *env, ssid, password string, passwordSet bool, iface string, save bool) error {
	b, cfg, a, err := e.adapterFor(iface, ssid)
	if err != nil {
		return err
	}

	if !passwordSet {
		saved := cfg.FindNetwork(ssid)
		if saved == nil {
			return fmt.Errorf("no password provided and no saved credentials for '%s'", ssid)
		}
		fmt.Fprintf(e.out, "Using saved password for '%s'\n", ssid)
		password = saved.Password
	}

	fmt.Fprintf(e.out, "Connecting to '%s' on interface %s...\n", ssid, a.Name)
	if err := b.Connect(a.Name, ssid, password); err != nil {
		return err
	}
	fmt.Fprintln(e.out, "Connected successfully!")
	slog.Info("connected", "ssid", ssid, "interface", a.Name)

	if save {
		cfg.AddNetwork(config.Network{SSID: ssid, Password: password, Interface: a.Name})
		if err := cfg.Save(e.configPath); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Fprintln(e.out, "Credentials saved to config.")
	}

	fmt.Fprintln(e.out)
	status, err := b.Status(a.Name)
	if err != nil {
		return err
	}
	e.printStatus(status)
	return nil
}

func (e *env) printStatus(s wifi.ConnectionStatus) {
	fmt.Fprintf(e.out, "Interface: %s\n", s.Interface)
	fmt.Fprintf(e.out, "State:     %s\n", s.State)
	if s.Connection != nil {
		fmt.Fprintf(e.out, "Connected: %s\n", *s.Connection)
	} else {
		fmt.Fprintln(e.out, "Connected: (none)")
	}
	if s.IPv4Address != nil {
		fmt.Fprintf(e.out, "IP:        %s\n", *s.IPv4Address)
	}
	if s.Gateway != nil {
		fmt.Fprintf(e.out, "Gateway:   %s\n", *s.Gateway)
	}

	if e.links == nil || s.Kind() != wifi.StateConnected {
		return
	}
	info, err := e.links.Link(s.Interface)
	if err != nil {
		slog.Debug("no link details", "interface", s.Interface, "err", err)
		return
	}
	if info.Signal != 0 {
		fmt.Fprintf(e.out, "Signal:    %d dBm (%d%%)\n", info.Signal, info.Quality())
	}
	if band := info.Band(); band != "" {
		fmt.Fprintf(e.out, "Band:      %s (%d MHz)\n", band, info.Frequency)
	}
	if info.BSSID != "" {
		fmt.Fprintf(e.out, "BSSID:     %s\n", info.BSSID)
	}
	if info.TxBitrate > 0 {
		fmt.Fprintf(e.out, "Bitrate:   %.1f Mbit/s\n", float64(info.TxBitrate)/1e6)
	}
}

func runStatus(e *env, iface string) error {
	b, _, a, err := e.adapterFor(iface, "")
	if err != nil {
		return err
	}
	status, err := b.Status(a.Name)
	if err != nil {
		return err
	}
	e.printStatus(status)
	return nil
}

func runDisconnect(e *env, iface string) error {
	b, _, a, err := e.adapterFor(iface, "")
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Disconnecting interface %s...\n", a.Name)
	if err := b.Disconnect(a.Name); err != nil {
		return err
	}
	fmt.Fprintln(e.out, "Disconnected.")
	return nil
}

// runForget deletes the daemon's profile and the saved credentials for name.
// It fails only when neither existed.
func runForget(e *env, name string) error {
	b, err := e.backend()
	if err != nil {
		return err
	}
	deleteErr := b.DeleteConnection(name)
	if deleteErr == nil {
		fmt.Fprintf(e.out, "Deleted connection profile '%s'.\n", name)
	}

	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	if !cfg.RemoveNetwork(name) {
		return deleteErr
	}
	if err := cfg.Save(e.configPath); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	fmt.Fprintf(e.out, "Removed saved credentials for '%s'.\n", name)
	return nil
}

// gatewayOf returns the gateway address of the resolved adapter.
func (e *env) gatewayOf(iface string) (string, error) {
	b, _, a, err := e.adapterFor(iface, "")
	if err != nil {
		return "", err
	}
	status, err := b.Status(a.Name)
	if err != nil {
		return "", err
	}
	if status.Gateway == nil {
		return "", fmt.Errorf("no gateway found for interface %s", a.Name)
	}
	return *status.Gateway, nil
}

func runFetchGateway(ctx context.Context, e *env, iface, url, output string) error {
	gw, err := e.gatewayOf(iface)
	if err != nil {
		return err
	}
	client := gateway.New(gw)
	if url == "" {
		url = client.BaseURL + "/"
	}

	fmt.Fprintf(e.out, "Fetching %s ...\n", url)
	body, err := client.Fetch(ctx, url)
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	fmt.Fprintf(e.out, "Saved to %s\n", output)
	return nil
}

func runServe(ctx context.Context, e *env, iface string, port int) error {
	gw, err := e.gatewayOf(iface)
	if err != nil {
		return err
	}
	srv, err := proxy.New(gateway.New(gw), slog.Default())
	if err != nil {
		return err
	}

	addr := net.JoinHostPort("", strconv.Itoa(port))
	fmt.Fprintf(e.out, "Proxying http://localhost:%d to %s\n", port, gw)
	return srv.ListenAndServe(ctx, addr)
}

func runSaveNetwork(e *env, ssid, password, iface string) error {
	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	cfg.AddNetwork(config.Network{SSID: ssid, Password: password, Interface: iface})
	if err := cfg.Save(e.configPath); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	fmt.Fprintf(e.out, "Saved network '%s' to %s\n", ssid, e.configPath)
	return nil
}

func runShowConfig(e *env) error {
	fmt.Fprintf(e.out, "Config file: %s\n\n", e.configPath)
	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	if cfg.DefaultInterface != "" {
		fmt.Fprintf(e.out, "Default interface: %s\n\n", cfg.DefaultInterface)
	}
	if len(cfg.Networks) == 0 {
		fmt.Fprintln(e.out, "No saved networks.")
		return nil
	}

	fmt.Fprintf(e.out, "%-24s %-20s %s\n", "SSID", "INTERFACE", "PASSWORD")
	fmt.Fprintln(e.out, strings.Repeat("-", 60))
	for _, n := range cfg.Networks {
		iface := n.Interface
		if iface == "" {
			iface = "-"
		}
		fmt.Fprintf(e.out, "%-24s %-20s %s\n", n.SSID, iface, config.MaskPassword(n.Password))
	}
	return nil
}

func runShare(e *env, ssid string) error {
	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	n := cfg.FindNetwork(ssid)
	if n == nil {
		return fmt.Errorf("%w: no saved network '%s'", wifi.ErrNetworkNotFound, ssid)
	}
	qr, err := GenerateWifiQRCode(n.SSID, n.Password)
	if err != nil {
		return fmt.Errorf("generate QR code: %w", err)
	}
	fmt.Fprint(e.out, qr)
	fmt.Fprintf(e.out, "Scan to join '%s'\n", n.SSID)
	return nil
}

func runTUI(e *env, iface string) error {
	b, cfg, a, err := e.adapterFor(iface, "")
	if err != nil {
		return err
	}

	return tui.Run(b, tui.Options{
		Adapter: a.Name,
		SavedPassword: func(ssid string) (string, bool) {
			n := cfg.FindNetwork(ssid)
			if n == nil {
				return "", false
			}
			return n.Password, true
		},
		OnConnected: func(ssid, password string) error {
			if password == "" {
				return nil
			}
			cfg.AddNetwork(config.Network{SSID: ssid, Password: password, Interface: a.Name})
			return cfg.Save(e.configPath)
		},
	})
}

// describeError adds a hint for the errors a user can act on.
func describeError(err error) string {
	switch {
	case errors.Is(err, wifi.ErrNoUSBAdapter):
		return "plug in a USB WiFi adapter or pass -interface"
	case errors.Is(err, wifi.ErrAdapterNotFound):
		return "run list-interfaces to see the available adapters"
	case errors.Is(err, wifi.ErrExecution):
		return "is NetworkManager installed and nmcli on your PATH?"
	case errors.Is(err, wifi.ErrConnectionFailed):
		return "check the password and that the network is in range"
	case errors.Is(err, wifi.ErrDaemon):
		return "NetworkManager rejected the request"
	case errors.Is(err, wifi.ErrOutputParse):
		return "nmcli printed output this version does not understand"
	case errors.Is(err, gateway.ErrFetchFailed):
		return "is the device's web server reachable through the adapter?"
	case errors.Is(err, wifi.ErrNotSupported):
		return "this system has no supported network daemon"
	}
	return ""
}
