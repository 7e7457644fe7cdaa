package nmcli

import (
	"fmt"
	"strings"

	"github.com/wifiproxy/wifiproxy/wifi"
)

// Connect joins ssid on adapter, creating or updating the connection
// profile for it.
func (b *Backend) Connect(adapter, ssid, password string) error {
	args := []string{"device", "wifi", "connect", ssid}
	if password != "" {
		args = append(args, "password", password)
	}
	args = append(args, "ifname", adapter)

	res, err := b.Runner.Run(command, args...)
	if err != nil {
		return err
	}
	if !res.Success {
		// nmcli reports some failures on stdout only.
		msg := strings.TrimSpace(string(res.Stderr))
		if msg == "" {
			msg = strings.TrimSpace(string(res.Stdout))
		}
		return fmt.Errorf("%w: %s", wifi.ErrConnectionFailed, msg)
	}
	return nil
}

// Disconnect drops the active connection on adapter. The connection profile
// is kept.
func (b *Backend) Disconnect(adapter string) error {
	_, err := b.run("device", "disconnect", adapter)
	return err
}

// DeleteConnection removes a saved connection profile.
func (b *Backend) DeleteConnection(name string) error {
	_, err := b.run("connection", "delete", name)
	return err
}

// Status reports the state, active connection, address and gateway of
// adapter. Fields nmcli does not report are left nil.
func (b *Backend) Status(adapter string) (wifi.ConnectionStatus, error) {
	out, err := b.run("-t", "device", "show", adapter)
	if err != nil {
		return wifi.ConnectionStatus{}, err
	}
	return parseStatus(adapter, out), nil
}

func parseStatus(adapter, output string) wifi.ConnectionStatus {
	status := wifi.ConnectionStatus{
		Interface: adapter,
		State:     "unknown",
	}
	for _, p := range ParsePairs(output) {
		switch p.Key {
		case "GENERAL.STATE":
			if p.Value != nil {
				status.State = *p.Value
			}
		case "GENERAL.CONNECTION":
			status.Connection = p.Value
		case "IP4.ADDRESS[1]":
			status.IPv4Address = p.Value
		case "IP4.GATEWAY":
			status.Gateway = p.Value
		}
	}
	return status
}
