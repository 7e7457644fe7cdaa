//go:build linux && !mock

package main

import (
	"fmt"

	"github.com/wifiproxy/wifiproxy/wifi"
	"github.com/wifiproxy/wifiproxy/wifi/networkmanager"
	"github.com/wifiproxy/wifiproxy/wifi/nmcli"
)

// GetBackend returns the backend named kind: "nmcli" (default) or "dbus".
func GetBackend(kind string) (wifi.Backend, error) {
	switch kind {
	case "", "nmcli":
		return nmcli.New(), nil
	case "dbus":
		return networkmanager.New()
	}
	return nil, fmt.Errorf("unknown backend %q, want nmcli or dbus", kind)
}
