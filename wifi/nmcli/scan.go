package nmcli

import (
	"strconv"
	"time"

	"github.com/wifiproxy/wifiproxy/wifi"
)

// Scan requests a rescan on adapter, waits ScanSettle and returns the
// visible networks, deduplicated by SSID and strongest first.
func (b *Backend) Scan(adapter string) ([]wifi.Network, error) {
	// A busy adapter rejects a redundant rescan, but the listing below still
	// returns its most recent results, so the outcome is ignored.
	_, _ = b.Runner.Run(command, "device", "wifi", "rescan", "ifname", adapter)

	if b.ScanSettle > 0 {
		time.Sleep(b.ScanSettle)
	}

	out, err := b.run("-t", "-f", "SSID,SIGNAL,SECURITY", "device", "wifi", "list", "ifname", adapter)
	if err != nil {
		return nil, err
	}

	networks := parseNetworks(out)
	wifi.SortNetworks(networks)
	return networks, nil
}

func parseNetworks(output string) []wifi.Network {
	var networks []wifi.Network
	for _, rec := range ParseRecords(output, 3) {
		networks = append(networks, wifi.Network{
			SSID:     rec[0],
			Signal:   parseSignal(rec[1]),
			Security: rec[2],
		})
	}
	return wifi.DedupNetworks(networks)
}

// parseSignal parses a 0-100 signal percentage. Garbage yields 0 so that one
// bad record does not fail the whole scan.
func parseSignal(s string) uint8 {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	if v > 100 {
		return 100
	}
	return uint8(v)
}
