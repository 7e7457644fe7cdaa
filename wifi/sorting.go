package wifi

import "sort"

// DedupNetworks drops hidden networks (empty SSID) and every repeat of an
// SSID after its first occurrence. Order is preserved.
func DedupNetworks(networks []Network) []Network {
	seen := make(map[string]bool, len(networks))
	var out []Network
	for _, n := range networks {
		if n.SSID == "" || seen[n.SSID] {
			continue
		}
		seen[n.SSID] = true
		out = append(out, n)
	}
	return out
}

// SortNetworks sorts networks in place by signal strength, strongest first.
// Networks with equal strength keep their discovery order.
func SortNetworks(networks []Network) {
	sort.SliceStable(networks, func(i, j int) bool {
		return networks[i].Signal > networks[j].Signal
	})
}
