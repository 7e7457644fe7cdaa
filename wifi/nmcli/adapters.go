package nmcli

import "github.com/wifiproxy/wifiproxy/wifi"

// ListAdapters returns every wifi device known to NetworkManager, in the
// order nmcli lists them. Devices of other types are dropped.
func (b *Backend) ListAdapters() ([]wifi.Adapter, error) {
	out, err := b.run("-t", "-f", "DEVICE,TYPE,STATE", "device")
	if err != nil {
		return nil, err
	}

	var adapters []wifi.Adapter
	for _, rec := range ParseRecords(out, 3) {
		if rec[1] != "wifi" {
			continue
		}
		adapters = append(adapters, wifi.Adapter{
			Name:  rec[0],
			State: rec[2],
			IsUSB: b.isUSB(rec[0]),
		})
	}
	return adapters, nil
}

func (b *Backend) isUSB(name string) bool {
	return wifi.IsUSBDevice(b.SysfsRoot, name)
}
