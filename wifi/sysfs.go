package wifi

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultSysfsRoot is where the kernel exposes network interfaces.
const DefaultSysfsRoot = "/sys/class/net"

// IsUSBDevice reports whether the interface name under sysfsRoot sits on a
// USB bus.
//
// A resolvable device symlink decides on its own. When it cannot be read,
// as in sandboxes that refuse readlink on sysfs, the device's uevent file is
// checked instead. Anything else counts as built-in.
func IsUSBDevice(sysfsRoot, name string) bool {
	if sysfsRoot == "" {
		sysfsRoot = DefaultSysfsRoot
	}
	device := filepath.Join(sysfsRoot, name, "device")

	if target, err := os.Readlink(device); err == nil {
		return strings.Contains(target, "usb")
	}

	uevent, err := os.ReadFile(filepath.Join(device, "uevent"))
	if err != nil {
		return false
	}
	return strings.Contains(string(uevent), "usb")
}
