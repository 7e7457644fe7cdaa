// Package nmcli implements wifi.Backend by driving NetworkManager's
// command-line client in terse mode.
package nmcli

import (
	"fmt"
	"strings"
	"time"

	"github.com/wifiproxy/wifiproxy/wifi"
)

const (
	// DefaultScanSettle is how long Scan waits after requesting a rescan.
	DefaultScanSettle = 500 * time.Millisecond

	command = "nmcli"
)

var _ wifi.Backend = (*Backend)(nil)

// Backend implements the wifi.Backend interface on top of nmcli.
type Backend struct {
	Runner    Runner
	SysfsRoot string

	// ScanSettle is a fixed delay between the rescan request and the network
	// listing. It is not a completion signal. Set to 0 during testing.
	ScanSettle time.Duration
}

// New creates a new nmcli.Backend that runs the real nmcli binary.
func New() *Backend {
	return &Backend{
		Runner:     ExecRunner{},
		SysfsRoot:  wifi.DefaultSysfsRoot,
		ScanSettle: DefaultScanSettle,
	}
}

// run invokes nmcli and fails with wifi.ErrDaemon on a non-zero exit.
func (b *Backend) run(args ...string) (string, error) {
	res, err := b.Runner.Run(command, args...)
	if err != nil {
		return "", err
	}
	if !res.Success {
		return "", fmt.Errorf("%s %s: %w: %s", command, strings.Join(args, " "), wifi.ErrDaemon, strings.TrimSpace(string(res.Stderr)))
	}
	return string(res.Stdout), nil
}
