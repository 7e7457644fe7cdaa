//go:build !linux && !mock

package main

import (
	"fmt"
	"runtime"

	"github.com/wifiproxy/wifiproxy/wifi"
)

// GetBackend fails on systems without NetworkManager.
func GetBackend(kind string) (wifi.Backend, error) {
	return nil, fmt.Errorf("%w: NetworkManager is not available on %s", wifi.ErrNotSupported, runtime.GOOS)
}
