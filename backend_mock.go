//go:build mock

package main

import (
	"github.com/wifiproxy/wifiproxy/wifi"
	mockBackend "github.com/wifiproxy/wifiproxy/wifi/mock"
)

// GetBackend ignores kind and returns the demo backend.
func GetBackend(kind string) (wifi.Backend, error) {
	return mockBackend.New()
}
