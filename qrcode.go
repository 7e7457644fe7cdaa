package main

import (
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// EscapeWifiString handles the special character escaping for SSID and Password.
func EscapeWifiString(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`;`, `\;`,
		`,`, `\,`,
		`:`, `\:`,
		`"`, `\"`,
	)
	return r.Replace(s)
}

// WifiURI builds the Wi-Fi joining string read by phone cameras. An empty
// password marks the network as open.
func WifiURI(ssid, password string) string {
	var b strings.Builder
	b.WriteString("WIFI:S:")
	b.WriteString(EscapeWifiString(ssid))
	b.WriteString(";")
	if password == "" {
		b.WriteString("T:nopass;")
	} else {
		// Most readers also accept WPA for WPA2 and WPA3 networks.
		b.WriteString("T:WPA;P:")
		b.WriteString(EscapeWifiString(password))
		b.WriteString(";")
	}
	b.WriteString(";")
	return b.String()
}

// GenerateWifiQRCode returns a terminal-friendly QR code for joining ssid.
func GenerateWifiQRCode(ssid, password string) (string, error) {
	q, err := qrcode.New(WifiURI(ssid, password), qrcode.Medium)
	if err != nil {
		return "", err
	}
	return q.ToSmallString(false), nil
}
