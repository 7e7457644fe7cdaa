// Package config loads and saves the saved-network profiles.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Network is a saved network profile.
type Network struct {
	SSID      string `toml:"ssid"`
	Password  string `toml:"password"`
	Interface string `toml:"interface,omitempty"`
}

// Config is the on-disk configuration file.
type Config struct {
	DefaultInterface string    `toml:"default_interface,omitempty"`
	Networks         []Network `toml:"networks"`
}

// DefaultPath returns $XDG_CONFIG_HOME/wifi-proxy/config.toml, falling back
// to ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "wifi-proxy", "config.toml"), nil
}

// Load reads the config at path. A missing file yields an empty config.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses a config from r.
func Decode(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config to path, creating parent directories as needed.
// The file holds passwords so it is only readable by its owner.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return err
	}
	// WriteFile keeps the mode of an existing file.
	return os.Chmod(path, 0o600)
}

// FindNetwork returns the saved profile for ssid, or nil.
func (c *Config) FindNetwork(ssid string) *Network {
	for i := range c.Networks {
		if c.Networks[i].SSID == ssid {
			return &c.Networks[i]
		}
	}
	return nil
}

// AddNetwork saves n, replacing any existing profile with the same SSID.
func (c *Config) AddNetwork(n Network) {
	if existing := c.FindNetwork(n.SSID); existing != nil {
		*existing = n
		return
	}
	c.Networks = append(c.Networks, n)
}

// RemoveNetwork drops the profile for ssid and reports whether one existed.
func (c *Config) RemoveNetwork(ssid string) bool {
	for i := range c.Networks {
		if c.Networks[i].SSID == ssid {
			c.Networks = append(c.Networks[:i], c.Networks[i+1:]...)
			return true
		}
	}
	return false
}

// MaskPassword hides a password for display, keeping at most 12 asterisks.
func MaskPassword(p string) string {
	n := len([]rune(p))
	if n > 12 {
		n = 12
	}
	return string(bytes.Repeat([]byte("*"), n))
}
