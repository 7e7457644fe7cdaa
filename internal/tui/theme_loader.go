package tui

import (
	"errors"
	"io"
	"os"

	"github.com/BurntSushi/toml"
)

// LoadTheme reads a theme from r. Colors missing from the file keep their
// default value, so a theme can override only the colors it cares about.
func LoadTheme(r io.Reader) (Theme, error) {
	if r == nil {
		return Theme{}, errors.New("no theme to read")
	}
	theme := NewDefaultTheme()
	if _, err := toml.NewDecoder(r).Decode(&theme); err != nil {
		return Theme{}, err
	}
	return theme, nil
}

// LoadThemeFile loads the theme at path into CurrentTheme. An empty path
// keeps the default theme.
func LoadThemeFile(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	theme, err := LoadTheme(f)
	if err != nil {
		return err
	}
	CurrentTheme = theme
	return nil
}
