package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Color is a lipgloss.TerminalColor that can be read from TOML, either as a
// single "#RRGGBB" string or as a ["light", "dark"] pair.
type Color struct {
	lipgloss.TerminalColor
}

// UnmarshalTOML implements toml.Unmarshaler.
func (c *Color) UnmarshalTOML(v interface{}) error {
	switch v := v.(type) {
	case string:
		c.TerminalColor = lipgloss.Color(v)
		return nil
	case []interface{}:
		if len(v) != 2 {
			return fmt.Errorf("adaptive color needs [light, dark], got %d values", len(v))
		}
		light, ok1 := v[0].(string)
		dark, ok2 := v[1].(string)
		if !ok1 || !ok2 {
			return fmt.Errorf("adaptive color values must be strings")
		}
		c.TerminalColor = lipgloss.AdaptiveColor{Light: light, Dark: dark}
		return nil
	}
	return fmt.Errorf("unsupported color value %T", v)
}

// hex resolves the color to a single hex string for the current terminal
// background.
func (c Color) hex() string {
	switch v := c.TerminalColor.(type) {
	case lipgloss.Color:
		return string(v)
	case lipgloss.AdaptiveColor:
		if lipgloss.HasDarkBackground() {
			return v.Dark
		}
		return v.Light
	}
	return ""
}

// Theme contains the colors for the application.
type Theme struct {
	Primary    Color
	Subtle     Color
	Success    Color
	Error      Color
	Normal     Color
	Disabled   Color
	Border     Color
	SignalHigh Color
	SignalLow  Color
}

// CurrentTheme is the active theme for the application.
var CurrentTheme = NewDefaultTheme()

// NewDefaultTheme creates a new default theme.
func NewDefaultTheme() Theme {
	return Theme{
		Primary:    Color{lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#D359E3"}}, // Purple/Pink
		Subtle:     Color{lipgloss.AdaptiveColor{Light: "#BDBDBD", Dark: "#616161"}}, // Gray
		Success:    Color{lipgloss.AdaptiveColor{Light: "#388E3C", Dark: "#81C784"}}, // Green
		Error:      Color{lipgloss.AdaptiveColor{Light: "#D32F2F", Dark: "#E57373"}}, // Red
		Normal:     Color{lipgloss.AdaptiveColor{Light: "#212121", Dark: "#FFFFFF"}}, // Black/White
		Disabled:   Color{lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#424242"}},
		Border:     Color{lipgloss.AdaptiveColor{Light: "#BDBDBD", Dark: "#616161"}},
		SignalHigh: Color{lipgloss.AdaptiveColor{Light: "#00B300", Dark: "#00FF00"}},
		SignalLow:  Color{lipgloss.AdaptiveColor{Light: "#D05F00", Dark: "#BC3C00"}},
	}
}
