package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// SignalColor blends between the theme's SignalLow and SignalHigh colors by
// signal strength (0-100).
func SignalColor(signal uint8) lipgloss.Color {
	start, err := colorful.Hex(CurrentTheme.SignalLow.hex())
	if err != nil {
		return lipgloss.Color(CurrentTheme.SignalHigh.hex())
	}
	end, err := colorful.Hex(CurrentTheme.SignalHigh.hex())
	if err != nil {
		return lipgloss.Color(CurrentTheme.SignalLow.hex())
	}
	if signal > 100 {
		signal = 100
	}
	p := float64(signal) / 100.0
	return lipgloss.Color(start.BlendRgb(end, p).Clamped().Hex())
}

var signalBlocks = []string{"▂", "▄", "▆", "█"}

// SignalBar draws a four-step bar for a signal strength (0-100). Unlit steps
// are drawn with spaces so bars line up in columns.
func SignalBar(signal uint8) string {
	lit := 0
	switch {
	case signal >= 75:
		lit = 4
	case signal >= 50:
		lit = 3
	case signal >= 25:
		lit = 2
	case signal > 0:
		lit = 1
	}
	return strings.Join(signalBlocks[:lit], "") + strings.Repeat(" ", len(signalBlocks)-lit)
}
