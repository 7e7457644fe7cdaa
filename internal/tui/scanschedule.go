package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Auto rescan intervals.
const (
	RescanOff     = 0
	RescanDefault = 10 * time.Second
)

// ScanSchedule re-runs a scan every interval while it is enabled.
type ScanSchedule struct {
	interval time.Duration
	// gen increases on every start so ticks from an earlier run are dropped.
	gen int
}

type rescanTickMsg struct{ gen int }

// Enabled reports whether periodic scans are running.
func (s *ScanSchedule) Enabled() bool {
	return s.interval != RescanOff
}

// Toggle switches periodic scans between off and interval.
func (s *ScanSchedule) Toggle(interval time.Duration) (bool, tea.Cmd) {
	if s.Enabled() {
		s.interval = RescanOff
		return false, nil
	}
	if interval <= 0 {
		interval = RescanDefault
	}
	s.interval = interval
	s.gen++
	return true, s.tick()
}

// Update returns a scan plus the next tick when msg is a current tick.
func (s *ScanSchedule) Update(msg tea.Msg) tea.Cmd {
	tick, ok := msg.(rescanTickMsg)
	if !ok || !s.Enabled() || tick.gen != s.gen {
		return nil
	}
	return tea.Batch(func() tea.Msg { return scanMsg{} }, s.tick())
}

func (s *ScanSchedule) tick() tea.Cmd {
	gen := s.gen
	return tea.Tick(s.interval, func(time.Time) tea.Msg {
		return rescanTickMsg{gen: gen}
	})
}
