package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// timerMsg carries a machine callback back onto the program loop.
type timerMsg struct {
	fn func()
}

// scheduler turns machine timers into tea.Tick commands. Callbacks only run
// when the model receives the matching timerMsg, so the machine is touched
// from Update alone.
type scheduler struct {
	pending []tea.Cmd
}

func (s *scheduler) After(d time.Duration, fn func()) {
	s.pending = append(s.pending, tea.Tick(d, func(time.Time) tea.Msg {
		return timerMsg{fn: fn}
	}))
}

// drain returns the timers queued since the last call.
func (s *scheduler) drain() tea.Cmd {
	cmds := s.pending
	s.pending = nil
	return tea.Batch(cmds...)
}
