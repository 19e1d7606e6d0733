package terminal

import (
	"sort"
	"time"
)

// Scheduler runs fn once d has elapsed. Implementations must call fn on the
// goroutine that owns the machine.
type Scheduler interface {
	After(d time.Duration, fn func())
}

// ImmediateScheduler runs every callback synchronously, collapsing the
// pacing delays. Request/response front ends use it so a submission returns
// a settled session.
type ImmediateScheduler struct{}

func (ImmediateScheduler) After(_ time.Duration, fn func()) { fn() }

// ManualScheduler holds callbacks until the owner advances its clock.
type ManualScheduler struct {
	now     time.Duration
	seq     int
	pending []timer
}

type timer struct {
	at  time.Duration
	seq int
	fn  func()
}

func (s *ManualScheduler) After(d time.Duration, fn func()) {
	s.seq++
	s.pending = append(s.pending, timer{at: s.now + d, seq: s.seq, fn: fn})
}

// Advance moves the clock forward by d, running due callbacks in order,
// including ones scheduled by callbacks that fall inside the window.
func (s *ManualScheduler) Advance(d time.Duration) {
	target := s.now + d
	for {
		t, ok := s.pop(target)
		if !ok {
			break
		}
		s.now = t.at
		t.fn()
	}
	s.now = target
}

// Flush runs callbacks until none remain.
func (s *ManualScheduler) Flush() {
	for len(s.pending) > 0 {
		s.sort()
		s.Advance(s.pending[0].at - s.now)
	}
}

// Pending reports how many callbacks are waiting.
func (s *ManualScheduler) Pending() int {
	return len(s.pending)
}

func (s *ManualScheduler) pop(limit time.Duration) (timer, bool) {
	if len(s.pending) == 0 {
		return timer{}, false
	}
	s.sort()
	t := s.pending[0]
	if t.at > limit {
		return timer{}, false
	}
	s.pending = s.pending[1:]
	return t, true
}

func (s *ManualScheduler) sort() {
	sort.Slice(s.pending, func(i, j int) bool {
		if s.pending[i].at == s.pending[j].at {
			return s.pending[i].seq < s.pending[j].seq
		}
		return s.pending[i].at < s.pending[j].at
	})
}
