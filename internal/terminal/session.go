package terminal

import (
	"time"

	"github.com/google/uuid"
)

// Session is the ordered log of lines plus the command history. Cursor is
// -1 when not browsing history, otherwise a valid index into History.
type Session struct {
	Lines   []Line
	History []string
	Cursor  int
	Counter int
}

func NewSession() *Session {
	return &Session{Cursor: -1}
}

func (s *Session) append(kind Kind, content string, now time.Time) Line {
	line := Line{
		ID:        "line-" + uuid.NewString(),
		Kind:      kind,
		Content:   content,
		Timestamp: now.UTC().Truncate(time.Millisecond),
	}
	s.Lines = append(s.Lines, line)
	s.Counter++
	return line
}

func (s *Session) record(command string) {
	s.History = append(s.History, command)
	s.Cursor = -1
}

// Previous moves the cursor toward older entries. The first press jumps to
// the newest entry; the oldest entry is a floor.
func (s *Session) Previous() (string, bool) {
	if len(s.History) == 0 {
		return "", false
	}
	if s.Cursor == -1 {
		s.Cursor = len(s.History) - 1
	} else if s.Cursor > 0 {
		s.Cursor--
	}
	return s.History[s.Cursor], true
}

// Next moves the cursor toward newer entries. Stepping past the newest
// leaves history mode and yields an empty input.
func (s *Session) Next() (string, bool) {
	if s.Cursor == -1 {
		return "", false
	}
	s.Cursor++
	if s.Cursor >= len(s.History) {
		s.Cursor = -1
		return "", true
	}
	return s.History[s.Cursor], true
}

func (s *Session) reset() {
	s.Lines = nil
	s.History = nil
	s.Cursor = -1
	s.Counter = 0
}

func (s *Session) clone() Session {
	return Session{
		Lines:   append([]Line(nil), s.Lines...),
		History: append([]string(nil), s.History...),
		Cursor:  s.Cursor,
		Counter: s.Counter,
	}
}
