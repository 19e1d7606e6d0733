// Package terminal implements the simulated shell behind the portfolio: the
// command registry and dispatcher, the session log with its command history,
// and the state machine that paces a submitted command through echo,
// resolution, reveal and clear.
package terminal

import "time"

// Kind tells the presentation layer how to render a line.
type Kind string

const (
	KindInput  Kind = "input"
	KindOutput Kind = "output"
	KindError  Kind = "error"
)

// Line is one entry of the session log.
type Line struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"type"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// Restored marks lines read back from storage. They are shown without
	// the typewriter reveal.
	Restored bool `json:"-"`
}

// Result is the outcome of resolving one command line. A failed result
// carries its message in Error and leaves Content empty.
type Result struct {
	Success bool   `json:"success"`
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`
}

// Command is a parameterless, named operation.
type Command struct {
	Name        string
	Description string
	Usage       string
	Group       string
	Execute     func() Result
}

// ClearSentinel is the content the clear command succeeds with. The machine
// treats an exact match as the signal to wipe the session.
const ClearSentinel = "clear"
