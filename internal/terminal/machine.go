package terminal

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

// State is the machine's position in the submit cycle. Every state other
// than StateIdle counts as processing and blocks new submissions.
type State int

const (
	StateIdle State = iota
	StateAwaitingResult
	StateRevealing
	StateClearing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingResult:
		return "awaiting-result"
	case StateRevealing:
		return "revealing"
	case StateClearing:
		return "clearing"
	}
	return "unknown"
}

// Delays pace the submit cycle.
type Delays struct {
	Submit time.Duration // echo to resolution
	Reveal time.Duration // result appended to idle
	Clear  time.Duration // clear detected to wipe
}

func DefaultDelays() Delays {
	return Delays{
		Submit: 200 * time.Millisecond,
		Reveal: 300 * time.Millisecond,
		Clear:  150 * time.Millisecond,
	}
}

type Options struct {
	Registry  *Registry
	Storage   Storage
	Scheduler Scheduler
	Logger    *zap.Logger
	Prompt    string
	Welcome   string
	Delays    Delays
	Now       func() time.Time
}

// Machine drives one terminal session. It is not safe for concurrent use;
// callers serialize access and deliver scheduler callbacks on the same
// goroutine.
type Machine struct {
	registry *Registry
	session  *Session
	store    persister
	sched    Scheduler
	log      *zap.Logger
	prompt   string
	welcome  string
	delays   Delays
	now      func() time.Time

	state State
	input string
	last  *Result
}

// NewMachine restores the session from opts.Storage. A session with no
// stored lines is seeded with the welcome line.
func NewMachine(opts Options) *Machine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	m := &Machine{
		registry: opts.Registry,
		store:    persister{st: opts.Storage, log: log},
		sched:    opts.Scheduler,
		log:      log,
		prompt:   opts.Prompt,
		welcome:  opts.Welcome,
		delays:   opts.Delays,
		now:      opts.Now,
	}
	if m.sched == nil {
		m.sched = ImmediateScheduler{}
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.welcome == "" {
		m.welcome = "Welcome! Type 'help' to see available commands."
	}

	m.session = RestoreSession(opts.Storage, log)
	if len(m.session.Lines) == 0 {
		m.addLine(KindOutput, m.welcome)
	}
	return m
}

func (m *Machine) State() State { return m.state }

// Processing reports whether a submitted command is still in flight.
func (m *Machine) Processing() bool { return m.state != StateIdle }

func (m *Machine) Registry() *Registry { return m.registry }

// Session returns a copy of the current session.
func (m *Machine) Session() Session { return m.session.clone() }

func (m *Machine) Lines() []Line { return append([]Line(nil), m.session.Lines...) }

// LastResult is the most recent resolution, if any.
func (m *Machine) LastResult() (Result, bool) {
	if m.last == nil {
		return Result{}, false
	}
	return *m.last, true
}

func (m *Machine) Input() string { return m.input }

func (m *Machine) SetInput(s string) { m.input = s }

// Submit echoes line and schedules its resolution. Blank lines and
// submissions made while processing are dropped; the return value reports
// whether the line was accepted.
func (m *Machine) Submit(line string) bool {
	command := strings.TrimSpace(line)
	if command == "" || m.Processing() {
		return false
	}

	m.state = StateAwaitingResult
	m.input = ""
	m.session.record(command)
	m.store.history(m.session.History)
	m.addLine(KindInput, m.echo(command))

	m.log.Debug("Command submitted", zap.String("command", command))
	m.sched.After(m.delays.Submit, func() { m.resolve(command) })
	return true
}

func (m *Machine) resolve(command string) {
	res := m.registry.Resolve(command)
	m.last = &res

	if res.Success && res.Content == ClearSentinel {
		m.state = StateClearing
		m.sched.After(m.delays.Clear, m.clear)
		return
	}

	if res.Success {
		m.addLine(KindOutput, res.Content)
	} else {
		msg := res.Error
		if msg == "" {
			msg = "Command failed"
		}
		m.addLine(KindError, msg)
	}
	m.state = StateRevealing
	m.sched.After(m.delays.Reveal, func() { m.state = StateIdle })
}

func (m *Machine) clear() {
	m.session.reset()
	m.store.clear()
	m.addLine(KindOutput, m.welcome)
	m.store.history(m.session.History)
	m.state = StateIdle
}

// HistoryPrevious replaces the input with the next older history entry.
func (m *Machine) HistoryPrevious() bool {
	if m.Processing() {
		return false
	}
	entry, ok := m.session.Previous()
	if ok {
		m.input = entry
	}
	return ok
}

// HistoryNext replaces the input with the next newer history entry, or
// clears it when stepping past the newest.
func (m *Machine) HistoryNext() bool {
	if m.Processing() {
		return false
	}
	entry, ok := m.session.Next()
	if ok {
		m.input = entry
	}
	return ok
}

// Complete replaces the input with the only command name it prefixes.
func (m *Machine) Complete() bool {
	name, ok := m.registry.Complete(m.input)
	if ok {
		m.input = name
	}
	return ok
}

func (m *Machine) addLine(kind Kind, content string) Line {
	line := m.session.append(kind, content, m.now())
	m.store.lines(m.session.Lines)
	m.store.counter(m.session.Counter)
	return line
}

func (m *Machine) echo(command string) string {
	if m.prompt == "" {
		return command
	}
	return m.prompt + " " + command
}
