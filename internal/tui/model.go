// Package tui runs the terminal portfolio as a full-screen Bubble Tea
// program: a scrolling transcript with typewriter reveal above a prompt.
package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Zachkp/termfolio/internal/portfolio"
	"github.com/Zachkp/termfolio/internal/terminal"
)

// revealMsg advances every running typewriter by one rune.
type revealMsg struct{}

type Options struct {
	Content *portfolio.Content
	Storage terminal.Storage
	Opener  terminal.Opener
	Logger  *zap.Logger
	Delays  terminal.Delays
	// RevealInterval overrides terminal.RevealInterval when positive.
	RevealInterval time.Duration
}

// Model is the Bubble Tea model for one shell session.
type Model struct {
	machine *terminal.Machine
	app     *terminal.AppContext
	sched   *scheduler
	log     *zap.Logger

	input    textinput.Model
	viewport viewport.Model
	styles   Styles
	theme    terminal.Theme

	writers   map[string]*terminal.Typewriter
	seen      map[string]bool
	interval  time.Duration
	revealing bool

	ready  bool
	width  int
	height int
}

func New(opts Options) *Model {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	interval := opts.RevealInterval
	if interval <= 0 {
		interval = terminal.RevealInterval
	}

	m := &Model{
		app:      terminal.NewAppContext(terminal.ThemeDark, opts.Opener),
		sched:    &scheduler{},
		log:      log,
		writers:  make(map[string]*terminal.Typewriter),
		seen:     make(map[string]bool),
		interval: interval,
		viewport: viewport.New(80, 20),
	}

	site := opts.Content.Site()
	m.machine = terminal.NewMachine(terminal.Options{
		Registry:  terminal.NewRegistry(opts.Content, m.app),
		Storage:   opts.Storage,
		Scheduler: m.sched,
		Logger:    log,
		Prompt:    site.Prompt,
		Welcome:   site.Welcome,
		Delays:    opts.Delays,
	})

	ti := textinput.New()
	ti.Prompt = site.Prompt + " "
	ti.Placeholder = "help"
	ti.CharLimit = 256
	ti.Cursor.SetMode(cursor.CursorStatic)
	ti.Focus()
	m.input = ti

	m.applyTheme()
	return m
}

// Machine exposes the session machine, mainly for tests.
func (m *Model) Machine() *terminal.Machine { return m.machine }

func (m *Model) Init() tea.Cmd {
	return m.sync()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-2, 1)
		m.input.Width = max(msg.Width-len(m.input.Prompt)-1, 1)
		m.ready = true

	case timerMsg:
		msg.fn()

	case revealMsg:
		m.revealing = false
		for _, w := range m.writers {
			w.Tick()
		}

	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, tea.Batch(cmd, m.sync())
		}
	}

	var cmd tea.Cmd
	if _, isKey := msg.(tea.KeyMsg); isKey && !m.machine.Processing() {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	if _, isMouse := msg.(tea.MouseMsg); isMouse {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	cmds = append(cmds, m.sync())
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return tea.Quit, true
	case "enter":
		if m.machine.Submit(m.input.Value()) {
			m.input.SetValue("")
		}
		return nil, true
	case "up":
		m.machine.SetInput(m.input.Value())
		if m.machine.HistoryPrevious() {
			m.setInput(m.machine.Input())
		}
		return nil, true
	case "down":
		m.machine.SetInput(m.input.Value())
		if m.machine.HistoryNext() {
			m.setInput(m.machine.Input())
		}
		return nil, true
	case "tab":
		m.machine.SetInput(m.input.Value())
		if m.machine.Complete() {
			m.setInput(m.machine.Input())
		}
		return nil, true
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd, true
	}
	return nil, false
}

func (m *Model) setInput(s string) {
	m.input.SetValue(s)
	m.input.CursorEnd()
}

// sync picks up lines the machine added, starts their typewriters, redraws
// the transcript and returns the commands that keep timers running.
func (m *Model) sync() tea.Cmd {
	if m.app.Theme() != m.theme {
		m.applyTheme()
	}

	lines := m.machine.Lines()
	live := make(map[string]bool, len(lines))
	for _, line := range lines {
		live[line.ID] = true
		if m.seen[line.ID] {
			continue
		}
		m.seen[line.ID] = true
		if terminal.Animates(line) {
			m.writers[line.ID] = terminal.NewTypewriter(line.Content)
		}
	}

	animating := false
	for id, w := range m.writers {
		if !live[id] {
			delete(m.writers, id)
			continue
		}
		if !w.Done() {
			animating = true
		}
	}

	m.viewport.SetContent(m.transcript(lines))
	m.viewport.GotoBottom()

	cmds := []tea.Cmd{m.sched.drain()}
	if animating && !m.revealing {
		m.revealing = true
		cmds = append(cmds, tea.Tick(m.interval, func(time.Time) tea.Msg { return revealMsg{} }))
	}
	return tea.Batch(cmds...)
}

func (m *Model) applyTheme() {
	m.theme = m.app.Theme()
	m.styles = StylesFor(m.theme)
	m.input.PromptStyle = m.styles.Prompt
	m.input.TextStyle = m.styles.Input
}

func (m *Model) transcript(lines []terminal.Line) string {
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteString("\n")
		}
		text := line.Content
		if w, ok := m.writers[line.ID]; ok {
			text = w.Visible()
		}
		b.WriteString(renderLine(m.styles, line.Kind, text))
	}
	return b.String()
}

// renderLine styles text for its kind and wraps URLs in OSC 8 hyperlinks.
func renderLine(s Styles, kind terminal.Kind, text string) string {
	style := s.forKind(kind)
	var b strings.Builder
	for _, seg := range terminal.SplitLinks(text) {
		if seg.Link {
			b.WriteString(hyperlink(seg.Text, s.Link.Render(seg.Text)))
			continue
		}
		b.WriteString(style.Render(seg.Text))
	}
	return b.String()
}

func hyperlink(url, label string) string {
	return "\x1b]8;;" + url + "\x1b\\" + label + "\x1b]8;;\x1b\\"
}

func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	var footer string
	if m.machine.Processing() {
		footer = m.styles.Status.Render("...")
	} else {
		footer = m.input.View()
	}
	return m.viewport.View() + "\n" + footer
}
