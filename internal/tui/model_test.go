package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/termfolio/internal/portfolio"
	"github.com/Zachkp/termfolio/internal/terminal"
)

type recordingOpener struct {
	urls []string
}

func (r *recordingOpener) Open(url string) error {
	r.urls = append(r.urls, url)
	return nil
}

func newTestModel(t *testing.T, st terminal.Storage) (*Model, *recordingOpener) {
	t.Helper()
	content, err := portfolio.Default()
	require.NoError(t, err)
	opener := &recordingOpener{}
	m := New(Options{
		Content:        content,
		Storage:        st,
		Opener:         opener,
		RevealInterval: 1,
	})
	_, cmd := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	settle(t, m, cmd)
	return m, opener
}

// settle runs cmd and every command it leads to until the program is idle.
func settle(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, 100000, "program never settled")
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case tea.QuitMsg:
			return
		default:
			_, c := m.Update(msg)
			queue = append(queue, c)
		}
	}
}

func typeText(m *Model, s string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func press(m *Model, k tea.KeyType) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: k})
	return cmd
}

func run(t *testing.T, m *Model, command string) {
	t.Helper()
	typeText(m, command)
	settle(t, m, press(m, tea.KeyEnter))
}

func TestWelcomeRevealed(t *testing.T) {
	m, _ := newTestModel(t, terminal.NewMemoryStorage())
	settle(t, m, m.Init())

	assert.Contains(t, m.View(), "Welcome! Type 'help' to see available commands.")
	assert.Empty(t, runningWriters(m))
}

func TestSubmitCycle(t *testing.T) {
	m, _ := newTestModel(t, terminal.NewMemoryStorage())
	settle(t, m, m.Init())

	typeText(m, "about")
	cmd := press(m, tea.KeyEnter)
	assert.Equal(t, terminal.StateAwaitingResult, m.Machine().State())
	assert.True(t, strings.HasSuffix(m.View(), "..."), "input hidden while processing")

	// keys typed while processing are ignored
	typeText(m, "xyz")

	settle(t, m, cmd)
	assert.Equal(t, terminal.StateIdle, m.Machine().State())
	assert.Equal(t, "", m.input.Value())

	view := m.View()
	assert.Contains(t, view, "zach $ about")
	assert.Contains(t, view, "Name: Zach Kordas-Potter")
}

func TestHistoryKeys(t *testing.T) {
	m, _ := newTestModel(t, terminal.NewMemoryStorage())
	settle(t, m, m.Init())
	run(t, m, "about")
	run(t, m, "help")

	press(m, tea.KeyUp)
	assert.Equal(t, "help", m.input.Value())
	press(m, tea.KeyUp)
	assert.Equal(t, "about", m.input.Value())
	press(m, tea.KeyUp)
	assert.Equal(t, "about", m.input.Value())
	press(m, tea.KeyDown)
	assert.Equal(t, "help", m.input.Value())
	press(m, tea.KeyDown)
	assert.Equal(t, "", m.input.Value())
}

func TestTabCompletes(t *testing.T) {
	m, _ := newTestModel(t, terminal.NewMemoryStorage())
	typeText(m, "pro")
	press(m, tea.KeyTab)
	assert.Equal(t, "projects", m.input.Value())

	m.input.SetValue("c")
	press(m, tea.KeyTab)
	assert.Equal(t, "c", m.input.Value(), "ambiguous prefix left alone")
}

func TestThemeCommandSwitchesStyles(t *testing.T) {
	m, _ := newTestModel(t, terminal.NewMemoryStorage())
	settle(t, m, m.Init())
	require.Equal(t, terminal.ThemeDark, m.theme)

	run(t, m, "theme")
	assert.Equal(t, terminal.ThemeLight, m.theme)
	assert.Contains(t, m.View(), "Theme switched to light mode")
}

func TestPortfolioOpensURL(t *testing.T) {
	m, opener := newTestModel(t, terminal.NewMemoryStorage())
	settle(t, m, m.Init())
	run(t, m, "portfolio")
	assert.Equal(t, []string{"https://github.com/Zachkp/zach-dev"}, opener.urls)
}

func TestClearResetsTranscript(t *testing.T) {
	m, _ := newTestModel(t, terminal.NewMemoryStorage())
	settle(t, m, m.Init())
	run(t, m, "about")
	run(t, m, "clear")

	lines := m.Machine().Lines()
	require.Len(t, lines, 1)
	assert.NotContains(t, m.View(), "Name:")
	assert.Len(t, m.writers, 1)
}

func TestRestoredLinesShowImmediately(t *testing.T) {
	st := terminal.NewMemoryStorage()
	first, _ := newTestModel(t, st)
	settle(t, first, first.Init())
	run(t, first, "contact")

	second, _ := newTestModel(t, st)
	second.Init()
	assert.Empty(t, second.writers)
	assert.Contains(t, second.View(), "zach $ contact")
}

func TestQuitKeys(t *testing.T) {
	m, _ := newTestModel(t, terminal.NewMemoryStorage())
	for _, k := range []tea.KeyType{tea.KeyCtrlC, tea.KeyEsc} {
		cmd := press(m, k)
		require.NotNil(t, cmd)
		assert.True(t, containsQuit(cmd), "key %v", k)
	}
}

func TestRenderLineHyperlinks(t *testing.T) {
	out := renderLine(StylesFor(terminal.ThemeDark), terminal.KindOutput, "GitHub: https://github.com/Zachkp")
	assert.Contains(t, out, "\x1b]8;;https://github.com/Zachkp\x1b\\")
	assert.True(t, strings.HasSuffix(out, "\x1b]8;;\x1b\\"))
	assert.Contains(t, out, "GitHub:")
}

func TestViewBeforeResize(t *testing.T) {
	content, err := portfolio.Default()
	require.NoError(t, err)
	m := New(Options{Content: content, Storage: terminal.NewMemoryStorage()})
	assert.Equal(t, "Loading...", m.View())
}

func runningWriters(m *Model) []string {
	var ids []string
	for id, w := range m.writers {
		if !w.Done() {
			ids = append(ids, id)
		}
	}
	return ids
}

func containsQuit(cmd tea.Cmd) bool {
	switch msg := cmd().(type) {
	case tea.QuitMsg:
		return true
	case tea.BatchMsg:
		for _, c := range msg {
			if c != nil && containsQuit(c) {
				return true
			}
		}
	}
	return false
}
