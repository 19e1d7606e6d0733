package server

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Zachkp/termfolio/internal/portfolio"
	"github.com/Zachkp/termfolio/internal/store"
	"github.com/Zachkp/termfolio/internal/terminal"
)

// Sessions idle longer than this are dropped from memory. Their state
// stays in storage and is restored on the next request.
const sessionIdleTimeout = time.Hour

// termSession is one visitor's terminal. mu serializes requests against
// the machine.
type termSession struct {
	mu       sync.Mutex
	id       string
	app      *terminal.AppContext
	machine  *terminal.Machine
	opened   []string
	lastSeen time.Time
}

// takeOpened returns and forgets the URLs the portfolio command asked to
// open during the current request.
func (ts *termSession) takeOpened() []string {
	urls := ts.opened
	ts.opened = nil
	return urls
}

type sessionManager struct {
	mu       sync.Mutex
	sessions map[string]*termSession
	backend  store.Backend
	content  *portfolio.Content
	log      *zap.Logger
}

func newSessionManager(backend store.Backend, content *portfolio.Content, log *zap.Logger) *sessionManager {
	return &sessionManager{
		sessions: make(map[string]*termSession),
		backend:  backend,
		content:  content,
		log:      log,
	}
}

// acquire returns the session for id locked; the caller must unlock it.
func (m *sessionManager) acquire(id string, now time.Time) *termSession {
	m.mu.Lock()
	ts, ok := m.sessions[id]
	if !ok {
		m.prune(now)
		ts = m.build(id)
		m.sessions[id] = ts
	}
	ts.lastSeen = now
	m.mu.Unlock()

	ts.mu.Lock()
	return ts
}

func (m *sessionManager) build(id string) *termSession {
	ts := &termSession{id: id}
	ts.app = terminal.NewAppContext(terminal.ThemeDark, terminal.OpenerFunc(func(url string) error {
		ts.opened = append(ts.opened, url)
		return nil
	}))

	var st terminal.Storage
	if m.backend != nil {
		st = m.backend.Session(id)
	} else {
		st = terminal.NewMemoryStorage()
	}

	site := m.content.Site()
	ts.machine = terminal.NewMachine(terminal.Options{
		Registry:  terminal.NewRegistry(m.content, ts.app),
		Storage:   st,
		Scheduler: terminal.ImmediateScheduler{},
		Logger:    m.log.With(zap.String("session", id)),
		Prompt:    site.Prompt,
		Welcome:   site.Welcome,
		Delays:    terminal.DefaultDelays(),
	})
	return ts
}

// prune drops idle sessions. Called with m.mu held.
func (m *sessionManager) prune(now time.Time) {
	for id, ts := range m.sessions {
		if now.Sub(ts.lastSeen) > sessionIdleTimeout {
			delete(m.sessions, id)
		}
	}
}

func (m *sessionManager) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
