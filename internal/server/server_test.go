package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Zachkp/termfolio/internal/config"
	"github.com/Zachkp/termfolio/internal/portfolio"
	"github.com/Zachkp/termfolio/internal/store"
	"github.com/Zachkp/termfolio/internal/terminal"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeMailer struct {
	sent []ContactMessage
	err  error
}

func (f *fakeMailer) Send(msg ContactMessage) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type testServer struct {
	srv     *Server
	handler http.Handler
	db      *store.SQLite
	mailer  *fakeMailer
	content *portfolio.Content
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	content, err := portfolio.Default()
	require.NoError(t, err)
	db, err := store.OpenSQLite(filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mailer := &fakeMailer{}
	cfg := config.Config{Admin: config.AdminConfig{Username: "admin", Password: "secret"}}
	srv := New(Options{Config: cfg, Content: content, DB: db, Backend: db, Mailer: mailer, Logger: zap.NewNop()})
	return &testServer{srv: srv, handler: srv.Handler(), db: db, mailer: mailer, content: content}
}

// client keeps cookies between requests like a browser.
type client struct {
	t       *testing.T
	ts      *testServer
	cookies map[string]*http.Cookie
}

func (ts *testServer) client(t *testing.T) *client {
	return &client{t: t, ts: ts, cookies: map[string]*http.Cookie{}}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	c.ts.handler.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		c.cookies[ck.Name] = ck
	}
	return w
}

func (c *client) postJSON(path string, body any) *httptest.ResponseRecorder {
	data, err := json.Marshal(body)
	require.NoError(c.t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) command(input string) commandResponse {
	w := c.postJSON("/api/commands", gin.H{"input": input})
	require.Equal(c.t, http.StatusOK, w.Code, w.Body.String())
	var resp commandResponse
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCommandAbout(t *testing.T) {
	ts := newTestServer(t)
	c := ts.client(t)

	resp := c.command("About")
	require.True(t, resp.Accepted)
	require.NotNil(t, resp.Result)
	assert.True(t, resp.Result.Success)
	p := ts.content.Personal()
	assert.Contains(t, resp.Result.Content, p.Name)
	assert.Contains(t, resp.Result.Content, p.Title)
	assert.Contains(t, resp.Result.Content, p.Location)

	require.Len(t, resp.Lines, 2)
	assert.Equal(t, terminal.KindInput, resp.Lines[0].Kind)
	assert.Equal(t, ts.content.Site().Prompt+" About", resp.Lines[0].Content)
	assert.Equal(t, terminal.KindOutput, resp.Lines[1].Kind)
	assert.NotNil(t, c.cookies[sessionCookie])
}

func TestCommandUnknownAndBlank(t *testing.T) {
	ts := newTestServer(t)
	c := ts.client(t)

	resp := c.command("xyz123")
	require.True(t, resp.Accepted)
	assert.False(t, resp.Result.Success)
	assert.Equal(t, terminal.KindError, resp.Lines[1].Kind)
	assert.True(t, strings.HasSuffix(resp.Lines[1].Content, "Type 'help' for available commands."))

	resp = c.command("   ")
	assert.False(t, resp.Accepted)
	assert.Empty(t, resp.Lines)
}

func TestSessionPersistsAcrossRequests(t *testing.T) {
	ts := newTestServer(t)
	c := ts.client(t)

	c.command("about")
	c.command("projects")

	w := c.get("/api/session")
	require.Equal(t, http.StatusOK, w.Code)
	var sess sessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))
	assert.Equal(t, []string{"about", "projects"}, sess.History)
	assert.Len(t, sess.Lines, 5)
	assert.Equal(t, 5, sess.Counter)
	assert.Equal(t, "idle", sess.State)

	// another visitor starts fresh
	other := ts.client(t)
	w = other.get("/api/session")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))
	assert.Empty(t, sess.History)
	assert.Len(t, sess.Lines, 1)
}

func TestSessionRestoredAfterRestart(t *testing.T) {
	ts := newTestServer(t)
	c := ts.client(t)
	c.command("contact")

	restarted := New(Options{Content: ts.content, DB: ts.db, Backend: ts.db, Logger: zap.NewNop()})
	c.ts = &testServer{srv: restarted, handler: restarted.Handler(), db: ts.db, content: ts.content}

	w := c.get("/api/session")
	var sess sessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))
	assert.Equal(t, []string{"contact"}, sess.History)
	assert.Len(t, sess.Lines, 3)
}

func TestClearAndTheme(t *testing.T) {
	ts := newTestServer(t)
	c := ts.client(t)

	resp := c.command("theme")
	assert.Equal(t, "Theme switched to light mode", resp.Result.Content)
	assert.Equal(t, terminal.ThemeLight, resp.Theme)

	resp = c.command("clear")
	assert.True(t, resp.Cleared)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, ts.content.Site().Welcome, resp.Lines[0].Content)
}

func TestPortfolioReturnsOpenURL(t *testing.T) {
	ts := newTestServer(t)
	c := ts.client(t)

	resp := c.command("portfolio")
	assert.Equal(t, ts.content.Site().PortfolioURL, resp.OpenURL)

	resp = c.command("about")
	assert.Empty(t, resp.OpenURL)
}

func TestCompleteAndHistory(t *testing.T) {
	ts := newTestServer(t)
	c := ts.client(t)

	w := c.get("/api/complete?q=ab")
	var comp struct {
		Suggestions []string `json:"suggestions"`
		Completion  string   `json:"completion"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &comp))
	assert.Equal(t, []string{"about"}, comp.Suggestions)
	assert.Equal(t, "about", comp.Completion)

	c.command("about")
	c.command("help")

	var hist struct {
		Input   string `json:"input"`
		Changed bool   `json:"changed"`
	}
	w = c.postJSON("/api/history", gin.H{"direction": "previous"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hist))
	assert.Equal(t, "help", hist.Input)

	w = c.postJSON("/api/history", gin.H{"direction": "next"})
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hist))
	assert.Equal(t, "", hist.Input)
	assert.True(t, hist.Changed)

	w = c.postJSON("/api/history", gin.H{"direction": "sideways"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPageAndFormSubmit(t *testing.T) {
	ts := newTestServer(t)
	c := ts.client(t)

	w := c.get("/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Welcome")

	form := url.Values{"command": {"contact"}}
	req := httptest.NewRequest(http.MethodPost, "/terminal", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = c.do(req)
	assert.Equal(t, http.StatusSeeOther, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/terminal", strings.NewReader(url.Values{"command": {"projects"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	w = c.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.NotContains(t, body, "<html")
	assert.Contains(t, body, `<a href="https://github.com/Zachkp/zach-dev" target="_blank" rel="noopener noreferrer">`)
}

func htmxPost(c *client, command string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/terminal", strings.NewReader(url.Values{"command": {command}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	return c.do(req)
}

func hxEvents(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var events map[string]string
	require.NoError(t, json.Unmarshal([]byte(w.Header().Get("HX-Trigger")), &events))
	return events
}

func TestHTMXThemeAndPortfolioEffects(t *testing.T) {
	ts := newTestServer(t)
	c := ts.client(t)

	w := htmxPost(c, "theme")
	require.Equal(t, http.StatusOK, w.Code)
	events := hxEvents(t, w)
	assert.Equal(t, "light", events["terminal:theme"])
	assert.NotContains(t, events, "terminal:open")

	w = htmxPost(c, "portfolio")
	events = hxEvents(t, w)
	assert.Equal(t, ts.content.Site().PortfolioURL, events["terminal:open"])
	assert.Equal(t, "light", events["terminal:theme"])

	// a reload picks the theme up too
	page := c.get("/").Body.String()
	assert.Contains(t, page, `<body class="light">`)
}

func TestHTMXMarksNewLinesForReveal(t *testing.T) {
	ts := newTestServer(t)
	c := ts.client(t)
	c.command("about")

	w := htmxPost(c, "contact")
	body := w.Body.String()
	// welcome, both echoes and the about output are shown as is
	assert.Equal(t, 4, strings.Count(body, `data-reveal="false"`))
	assert.Equal(t, 1, strings.Count(body, `data-reveal="true"`))
	assert.Contains(t, body, `class="output" data-reveal="true"`)
}

func TestPageWiresKeysToAPI(t *testing.T) {
	ts := newTestServer(t)
	page := ts.client(t).get("/").Body.String()
	assert.Contains(t, page, `fetch("/api/history"`)
	assert.Contains(t, page, `fetch("/api/complete?q="`)
	assert.Contains(t, page, "ArrowUp")
	assert.Contains(t, page, "terminal:open")
	assert.Contains(t, page, "revealInterval = 10")
}

func TestCommandTracking(t *testing.T) {
	ts := newTestServer(t)
	c := ts.client(t)

	c.command("About ")
	c.command("nope")

	req := httptest.NewRequest(http.MethodPost, "/api/commands", strings.NewReader(`{"input":"help"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("DNT", "1")
	c.do(req)

	recent, err := ts.db.RecentCommands(t.Context(), 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "nope", recent[0].Command)
	assert.False(t, recent[0].Success)
	assert.Equal(t, "about", recent[1].Command)
	assert.True(t, recent[1].Success)
	assert.Len(t, recent[1].HashedIP, 16)
}

func TestAdminRequiresLogin(t *testing.T) {
	ts := newTestServer(t)
	c := ts.client(t)

	w := c.get("/admin/api/stats")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/login", w.Header().Get("Location"))

	login := func(user, pass string) *httptest.ResponseRecorder {
		form := url.Values{"username": {user}, "password": {pass}}
		req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return c.do(req)
	}

	w = login("admin", "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = login("admin", "secret")
	assert.Equal(t, http.StatusFound, w.Code)
	require.NotNil(t, c.cookies["admin_token"])

	c.command("about")
	w = c.get("/admin/api/stats")
	require.Equal(t, http.StatusOK, w.Code)
	var stats store.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.EqualValues(t, 1, stats.TotalCommands)
	assert.EqualValues(t, 1, stats.TotalSessions)

	w = c.get("/admin/api/commands?limit=0")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = c.get("/admin/dashboard")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "about")
}

func TestContact(t *testing.T) {
	ts := newTestServer(t)
	c := ts.client(t)

	w := c.postJSON("/api/contact", gin.H{"name": "Ada", "email": "not-an-email", "message": "hi"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = c.postJSON("/api/contact", gin.H{"name": "Ada", "email": "ada@example.com", "message": "hi"})
	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, ts.mailer.sent, 1)
	assert.Equal(t, "Ada", ts.mailer.sent[0].Name)

	ts.mailer.err = ErrMailNotConfigured
	w = c.postJSON("/api/contact", gin.H{"name": "Ada", "email": "ada@example.com", "message": "hi"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSMTPMailerRequiresCredentials(t *testing.T) {
	m := smtpMailer{cfg: config.SMTPConfig{Host: "localhost", Port: "25"}, log: zap.NewNop()}
	err := m.Send(ContactMessage{Name: "Ada", Email: "ada@example.com", Message: "hi"})
	assert.ErrorIs(t, err, ErrMailNotConfigured)
}

func TestLinkify(t *testing.T) {
	got := linkify("see <https://a.b/x> & more")
	assert.Equal(t,
		`see &lt;<a href="https://a.b/x&gt;" target="_blank" rel="noopener noreferrer">https://a.b/x&gt;</a> &amp; more`,
		string(got))
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	w := ts.client(t).get("/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPrivacyPage(t *testing.T) {
	ts := newTestServer(t)
	w := ts.client(t).get("/privacy")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "deleted after 12 months")
}
