package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Zachkp/termfolio/internal/store"
	"github.com/Zachkp/termfolio/internal/terminal"
)

const sessionCookie = "terminal_session"

type lineView struct {
	ID      string
	Kind    terminal.Kind
	Content string
	// Reveal asks the page to type the line out.
	Reveal bool
}

type pageData struct {
	Prompt string
	Theme  terminal.Theme
	Lines  []lineView
	Input  string
}

type commandRequest struct {
	Input string `json:"input" form:"command"`
}

type commandResponse struct {
	Accepted bool             `json:"accepted"`
	Result   *terminal.Result `json:"result,omitempty"`
	Lines    []terminal.Line  `json:"lines"`
	Cleared  bool             `json:"cleared"`
	OpenURL  string           `json:"open_url,omitempty"`
	Theme    terminal.Theme   `json:"theme"`
}

type sessionResponse struct {
	Prompt  string          `json:"prompt"`
	Lines   []terminal.Line `json:"lines"`
	History []string        `json:"history"`
	Counter int             `json:"counter"`
	State   string          `json:"state"`
	Theme   terminal.Theme  `json:"theme"`
}

type historyRequest struct {
	Direction string `json:"direction" binding:"required,oneof=previous next"`
}

func (s *Server) setupTerminalRoutes(r *gin.Engine) {
	r.GET("/", s.handlePage)
	r.POST("/terminal", s.handleFormSubmit)

	api := r.Group("/api")
	api.GET("/session", s.handleSession)
	api.POST("/commands", s.handleCommand)
	api.GET("/complete", s.handleComplete)
	api.POST("/history", s.handleHistory)
}

// sessionID returns the visitor's session id, issuing a cookie for new
// visitors.
func (s *Server) sessionID(c *gin.Context) string {
	id, err := c.Cookie(sessionCookie)
	if err == nil {
		if _, perr := uuid.Parse(id); perr == nil {
			return id
		}
	}
	id = uuid.NewString()
	c.SetCookie(sessionCookie, id, 0, "/", "", false, true)
	return id
}

func (s *Server) withSession(c *gin.Context, fn func(ts *termSession)) {
	ts := s.sessions.acquire(s.sessionID(c), s.now())
	defer ts.mu.Unlock()
	fn(ts)
}

// page renders the session; lines listed in fresh get the typewriter reveal.
func (s *Server) page(ts *termSession, fresh map[string]bool) pageData {
	lines := ts.machine.Lines()
	views := make([]lineView, len(lines))
	for i, l := range lines {
		views[i] = lineView{ID: l.ID, Kind: l.Kind, Content: l.Content, Reveal: fresh[l.ID]}
	}
	return pageData{
		Prompt: s.content.Site().Prompt,
		Theme:  ts.app.Theme(),
		Lines:  views,
		Input:  ts.machine.Input(),
	}
}

func (s *Server) handlePage(c *gin.Context) {
	s.withSession(c, func(ts *termSession) {
		c.HTML(http.StatusOK, "terminal.html", s.page(ts, nil))
	})
}

func (s *Server) handleFormSubmit(c *gin.Context) {
	var req commandRequest
	if err := c.ShouldBind(&req); err != nil {
		c.String(http.StatusBadRequest, "invalid form")
		return
	}
	s.withSession(c, func(ts *termSession) {
		resp := s.submit(c, ts, req.Input)
		if c.GetHeader("HX-Request") == "true" {
			fresh := make(map[string]bool)
			for _, l := range resp.Lines {
				if terminal.Animates(l) {
					fresh[l.ID] = true
				}
			}
			c.Header("HX-Trigger", hxTrigger(resp))
			c.HTML(http.StatusOK, "lines", s.page(ts, fresh))
			return
		}
		c.Redirect(http.StatusSeeOther, "/")
	})
}

func (s *Server) handleCommand(c *gin.Context) {
	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	s.withSession(c, func(ts *termSession) {
		c.JSON(http.StatusOK, s.submit(c, ts, req.Input))
	})
}

// submit runs one command line through the session machine and records it
// in the command log.
func (s *Server) submit(c *gin.Context, ts *termSession, input string) commandResponse {
	before := len(ts.machine.Lines())
	resp := commandResponse{Lines: []terminal.Line{}}

	if !ts.machine.Submit(input) {
		resp.Theme = ts.app.Theme()
		return resp
	}
	resp.Accepted = true

	res, _ := ts.machine.LastResult()
	resp.Result = &res
	resp.Cleared = res.Success && res.Content == terminal.ClearSentinel

	lines := ts.machine.Lines()
	if resp.Cleared || before > len(lines) {
		resp.Lines = lines
	} else {
		resp.Lines = lines[before:]
	}
	if urls := ts.takeOpened(); len(urls) > 0 {
		resp.OpenURL = urls[len(urls)-1]
	}
	resp.Theme = ts.app.Theme()

	s.trackCommand(c, ts.id, input, res.Success)
	return resp
}

// hxTrigger carries the side effects of a command to the page as HTMX
// events: the current theme and, after portfolio, the URL to open.
func hxTrigger(resp commandResponse) string {
	events := map[string]string{"terminal:theme": string(resp.Theme)}
	if resp.OpenURL != "" {
		events["terminal:open"] = resp.OpenURL
	}
	data, err := json.Marshal(events)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func (s *Server) trackCommand(c *gin.Context, sessionID, input string, success bool) {
	if s.db == nil || c.GetHeader("DNT") == "1" {
		return
	}
	rec := store.CommandRecord{
		HashedIP:  s.hashIP(c.ClientIP()),
		SessionID: sessionID,
		Command:   strings.ToLower(strings.TrimSpace(input)),
		Success:   success,
		Timestamp: s.now(),
	}
	if err := s.db.RecordCommand(c.Request.Context(), rec); err != nil {
		s.log.Warn("Error recording command", zap.Error(err))
	}
}

func (s *Server) handleSession(c *gin.Context) {
	s.withSession(c, func(ts *termSession) {
		sess := ts.machine.Session()
		c.JSON(http.StatusOK, sessionResponse{
			Prompt:  s.content.Site().Prompt,
			Lines:   sess.Lines,
			History: sess.History,
			Counter: sess.Counter,
			State:   ts.machine.State().String(),
			Theme:   ts.app.Theme(),
		})
	})
}

func (s *Server) handleComplete(c *gin.Context) {
	q := c.Query("q")
	s.withSession(c, func(ts *termSession) {
		reg := ts.machine.Registry()
		resp := gin.H{"suggestions": reg.SuggestionsFor(q)}
		if name, ok := reg.Complete(q); ok {
			resp["completion"] = name
		}
		c.JSON(http.StatusOK, resp)
	})
}

func (s *Server) handleHistory(c *gin.Context) {
	var req historyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "direction must be previous or next"})
		return
	}
	s.withSession(c, func(ts *termSession) {
		var changed bool
		if req.Direction == "previous" {
			changed = ts.machine.HistoryPrevious()
		} else {
			changed = ts.machine.HistoryNext()
		}
		c.JSON(http.StatusOK, gin.H{"input": ts.machine.Input(), "changed": changed})
	})
}
