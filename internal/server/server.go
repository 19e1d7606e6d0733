// Package server serves the terminal portfolio over HTTP: an HTMX page, a
// JSON API for terminal sessions, the contact relay and the admin
// dashboard.
package server

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Zachkp/termfolio/internal/config"
	"github.com/Zachkp/termfolio/internal/portfolio"
	"github.com/Zachkp/termfolio/internal/store"
	"github.com/Zachkp/termfolio/internal/terminal"
)

//go:embed templates/*.html
var templateFS embed.FS

// Mailer delivers a contact message.
type Mailer interface {
	Send(msg ContactMessage) error
}

type Server struct {
	cfg      config.Config
	content  *portfolio.Content
	db       *store.SQLite
	sessions *sessionManager
	mailer   Mailer
	log      *zap.Logger

	adminToken  string
	hashingSalt string
	now         func() time.Time
}

type Options struct {
	Config  config.Config
	Content *portfolio.Content
	// DB holds the command log and, with the sqlite backend, sessions.
	DB      *store.SQLite
	Backend store.Backend
	Mailer  Mailer
	Logger  *zap.Logger
}

func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	mailer := opts.Mailer
	if mailer == nil {
		mailer = smtpMailer{cfg: opts.Config.SMTP, log: log}
	}
	s := &Server{
		cfg:     opts.Config,
		content: opts.Content,
		db:      opts.DB,
		mailer:  mailer,
		log:     log,
		now:     time.Now,
	}
	s.sessions = newSessionManager(opts.Backend, opts.Content, log)
	s.initAdminToken()
	return s
}

// Handler builds the gin engine with every route mounted.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	tmpl := template.Must(template.New("").Funcs(template.FuncMap{
		"linkify": linkify,
	}).ParseFS(templateFS, "templates/*.html"))
	r.SetHTMLTemplate(tmpl)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.setupTerminalRoutes(r)
	r.POST("/api/contact", s.handleContact)
	s.setupAdminRoutes(r)
	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("Request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

// linkify renders text with URLs as anchors; everything else is escaped.
func linkify(text string) template.HTML {
	var out string
	for _, seg := range terminal.SplitLinks(text) {
		escaped := template.HTMLEscapeString(seg.Text)
		if seg.Link {
			out += `<a href="` + escaped + `" target="_blank" rel="noopener noreferrer">` + escaped + `</a>`
		} else {
			out += escaped
		}
	}
	return template.HTML(out)
}
