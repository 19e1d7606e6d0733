package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/Zachkp/termfolio/internal/config"
	"github.com/Zachkp/termfolio/internal/portfolio"
	"github.com/Zachkp/termfolio/internal/server"
	"github.com/Zachkp/termfolio/internal/store"
	"github.com/Zachkp/termfolio/internal/terminal"
	"github.com/Zachkp/termfolio/internal/tui"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.Load()
	var verbose bool

	root := &cobra.Command{
		Use:   "termfolio",
		Short: "A developer portfolio presented as a terminal",
		Long: `termfolio serves a portfolio as an interactive terminal.

Visitors type commands like "about", "projects" or "contact" and get
answers back in a scrolling transcript. Sessions survive reloads.

  termfolio serve     # web terminal, JSON API and admin dashboard
  termfolio shell     # the same terminal in this TTY`,
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	root.PersistentFlags().StringVar(&cfg.Store, "store", cfg.Store, "Session backend: sqlite or badger")
	root.PersistentFlags().StringVar(&cfg.BadgerDir, "badger-dir", cfg.BadgerDir, "Badger directory for the badger backend")
	root.PersistentFlags().StringVar(&cfg.ContentFile, "content", cfg.ContentFile, "Portfolio content YAML (defaults to the built-in content)")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				cfg.LogLevel = "debug"
			}
			return runServe(cmd.Context(), cfg)
		},
	}
	serve.Flags().StringVarP(&cfg.Port, "port", "p", cfg.Port, "HTTP port")

	var sessionID string
	shell := &cobra.Command{
		Use:   "shell",
		Short: "Run the terminal in this TTY",
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				cfg.LogLevel = "debug"
			}
			return runShell(cfg, sessionID)
		},
	}
	shell.Flags().StringVar(&sessionID, "session", "local", "Session id to restore and save")
	shell.Flags().StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Write logs to this file")

	root.AddCommand(serve, shell)
	return root
}

// newLogger builds a production zap logger at cfg.LogLevel. Output goes to
// cfg.LogFile when set, otherwise to the given paths.
func newLogger(cfg config.Config, paths ...string) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	if cfg.LogFile != "" {
		paths = []string{cfg.LogFile}
	}
	zc.OutputPaths = paths
	zc.ErrorOutputPaths = paths
	log, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return log, nil
}

func loadContent(path string) (*portfolio.Content, error) {
	if path == "" {
		return portfolio.Default()
	}
	return portfolio.Load(path)
}

// openStores opens the sqlite database and the session backend on top of it.
func openStores(cfg config.Config) (*store.SQLite, store.Backend, func(), error) {
	db, err := store.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, nil, nil, err
	}
	backend, err := store.Open(cfg.Store, db, cfg.BadgerDir)
	if err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	closeAll := func() {
		if backend != store.Backend(db) {
			backend.Close()
		}
		db.Close()
	}
	return db, backend, closeAll, nil
}

func runServe(ctx context.Context, cfg config.Config) error {
	log, err := newLogger(cfg, "stderr")
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	content, err := loadContent(cfg.ContentFile)
	if err != nil {
		return err
	}
	db, backend, closeStores, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer closeStores()
	log.Info("Database initialized", zap.String("path", cfg.DBPath), zap.String("sessions", cfg.Store))

	if !cfg.SMTP.Configured() {
		log.Warn("SMTP credentials not configured, contact form disabled")
	}

	srv := server.New(server.Options{
		Config:  cfg,
		Content: content,
		DB:      db,
		Backend: backend,
		Logger:  log,
	})
	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Server starting", zap.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("Shutting down")
		return httpSrv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		srv.PurgeExpiredCommands(gctx)
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				srv.PurgeExpiredCommands(gctx)
			}
		}
	})
	return g.Wait()
}

func runShell(cfg config.Config, sessionID string) error {
	var log *zap.Logger
	if cfg.LogFile != "" {
		var err error
		if log, err = newLogger(cfg); err != nil {
			return err
		}
		defer log.Sync() //nolint:errcheck
	} else {
		log = zap.NewNop()
	}

	content, err := loadContent(cfg.ContentFile)
	if err != nil {
		return err
	}
	_, backend, closeStores, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer closeStores()

	model := tui.New(tui.Options{
		Content: content,
		Storage: backend.Session(sessionID),
		Opener:  tui.BrowserOpener{},
		Logger:  log.With(zap.String("session", sessionID)),
		Delays:  terminal.DefaultDelays(),
	})
	_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
