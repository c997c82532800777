package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"codelingo/internal/catalog"
	"codelingo/internal/progress"
	"codelingo/internal/router"
	"codelingo/internal/state"
	"codelingo/internal/telemetry"
	"codelingo/internal/ui"

	clog "github.com/charmbracelet/log"
	"github.com/google/uuid"
)

const opTimeout = 5 * time.Second

type App struct {
	cfg Config

	logger  *clog.Logger
	logFile io.Closer
	journal Journal
	store   *state.SQLiteStore
	repo    *state.Repository
	catalog *catalog.Catalog
	engine  *progress.Engine

	view      ui.View
	sessionID string

	mu     sync.Mutex
	screen ui.Screen
	route  router.Route
}

// New opens everything a session needs. A corrupt saved state is not an
// error: the app starts from defaults and logs the fallback.
func New(cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, err
	}

	logger, logFile, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	journal, err := telemetry.NewJSONLogger(cfg.EventLog)
	if err != nil {
		_ = logFile.Close()
		return nil, err
	}

	cat, err := loadCatalog(cfg.CatalogDir)
	if err != nil {
		_ = journal.Close()
		_ = logFile.Close()
		return nil, err
	}

	store, err := state.NewSQLite(cfg.DBPath())
	if err != nil {
		_ = journal.Close()
		_ = logFile.Close()
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		_ = journal.Close()
		_ = logFile.Close()
		return nil, err
	}

	sessionID := uuid.NewString()
	journal.SetSession(sessionID)

	repo := state.NewRepository(store, cat).WithStartingHearts(cfg.Gameplay.MaxHearts)
	st, err := repo.Load(ctx)
	if err != nil {
		// Load already substituted defaults.
		logger.Warn("saved state unreadable, starting fresh", "err", err)
		journal.StateFallback(err)
	}

	a := &App{
		cfg:       cfg,
		logger:    logger,
		logFile:   logFile,
		journal:   journal,
		store:     store,
		repo:      repo,
		catalog:   cat,
		sessionID: sessionID,
		screen:    ui.ScreenHome,
	}
	a.engine = progress.New(repo, st, progress.Options{Rules: rulesFor(cfg), SessionID: sessionID})
	logger.Debug("session opened", "session", sessionID, "db", cfg.DBPath(), "courses", len(cat.Courses()))
	return a, nil
}

func newLogger(cfg Config) (*clog.Logger, io.Closer, error) {
	level, err := clog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Debug {
		level = clog.DebugLevel
	}
	var (
		w      io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	if cfg.LogPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogPath), 0o755); err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w, closer = f, f
	}
	logger := clog.NewWithOptions(w, clog.Options{
		Prefix:          "codelingo",
		Level:           level,
		ReportTimestamp: true,
	})
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func loadCatalog(dir string) (*catalog.Catalog, error) {
	if dir == "" {
		return catalog.Builtin()
	}
	cat, err := catalog.LoadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("load course packs from %s: %w", dir, err)
	}
	return cat, nil
}

func rulesFor(cfg Config) progress.Rules {
	r := progress.DefaultRules()
	r.HeartsEnabled = cfg.Gameplay.HeartsEnabled
	r.MaxHearts = cfg.Gameplay.MaxHearts
	return r
}

// Run starts a play session: the streak is touched once, the start route is
// shown and the TUI blocks until the player quits.
func (a *App) Run(ctx context.Context) error {
	if a.view == nil {
		a.view = a.newRoot()
	}
	a.view.SetController(a)

	streak, err := a.engine.TouchStreak(ctx)
	if err != nil {
		a.logger.Error("touch streak", "err", err)
	}
	a.logger.Info("app start", "session", a.sessionID, "streak", streak, "route", a.cfg.StartRoute)
	a.journal.SessionStarted(streak, a.cfg.StartRoute)

	a.OnNavigate(a.cfg.StartRoute)
	return a.view.Run()
}

// Preview renders a single frame of the screen a route resolves to, without
// starting the terminal program or touching the streak.
func (a *App) Preview(route string, cols, rows int) string {
	root := a.newRoot()
	a.view = root
	root.SetController(a)
	root.Resize(cols, rows)
	a.OnNavigate(route)
	return root.Render()
}

func (a *App) newRoot() *ui.Root {
	return ui.New(ui.Options{
		ASCIIOnly:   a.cfg.ASCIIOnly,
		Debug:       a.cfg.Debug,
		MotionLevel: a.cfg.UI.MotionLevel,
		Theme:       a.engine.State().Theme,
		Logger:      a.logger.WithPrefix("codelingo-ui"),
	})
}

func (a *App) Close() {
	if a.view != nil {
		a.view.Stop()
	}
	_ = a.store.Close()
	_ = a.journal.Close()
	_ = a.logFile.Close()
}

// Engine exposes the progress engine to the CLI commands.
func (a *App) Engine() *progress.Engine { return a.engine }

func (a *App) Catalog() *catalog.Catalog { return a.catalog }

// ResetProgress wipes the saved state after the caller confirmed it.
func (a *App) ResetProgress(ctx context.Context) error {
	if err := a.engine.Reset(ctx); err != nil {
		return fmt.Errorf("reset progress: %w", err)
	}
	a.logger.Info("progress reset", "session", a.sessionID)
	a.journal.ProgressReset()
	return nil
}

func opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), opTimeout)
}

// savedLater reports errors raised after the engine already applied a
// change in memory. They are logged and surfaced as a flash, but the
// player keeps going.
func savedLater(err error) bool {
	return errors.Is(err, progress.ErrPersist) || errors.Is(err, progress.ErrRecordAttempt)
}
