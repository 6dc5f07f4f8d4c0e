package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/1broseidon/deskgrid/internal/config"
	"github.com/1broseidon/deskgrid/internal/daemon"
	"github.com/1broseidon/deskgrid/internal/display"
	"github.com/1broseidon/deskgrid/internal/layout"
	"github.com/1broseidon/deskgrid/internal/ledger"
	"github.com/1broseidon/deskgrid/internal/legacy"
	"github.com/1broseidon/deskgrid/internal/store"
	"github.com/1broseidon/deskgrid/internal/x11"
)

// env is the loaded configuration plus the logger every command shares.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
}

func (o *RootOptions) loadEnv(cmd *cobra.Command) (*env, error) {
	path := o.ConfigPath
	if path == "" {
		var err error
		if path, err = config.DefaultConfigPath(); err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to locate config", err)
		}
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	cfg := res.Config
	if o.File != "" {
		cfg.PositionsFile = o.File
	}

	level := cfg.SlogLevel()
	if o.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	logger.Debug("config loaded", "files", res.Files, "positions_file", cfg.PositionsFile)

	return &env{cfg: cfg, logger: logger}, nil
}

// openStore loads the positions file. A missing file is an empty store.
func (e *env) openStore(migrator store.Migrator) (*store.Store, error) {
	st := store.New(e.cfg.PositionsFile, store.Options{
		Logger:    e.logger,
		SaveDelay: e.cfg.SaveDelay,
		Migrator:  migrator,
	})
	if err := st.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, WrapExitError(ExitFailure, "failed to load icon positions", err)
		}
		e.logger.Info("no icon positions stored yet", "path", e.cfg.PositionsFile)
	}
	return st, nil
}

// errNoDisplay marks a failure to reach the X server.
var errNoDisplay = errors.New("no display")

// provider returns the monitors named on the command line, or the X server's.
func (e *env) provider(specs []string) (display.Provider, io.Closer, error) {
	if len(specs) > 0 {
		static, err := parseMonitors(specs)
		if err != nil {
			return nil, nil, err
		}
		return static, nil, nil
	}
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to connect to X11 (pass --monitor to run headless)", fmt.Errorf("%w: %w", errNoDisplay, err))
	}
	return conn, closerFunc(conn.Close), nil
}

type closerFunc func()

func (f closerFunc) Close() error {
	f()
	return nil
}

func parseMonitors(specs []string) (display.Static, error) {
	out := make(display.Static, 0, len(specs))
	for _, spec := range specs {
		m, err := display.ParseSpec(spec)
		if err != nil {
			return nil, NewExitError(ExitCommandError, err.Error())
		}
		out = append(out, m)
	}
	return out, nil
}

// session is a store bound to live monitors, with legacy import enabled.
type session struct {
	guard   *daemon.Guarded
	watcher *daemon.Watcher
	ledger  *ledger.Ledger
	closer  io.Closer
}

func (e *env) startSession(specs []string) (*session, error) {
	provider, closer, err := e.provider(specs)
	if err != nil {
		return nil, err
	}
	s := &session{closer: closer}

	var watcher *daemon.Watcher
	var migrator store.Migrator
	if len(e.cfg.LegacyDirs) > 0 {
		l, err := ledger.Open(e.cfg.LedgerFile)
		if err != nil {
			s.Close()
			return nil, WrapExitError(ExitCommandError, "failed to open migration ledger", err)
		}
		s.ledger = l
		migrator = &legacy.Adapter{
			Dirs:   e.cfg.LegacyDirs,
			Grid:   e.cfg.Cells(),
			Total:  func() layout.Rect { return watcher.Total() },
			Ledger: l,
			Logger: e.logger,
		}
	}

	st, err := e.openStore(migrator)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.guard = daemon.NewGuarded(st)
	watcher = daemon.NewWatcher(daemon.WatcherConfig{
		Interval: e.cfg.PollInterval,
		Logger:   e.logger,
	}, provider, s.guard)
	s.watcher = watcher
	return s, nil
}

func (s *session) Close() error {
	var errs []error
	if s.ledger != nil {
		errs = append(errs, s.ledger.Close())
	}
	if s.closer != nil {
		errs = append(errs, s.closer.Close())
	}
	return errors.Join(errs...)
}

func formatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
}
