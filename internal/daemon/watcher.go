package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/1broseidon/deskgrid/internal/display"
	"github.com/1broseidon/deskgrid/internal/layout"
	"github.com/1broseidon/deskgrid/internal/store"
)

// WatcherConfig holds configuration for the watcher.
type WatcherConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
	Now      func() time.Time
}

// Watcher polls the display for monitor changes and keeps the store's
// monitor bindings in step with what is connected.
type Watcher struct {
	interval time.Duration
	provider display.Provider
	guard    *Guarded
	logger   *slog.Logger
	now      func() time.Time

	// monitors holds one handle per connected output. Handles are reused
	// for as long as the output stays connected.
	monitors map[string]*display.Monitor
	total    atomic.Pointer[layout.Rect]
}

// NewWatcher creates a new watcher with the given configuration.
func NewWatcher(cfg WatcherConfig, provider display.Provider, guard *Guarded) *Watcher {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Watcher{
		interval: interval,
		provider: provider,
		guard:    guard,
		logger:   logger,
		now:      now,
		monitors: make(map[string]*display.Monitor),
	}
}

// Total returns the workarea spanning every monitor seen by the last poll.
// It does not touch the store and is safe to call from a migrator.
func (w *Watcher) Total() layout.Rect {
	if t := w.total.Load(); t != nil {
		return *t
	}
	return layout.Rect{}
}

// Run polls until ctx is cancelled, then flushes any pending save.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("watcher started", "interval", w.interval)
	if err := w.Poll(); err != nil {
		w.logger.Error("watcher: poll failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			err := w.guard.Do(func(s *store.Store) error { return s.Close() })
			if err != nil {
				w.logger.Error("watcher: final save failed", "error", err)
			}
			w.logger.Info("watcher stopped")
			return err
		case <-ticker.C:
			if err := w.Poll(); err != nil {
				w.logger.Error("watcher: poll failed", "error", err)
			}
		}
	}
}

// Poll performs a single pass: new monitors are matched, vanished ones
// released, moved ones re-recorded, and a due save is written.
func (w *Watcher) Poll() error {
	current, err := w.provider.Monitors()
	if err != nil {
		return fmt.Errorf("failed to list monitors: %w", err)
	}
	total := display.TotalWorkarea(current)
	w.total.Store(&total)

	// Primary monitors get the first pick of unbound configurations.
	sort.SliceStable(current, func(i, j int) bool {
		return current[i].Primary && !current[j].Primary
	})

	return w.guard.Do(func(s *store.Store) error {
		seen := make(map[string]bool, len(current))
		for _, m := range current {
			seen[m.ID] = true
		}
		// Release first so a replacement monitor can take over the layout.
		for id, handle := range w.monitors {
			if seen[id] {
				continue
			}
			s.UnassignMonitor(handle)
			delete(w.monitors, id)
			w.logger.Info("monitor disconnected", "monitor", id)
		}

		for _, m := range current {
			if handle, ok := w.monitors[m.ID]; ok {
				w.refresh(s, handle, m)
				continue
			}
			handle := new(display.Monitor)
			*handle = m
			w.monitors[m.ID] = handle
			w.attach(s, handle)
		}

		s.Tick(w.now())
		return nil
	})
}

func (w *Watcher) attach(s *store.Store, mon *display.Monitor) {
	level := mon.Level()
	match := s.AddMonitor(mon, level)
	switch {
	case match.Found:
		w.logger.Info("monitor matched", "monitor", mon.ID, "config", match.Config, "migrated", match.Migrated)
	case len(match.Candidates) > 0:
		// No one to ask; take the closest level.
		pick := match.Candidates[0]
		if err := s.Assign(mon, pick.Config); err != nil {
			w.logger.Warn("failed to assign monitor", "monitor", mon.ID, "config", pick.Config, "error", err)
			return
		}
		w.logger.Info("monitor matched ambiguously", "monitor", mon.ID, "config", pick.Config, "candidates", len(match.Candidates))
	default:
		id := s.AssignNew(mon, level)
		w.logger.Info("monitor has no stored layout", "monitor", mon.ID, "config", id, "level", level)
	}
}

func (w *Watcher) refresh(s *store.Store, handle *display.Monitor, latest display.Monitor) {
	moved := !handle.Geometry.Equal(latest.Geometry)
	*handle = latest
	if !moved {
		return
	}
	id, ok := s.BoundConfig(handle)
	if !ok {
		return
	}
	if err := s.Assign(handle, id); err != nil {
		w.logger.Warn("failed to update monitor geometry", "monitor", handle.ID, "error", err)
		return
	}
	w.logger.Info("monitor geometry changed", "monitor", handle.ID, "geometry", handle.Geometry)
}
