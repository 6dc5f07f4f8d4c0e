package store

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/1broseidon/deskgrid/internal/codec"
	"github.com/1broseidon/deskgrid/internal/display"
	"github.com/1broseidon/deskgrid/internal/layout"
)

var (
	ErrUnknownConfig = errors.New("unknown configuration")
	ErrAlreadyBound  = errors.New("configuration is bound to another monitor")
	ErrInvalidIconID = errors.New("icon id is not valid UTF-8")
)

// ConfigID is a store-issued handle for a Configuration. IDs are never
// reused, so a handle to a deleted configuration stays invalid.
type ConfigID uint64

// Migrator imports a configuration for a monitor from an obsolete format.
type Migrator interface {
	Migrate(mon *display.Monitor, level layout.Level) (*layout.Configuration, bool)
}

// Options configures a Store. Zero values select defaults.
type Options struct {
	Logger    *slog.Logger
	SaveDelay time.Duration
	Now       func() time.Time
	Migrator  Migrator
}

type entry struct {
	id  ConfigID
	cfg *layout.Configuration
}

// Store owns the icon position configurations backed by one file.
//
// A Store is not safe for concurrent use. Mutations are visible to Lookup
// immediately; the file is rewritten by Tick once the save delay elapses,
// by Save, or by Close.
type Store struct {
	path     string
	logger   *slog.Logger
	now      func() time.Time
	migrator Migrator

	// entries is ordered strongest level first, insertion order within a level.
	entries []entry
	nextID  ConfigID
	bound   map[ConfigID]*display.Monitor
	saver   saveScheduler

	write func(path string, cfgs []*layout.Configuration) error
}

// New creates an empty store for path. Call Load to read the file.
func New(path string, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	delay := opts.SaveDelay
	if delay <= 0 {
		delay = DefaultSaveDelay
	}
	return &Store{
		path:     path,
		logger:   logger,
		now:      now,
		migrator: opts.Migrator,
		nextID:   1,
		bound:    make(map[ConfigID]*display.Monitor),
		saver:    saveScheduler{delay: delay},
		write:    codec.WriteFile,
	}
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Load replaces the store contents with the backing file. On error the
// store is left as it was.
func (s *Store) Load() error {
	cfgs, err := codec.ReadFile(s.path)
	if err != nil {
		return err
	}

	s.entries = s.entries[:0]
	s.bound = make(map[ConfigID]*display.Monitor)
	s.saver.reset()
	for _, cfg := range cfgs {
		s.insert(cfg)
	}
	s.logger.Debug("loaded icon positions", "path", s.path, "configs", len(cfgs))
	return nil
}

// Save writes the backing file now.
func (s *Store) Save() error {
	cfgs := make([]*layout.Configuration, len(s.entries))
	for i, e := range s.entries {
		cfgs[i] = e.cfg
	}
	s.saver.reset()
	if err := s.write(s.path, cfgs); err != nil {
		return err
	}
	s.logger.Debug("saved icon positions", "path", s.path, "configs", len(cfgs))
	return nil
}

// Tick performs a scheduled save once its deadline has passed. It reports
// whether a save was attempted. Failures are logged, not retried.
func (s *Store) Tick(now time.Time) bool {
	if !s.saver.due(now) {
		return false
	}
	if err := s.Save(); err != nil {
		s.logger.Warn("failed to save icon positions", "path", s.path, "error", err)
	}
	return true
}

// NextSave returns the deadline of the scheduled save, if any.
func (s *Store) NextSave() (time.Time, bool) {
	if !s.saver.pending() {
		return time.Time{}, false
	}
	return s.saver.deadline, true
}

// Close flushes a scheduled save.
func (s *Store) Close() error {
	if !s.saver.pending() {
		return nil
	}
	return s.Save()
}

func (s *Store) changed() {
	if s.saver.schedule(s.now()) {
		s.logger.Debug("scheduled icon position save", "deadline", s.saver.deadline)
	}
}

// insert adds cfg behind every configuration of the same or stronger level.
func (s *Store) insert(cfg *layout.Configuration) ConfigID {
	id := s.nextID
	s.nextID++

	at := len(s.entries)
	for i, e := range s.entries {
		if cfg.Level.Precedes(e.cfg.Level) {
			at = i
			break
		}
	}
	s.entries = append(s.entries, entry{})
	copy(s.entries[at+1:], s.entries[at:])
	s.entries[at] = entry{id: id, cfg: cfg}
	return id
}

func (s *Store) find(id ConfigID) (entry, bool) {
	for _, e := range s.entries {
		if e.id == id {
			return e, true
		}
	}
	return entry{}, false
}

// Placement is the answer to Lookup.
type Placement struct {
	Monitor *display.Monitor
	Config  ConfigID
	Row     uint
	Col     uint
}

// Lookup finds where iconID sits among configurations bound to a monitor.
// The strongest level wins; among equal levels the earlier configuration
// in store order wins.
func (s *Store) Lookup(iconID string) (Placement, bool) {
	for _, e := range s.entries {
		mon, ok := s.bound[e.id]
		if !ok {
			continue
		}
		pos, ok := e.cfg.Icons[iconID]
		if !ok {
			continue
		}
		return Placement{Monitor: mon, Config: e.id, Row: pos.Row, Col: pos.Col}, true
	}
	return Placement{}, false
}

// SetIconPosition records iconID at row/col in configuration id and drops
// the icon from every other configuration of the same or a weaker level.
func (s *Store) SetIconPosition(id ConfigID, iconID string, row, col uint, lastSeen uint64) error {
	// The positions file cannot hold such an id; accepting it would fail
	// every later save.
	if !utf8.ValidString(iconID) {
		return fmt.Errorf("set %q: %w", iconID, ErrInvalidIconID)
	}
	target, ok := s.find(id)
	if !ok {
		return fmt.Errorf("set %q: %w", iconID, ErrUnknownConfig)
	}
	target.cfg.Icons[iconID] = layout.Position{Row: row, Col: col, LastSeen: lastSeen}
	for _, e := range s.entries {
		if e.id == id || e.cfg.Level < target.cfg.Level {
			continue
		}
		delete(e.cfg.Icons, iconID)
	}
	s.changed()
	return nil
}

// RemoveIcon drops iconID from configuration id only.
func (s *Store) RemoveIcon(id ConfigID, iconID string) error {
	target, ok := s.find(id)
	if !ok {
		return fmt.Errorf("remove %q: %w", iconID, ErrUnknownConfig)
	}
	delete(target.cfg.Icons, iconID)
	s.changed()
	return nil
}

// DeleteConfiguration removes configuration id and its binding.
func (s *Store) DeleteConfiguration(id ConfigID) error {
	for i, e := range s.entries {
		if e.id != id {
			continue
		}
		s.entries = append(s.entries[:i], s.entries[i+1:]...)
		delete(s.bound, id)
		s.changed()
		return nil
	}
	return fmt.Errorf("delete %d: %w", id, ErrUnknownConfig)
}

// UnassignMonitor drops the binding of mon. Stored data is kept so the
// monitor can be matched again when it returns.
func (s *Store) UnassignMonitor(mon *display.Monitor) {
	for id, m := range s.bound {
		if m == mon {
			delete(s.bound, id)
		}
	}
}

// BoundConfig returns the configuration mon is bound to.
func (s *Store) BoundConfig(mon *display.Monitor) (ConfigID, bool) {
	for id, m := range s.bound {
		if m == mon {
			return id, true
		}
	}
	return 0, false
}

// Info describes one configuration for inspection.
type Info struct {
	ID      ConfigID
	Config  *layout.Configuration
	Monitor *display.Monitor
}

// Configurations returns copies of all configurations in store order.
func (s *Store) Configurations() []Info {
	out := make([]Info, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, Info{ID: e.id, Config: e.cfg.Clone(), Monitor: s.bound[e.id]})
	}
	return out
}

// Configuration returns a copy of configuration id.
func (s *Store) Configuration(id ConfigID) (*layout.Configuration, bool) {
	e, ok := s.find(id)
	if !ok {
		return nil, false
	}
	return e.cfg.Clone(), true
}
