package store

import (
	"fmt"
	"sort"

	"github.com/1broseidon/deskgrid/internal/display"
	"github.com/1broseidon/deskgrid/internal/layout"
)

// Candidate is a configuration that could belong to a monitor but could not
// be picked without asking the user.
type Candidate struct {
	Config ConfigID
	Level  layout.Level
}

// Match is the result of AddMonitor. Found is set when Config is now bound
// to the monitor. Candidates is only non-empty when the match is ambiguous.
type Match struct {
	Config     ConfigID
	Found      bool
	Migrated   bool
	Candidates []Candidate
}

// AddMonitor finds the unbound configuration that belongs to mon and binds
// it.
//
// A configuration that already has a record for mon.ID is taken without
// looking further. Otherwise configurations with a record of the same size
// are candidates; a single candidate is taken, and several are narrowed to
// the one whose record also has the same position. When that still leaves
// more than one, the candidates are returned sorted by level distance from
// level. With no candidate at all the migrator, if any, is asked.
func (s *Store) AddMonitor(mon *display.Monitor, level layout.Level) Match {
	if id, ok := s.BoundConfig(mon); ok {
		return Match{Config: id, Found: true}
	}

	var candidates []entry
	for _, e := range s.entries {
		if _, bound := s.bound[e.id]; bound {
			continue
		}
		if _, ok := e.cfg.Monitors[mon.ID]; ok {
			s.bind(e, mon)
			s.logger.Debug("matched monitor by id", "monitor", mon.ID, "config", e.id)
			return Match{Config: e.id, Found: true}
		}
		if e.cfg.HasMonitorSize(mon.Geometry) {
			candidates = append(candidates, e)
		}
	}

	switch len(candidates) {
	case 0:
		return s.migrate(mon, level)
	case 1:
		s.bind(candidates[0], mon)
		s.logger.Debug("matched monitor by size", "monitor", mon.ID, "config", candidates[0].id)
		return Match{Config: candidates[0].id, Found: true}
	}

	var exact []entry
	for _, e := range candidates {
		if e.cfg.HasMonitorGeometry(mon.Geometry) {
			exact = append(exact, e)
		}
	}
	if len(exact) == 1 {
		s.bind(exact[0], mon)
		s.logger.Debug("matched monitor by geometry", "monitor", mon.ID, "config", exact[0].id)
		return Match{Config: exact[0].id, Found: true}
	}

	out := make([]Candidate, len(candidates))
	for i, e := range candidates {
		out[i] = Candidate{Config: e.id, Level: e.cfg.Level}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return layout.Distance(out[i].Level, level) < layout.Distance(out[j].Level, level)
	})
	s.logger.Debug("ambiguous monitor match", "monitor", mon.ID, "candidates", len(out))
	return Match{Candidates: out}
}

func (s *Store) migrate(mon *display.Monitor, level layout.Level) Match {
	if s.migrator == nil {
		return Match{}
	}
	cfg, ok := s.migrator.Migrate(mon, level)
	if !ok || cfg == nil {
		return Match{}
	}
	id := s.insert(cfg)
	s.bind(entry{id: id, cfg: cfg}, mon)
	s.logger.Info("migrated legacy icon positions", "monitor", mon.ID, "config", id, "icons", len(cfg.Icons))
	return Match{Config: id, Found: true, Migrated: true}
}

// Assign binds mon to configuration id, typically after the user picked
// one of the candidates of an ambiguous match.
func (s *Store) Assign(mon *display.Monitor, id ConfigID) error {
	e, ok := s.find(id)
	if !ok {
		return fmt.Errorf("assign %s: %w", mon.ID, ErrUnknownConfig)
	}
	if other, bound := s.bound[id]; bound && other != mon {
		return fmt.Errorf("assign %s: %w (%s)", mon.ID, ErrAlreadyBound, other.ID)
	}
	s.UnassignMonitor(mon)
	s.bind(e, mon)
	return nil
}

// AssignNew creates an empty configuration at level and binds mon to it.
func (s *Store) AssignNew(mon *display.Monitor, level layout.Level) ConfigID {
	s.UnassignMonitor(mon)
	cfg := layout.New(level)
	id := s.insert(cfg)
	s.bind(entry{id: id, cfg: cfg}, mon)
	s.logger.Debug("created configuration", "monitor", mon.ID, "config", id, "level", level)
	return id
}

// bind records the binding and refreshes the configuration's record of mon.
func (s *Store) bind(e entry, mon *display.Monitor) {
	s.bound[e.id] = mon
	name := mon.Description
	if name == "" {
		name = mon.ID
	}
	e.cfg.Monitors[mon.ID] = layout.MonitorRecord{DisplayName: name, Geometry: mon.Geometry}
	s.changed()
}
