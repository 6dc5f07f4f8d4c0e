// Package legacy imports icon positions from the per-resolution ini files
// written by older releases.
package legacy

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"gopkg.in/ini.v1"

	"github.com/1broseidon/deskgrid/internal/display"
	"github.com/1broseidon/deskgrid/internal/grid"
	"github.com/1broseidon/deskgrid/internal/layout"
)

const (
	// Older releases subtracted this margin on every side of the desktop
	// before naming the file.
	sizeMargin = 16

	globalName = "desktop-icons.ini"
	latestName = "desktop-icons-latest.ini"
)

func sizedName(width, height int) string {
	return fmt.Sprintf("desktop-icons-%dx%d.ini", width, height)
}

// Ledger remembers which monitors were already migrated.
type Ledger interface {
	Migrated(ctx context.Context, monitorID string) (bool, error)
	MarkMigrated(ctx context.Context, monitorID string, when time.Time) error
}

// Adapter implements store.Migrator.
type Adapter struct {
	// Dirs are searched in order; the first directory holding a name wins.
	Dirs []string
	Grid grid.Oracle
	// Total returns the workarea spanning all monitors.
	Total  func() layout.Rect
	Ledger Ledger
	Logger *slog.Logger
	Now    func() time.Time
}

func (a *Adapter) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.Logger
}

func (a *Adapter) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

// Migrate builds a configuration for mon from the newest legacy file. It
// returns false when the monitor was migrated before, no file exists, or no
// stored icon lands on the monitor's grid.
func (a *Adapter) Migrate(mon *display.Monitor, level layout.Level) (*layout.Configuration, bool) {
	ctx := context.Background()
	log := a.logger().With("monitor", mon.ID)

	if a.Ledger != nil {
		done, err := a.Ledger.Migrated(ctx, mon.ID)
		if err != nil {
			log.Warn("legacy migration skipped: ledger unavailable", "error", err)
			return nil, false
		}
		if done {
			log.Debug("legacy migration already done")
			return nil, false
		}
	}

	total := mon.Workarea
	if a.Total != nil {
		if t := a.Total(); t.Width > 0 && t.Height > 0 {
			total = t
		}
	}

	path, ok := a.Find(total)
	if !ok {
		log.Debug("no legacy icon positions found", "total", total)
		return nil, false
	}

	entries, err := ReadFile(path)
	if err != nil {
		log.Warn("failed to read legacy icon positions", "path", path, "error", err)
		return nil, false
	}

	if a.Grid == nil {
		return nil, false
	}
	bounds, ok := a.Grid.Bounds(mon.Workarea, total)
	if !ok {
		return nil, false
	}

	cfg := layout.New(level)
	for id, e := range entries {
		if !bounds.Contains(e.Row, e.Col) {
			continue
		}
		cfg.Icons[id] = layout.Position{
			Row: uint(e.Row - bounds.FirstRow),
			Col: uint(e.Col - bounds.FirstCol),
		}
	}
	if len(cfg.Icons) == 0 {
		log.Debug("no legacy icon positions fall on this monitor", "path", path)
		return nil, false
	}

	name := mon.Description
	if name == "" {
		name = mon.ID
	}
	cfg.Monitors[mon.ID] = layout.MonitorRecord{DisplayName: name, Geometry: mon.Geometry}

	if a.Ledger != nil {
		if err := a.Ledger.MarkMigrated(ctx, mon.ID, a.now()); err != nil {
			log.Warn("failed to record legacy migration", "error", err)
		}
	}
	log.Info("imported legacy icon positions", "path", path, "icons", len(cfg.Icons), "skipped", len(entries)-len(cfg.Icons))
	return cfg, true
}

// Find picks the legacy file to import for a desktop of the given total
// size. Of the two size-named variants the most recently modified wins;
// failing those the global file, then the file named by the latest marker.
func (a *Adapter) Find(total layout.Rect) (string, bool) {
	var best string
	var bestTime time.Time
	for _, name := range []string{
		sizedName(total.Width, total.Height),
		sizedName(total.Width-2*sizeMargin, total.Height-2*sizeMargin),
	} {
		path, info, ok := a.locate(name)
		if !ok {
			continue
		}
		if best == "" || info.ModTime().After(bestTime) {
			best, bestTime = path, info.ModTime()
		}
	}
	if best != "" {
		return best, true
	}

	if path, _, ok := a.locate(globalName); ok {
		return path, true
	}
	if marker, _, ok := a.locate(latestName); ok {
		return resolveMarker(marker)
	}
	return "", false
}

func (a *Adapter) locate(name string) (string, os.FileInfo, bool) {
	for _, dir := range a.Dirs {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err == nil && info.Mode().IsRegular() {
			return path, info, true
		}
	}
	return "", nil, false
}

// resolveMarker reads the latest marker, which holds the base name of the
// last written layout file in the same directory.
func resolveMarker(marker string) (string, bool) {
	data, err := os.ReadFile(marker)
	if err != nil {
		return "", false
	}
	name := strings.TrimSpace(string(data))
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", false
	}
	path := filepath.Join(filepath.Dir(marker), name)
	if info, err := os.Stat(path); err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return path, true
}

// Entry is one icon's cell in the legacy grid.
type Entry struct {
	Row int
	Col int
}

// ReadFile parses a legacy file: one group per icon id, each with integer
// row and col keys. Groups that are incomplete or malformed are skipped,
// as are ids that are not valid UTF-8 since they cannot be saved again.
func ReadFile(path string) (map[string]Entry, error) {
	f, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	out := make(map[string]Entry)
	for _, sec := range f.Sections() {
		if sec.Name() == ini.DefaultSection || !utf8.ValidString(sec.Name()) {
			continue
		}
		if !sec.HasKey("row") || !sec.HasKey("col") {
			continue
		}
		row, err := sec.Key("row").Int()
		if err != nil || row < 0 {
			continue
		}
		col, err := sec.Key("col").Int()
		if err != nil || col < 0 {
			continue
		}
		out[sec.Name()] = Entry{Row: row, Col: col}
	}
	return out, nil
}
