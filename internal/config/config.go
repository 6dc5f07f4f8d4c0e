package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/1broseidon/deskgrid/internal/grid"
)

const (
	DefaultSaveDelay    = 2 * time.Second
	DefaultPollInterval = 2 * time.Second
	DefaultLogLevel     = "info"
)

// GridConfig is the size of one desktop icon cell in pixels.
type GridConfig struct {
	CellWidth  int `yaml:"cell_width"`
	CellHeight int `yaml:"cell_height"`
}

// Config is the effective deskgrid configuration.
type Config struct {
	// PositionsFile is the icon positions document.
	PositionsFile string `yaml:"positions_file"`
	// LedgerFile records monitors whose legacy layouts were imported.
	LedgerFile string `yaml:"ledger_file"`
	// LegacyDirs are searched in order for legacy layout files.
	LegacyDirs   []string      `yaml:"legacy_dirs"`
	SaveDelay    time.Duration `yaml:"save_delay"`
	PollInterval time.Duration `yaml:"poll_interval"`
	LogLevel     string        `yaml:"log_level"`
	Grid         GridConfig    `yaml:"grid"`
}

// DefaultConfig returns the built-in settings. Paths are filled in from the
// XDG directories when the config is built.
func DefaultConfig() *Config {
	return &Config{
		SaveDelay:    DefaultSaveDelay,
		PollInterval: DefaultPollInterval,
		LogLevel:     DefaultLogLevel,
		Grid: GridConfig{
			CellWidth:  grid.DefaultCellWidth,
			CellHeight: grid.DefaultCellHeight,
		},
	}
}

func (c *Config) Validate() error {
	if c.PositionsFile == "" {
		return &ValidationError{Path: "positions_file", Err: fmt.Errorf("positions_file is required")}
	}
	if c.LedgerFile == "" {
		return &ValidationError{Path: "ledger_file", Err: fmt.Errorf("ledger_file is required")}
	}
	for _, dir := range c.LegacyDirs {
		if dir == "" {
			return &ValidationError{Path: "legacy_dirs", Err: fmt.Errorf("legacy_dirs contains an empty path")}
		}
	}
	if c.SaveDelay <= 0 {
		return &ValidationError{Path: "save_delay", Err: fmt.Errorf("save_delay must be > 0")}
	}
	if c.PollInterval <= 0 {
		return &ValidationError{Path: "poll_interval", Err: fmt.Errorf("poll_interval must be > 0")}
	}
	if c.LogLevel != "debug" && c.LogLevel != "info" && c.LogLevel != "warning" && c.LogLevel != "error" {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	if c.Grid.CellWidth <= 0 {
		return &ValidationError{Path: "grid.cell_width", Err: fmt.Errorf("cell_width must be > 0")}
	}
	if c.Grid.CellHeight <= 0 {
		return &ValidationError{Path: "grid.cell_height", Err: fmt.Errorf("cell_height must be > 0")}
	}
	return nil
}

// SlogLevel maps log_level onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Cells returns the grid oracle for the configured cell size.
func (c *Config) Cells() grid.Cells {
	return grid.Cells{CellWidth: c.Grid.CellWidth, CellHeight: c.Grid.CellHeight}
}
