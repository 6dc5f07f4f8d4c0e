package config

import (
	"fmt"
	"time"

	"github.com/1broseidon/deskgrid/internal/runtimepath"
)

// ValidationError reports a bad setting, with the file position that set
// it when known.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BuildEffectiveConfig applies raw over the defaults and fills unset paths
// from the XDG directories.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.PositionsFile != nil {
		cfg.PositionsFile = *raw.PositionsFile
	}
	if raw.LedgerFile != nil {
		cfg.LedgerFile = *raw.LedgerFile
	}
	if raw.LegacyDirs != nil {
		// An explicit empty list disables legacy import.
		cfg.LegacyDirs = make([]string, len(raw.LegacyDirs))
		copy(cfg.LegacyDirs, raw.LegacyDirs)
	}
	if raw.SaveDelay != nil {
		d, err := time.ParseDuration(*raw.SaveDelay)
		if err != nil {
			return nil, &ValidationError{Path: "save_delay", Err: fmt.Errorf("invalid duration %q", *raw.SaveDelay)}
		}
		cfg.SaveDelay = d
	}
	if raw.PollInterval != nil {
		d, err := time.ParseDuration(*raw.PollInterval)
		if err != nil {
			return nil, &ValidationError{Path: "poll_interval", Err: fmt.Errorf("invalid duration %q", *raw.PollInterval)}
		}
		cfg.PollInterval = d
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}
	if raw.Grid != nil {
		if raw.Grid.CellWidth != nil {
			cfg.Grid.CellWidth = *raw.Grid.CellWidth
		}
		if raw.Grid.CellHeight != nil {
			cfg.Grid.CellHeight = *raw.Grid.CellHeight
		}
	}

	if err := fillDefaultPaths(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fillDefaultPaths(cfg *Config) error {
	if cfg.PositionsFile == "" {
		path, err := runtimepath.PositionsPath()
		if err != nil {
			return err
		}
		cfg.PositionsFile = path
	}
	if cfg.LedgerFile == "" {
		path, err := runtimepath.LedgerPath()
		if err != nil {
			return err
		}
		cfg.LedgerFile = path
	}
	if cfg.LegacyDirs == nil {
		dirs, err := runtimepath.LegacyDirs()
		if err != nil {
			return err
		}
		cfg.LegacyDirs = dirs
	}
	return nil
}
