package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawGrid struct {
	CellWidth  *int `yaml:"cell_width"`
	CellHeight *int `yaml:"cell_height"`
}

// RawConfig mirrors one config file. Unset keys stay nil so later files
// only override what they mention.
type RawConfig struct {
	Include       IncludeList `yaml:"include"`
	PositionsFile *string     `yaml:"positions_file"`
	LedgerFile    *string     `yaml:"ledger_file"`
	LegacyDirs    []string    `yaml:"legacy_dirs"`
	SaveDelay     *string     `yaml:"save_delay"`
	PollInterval  *string     `yaml:"poll_interval"`
	LogLevel      *string     `yaml:"log_level"`
	Grid          *RawGrid    `yaml:"grid"`

	// baseDir resolves relative paths; it is the directory of the file that
	// set them.
	baseDir string
}

func (r RawConfig) merge(over RawConfig) RawConfig {
	out := r
	if over.PositionsFile != nil {
		out.PositionsFile = resolveIn(over.baseDir, over.PositionsFile)
	}
	if over.LedgerFile != nil {
		out.LedgerFile = resolveIn(over.baseDir, over.LedgerFile)
	}
	if over.LegacyDirs != nil {
		dirs := make([]string, len(over.LegacyDirs))
		for i, dir := range over.LegacyDirs {
			dirs[i] = *resolveIn(over.baseDir, &dir)
		}
		out.LegacyDirs = dirs
	}
	if over.SaveDelay != nil {
		out.SaveDelay = over.SaveDelay
	}
	if over.PollInterval != nil {
		out.PollInterval = over.PollInterval
	}
	if over.LogLevel != nil {
		out.LogLevel = over.LogLevel
	}
	if over.Grid != nil {
		g := RawGrid{}
		if out.Grid != nil {
			g = *out.Grid
		}
		if over.Grid.CellWidth != nil {
			g.CellWidth = over.Grid.CellWidth
		}
		if over.Grid.CellHeight != nil {
			g.CellHeight = over.Grid.CellHeight
		}
		out.Grid = &g
	}
	return out
}

func resolveIn(baseDir string, path *string) *string {
	if baseDir == "" || *path == "" {
		return path
	}
	resolved, err := resolvePath(baseDir, *path)
	if err != nil {
		return path
	}
	return &resolved
}
