package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
)

const appName = "deskgrid"

// ConfigDir returns the directory holding config.yaml and the icon
// positions file. Priority:
// 1) $XDG_CONFIG_HOME/deskgrid (if set)
// 2) ~/.config/deskgrid
func ConfigDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// StateDir returns the directory holding the migration ledger. Priority:
// 1) $XDG_STATE_HOME/deskgrid (if set)
// 2) ~/.local/state/deskgrid
func StateDir() (string, error) {
	return xdgDir("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

// DataDir returns the directory older releases kept their per-resolution
// layout files in. Priority:
// 1) $XDG_DATA_HOME/deskgrid (if set)
// 2) ~/.local/share/deskgrid
func DataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" && filepath.IsAbs(base) {
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, fallback, appName), nil
}

// ConfigPath returns the default config file path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// PositionsPath returns the default icon positions file path.
func PositionsPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "desktop-icons.yaml"), nil
}

// LedgerPath returns the default migration ledger path.
func LedgerPath() (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "migrations.db"), nil
}

// LegacyDirs returns the directories searched for legacy layout files.
func LegacyDirs() ([]string, error) {
	configDir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	dataDir, err := DataDir()
	if err != nil {
		return nil, err
	}
	return []string{configDir, dataDir}, nil
}
