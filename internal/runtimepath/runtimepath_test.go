package runtimepath

import (
	"path/filepath"
	"testing"
)

func TestConfigDir_UsesXDGConfigHomeWhenSet(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", td)

	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error: %v", err)
	}
	if want := filepath.Join(td, "deskgrid"); got != want {
		t.Fatalf("ConfigDir() = %q, want %q", got, want)
	}
}

func TestDirs_FallBackToHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_STATE_HOME", "relative/is/ignored")
	t.Setenv("XDG_DATA_HOME", "")

	tests := []struct {
		name string
		fn   func() (string, error)
		want string
	}{
		{"config", ConfigDir, filepath.Join(home, ".config", "deskgrid")},
		{"state", StateDir, filepath.Join(home, ".local", "state", "deskgrid")},
		{"data", DataDir, filepath.Join(home, ".local", "share", "deskgrid")},
	}
	for _, tt := range tests {
		got, err := tt.fn()
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if got != tt.want {
			t.Fatalf("%s dir = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestFilePaths(t *testing.T) {
	cfgHome, stateHome, dataHome := t.TempDir(), t.TempDir(), t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", cfgHome)
	t.Setenv("XDG_STATE_HOME", stateHome)
	t.Setenv("XDG_DATA_HOME", dataHome)

	cfg, err := ConfigPath()
	if err != nil || cfg != filepath.Join(cfgHome, "deskgrid", "config.yaml") {
		t.Fatalf("ConfigPath() = %q, %v", cfg, err)
	}
	positions, err := PositionsPath()
	if err != nil || positions != filepath.Join(cfgHome, "deskgrid", "desktop-icons.yaml") {
		t.Fatalf("PositionsPath() = %q, %v", positions, err)
	}
	ledger, err := LedgerPath()
	if err != nil || ledger != filepath.Join(stateHome, "deskgrid", "migrations.db") {
		t.Fatalf("LedgerPath() = %q, %v", ledger, err)
	}
	dirs, err := LegacyDirs()
	if err != nil {
		t.Fatalf("LegacyDirs() error: %v", err)
	}
	if len(dirs) != 2 || dirs[0] != filepath.Join(cfgHome, "deskgrid") || dirs[1] != filepath.Join(dataHome, "deskgrid") {
		t.Fatalf("LegacyDirs() = %v", dirs)
	}
}
