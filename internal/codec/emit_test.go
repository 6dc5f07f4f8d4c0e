package codec

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/deskgrid/internal/layout"
)

func sampleConfigs() []*layout.Configuration {
	primary := layout.New(layout.LevelPrimary)
	primary.Monitors["DP-1"] = layout.MonitorRecord{
		DisplayName: "Dell U2412M",
		Geometry:    layout.Rect{X: 0, Y: 0, Width: 1920, Height: 1080},
	}
	primary.Icons["file.desktop"] = layout.Position{Row: 2, Col: 3}
	primary.Icons["volume:1234"] = layout.Position{Row: 0, Col: 7, LastSeen: 1700000000}

	secondary := layout.New(layout.LevelSecondary)
	secondary.Monitors["HDMI-1"] = layout.MonitorRecord{
		DisplayName: "Living room \"TV\"",
		Geometry:    layout.Rect{X: -1280, Y: 0, Width: 1280, Height: 720},
	}
	secondary.Monitors["123"] = layout.MonitorRecord{
		DisplayName: "numeric id",
		Geometry:    layout.Rect{X: 1920, Y: 0, Width: 1280, Height: 1024},
	}
	secondary.Icons["true"] = layout.Position{Row: 1, Col: 1}

	empty := layout.New(layout.LevelOther)

	return []*layout.Configuration{primary, secondary, empty}
}

func TestEncode_RoundTrip(t *testing.T) {
	want := sampleConfigs()

	var buf bytes.Buffer
	if err := Encode(&buf, want); err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := Parse(&buf)
	if err != nil {
		t.Fatalf("parse: %v\n%s", err, buf.String())
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d configurations, got %d", len(want), len(got))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("configuration %d differs:\nwant %+v\ngot  %+v", i, want[i], got[i])
		}
	}
}

func TestEncode_BannerAndQuoting(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, sampleConfigs()); err != nil {
		t.Fatalf("encode: %v", err)
	}
	out := buf.String()

	firstLine := strings.SplitN(out, "\n", 2)[0]
	if firstLine != Banner {
		t.Fatalf("expected banner first, got %q", firstLine)
	}
	for _, want := range []string{
		`id: "DP-1"`,
		`display_name: "Dell U2412M"`,
		`"file.desktop":`,
		`id: "123"`,
		`"true":`,
		"level: 0",
		"width: 1920",
		"x: -1280",
		"last_seen: 1700000000",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q:\n%s", want, out)
		}
	}
	if strings.Count(out, "last_seen") != 1 {
		t.Fatalf("expected last_seen only for non-zero timestamps:\n%s", out)
	}
}

func TestEncode_FieldOrder(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, sampleConfigs()[:1]); err != nil {
		t.Fatalf("encode: %v", err)
	}
	out := buf.String()
	level := strings.Index(out, "level:")
	monitors := strings.Index(out, "monitors:")
	icons := strings.Index(out, "icons:")
	if !(level < monitors && monitors < icons) {
		t.Fatalf("expected level, monitors, icons order:\n%s", out)
	}
}

func TestWriteFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "positions.yaml")

	want := sampleConfigs()
	if err := WriteFile(path, want); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d configurations, got %d", len(want), len(got))
	}
	assertNoTempFiles(t, filepath.Dir(path))
}

func TestWriteAtomic_FailureLeavesPreviousFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "positions.yaml")
	if err := WriteFile(path, sampleConfigs()); err != nil {
		t.Fatalf("write: %v", err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	boom := errors.New("disk full")
	err = writeAtomic(path, func(w io.Writer) error {
		if _, err := io.WriteString(w, "configs:\n  - level: "); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected write failure, got %v", err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Fatalf("expected previous file to be untouched")
	}
	if _, err := ReadFile(path); err != nil {
		t.Fatalf("expected previous file to still parse: %v", err)
	}
	assertNoTempFiles(t, dir)
}

func TestReadFile_MissingFile(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Fatalf("temporary file left behind: %s", e.Name())
		}
	}
}
